package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tndm-coder/fate-ardent-bot/internal/commands"
	"github.com/tndm-coder/fate-ardent-bot/internal/dice"
	"github.com/tndm-coder/fate-ardent-bot/internal/quota"
)

const (
	DefaultSubjectPrefix = "fate"

	ActionStart = "start"
	ActionHP    = "hp"
	ActionRoll  = "roll"
)

// Denial reasons reported to the chat adapter.
const (
	ReasonNoTarget       = "no_target"
	ReasonQuotaExhausted = "quota_exhausted"
	ReasonInvalidFormula = "invalid_formula"
	ReasonInvalidRequest = "invalid_request"
)

// Broker is the part of NatsServer the bridge needs.
type Broker interface {
	Ready() <-chan struct{}
	Subscribe(subject string, handler func(subject string, data []byte) []byte) (func(), error)
	Publish(subject string, data []byte) error
}

// Reply is the body sent back for every request.
type Reply struct {
	ID      string               `json:"id"`
	OK      bool                 `json:"ok"`
	Outcome *commands.Outcome    `json:"outcome,omitempty"`
	Roll    *commands.RollResult `json:"roll,omitempty"`
	HP      *int                 `json:"hp,omitempty"`
	Denial  *Denial              `json:"denial,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// Denial explains why nothing happened.
type Denial struct {
	Reason  string `json:"reason"`
	Kind    string `json:"kind,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Window  string `json:"window,omitempty"`
	Message string `json:"message"`
}

// Bridge feeds chat adapter requests arriving on
// "<prefix>.action.<name>" into a commands.Handler and replies with the
// result. Applied actions are also announced on "<prefix>.event.<kind>".
type Bridge struct {
	broker  Broker
	handler *commands.Handler
	prefix  string
}

func NewBridge(broker Broker, handler *commands.Handler, prefix string) *Bridge {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Bridge{
		broker:  broker,
		handler: handler,
		prefix:  prefix,
	}
}

// Start subscribes once the broker is ready and serves until ctx is done.
// A single wildcard subscription keeps requests strictly sequential.
func (b *Bridge) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-b.broker.Ready():
	}

	subject := actionSubject(b.prefix, "*")
	unsubscribe, err := b.broker.Subscribe(subject, func(subject string, data []byte) []byte {
		action, ok := actionFromSubject(b.prefix, subject)
		if !ok {
			slog.WarnContext(ctx, "ignoring message on unexpected subject", "subject", subject)
			return nil
		}
		return b.Handle(ctx, action, data)
	})
	if err != nil {
		return fmt.Errorf("subscribing to actions: %w", err)
	}
	defer unsubscribe()

	slog.InfoContext(ctx, "bridge serving actions", "subject", subject)

	<-ctx.Done()
	return nil
}

// Handle processes one request body for action and returns the encoded
// reply.
func (b *Bridge) Handle(ctx context.Context, action string, data []byte) []byte {
	reply := b.handle(ctx, action, data)

	out, err := json.Marshal(reply)
	if err != nil {
		slog.ErrorContext(ctx, "encoding reply", "id", reply.ID, "error", err)
		return []byte(`{"ok":false,"error":"internal error"}`)
	}
	return out
}

func (b *Bridge) handle(ctx context.Context, action string, data []byte) *Reply {
	reply := &Reply{ID: uuid.NewString()}

	var req commands.Request
	if err := json.Unmarshal(data, &req); err != nil {
		reply.Denial = &Denial{Reason: ReasonInvalidRequest, Message: fmt.Sprintf("decoding request: %v", err)}
		return reply
	}
	if req.Actor.ID == "" {
		reply.Denial = &Denial{Reason: ReasonInvalidRequest, Message: commands.ErrMissingActor.Error()}
		return reply
	}

	var err error
	switch action {
	case ActionStart:
		err = b.handler.Register(ctx, req.Actor)

	case ActionHP:
		var hp int
		hp, err = b.handler.HP(ctx, req.Actor)
		reply.HP = &hp

	case ActionRoll:
		reply.Roll, err = b.handler.Roll(ctx, req.Actor, req.Args)

	default:
		kind, kerr := quota.ParseKind(action)
		if kerr != nil {
			reply.Denial = &Denial{Reason: ReasonInvalidRequest, Message: kerr.Error()}
			return reply
		}
		reply.Outcome, err = b.handler.Exec(ctx, kind, req)
		if err == nil {
			b.announce(ctx, reply.Outcome)
		}
	}

	if err != nil {
		reply.HP = nil
		reply.Outcome = nil
		reply.Roll = nil

		if denial := denialFor(err); denial != nil {
			reply.Denial = denial
			return reply
		}

		slog.ErrorContext(ctx, "handling action", "id", reply.ID, "action", action, "error", err)
		reply.Error = "internal error"
		return reply
	}

	reply.OK = true
	return reply
}

func (b *Bridge) announce(ctx context.Context, out *commands.Outcome) {
	data, err := json.Marshal(out)
	if err != nil {
		slog.WarnContext(ctx, "encoding outcome event", "id", out.ID, "error", err)
		return
	}
	if err := b.broker.Publish(eventSubject(b.prefix, out.Kind), data); err != nil {
		slog.WarnContext(ctx, "publishing outcome event", "id", out.ID, "error", err)
	}
}

func denialFor(err error) *Denial {
	var exhausted *quota.ExhaustedError
	var formula *dice.FormulaError

	switch {
	case errors.Is(err, commands.ErrNoTarget):
		return &Denial{Reason: ReasonNoTarget, Message: err.Error()}
	case errors.As(err, &exhausted):
		return &Denial{
			Reason:  ReasonQuotaExhausted,
			Kind:    exhausted.Kind.String(),
			Limit:   exhausted.Limit,
			Window:  exhausted.Window.String(),
			Message: err.Error(),
		}
	case errors.As(err, &formula):
		return &Denial{Reason: ReasonInvalidFormula, Message: err.Error()}
	case commands.IsUserError(err):
		return &Denial{Reason: ReasonInvalidRequest, Message: err.Error()}
	default:
		return nil
	}
}
