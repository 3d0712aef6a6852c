package commands

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tndm-coder/fate-ardent-bot/internal/dice"
	"github.com/tndm-coder/fate-ardent-bot/internal/game"
	"github.com/tndm-coder/fate-ardent-bot/internal/quota"
	"github.com/tndm-coder/fate-ardent-bot/internal/storage"
)

const (
	MinAmount = 1
	MaxAmount = 8

	DivinationSides = 20
	divinationArg   = "divination"
)

// Outcome describes an applied action.
type Outcome struct {
	ID         string             `json:"id"`
	Kind       quota.Kind         `json:"kind"`
	Actor      storage.Identifier `json:"actor"`
	TargetID   storage.Identifier `json:"target_id"`
	TargetName string             `json:"target_name"`

	// Amount is the HP removed or restored.
	Amount   int  `json:"amount"`
	HP       int  `json:"hp"`
	Defeated bool `json:"defeated"`
}

// RollResult is the result of a roll command.
type RollResult struct {
	Formula    string `json:"formula"`
	Total      int    `json:"total"`
	Divination bool   `json:"divination,omitempty"`
}

type EngineOpt func(*Engine)

// WithSource sets the random source for amounts and rolls.
func WithSource(src dice.Source) EngineOpt {
	return func(e *Engine) {
		e.src = src
	}
}

// WithClock sets the clock used for quota windows.
func WithClock(clock quota.Clock) EngineOpt {
	return func(e *Engine) {
		e.quotas = quota.NewTracker(clock)
	}
}

func WithResolver(r TargetResolver) EngineOpt {
	return func(e *Engine) {
		e.resolver = r
	}
}

// Engine applies damage, heal and resurrection to a snapshot. It holds no
// locks; see Handler for the serialized load/mutate/save cycle, which also
// serializes use of the random source.
type Engine struct {
	resolver TargetResolver
	quotas   *quota.Tracker
	src      dice.Source
}

func NewEngine(opts ...EngineOpt) *Engine {
	e := &Engine{
		resolver: &DefaultTargetResolver{},
		quotas:   quota.NewTracker(quota.SystemClock{}),
		src:      dice.DefaultSource,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Engine) Quotas() *quota.Tracker {
	return e.quotas
}

func (e *Engine) Damage(snap *game.Snapshot, req Request) (*Outcome, error) {
	return e.Apply(snap, quota.KindDamage, req)
}

func (e *Engine) Heal(snap *game.Snapshot, req Request) (*Outcome, error) {
	return e.Apply(snap, quota.KindHeal, req)
}

func (e *Engine) Resurrect(snap *game.Snapshot, req Request) (*Outcome, error) {
	return e.Apply(snap, quota.KindResurrection, req)
}

// Apply runs one action. The actor is registered first; a missing target is
// reported before any quota is spent, and a denied quota leaves HP alone.
func (e *Engine) Apply(snap *game.Snapshot, kind quota.Kind, req Request) (*Outcome, error) {
	if req.Actor.ID == "" {
		return nil, ErrMissingActor
	}
	if _, err := quota.ParseKind(string(kind)); err != nil {
		return nil, err
	}

	snap.Ensure(req.Actor.ID, req.Actor.DisplayName())

	target, ok := e.resolver.Resolve(snap, req)
	if !ok {
		return nil, ErrNoTarget
	}

	if err := e.quotas.CheckAndConsume(snap, req.Actor.ID, kind); err != nil {
		return nil, err
	}

	p := target.Participant
	out := &Outcome{
		ID:         uuid.NewString(),
		Kind:       kind,
		Actor:      req.Actor.ID,
		TargetID:   target.ID,
		TargetName: p.Name,
	}

	switch kind {
	case quota.KindDamage:
		out.Amount = dice.Between(e.src, MinAmount, MaxAmount)
		p.ApplyDamage(out.Amount)
		out.Defeated = p.IsDefeated()
	case quota.KindHeal:
		out.Amount = dice.Between(e.src, MinAmount, MaxAmount)
		p.ApplyHeal(out.Amount)
	case quota.KindResurrection:
		out.Amount = p.Restore()
	}

	out.HP = p.HP
	return out, nil
}

// Roll evaluates a roll command's arguments: "divination" draws a d20
// prophecy, anything else is a formula (default 1d20) followed by
// key=value variables.
func (e *Engine) Roll(args []string) (*RollResult, error) {
	if len(args) > 0 && strings.EqualFold(args[0], divinationArg) {
		return &RollResult{
			Formula:    fmt.Sprintf("1d%d", DivinationSides),
			Total:      dice.Between(e.src, 1, DivinationSides),
			Divination: true,
		}, nil
	}

	formula := dice.DefaultFormula
	var vars map[string]any
	if len(args) > 0 {
		formula = args[0]
		vars = dice.ParseVars(args[1:])
	}

	total, err := dice.NewEvaluator(e.src).Evaluate(formula, vars)
	if err != nil {
		return nil, err
	}

	return &RollResult{Formula: formula, Total: total}, nil
}
