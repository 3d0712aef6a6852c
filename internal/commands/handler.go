package commands

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tndm-coder/fate-ardent-bot/internal/game"
	"github.com/tndm-coder/fate-ardent-bot/internal/quota"
	"github.com/tndm-coder/fate-ardent-bot/internal/storage"
)

// Handler runs each request as one load, mutate, save cycle against the
// store. Cycles are serialized by a mutex, which keeps quota checks and HP
// updates from racing when the adapter dispatches concurrently. Only one
// Handler may write to a given store.
type Handler struct {
	mu     sync.Mutex
	store  storage.Storer[*game.Snapshot]
	engine *Engine
}

func NewHandler(store storage.Storer[*game.Snapshot], engine *Engine) *Handler {
	if engine == nil {
		engine = NewEngine()
	}
	return &Handler{
		store:  store,
		engine: engine,
	}
}

// Exec applies an action of the given kind. Denials (no target, quota
// exhausted) come back as user-facing errors; the actor's registration is
// still saved in that case.
func (h *Handler) Exec(ctx context.Context, kind quota.Kind, req Request) (*Outcome, error) {
	var out *Outcome
	err := h.update(ctx, func(snap *game.Snapshot) error {
		var err error
		out, err = h.engine.Apply(snap, kind, req)
		return err
	})
	if err != nil {
		if IsUserError(err) {
			slog.DebugContext(ctx, "action denied", "kind", kind, "actor", req.Actor.ID, "reason", err)
		}
		return nil, err
	}

	slog.InfoContext(ctx, "action applied",
		"id", out.ID,
		"kind", out.Kind,
		"actor", out.Actor,
		"target", out.TargetID,
		"amount", out.Amount,
		"hp", out.HP,
		"defeated", out.Defeated,
	)
	return out, nil
}

// HP registers the actor and returns their current HP.
func (h *Handler) HP(ctx context.Context, actor Person) (int, error) {
	var hp int
	err := h.update(ctx, func(snap *game.Snapshot) error {
		if actor.ID == "" {
			return ErrMissingActor
		}
		hp = snap.Ensure(actor.ID, actor.DisplayName()).HP
		return nil
	})
	return hp, err
}

// Register records the actor, refreshing their display name.
func (h *Handler) Register(ctx context.Context, actor Person) error {
	return h.update(ctx, func(snap *game.Snapshot) error {
		if actor.ID == "" {
			return ErrMissingActor
		}
		snap.Ensure(actor.ID, actor.DisplayName())
		return nil
	})
}

// Roll registers the actor and evaluates the roll arguments. A malformed
// formula is returned as a *dice.FormulaError; the registration is saved
// either way. The roll runs under the same lock as actions, so the engine's
// random source is never used concurrently.
func (h *Handler) Roll(ctx context.Context, actor Person, args []string) (*RollResult, error) {
	var res *RollResult
	err := h.update(ctx, func(snap *game.Snapshot) error {
		if actor.ID == "" {
			return ErrMissingActor
		}
		snap.Ensure(actor.ID, actor.DisplayName())

		var err error
		res, err = h.engine.Roll(args)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// update loads the snapshot, applies fn and saves the result. The snapshot
// is saved when fn succeeds or fails with a user-facing denial; any other
// error discards the mutation.
func (h *Handler) update(ctx context.Context, fn func(*game.Snapshot) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	snap, err := h.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	fnErr := fn(snap)
	if fnErr != nil && !IsUserError(fnErr) {
		return fnErr
	}

	if err := h.store.Save(ctx, snap); err != nil {
		slog.ErrorContext(ctx, "saving state", "error", err)
		return fmt.Errorf("saving state: %w", err)
	}

	return fnErr
}
