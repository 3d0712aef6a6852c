package commands

import (
	"github.com/tndm-coder/fate-ardent-bot/internal/game"
	"github.com/tndm-coder/fate-ardent-bot/internal/storage"
)

// Target is a resolved action target.
type Target struct {
	ID          storage.Identifier
	Participant *game.Participant
}

// TargetResolver picks the participant an action applies to.
type TargetResolver interface {
	Resolve(snap *game.Snapshot, req Request) (*Target, bool)
}

// DefaultTargetResolver is the standard implementation of TargetResolver.
type DefaultTargetResolver struct{}

// Resolve prefers the author of the replied-to message, registering them if
// they have never been seen. Otherwise the first argument is matched against
// known names (case-insensitive, exact, '@' ignored). A name that matches no
// one never creates a participant.
func (r *DefaultTargetResolver) Resolve(snap *game.Snapshot, req Request) (*Target, bool) {
	if req.ReplyTo != nil && req.ReplyTo.ID != "" {
		p := snap.Ensure(req.ReplyTo.ID, req.ReplyTo.DisplayName())
		return &Target{ID: req.ReplyTo.ID, Participant: p}, true
	}

	if token := req.FirstArg(); token != "" {
		if id, p, ok := snap.FindByName(token); ok {
			return &Target{ID: id, Participant: p}, true
		}
	}

	return nil, false
}
