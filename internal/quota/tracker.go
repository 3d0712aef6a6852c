package quota

import (
	"fmt"

	"github.com/tndm-coder/fate-ardent-bot/internal/game"
	"github.com/tndm-coder/fate-ardent-bot/internal/storage"
)

// Tracker enforces per-actor action quotas over rolling day and ISO week
// windows. Windows are reset lazily when a record is read; nothing runs in
// the background. Tracker holds no locks: callers serialize access to the
// snapshot.
type Tracker struct {
	clock Clock
}

func NewTracker(clock Clock) *Tracker {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Tracker{clock: clock}
}

// WindowState returns the actor's usage record, created on first use, with
// counters from a previous day or week reset to zero.
func (t *Tracker) WindowState(snap *game.Snapshot, actor storage.Identifier) *game.Usage {
	u := snap.UsageFor(actor)
	now := t.clock.Now()

	if day := DayKey(now); u.Day != day {
		u.Day = day
		u.Dmg = 0
		u.Heal = 0
	}

	if week := WeekKey(now); u.Week != week {
		u.Week = week
		u.Resurrection = 0
	}

	return u
}

// CheckAndConsume spends one use of kind for actor. When the ceiling is
// already reached it returns an *ExhaustedError and changes nothing.
func (t *Tracker) CheckAndConsume(snap *game.Snapshot, actor storage.Identifier, kind Kind) error {
	u := t.WindowState(snap, actor)

	count := kind.counter(u)
	if count == nil {
		return fmt.Errorf("unknown action kind %q", kind)
	}

	if *count >= kind.Limit() {
		return &ExhaustedError{
			Kind:   kind,
			Limit:  kind.Limit(),
			Window: kind.Window(),
		}
	}

	*count++
	return nil
}

// Remaining returns how many uses of kind the actor has left in the current
// window.
func (t *Tracker) Remaining(snap *game.Snapshot, actor storage.Identifier, kind Kind) int {
	u := t.WindowState(snap, actor)
	count := kind.counter(u)
	if count == nil {
		return 0
	}
	return max(0, kind.Limit()-*count)
}
