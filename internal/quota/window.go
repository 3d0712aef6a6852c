package quota

import (
	"fmt"
	"time"

	"github.com/tndm-coder/fate-ardent-bot/internal/game"
)

// Window is the span a quota counter accumulates over.
type Window int

const (
	WindowDay Window = iota
	WindowWeek
)

func (w Window) String() string {
	switch w {
	case WindowDay:
		return "daily"
	case WindowWeek:
		return "weekly"
	default:
		return fmt.Sprintf("window(%d)", int(w))
	}
}

// DayKey returns the calendar date of t, e.g. "2026-10-18".
func DayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// WeekKey returns the ISO week of t, e.g. "2026-W42".
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Kind is a quota-gated action.
type Kind string

const (
	KindDamage       Kind = "dmg"
	KindHeal         Kind = "heal"
	KindResurrection Kind = "resurrection"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindDamage, KindHeal, KindResurrection:
		return k, nil
	default:
		return "", fmt.Errorf("unknown action kind %q", s)
	}
}

// Limit is the number of uses allowed per window.
func (k Kind) Limit() int {
	switch k {
	case KindDamage, KindHeal:
		return game.DailyActionLimit
	case KindResurrection:
		return game.WeeklyResurrectionLimit
	default:
		return 0
	}
}

func (k Kind) Window() Window {
	if k == KindResurrection {
		return WindowWeek
	}
	return WindowDay
}

func (k Kind) String() string {
	return string(k)
}

// counter returns the usage field tracking k.
func (k Kind) counter(u *game.Usage) *int {
	switch k {
	case KindDamage:
		return &u.Dmg
	case KindHeal:
		return &u.Heal
	case KindResurrection:
		return &u.Resurrection
	default:
		return nil
	}
}
