package game

import "fmt"

const (
	DailyActionLimit        = 10
	WeeklyResurrectionLimit = 1
)

// Usage holds an actor's action counters for the current day and ISO week.
// The window keys are compared against the clock on every read; see the
// quota package.
type Usage struct {
	Day  string `json:"day"`
	Dmg  int    `json:"dmg"`
	Heal int    `json:"heal"`

	Week         string `json:"week"`
	Resurrection int    `json:"resurrection"`
}

func (u *Usage) normalize() {
	u.Dmg = clampCount(u.Dmg, DailyActionLimit)
	u.Heal = clampCount(u.Heal, DailyActionLimit)
	u.Resurrection = clampCount(u.Resurrection, WeeklyResurrectionLimit)
}

func (u *Usage) Validate() error {
	if u.Dmg < 0 || u.Dmg > DailyActionLimit {
		return fmt.Errorf("%w: dmg %d", ErrInvalidCount, u.Dmg)
	}
	if u.Heal < 0 || u.Heal > DailyActionLimit {
		return fmt.Errorf("%w: heal %d", ErrInvalidCount, u.Heal)
	}
	if u.Resurrection < 0 || u.Resurrection > WeeklyResurrectionLimit {
		return fmt.Errorf("%w: resurrection %d", ErrInvalidCount, u.Resurrection)
	}
	return nil
}

func clampCount(n, limit int) int {
	return max(0, min(limit, n))
}
