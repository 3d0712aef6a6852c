package dice

import (
	"errors"
	"fmt"
)

const (
	MaxDice  = 100
	MaxSides = 1000
)

var (
	ErrInvalidDiceSpec = errors.New("invalid dice spec")
	ErrTooManyDice     = errors.New("too many dice")
)

// Spec describes a group of identical dice, e.g. 2d6.
type Spec struct {
	Count int
	Sides int
}

func (s Spec) String() string {
	return fmt.Sprintf("%dd%d", s.Count, s.Sides)
}

func (s Spec) Validate() error {
	if s.Count <= 0 || s.Sides <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDiceSpec, s)
	}
	if s.Count > MaxDice || s.Sides > MaxSides {
		return fmt.Errorf("%w: %s", ErrTooManyDice, s)
	}
	return nil
}

// Roll rolls the dice in spec and returns each result and their sum.
func Roll(src Source, spec Spec) ([]int, int, error) {
	if err := spec.Validate(); err != nil {
		return nil, 0, err
	}

	results := make([]int, spec.Count)
	total := 0
	for i := range results {
		results[i] = Between(src, 1, spec.Sides)
		total += results[i]
	}
	return results, total, nil
}
