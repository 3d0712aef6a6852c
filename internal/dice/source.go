// Package dice rolls dice and evaluates roll formulas such as "2d6+3".
package dice

import "math/rand/v2"

// Source is the random source dice are drawn from. *rand.Rand satisfies it,
// so tests can pass a seeded generator. A *rand.Rand is not safe for
// concurrent use; callers sharing one must serialize draws.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultSource is the process-wide source backed by math/rand/v2.
var DefaultSource Source = globalSource{}

// Between draws an integer uniformly from [lo, hi].
func Between(src Source, lo, hi int) int {
	return lo + src.IntN(hi-lo+1)
}
