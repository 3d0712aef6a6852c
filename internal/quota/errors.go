package quota

import "fmt"

// ExhaustedError reports that an actor has no uses of Kind left in the
// current window.
type ExhaustedError struct {
	Kind   Kind
	Limit  int
	Window Window
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s %s quota exhausted (%d/%d)", e.Window, e.Kind, e.Limit, e.Limit)
}

// UserFacing marks the error as safe to show to the requester.
func (e *ExhaustedError) UserFacing() bool {
	return true
}
