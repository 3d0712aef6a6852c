package commands

import "errors"

// UserError represents an error that should be displayed to the user.
// These are not system failures - just invalid input or usage.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) UserFacing() bool {
	return true
}

// NewUserError creates a user-facing error.
func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}

// ErrNoTarget is returned when an action names no resolvable target.
var ErrNoTarget = NewUserError("no target specified")

var ErrMissingActor = errors.New("request has no actor identity")

type userFacing interface {
	UserFacing() bool
}

// IsUserError reports whether err is a denial that should be reported back
// to the requester rather than treated as a failure. Quota and formula
// errors from other packages qualify too.
func IsUserError(err error) bool {
	var uf userFacing
	return errors.As(err, &uf) && uf.UserFacing()
}
