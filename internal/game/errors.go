package game

import "errors"

var (
	ErrInvalidHP    = errors.New("hp out of range")
	ErrInvalidCount = errors.New("usage count out of range")
	ErrNilSnapshot  = errors.New("snapshot is nil")
)
