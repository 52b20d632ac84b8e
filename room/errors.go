package room

import "errors"

var (
	ErrUnknownSession = errors.New("unknown session")
	ErrBadState       = errors.New("message not valid in session state")
	ErrUnknownMessage = errors.New("unknown message type")
	ErrNoTank         = errors.New("session has no tank")
	ErrStopped        = errors.New("room stopped")
)
