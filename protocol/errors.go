package protocol

import "errors"

var (
	ErrEmptyMessage = errors.New("empty message")
	ErrEmptyPayload = errors.New("empty payload")
	ErrLayout       = errors.New("unexpected field layout")
	ErrWireFormat   = errors.New("unknown wire format")
)
