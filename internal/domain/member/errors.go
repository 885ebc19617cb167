package member

import "errors"

var (
	ErrRecordNotFound         = errors.New("activation record not found")
	ErrAlreadyActivated       = errors.New("member already activated")
	ErrInvalidStateTransition = errors.New("invalid activation state transition")
	ErrChannelUnavailable     = errors.New("no usable delivery channel")
	ErrUnknownChannel         = errors.New("unknown delivery channel")
)
