package contract

import "errors"

var (
	ErrNoSeekersAvailable = errors.New("no seekers available")
	ErrSeekerFailed       = errors.New("seeker failed")
	ErrModelInvoke        = errors.New("model invoke failed")
	ErrValidation         = errors.New("validation failed")
)
