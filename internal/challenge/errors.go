package challenge

import "errors"

// Engine errors.
var (
	// ErrAlreadyCompleted is returned when the completion action is
	// invoked a second time within the same calendar day.
	ErrAlreadyCompleted = errors.New("challenge already completed today")
)
