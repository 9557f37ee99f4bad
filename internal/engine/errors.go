package engine

import (
	"errors"
	"fmt"
)

// ErrContextLocked is returned when the session context would change while
// the timer is running.
var ErrContextLocked = errors.New("context locked while timer is running")

// InvalidTransitionError reports an operation invoked in a state that does
// not permit it. The engine state is unchanged when it is returned.
type InvalidTransitionError struct {
	Op    string
	State string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s not allowed in state %s", e.Op, e.State)
}

func invalidTransition(op, state string) error {
	return &InvalidTransitionError{Op: op, State: state}
}
