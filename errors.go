package fsm

import (
	"errors"
	"fmt"
)

var (
	ErrNoSuchState         = errors.New("no such state")
	ErrAutoTransitionLimit = errors.New("auto transition limit exceeded")
)

// StateError reports an operation against a state name that is not
// registered.
type StateError struct {
	Op    string
	State string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s '%s'", e.Op, ErrNoSuchState, e.State)
}

func (e *StateError) Unwrap() error {
	return ErrNoSuchState
}

// AutoTransitionError is returned when a chain of auto transitions grows
// past the limit set with WithMaxAutoTransitions.
type AutoTransitionError struct {
	State string
	Limit int
}

func (e *AutoTransitionError) Error() string {
	return fmt.Sprintf("%s: landed on '%s' after %d chained transitions", ErrAutoTransitionLimit, e.State, e.Limit)
}

func (e *AutoTransitionError) Unwrap() error {
	return ErrAutoTransitionLimit
}

func IsNoSuchState(err error) bool {
	return errors.Is(err, ErrNoSuchState)
}
