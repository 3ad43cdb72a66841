package grid

import (
	"errors"
	"fmt"
)

var (
	ErrTerminal = errors.New("no legal action from the terminal state")
)

// DataSourceError is returned when a transition table cannot be loaded.
type DataSourceError struct {
	Table  string
	Reason string
	Err    error
}

func (e *DataSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transition table %q: %s: %s", e.Table, e.Reason, e.Err)
	}
	return fmt.Sprintf("transition table %q: %s", e.Table, e.Reason)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// InvalidActionError is returned by Step for an action that is not legal.
type InvalidActionError struct {
	State  State
	Action Action
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("action %s is not legal in state %s", e.Action, e.State)
}
