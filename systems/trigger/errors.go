package trigger

import "fmt"

// ErrInvalidTrigger defines trigger with missing or wrong parameters.
type ErrInvalidTrigger struct {
	ID      string
	Message string
}

// Error formats output.
func (e *ErrInvalidTrigger) Error() string {
	return fmt.Sprintf("trigger %s is invalid: %s", e.ID, e.Message)
}

// ErrAlreadyStarted defines modification of the running manager.
type ErrAlreadyStarted struct {
}

// Error formats output.
func (*ErrAlreadyStarted) Error() string {
	return "trigger manager is already started"
}
