package server

import "fmt"

// ErrUnknownEffect defines unknown effect instance error.
type ErrUnknownEffect struct {
	Name string
}

// Error formats output.
func (e *ErrUnknownEffect) Error() string {
	return fmt.Sprintf("effect %s is unknown", e.Name)
}

// ErrUnknownCommand defines unknown command error.
type ErrUnknownCommand struct {
	Name string
}

// Error formats output.
func (e *ErrUnknownCommand) Error() string {
	return fmt.Sprintf("command %s is unknown", e.Name)
}

// ErrUnknownEntity defines unknown entity error.
type ErrUnknownEntity struct {
	ID string
}

// Error formats output.
func (e *ErrUnknownEntity) Error() string {
	return fmt.Sprintf("entity %s is unknown", e.ID)
}

// ErrEffectSetup defines effect which failed to initialize.
type ErrEffectSetup struct {
	Name string
}

// Error formats output.
func (e *ErrEffectSetup) Error() string {
	return fmt.Sprintf("effect %s failed to initialize", e.Name)
}

// ErrBadRequest defines generic server error.
type ErrBadRequest struct {
}

// Error formats output.
func (e *ErrBadRequest) Error() string {
	return "bad request"
}

// ErrUnauthorized defines request without valid credentials.
type ErrUnauthorized struct {
}

// Error formats output.
func (e *ErrUnauthorized) Error() string {
	return "unauthorized"
}

// ErrForbidden defines request which is not allowed for the user.
type ErrForbidden struct {
	User     string
	Resource string
}

// Error formats output.
func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("user %s is not allowed to access %s", e.User, e.Resource)
}
