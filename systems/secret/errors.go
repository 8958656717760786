package secret

import "fmt"

// ErrNotFound defines missing secret error.
type ErrNotFound struct {
	Name string
}

// Error formats output.
func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("secret %s is not found", e.Name)
}

// ErrUnknownProvider defines unsupported secrets provider error.
type ErrUnknownProvider struct {
	Provider string
}

// Error formats output.
func (e *ErrUnknownProvider) Error() string {
	return fmt.Sprintf("secrets provider %s is not supported", e.Provider)
}
