package wled

import "fmt"

// ErrStatus defines non-2xx device response.
type ErrStatus struct {
	Code int
}

// Error formats output.
func (e *ErrStatus) Error() string {
	return fmt.Sprintf("device responded with status %d", e.Code)
}

// ErrClosed defines usage of the closed client.
type ErrClosed struct {
}

// Error formats output.
func (*ErrClosed) Error() string {
	return "client is closed"
}
