package security

import "fmt"

// ErrNoHeader defines request without basic auth credentials.
type ErrNoHeader struct {
}

// Error formats output.
func (*ErrNoHeader) Error() string {
	return "basic auth credentials are missing"
}

// ErrMalformedHeader defines basic auth header which can't be parsed.
type ErrMalformedHeader struct {
	Reason string
}

// Error formats output.
func (e *ErrMalformedHeader) Error() string {
	return fmt.Sprintf("malformed basic auth header: %s", e.Reason)
}

// ErrUserNotFound defines unknown user or wrong password.
type ErrUserNotFound struct {
	User string
}

// Error formats output.
func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("credentials of %s were rejected", e.User)
}
