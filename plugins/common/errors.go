package common

import "fmt"

// ErrConfiguration defines invalid parameters, detected before any I/O.
type ErrConfiguration struct {
	Message string
}

// Error formats output.
func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// ErrConnection defines unreachable device, timeout or non-2xx response after retries.
type ErrConnection struct {
	Host    string
	Message string
	Err     error
}

// Error formats output.
func (e *ErrConnection) Error() string {
	if nil == e.Err {
		return fmt.Sprintf("connection to %s failed: %s", e.Host, e.Message)
	}

	return fmt.Sprintf("connection to %s failed: %s: %s", e.Host, e.Message, e.Err.Error())
}

// Cause returns underlying error.
func (e *ErrConnection) Cause() error {
	return e.Err
}

// Unwrap returns underlying error.
func (e *ErrConnection) Unwrap() error {
	return e.Err
}

// ErrEffectExecution defines render step or command failure.
type ErrEffectExecution struct {
	Effect string
	Err    error
}

// Error formats output.
func (e *ErrEffectExecution) Error() string {
	if nil == e.Err {
		return fmt.Sprintf("effect %s failed", e.Effect)
	}

	return fmt.Sprintf("effect %s failed: %s", e.Effect, e.Err.Error())
}

// Cause returns underlying error.
func (e *ErrEffectExecution) Cause() error {
	return e.Err
}

// Unwrap returns underlying error.
func (e *ErrEffectExecution) Unwrap() error {
	return e.Err
}

// ErrRateLimit defines exceeded admission timeout.
type ErrRateLimit struct {
}

// Error formats output.
func (*ErrRateLimit) Error() string {
	return "rate limit exceeded"
}

// ErrCircuitOpen defines fast-fail while circuit is open.
type ErrCircuitOpen struct {
}

// Error formats output.
func (*ErrCircuitOpen) Error() string {
	return "circuit breaker is open"
}

// ErrEffectNotFound defines unknown effect type.
type ErrEffectNotFound struct {
	Name string
}

// Error formats output.
func (e *ErrEffectNotFound) Error() string {
	return fmt.Sprintf("effect '%s' is not registered", e.Name)
}

// ErrDeviceNotFound defines unknown device.
type ErrDeviceNotFound struct {
	Host string
}

// Error formats output.
func (e *ErrDeviceNotFound) Error() string {
	return fmt.Sprintf("device %s not found", e.Host)
}

// ErrStateSource defines failure of the reactive value source.
type ErrStateSource struct {
	Entity  string
	Message string
}

// Error formats output.
func (e *ErrStateSource) Error() string {
	return fmt.Sprintf("state source %s: %s", e.Entity, e.Message)
}
