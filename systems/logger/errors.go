package logger

import "fmt"

// ErrUnknownLogger defines unsupported logger type.
type ErrUnknownLogger struct {
	Type string
}

// Error formats output.
func (e *ErrUnknownLogger) Error() string {
	return fmt.Sprintf("unknown logger type: %s", e.Type)
}

// ErrUnknownLevel defines unsupported log level.
type ErrUnknownLevel struct {
	Level string
}

// Error formats output.
func (e *ErrUnknownLevel) Error() string {
	return fmt.Sprintf("unknown log level: %s", e.Level)
}
