package utils

// ErrInvalidConfig defines wrong configuration error.
type ErrInvalidConfig struct {
}

// Error formats output.
func (*ErrInvalidConfig) Error() string {
	return "config validation error"
}

// ErrEmptyConfig defines config file without effects.
type ErrEmptyConfig struct {
}

// Error formats output.
func (*ErrEmptyConfig) Error() string {
	return "no effects are defined"
}
