package providers

import (
	"context"
	"time"
)

// IRateLimiterProvider defines sliding window admission control.
type IRateLimiterProvider interface {
	Acquire(ctx context.Context, timeout time.Duration) error
	CanProceed() bool
	CurrentRate() int
	AvailableSlots() int
	Reset()
}

// CircuitState defines circuit breaker state.
type CircuitState string

const (
	// CircuitClosed passes calls through.
	CircuitClosed CircuitState = "closed"
	// CircuitOpen rejects calls.
	CircuitOpen CircuitState = "open"
	// CircuitHalfOpen lets a probe call through.
	CircuitHalfOpen CircuitState = "half_open"
)

// ICircuitBreakerProvider defines failure isolation wrapper.
type ICircuitBreakerProvider interface {
	Execute(ctx context.Context, fn func(context.Context) error) error
	State() CircuitState
	Reset()
	Stats() *CircuitStats
}

// CircuitStats has circuit breaker statistics.
type CircuitStats struct {
	Name         string       `json:"name"`
	State        CircuitState `json:"state"`
	FailureCount int          `json:"failure_count"`
	SuccessCount int          `json:"success_count"`
	LastFailure  *time.Time   `json:"last_failure_time"`
	Threshold    int          `json:"failure_threshold"`
	Timeout      float64      `json:"timeout"`
}
