package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-home-io/wled-effects/mocks"
	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Returns breaker with fake clock.
func getBreaker(threshold int, timeout time.Duration, now *time.Time) *provider {
	p := NewCircuitBreaker(&ConstructCircuitBreaker{
		Logger:    mocks.FakeNewLogger(nil),
		Name:      "test",
		Threshold: threshold,
		Timeout:   timeout,
	}).(*provider)
	p.now = func() time.Time { return *now }
	return p
}

// Returns failing function and invocations counter.
func failing(calls *int) func(context.Context) error {
	return func(context.Context) error {
		*calls++
		return errors.New("failed")
	}
}

// Tests that circuit opens after threshold and doesn't invoke function.
func TestOpens(t *testing.T) {
	now := time.Now()
	p := getBreaker(3, time.Minute, &now)
	calls := 0

	for ii := 0; ii < 3; ii++ {
		err := p.Execute(context.Background(), failing(&calls))
		require.Error(t, err)
		assert.NotEqual(t, "circuit breaker is open", err.Error())
	}

	assert.Equal(t, providers.CircuitOpen, p.State())

	err := p.Execute(context.Background(), failing(&calls))
	assert.IsType(t, &common.ErrCircuitOpen{}, err)
	assert.Equal(t, 3, calls)
}

// Tests recovery after timeout.
func TestRecovery(t *testing.T) {
	now := time.Now()
	p := getBreaker(2, 10*time.Second, &now)
	calls := 0
	for ii := 0; ii < 2; ii++ {
		_ = p.Execute(context.Background(), failing(&calls))
	}

	now = now.Add(9 * time.Second)
	assert.IsType(t, &common.ErrCircuitOpen{}, p.Execute(context.Background(), failing(&calls)))

	now = now.Add(time.Second)
	invoked := false
	err := p.Execute(context.Background(), func(context.Context) error {
		invoked = true
		assert.Equal(t, providers.CircuitHalfOpen, p.State())
		return nil
	})

	require.NoError(t, err)
	assert.True(t, invoked)
	assert.Equal(t, providers.CircuitClosed, p.State())
	assert.Equal(t, 0, p.Stats().FailureCount)
}

// Tests that failure in half-open state re-opens circuit.
func TestHalfOpenFailure(t *testing.T) {
	now := time.Now()
	p := getBreaker(1, time.Second, &now)
	calls := 0
	_ = p.Execute(context.Background(), failing(&calls))
	assert.Equal(t, providers.CircuitOpen, p.State())

	now = now.Add(2 * time.Second)
	_ = p.Execute(context.Background(), failing(&calls))
	assert.Equal(t, 2, calls)
	assert.Equal(t, providers.CircuitOpen, p.State())
	assert.IsType(t, &common.ErrCircuitOpen{}, p.Execute(context.Background(), failing(&calls)))
}

// Tests stats, reset and listener.
func TestStatsAndReset(t *testing.T) {
	now := time.Now()
	states := make([]providers.CircuitState, 0)
	p := NewCircuitBreaker(&ConstructCircuitBreaker{
		Logger:    mocks.FakeNewLogger(nil),
		Threshold: 1,
		OnStateChange: func(name string, state providers.CircuitState) {
			assert.Equal(t, "default", name)
			states = append(states, state)
		},
	}).(*provider)
	p.now = func() time.Time { return now }

	require.NoError(t, p.Execute(context.Background(), func(context.Context) error { return nil }))
	calls := 0
	_ = p.Execute(context.Background(), failing(&calls))

	s := p.Stats()
	assert.Equal(t, providers.CircuitOpen, s.State)
	assert.Equal(t, 1, s.FailureCount)
	assert.Equal(t, 1, s.SuccessCount)
	assert.Equal(t, DefaultTimeout.Seconds(), s.Timeout)
	require.NotNil(t, s.LastFailure)

	p.Reset()
	assert.Equal(t, providers.CircuitClosed, p.State())
	assert.Nil(t, p.Stats().LastFailure)
	assert.Equal(t, []providers.CircuitState{providers.CircuitOpen, providers.CircuitClosed}, states)
}

// Tests that cancelled calls are not counted as failures.
func TestCancelledNotCounted(t *testing.T) {
	now := time.Now()
	p := getBreaker(1, time.Minute, &now)
	err := p.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, providers.CircuitClosed, p.State())
	assert.Equal(t, 0, p.Stats().FailureCount)
}

// Tests that only consecutive failures open the circuit.
func TestConsecutiveFailures(t *testing.T) {
	now := time.Now()
	p := getBreaker(3, time.Minute, &now)
	calls := 0

	for ii := 0; ii < 5; ii++ {
		_ = p.Execute(context.Background(), failing(&calls))
		_ = p.Execute(context.Background(), failing(&calls))
		require.NoError(t, p.Execute(context.Background(), func(context.Context) error { return nil }))
	}

	assert.Equal(t, providers.CircuitClosed, p.State())
	assert.Equal(t, 0, p.Stats().FailureCount)
	assert.Equal(t, 10, calls)
}
