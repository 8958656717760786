// Package breaker contains circuit breaker isolating failing devices.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
)

const (
	// Logger system.
	logSystem = "circuit_breaker"

	// DefaultThreshold is the default number of failures before circuit opens.
	DefaultThreshold = 5
	// DefaultTimeout is the default recovery timeout.
	DefaultTimeout = 60 * time.Second
)

// ConstructCircuitBreaker has data required for a new circuit breaker.
type ConstructCircuitBreaker struct {
	Logger    common.ILoggerProvider
	Name      string
	Threshold int
	Timeout   time.Duration
	// Optional state change listener.
	OnStateChange func(name string, state providers.CircuitState)
}

// Circuit breaker implementation.
type provider struct {
	sync.Mutex

	logger    common.ILoggerProvider
	name      string
	threshold int
	timeout   time.Duration
	onChange  func(name string, state providers.CircuitState)

	state       providers.CircuitState
	failures    int
	successes   int
	lastFailure time.Time
	now         func() time.Time
}

// NewCircuitBreaker constructs a new circuit breaker.
func NewCircuitBreaker(ctor *ConstructCircuitBreaker) providers.ICircuitBreakerProvider {
	p := &provider{
		logger:    ctor.Logger,
		name:      ctor.Name,
		threshold: ctor.Threshold,
		timeout:   ctor.Timeout,
		onChange:  ctor.OnStateChange,
		state:     providers.CircuitClosed,
		now:       time.Now,
	}

	if p.threshold <= 0 {
		p.threshold = DefaultThreshold
	}

	if p.timeout <= 0 {
		p.timeout = DefaultTimeout
	}

	if "" == p.name {
		p.name = "default"
	}

	p.logger.Debug(fmt.Sprintf("Circuit breaker initialized: threshold=%d, timeout=%s", p.threshold, p.timeout),
		common.LogSystemToken, logSystem, common.LogDeviceHostToken, p.name)
	return p
}

// Execute invokes fn unless circuit is open.
func (p *provider) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := p.admit(); err != nil {
		return err
	}

	if err := fn(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			p.release()
			return err
		}

		p.onFailure()
		return err
	}

	p.onSuccess()
	return nil
}

// State returns current circuit state.
func (p *provider) State() providers.CircuitState {
	p.Lock()
	defer p.Unlock()
	return p.state
}

// Reset closes circuit and drops failures.
func (p *provider) Reset() {
	p.Lock()
	defer p.Unlock()

	p.logger.Info("Manually resetting circuit breaker",
		common.LogSystemToken, logSystem, common.LogDeviceHostToken, p.name)
	p.failures = 0
	p.lastFailure = time.Time{}
	p.setState(providers.CircuitClosed)
}

// Stats returns circuit statistics.
func (p *provider) Stats() *providers.CircuitStats {
	p.Lock()
	defer p.Unlock()

	s := &providers.CircuitStats{
		Name:         p.name,
		State:        p.state,
		FailureCount: p.failures,
		SuccessCount: p.successes,
		Threshold:    p.threshold,
		Timeout:      p.timeout.Seconds(),
	}

	if !p.lastFailure.IsZero() {
		t := p.lastFailure
		s.LastFailure = &t
	}

	return s
}

// Checks whether call is allowed, moving into half-open state after timeout.
func (p *provider) admit() error {
	p.Lock()
	defer p.Unlock()

	if providers.CircuitOpen != p.state {
		return nil
	}

	if p.lastFailure.IsZero() || p.now().Sub(p.lastFailure) < p.timeout {
		return &common.ErrCircuitOpen{}
	}

	p.logger.Info("Circuit breaker entering half-open state",
		common.LogSystemToken, logSystem, common.LogDeviceHostToken, p.name)
	p.setState(providers.CircuitHalfOpen)
	return nil
}

// Returns probe slot back after cancelled call.
func (p *provider) release() {
	p.Lock()
	defer p.Unlock()

	if providers.CircuitHalfOpen == p.state {
		p.setState(providers.CircuitOpen)
	}
}

// Handles successful call. Failures are counted only in a row.
func (p *provider) onSuccess() {
	p.Lock()
	defer p.Unlock()

	p.successes++
	if providers.CircuitClosed == p.state {
		p.failures = 0
		return
	}

	if providers.CircuitHalfOpen == p.state {
		p.logger.Info("Circuit breaker recovered",
			common.LogSystemToken, logSystem, common.LogDeviceHostToken, p.name)
		p.failures = 0
		p.setState(providers.CircuitClosed)
	}
}

// Handles failed call.
func (p *provider) onFailure() {
	p.Lock()
	defer p.Unlock()

	p.failures++
	p.lastFailure = p.now()

	switch {
	case providers.CircuitHalfOpen == p.state:
		p.logger.Warn("Circuit breaker failed during half-open state",
			common.LogSystemToken, logSystem, common.LogDeviceHostToken, p.name)
		p.setState(providers.CircuitOpen)
	case providers.CircuitClosed == p.state && p.failures >= p.threshold:
		p.logger.Warn(fmt.Sprintf("Circuit breaker threshold reached (%d failures)", p.failures),
			common.LogSystemToken, logSystem, common.LogDeviceHostToken, p.name)
		p.setState(providers.CircuitOpen)
	}
}

// Updates state and notifies listener. Must be called under lock.
func (p *provider) setState(state providers.CircuitState) {
	changed := p.state != state
	p.state = state
	if changed && nil != p.onChange {
		p.onChange(p.name, state)
	}
}
