// Package ratelimit contains sliding window admission control for device commands.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
)

const (
	// Logger system.
	logSystem = "rate_limiter"

	// DefaultMaxCommands is the default number of commands per window.
	DefaultMaxCommands = 20
	// DefaultWindow is the default window size.
	DefaultWindow = time.Second
)

// ConstructRateLimiter has data required for a new rate limiter.
type ConstructRateLimiter struct {
	Logger      common.ILoggerProvider
	MaxCommands int
	Window      time.Duration
}

// Sliding window limiter implementation.
type provider struct {
	sync.Mutex

	logger      common.ILoggerProvider
	maxCommands int
	window      time.Duration
	timestamps  []time.Time
	now         func() time.Time
}

// NewRateLimiter constructs a new rate limiter.
func NewRateLimiter(ctor *ConstructRateLimiter) providers.IRateLimiterProvider {
	p := &provider{
		logger:      ctor.Logger,
		maxCommands: ctor.MaxCommands,
		window:      ctor.Window,
		now:         time.Now,
	}

	if p.maxCommands <= 0 {
		p.maxCommands = DefaultMaxCommands
	}

	if p.window <= 0 {
		p.window = DefaultWindow
	}

	p.timestamps = make([]time.Time, 0, p.maxCommands)
	p.logger.Debug(fmt.Sprintf("Rate limiter initialized: %d commands per %s", p.maxCommands, p.window),
		common.LogSystemToken, logSystem)
	return p
}

// Acquire blocks until a command slot is available.
// Zero timeout means waiting until context is cancelled.
// If waiting for a slot would exceed the timeout, ErrRateLimit is returned right away.
func (p *provider) Acquire(ctx context.Context, timeout time.Duration) error {
	start := p.now()
	for {
		wait, ok := p.tryAcquire()
		if ok {
			return nil
		}

		if timeout > 0 {
			elapsed := p.now().Sub(start)
			if elapsed+wait > timeout {
				p.logger.Warn("Rate limit timeout reached", common.LogSystemToken, logSystem)
				return &common.ErrRateLimit{}
			}
		}

		p.logger.Debug(fmt.Sprintf("Rate limit reached, waiting %s", wait), common.LogSystemToken, logSystem)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// CanProceed checks whether command can be sent without waiting.
func (p *provider) CanProceed() bool {
	p.Lock()
	defer p.Unlock()

	p.evict(p.now())
	return len(p.timestamps) < p.maxCommands
}

// CurrentRate returns number of commands in the current window.
func (p *provider) CurrentRate() int {
	p.Lock()
	defer p.Unlock()

	p.evict(p.now())
	return len(p.timestamps)
}

// AvailableSlots returns number of commands which can be sent immediately.
func (p *provider) AvailableSlots() int {
	slots := p.maxCommands - p.CurrentRate()
	if slots < 0 {
		return 0
	}

	return slots
}

// Reset drops all recorded timestamps.
func (p *provider) Reset() {
	p.Lock()
	defer p.Unlock()

	p.logger.Debug("Resetting rate limiter", common.LogSystemToken, logSystem)
	p.timestamps = p.timestamps[:0]
}

// Records a new timestamp if possible, otherwise returns time to wait.
func (p *provider) tryAcquire() (time.Duration, bool) {
	p.Lock()
	defer p.Unlock()

	now := p.now()
	p.evict(now)

	if len(p.timestamps) < p.maxCommands {
		p.timestamps = append(p.timestamps, now)
		return 0, true
	}

	wait := p.timestamps[0].Add(p.window).Sub(now)
	if wait <= 0 {
		wait = time.Millisecond
	}

	return wait, false
}

// Removes timestamps which left the window.
func (p *provider) evict(now time.Time) {
	border := now.Add(-p.window)
	ii := 0
	for ii < len(p.timestamps) && !p.timestamps[ii].After(border) {
		ii++
	}

	if ii > 0 {
		p.timestamps = append(p.timestamps[:0], p.timestamps[ii:]...)
	}
}
