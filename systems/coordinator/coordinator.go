// Package coordinator contains status polling and lifecycle orchestration of effects.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/utils"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const (
	logSystem = "coordinator"

	// DefaultRefreshInterval defines how often status is polled.
	DefaultRefreshInterval = 30 * time.Second

	maxSegmentID = 31
	maxZoneCount = 10
)

// Fields which change on every refresh and don't make status different.
var statusCompare = []cmp.Option{
	cmpopts.IgnoreFields(providers.EffectStatus{}, "RunningTime"),
	cmpopts.IgnoreFields(providers.EffectStats{}, "RunningTime"),
}

// ConstructCoordinator has data required for a new coordinator.
type ConstructCoordinator struct {
	Logger          common.ILoggerProvider
	Engine          providers.IEffectEngineProvider
	Cron            providers.ICronProvider
	FanOut          providers.IFanOutProvider
	RefreshInterval time.Duration
	Now             func() time.Time
}

// Coordinator implementation.
type coordinator struct {
	sync.Mutex

	logger common.ILoggerProvider
	engine providers.IEffectEngineProvider
	cron   providers.ICronProvider
	fanOut providers.IFanOutProvider
	now    func() time.Time

	jobID       int
	status      *providers.EffectStatus
	lastStarted *time.Time
	lastStopped *time.Time
}

// NewCoordinator creates a new coordinator and schedules status polling.
func NewCoordinator(ctor *ConstructCoordinator) providers.ICoordinatorProvider {
	now := ctor.Now
	if nil == now {
		now = time.Now
	}

	c := &coordinator{
		logger: ctor.Logger,
		engine: ctor.Engine,
		cron:   ctor.Cron,
		fanOut: ctor.FanOut,
		now:    now,
	}

	interval := ctor.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	if nil != c.cron {
		var err error
		c.jobID, err = c.cron.AddFunc(utils.EverySpec(interval), c.Refresh)
		if err != nil {
			c.logger.Error("Failed to schedule status updates", err, c.logFields()...)
		}
	}

	c.Refresh()
	return c
}

// Name returns effect instance name.
func (c *coordinator) Name() string {
	return c.engine.Name()
}

// Engine returns coordinated effect engine.
func (c *coordinator) Engine() providers.IEffectEngineProvider {
	return c.engine
}

// Start launches the effect.
func (c *coordinator) Start() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &common.ErrEffectExecution{Effect: c.engine.Name(), Err: fmt.Errorf("%v", r)}
			c.logger.Error("Failed to start effect", err, c.logFields()...)
		}
	}()

	c.engine.Start()
	if !c.engine.IsRunning() {
		return &common.ErrEffectExecution{Effect: c.engine.Name(), Err: fmt.Errorf("effect is not running")}
	}

	now := c.now()
	c.Lock()
	c.lastStarted = &now
	c.Unlock()

	c.Refresh()
	return nil
}

// Stop halts the effect.
func (c *coordinator) Stop() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &common.ErrEffectExecution{Effect: c.engine.Name(), Err: fmt.Errorf("%v", r)}
			c.logger.Error("Failed to stop effect", err, c.logFields()...)
		}
	}()

	c.engine.Stop()

	now := c.now()
	c.Lock()
	c.lastStopped = &now
	c.Unlock()

	c.Refresh()
	return nil
}

// RunOnce renders a single frame.
func (c *coordinator) RunOnce(ctx context.Context) error {
	err := c.engine.RunOnce(ctx)
	c.Refresh()

	if nil == err {
		return nil
	}

	if _, ok := err.(*common.ErrEffectExecution); ok {
		return err
	}

	return &common.ErrEffectExecution{Effect: c.engine.Name(), Err: err}
}

// Status returns the latest status snapshot.
func (c *coordinator) Status() *providers.EffectStatus {
	return c.snapshot()
}

// Refresh polls engine state and publishes changed status.
func (c *coordinator) Refresh() {
	status := c.snapshot()

	c.Lock()
	changed := nil == c.status || !cmp.Equal(c.status, status, statusCompare...)
	c.status = status
	c.Unlock()

	if !changed || nil == c.fanOut {
		return
	}

	c.logger.Debug("Effect status changed", append(c.logFields(), "state", status.State)...)
	select {
	case c.fanOut.ChannelInStatusUpdates() <- status:
	default:
		c.logger.Warn("Status updates channel is full", c.logFields()...)
	}
}

// UpdateConfig validates and applies common settings.
// Reactive inputs are re-opened by restarting a running effect.
func (c *coordinator) UpdateConfig(update *providers.ConfigUpdate) error {
	if nil == update {
		return &common.ErrConfiguration{Message: "update is empty"}
	}

	if err := validateUpdate(update); err != nil {
		c.logger.Warn("Received incorrect config update", append(c.logFields(),
			common.LogErrorToken, err.Error())...)
		return err
	}

	c.engine.UpdateSettings(func(s *effect.BaseSettings) {
		if nil != update.Brightness {
			s.Brightness = *update.Brightness
		}
		if nil != update.SegmentID {
			s.SegmentID = *update.SegmentID
		}
		if nil != update.Reverse {
			s.Reverse = *update.Reverse
		}
		if nil != update.FreezeOnManual {
			s.FreezeOnManual = *update.FreezeOnManual
		}
		if nil != update.BlendMode {
			s.BlendMode = effect.BlendMode(*update.BlendMode)
		}
		if nil != update.TransitionMode {
			s.TransitionMode = effect.TransitionMode(*update.TransitionMode)
		}
		if nil != update.ZoneCount {
			s.ZoneCount = *update.ZoneCount
		}
		if nil != update.ReactiveInputs {
			s.ReactiveInputs = append([]string{}, *update.ReactiveInputs...)
		}
	})

	c.logger.Info("Effect config updated", c.logFields()...)

	if nil != update.ReactiveInputs && c.engine.IsRunning() {
		c.engine.Stop()
		c.engine.Start()
	}

	c.Refresh()
	return nil
}

// Unload stops polling and releases the effect.
func (c *coordinator) Unload() {
	if nil != c.cron && 0 != c.jobID {
		c.cron.RemoveFunc(c.jobID)
	}

	c.engine.Unload()
}

// Builds status snapshot.
func (c *coordinator) snapshot() *providers.EffectStatus {
	stats := c.engine.Stats()
	settings := c.engine.Settings()

	c.Lock()
	defer c.Unlock()

	status := &providers.EffectStatus{
		Name:        settings.Name,
		Type:        settings.Type,
		Host:        settings.Host,
		SegmentID:   settings.SegmentID,
		Running:     stats.Running,
		LastError:   stats.LastError,
		Stats:       stats,
		LastStarted: copyTime(c.lastStarted),
		LastStopped: copyTime(c.lastStopped),
		RunningTime: stats.RunningTime,
	}

	switch {
	case stats.Running:
		status.State = providers.EffectStateRunning
	case "" != stats.LastError:
		status.State = providers.EffectStateError
	default:
		status.State = providers.EffectStateStopped
	}

	return status
}

// Returns common log fields.
func (c *coordinator) logFields() []string {
	return []string{common.LogSystemToken, logSystem, common.LogEffectToken, c.engine.Name()}
}

// Validates config update.
func validateUpdate(update *providers.ConfigUpdate) error {
	if nil != update.Brightness && (*update.Brightness < 0 || *update.Brightness > 255) {
		return &common.ErrConfiguration{
			Message: fmt.Sprintf("brightness must be 0-255, got %d", *update.Brightness)}
	}

	if nil != update.SegmentID && (*update.SegmentID < 0 || *update.SegmentID > maxSegmentID) {
		return &common.ErrConfiguration{
			Message: fmt.Sprintf("segment_id must be 0-%d, got %d", maxSegmentID, *update.SegmentID)}
	}

	if nil != update.ZoneCount && (*update.ZoneCount < 1 || *update.ZoneCount > maxZoneCount) {
		return &common.ErrConfiguration{
			Message: fmt.Sprintf("zone_count must be 1-%d, got %d", maxZoneCount, *update.ZoneCount)}
	}

	if nil != update.BlendMode {
		switch effect.BlendMode(*update.BlendMode) {
		case effect.BlendAverage, effect.BlendMax, effect.BlendMin, effect.BlendMultiply, effect.BlendAdd:
		default:
			return &common.ErrConfiguration{Message: "unknown blend_mode " + *update.BlendMode}
		}
	}

	if nil != update.TransitionMode {
		switch effect.TransitionMode(*update.TransitionMode) {
		case effect.TransitionInstant, effect.TransitionFade, effect.TransitionSmooth:
		default:
			return &common.ErrConfiguration{Message: "unknown transition_mode " + *update.TransitionMode}
		}
	}

	return nil
}

// Copies optional time.
func copyTime(t *time.Time) *time.Time {
	if nil == t {
		return nil
	}

	v := *t
	return &v
}
