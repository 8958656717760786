// Package engine contains generic effect lifecycle and frame output.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/systems/metrics"
	"github.com/go-home-io/wled-effects/systems/trigger"
	"github.com/go-home-io/wled-effects/systems/wled"
	"github.com/pkg/errors"
)

const (
	logSystem = "engine"

	// DefaultErrorBackoff is a pause after failed render step.
	DefaultErrorBackoff = time.Second
	// DefaultTick is used when effect doesn't request a delay.
	DefaultTick = 50 * time.Millisecond
	// OverrideSkip is a pause while device is controlled manually.
	OverrideSkip = 100 * time.Millisecond
	// OverrideCheckInterval limits device state queries made by manual override check.
	OverrideCheckInterval = time.Second

	// Timeout of trigger-invoked single render.
	runOnceTimeout = 30 * time.Second
)

// ConstructEngine has data required for a new effect engine.
type ConstructEngine struct {
	Logger    common.ILoggerProvider
	Client    providers.IDeviceClientProvider
	Effect    effect.IEffect
	Settings  *effect.BaseSettings
	RawConfig []byte
	Validator effect.IValidator
	Sources   effect.ISourceFactory
	Store     providers.IStateProvider
	Cron      providers.ICronProvider
	Random    *rand.Rand
	Now       func() time.Time

	ErrorBackoff time.Duration
}

// Effect engine implementation.
type engine struct {
	sync.Mutex
	logger    common.ILoggerProvider
	client    providers.IDeviceClientProvider
	effect    effect.IEffect
	settings  *effect.BaseSettings
	rawConfig []byte
	validator effect.IValidator
	sources   effect.ISourceFactory
	random    *rand.Rand
	now       func() time.Time
	backoff   time.Duration

	triggers providers.ITriggerManagerProvider
	pipeline *pipeline
	inputs   []effect.IValueSource

	ledRange effect.LEDRange
	resolved bool
	spec     *effect.Spec

	// Serializes render steps of the loop and RunOnce.
	stepLock sync.Mutex

	running     bool
	cancel      context.CancelFunc
	done        chan struct{}
	lastError   string
	commands    int64
	successes   int64
	failures    int64
	startTime   *time.Time
	runningTime time.Duration

	lastColor  *common.Color
	lastCheck  time.Time
	overridden bool
	sent       bool
}

// NewEngine creates a new effect engine.
func NewEngine(ctor *ConstructEngine) providers.IEffectEngineProvider {
	now := ctor.Now
	if nil == now {
		now = time.Now
	}

	random := ctor.Random
	if nil == random {
		random = rand.New(rand.NewSource(now().UnixNano())) // nolint: gosec
	}

	backoff := ctor.ErrorBackoff
	if 0 == backoff {
		backoff = DefaultErrorBackoff
	}

	settings := ctor.Settings
	if nil == settings {
		settings = effect.NewBaseSettings()
	}

	e := &engine{
		logger:    ctor.Logger,
		client:    ctor.Client,
		effect:    ctor.Effect,
		settings:  settings,
		rawConfig: ctor.RawConfig,
		validator: ctor.Validator,
		sources:   ctor.Sources,
		random:    random,
		now:       now,
		backoff:   backoff,
		inputs:    make([]effect.IValueSource, 0),
	}

	e.pipeline = newPipeline(e)

	if len(settings.Triggers) > 0 && nil != ctor.Store && nil != ctor.Cron {
		e.triggers = trigger.NewTriggerManager(&trigger.ConstructTriggerManager{
			Logger: ctor.Logger,
			Store:  ctor.Store,
			Cron:   ctor.Cron,
			Effect: settings.Name,
			Now:    now,
		})
	}

	return e
}

// Name returns effect instance name.
func (e *engine) Name() string {
	return e.settings.Name
}

// Type returns effect type.
func (e *engine) Type() string {
	return e.settings.Type
}

// Setup resolves LED range, initializes the effect and wires triggers.
// Returns false on unrecoverable failure.
func (e *engine) Setup(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Effect setup panicked", fmt.Errorf("%v", r), e.logFields()...)
			ok = false
		}
	}()

	ledRange, err := e.resolveRange(ctx)
	if err != nil {
		e.logger.Error("Failed to resolve LED range", err, e.logFields()...)
		return false
	}

	e.Lock()
	e.ledRange = ledRange
	e.resolved = true
	e.Unlock()

	err = e.effect.Init(&effect.InitDataEffect{
		Logger:    e.logger,
		Validator: e.validator,
		Sources:   e.sources,
		Pipeline:  e.pipeline,
		Base:      e.settings,
		Range:     ledRange,
		RawConfig: e.rawConfig,
		Random:    e.random,
		Now:       e.now,
	})

	if err != nil {
		e.logger.Error("Failed to init effect", err, e.logFields()...)
		return false
	}

	e.spec = e.effect.GetSpec()

	if !e.setupTriggers() {
		return false
	}

	e.openInputs()

	e.logger.Info("Effect setup complete", append(e.logFields(),
		"start_led", fmt.Sprintf("%d", ledRange.Start), "stop_led", fmt.Sprintf("%d", ledRange.Stop))...)
	return true
}

// Start launches the render loop.
func (e *engine) Start() {
	e.Lock()
	defer e.Unlock()

	if e.running {
		e.logger.Warn("Effect is already running", e.logFields()...)
		return
	}

	e.logger.Info("Starting effect", e.logFields()...)

	now := e.now()
	e.running = true
	e.startTime = &now
	e.runningTime = 0
	e.lastError = ""
	e.commands = 0
	e.successes = 0
	e.failures = 0
	e.lastColor = nil
	e.overridden = false
	e.sent = false
	e.lastCheck = time.Time{}

	if nil != e.triggers {
		if err := e.triggers.Setup(); err != nil {
			if _, ok := err.(*trigger.ErrAlreadyStarted); !ok {
				e.logger.Error("Failed to arm triggers", err, e.logFields()...)
			}
		}
	}

	e.openInputsLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.cancel = cancel
	e.done = done
	go e.loop(ctx, done)

	metrics.SetEffectRunning(e.settings.Name, true)
}

// Stop cancels the render loop and waits for it.
// After Stop returns no render step is running.
func (e *engine) Stop() {
	e.Lock()
	done := e.done
	if !e.running {
		e.Unlock()
		e.logger.Debug("Effect is not running", e.logFields()...)
		// Concurrent Stop might still be waiting for the loop.
		if nil != done {
			<-done
		}
		return
	}

	e.logger.Info("Stopping effect", e.logFields()...)

	e.running = false
	cancel := e.cancel
	e.cancel = nil
	e.Unlock()

	cancel()
	<-done

	// Triggers stay armed until Unload, so start actions can resume the effect.
	e.Lock()
	defer e.Unlock()
	if e.running {
		return
	}

	e.closeInputsLocked()
	if nil != e.startTime {
		e.runningTime = e.now().Sub(*e.startTime)
	}
	e.startTime = nil

	metrics.SetEffectRunning(e.settings.Name, false)
}

// RunOnce renders a single frame outside of the loop.
func (e *engine) RunOnce(ctx context.Context) error {
	e.logger.Debug("Running effect once", e.logFields()...)

	err := e.step(ctx, true)
	if err != nil {
		e.logger.Error("Error running effect once", err, e.logFields()...)
		e.Lock()
		e.lastError = err.Error()
		e.Unlock()
		return &common.ErrEffectExecution{Effect: e.settings.Name, Err: err}
	}

	return nil
}

// IsRunning returns whether render loop is active.
func (e *engine) IsRunning() bool {
	e.Lock()
	defer e.Unlock()
	return e.running
}

// Stats returns runtime state snapshot.
func (e *engine) Stats() *providers.EffectStats {
	e.Lock()
	defer e.Unlock()

	rate := 100.0
	if e.commands > 0 {
		rate = float64(e.successes) / float64(e.commands) * 100
	}

	stats := &providers.EffectStats{
		Running:     e.running,
		LastError:   e.lastError,
		Commands:    e.commands,
		Successes:   e.successes,
		Failures:    e.failures,
		SuccessRate: rate,
		RunningTime: e.runningTime.Seconds(),
	}

	if nil != e.startTime {
		start := *e.startTime
		stats.StartTime = &start
		stats.RunningTime = e.now().Sub(start).Seconds()
	}

	return stats
}

// Range returns resolved LED range.
func (e *engine) Range() effect.LEDRange {
	e.Lock()
	defer e.Unlock()
	return e.ledRange
}

// MapToZone returns inclusive LED bounds of the zone.
// The last zone absorbs the remainder, (0, 0) is returned while range is unresolved.
func (e *engine) MapToZone(index int) (int, int) {
	e.Lock()
	defer e.Unlock()

	if !e.resolved {
		return 0, 0
	}

	zones := e.settings.ZoneCount
	if zones < 1 {
		zones = 1
	}

	size := e.ledRange.Count() / zones
	start := e.ledRange.Start + index*size
	stop := start + size - 1

	if index == zones-1 {
		stop = e.ledRange.Stop
	}

	return start, stop
}

// Settings returns a copy of base settings.
func (e *engine) Settings() effect.BaseSettings {
	e.Lock()
	defer e.Unlock()
	return *e.settings
}

// UpdateSettings applies changes to base settings.
func (e *engine) UpdateSettings(update func(settings *effect.BaseSettings)) {
	e.Lock()
	defer e.Unlock()
	update(e.settings)
}

// GetSpec returns effect spec.
func (e *engine) GetSpec() *effect.Spec {
	if nil != e.spec {
		return e.spec
	}

	return e.effect.GetSpec()
}

// Unload stops the effect and releases its resources.
func (e *engine) Unload() {
	e.Stop()

	if nil != e.triggers {
		e.triggers.Shutdown()
	}

	e.Lock()
	e.closeInputsLocked()
	e.Unlock()

	e.effect.Unload()
}

// Render loop.
// Failed steps are recorded and followed by backoff, loop exits only on cancellation.
func (e *engine) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	e.logger.Debug("Starting effect loop", e.logFields()...)

	for {
		if ctx.Err() != nil {
			return
		}

		err := e.step(ctx, false)
		if nil == err {
			continue
		}

		if errOverride == err {
			continue
		}

		if errDone == err {
			e.logger.Info("Effect has finished", e.logFields()...)
			go e.Stop()
			return
		}

		if ctx.Err() != nil || errors.Cause(err) == context.Canceled {
			e.logger.Debug("Effect loop cancelled", e.logFields()...)
			return
		}

		e.logger.Error("Error in effect loop", err, e.logFields()...)
		e.Lock()
		e.lastError = err.Error()
		if _, ok := err.(*errCommand); !ok {
			e.failures++
		}
		e.Unlock()
		metrics.IncrementEffectFrames(e.settings.Name, false)

		if wled.Sleep(ctx, e.backoff) != nil {
			return
		}
	}
}

// Performs a single render step.
func (e *engine) step(ctx context.Context, once bool) error {
	e.stepLock.Lock()
	defer e.stepLock.Unlock()

	if !once && e.checkManualOverride(ctx) {
		if err := wled.Sleep(ctx, OverrideSkip); err != nil {
			return err
		}

		return errOverride
	}

	frame, err := e.effect.Step(ctx)
	if err != nil {
		return err
	}

	if nil == frame {
		frame = &effect.Frame{}
	}

	if err := e.output(ctx, frame); err != nil {
		return err
	}

	metrics.IncrementEffectFrames(e.settings.Name, true)

	if once {
		return nil
	}

	if frame.Done {
		return errDone
	}

	delay := frame.Delay
	if delay <= 0 {
		delay = DefaultTick
	}

	return wled.Sleep(ctx, delay)
}

// Resolves LED range, querying device when bounds are not configured.
func (e *engine) resolveRange(ctx context.Context) (effect.LEDRange, error) {
	s := e.settings
	if s.RangeConfigured() {
		if *s.StartLED > *s.StopLED {
			return effect.LEDRange{}, &common.ErrConfiguration{
				Message: fmt.Sprintf("start_led %d is greater than stop_led %d", *s.StartLED, *s.StopLED)}
		}

		return effect.LEDRange{Start: *s.StartLED, Stop: *s.StopLED}, nil
	}

	detected := effect.LEDRange{Start: effect.DefaultStartLED, Stop: effect.DefaultStopLED}
	info, err := e.client.GetInfo(ctx)
	switch {
	case err != nil:
		e.logger.Error("Failed to auto-detect LED range, using defaults", err, e.logFields()...)
	case info.LEDs.Count <= 0:
		e.logger.Warn("Device reported 0 LEDs, using defaults", e.logFields()...)
	default:
		detected = effect.LEDRange{Start: 0, Stop: info.LEDs.Count - 1}
		e.logger.Info("Auto-detected LED range", append(e.logFields(),
			"count", fmt.Sprintf("%d", info.LEDs.Count))...)
	}

	if nil != s.StartLED {
		detected.Start = *s.StartLED
	}

	if nil != s.StopLED {
		detected.Stop = *s.StopLED
	}

	if detected.Start > detected.Stop {
		return effect.LEDRange{}, &common.ErrConfiguration{
			Message: fmt.Sprintf("start_led %d is outside of detected range", detected.Start)}
	}

	return detected, nil
}

// Registers configured triggers.
func (e *engine) setupTriggers() bool {
	if nil == e.triggers {
		if len(e.settings.Triggers) > 0 {
			e.logger.Warn("Triggers are configured, but state store is not available", e.logFields()...)
		}

		return true
	}

	for _, v := range e.settings.Triggers {
		if _, err := e.triggers.AddTrigger(v, e.triggerCallback(v.Action)); err != nil {
			if _, ok := err.(*trigger.ErrAlreadyStarted); ok {
				continue
			}

			e.logger.Error("Failed to add trigger", err, e.logFields()...)
			return false
		}
	}

	if err := e.triggers.Setup(); err != nil {
		if _, ok := err.(*trigger.ErrAlreadyStarted); !ok {
			e.logger.Error("Failed to set up triggers", err, e.logFields()...)
			return false
		}
	}

	return true
}

// Returns trigger callback performing configured action.
func (e *engine) triggerCallback(action string) providers.TriggerCallback {
	return func(id string, data map[string]interface{}) error {
		switch action {
		case effect.ActionStart:
			e.Start()
		case effect.ActionStop:
			// Stop waits for trigger callbacks, so it can't be invoked synchronously.
			go e.Stop()
		case effect.ActionRunOnce:
			ctx, cancel := context.WithTimeout(context.Background(), runOnceTimeout)
			defer cancel()
			return e.RunOnce(ctx)
		default:
			if t, ok := e.effect.(effect.ITriggerable); ok {
				t.OnTrigger(id, data)
			}
		}

		return nil
	}
}

// Creates reactive input sources.
func (e *engine) openInputs() {
	e.Lock()
	defer e.Unlock()
	e.openInputsLocked()
}

// Creates reactive input sources, expects lock to be held.
func (e *engine) openInputsLocked() {
	if nil == e.sources || len(e.inputs) > 0 {
		return
	}

	for _, v := range e.settings.ReactiveInputs {
		src, err := e.sources.NewSource(v, "")
		if err != nil {
			e.logger.Error("Failed to create reactive input", err, append(e.logFields(),
				common.LogEntityToken, v)...)
			continue
		}

		e.inputs = append(e.inputs, src)
	}
}

// Stops reactive input sources, expects lock to be held.
func (e *engine) closeInputsLocked() {
	for _, v := range e.inputs {
		v.Stop()
	}

	e.inputs = make([]effect.IValueSource, 0)
}

// Returns common log fields.
func (e *engine) logFields() []string {
	return []string{common.LogSystemToken, logSystem, common.LogEffectToken, e.settings.Name,
		common.LogEffectTypeToken, e.settings.Type}
}
