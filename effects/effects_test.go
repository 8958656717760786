package effects

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/go-home-io/wled-effects/mocks"
	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/plugins/helpers"
	"github.com/go-home-io/wled-effects/systems/mapper"
	"github.com/go-home-io/wled-effects/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fake value source.
type fakeSource struct {
	sync.Mutex
	value   interface{}
	stopped bool
}

func (s *fakeSource) Value() interface{} {
	s.Lock()
	defer s.Unlock()
	return s.value
}

func (s *fakeSource) NumericValue(min, max float64) float64 {
	f, ok := helpers.ToFloat(s.Value())
	if !ok {
		return min
	}

	return helpers.ClampFloat(f, min, max)
}

func (s *fakeSource) Normalized(min, max float64) float64 {
	return mapper.Normalize(s.NumericValue(min, max), min, max)
}

func (s *fakeSource) Stop() {
	s.Lock()
	defer s.Unlock()
	s.stopped = true
}

func (s *fakeSource) set(v interface{}) {
	s.Lock()
	defer s.Unlock()
	s.value = v
}

// Fake source factory.
type fakeSources map[string]*fakeSource

func (f fakeSources) NewSource(entity string, attribute string) (effect.IValueSource, error) {
	s, ok := f[entity]
	if !ok {
		return nil, errors.New("unknown entity")
	}

	return s, nil
}

// Fake pipeline without smoothing.
type fakePipeline struct {
	input float64
	ok    bool
}

func (p *fakePipeline) Map(value, inMin, inMax, outMin, outMax float64) float64 {
	return mapper.Map(value, inMin, inMax, outMin, outMax, mapper.Linear, true)
}

func (p *fakePipeline) Input() (float64, bool) {
	return p.input, p.ok
}

func (p *fakePipeline) Zone(index int) (int, int) {
	return 0, 0
}

// Fake clock.
type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

// Test environment of a single effect.
type env struct {
	sources  fakeSources
	pipeline *fakePipeline
	clock    *clock
	leds     int
}

func newEnv(leds int) *env {
	return &env{
		sources:  fakeSources{},
		pipeline: &fakePipeline{},
		clock:    &clock{now: time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)},
		leds:     leds,
	}
}

// Initializes effect with yaml config.
func (v *env) init(fx effect.IEffect, config string) error {
	logger := mocks.FakeNewLogger(nil)
	return fx.Init(&effect.InitDataEffect{
		Logger:    logger,
		Validator: utils.NewValidator(logger),
		Sources:   v.sources,
		Pipeline:  v.pipeline,
		Base:      effect.NewBaseSettings(),
		Range:     effect.LEDRange{Start: 0, Stop: v.leds - 1},
		RawConfig: []byte(config),
		Random:    rand.New(rand.NewSource(42)),
		Now:       v.clock.Now,
	})
}

// Initializes effect and fails the test on error.
func (v *env) mustInit(t *testing.T, fx effect.IEffect, config string) {
	require.NoError(t, v.init(fx, config))
}

// Renders a single frame.
func step(t *testing.T, fx effect.IEffect) *effect.Frame {
	frame, err := fx.Step(context.Background())
	require.NoError(t, err)
	require.NotNil(t, frame)
	return frame
}

// Returns indexes of LEDs which aren't of the background color.
func lit(colors []common.Color, bg common.Color) []int {
	res := make([]int, 0)
	for ii, v := range colors {
		if v != bg {
			res = append(res, ii)
		}
	}

	return res
}

// Tests that every built-in effect renders with default settings.
func TestDefaults(t *testing.T) {
	r := NewRegistry(mocks.FakeNewLogger(nil))
	for _, name := range r.List() {
		fx, err := r.Create(name)
		require.NoError(t, err, name)

		v := newEnv(20)
		v.sources["sensor.value"] = &fakeSource{value: 40}
		v.mustInit(t, fx, "state_entity: sensor.value")

		for ii := 0; ii < 5; ii++ {
			frame := step(t, fx)
			assert.True(t, frame.Delay > 0, name)
			if len(frame.Colors) > 0 {
				assert.Equal(t, 20, len(frame.Colors), name)
			}
		}

		fx.Unload()
		assert.True(t, v.sources["sensor.value"].stopped, name)
	}
}

// Tests invalid effect settings.
func TestInvalidSettings(t *testing.T) {
	data := []struct {
		fx     effect.IEffect
		config string
	}{
		{NewBreathe(), "easing: bogus"},
		{NewBreathe(), "min_brightness: 200\nmax_brightness: 100"},
		{NewBreathe(), "pulse_rate: 20"},
		{NewChase(), "chase_length: 0"},
		{NewChase(), "state_controls: rate"},
		{NewSparkle(), "density: 2"},
		{NewMeter(), "fill_mode: top_down"},
		{NewMeter(), "threshold_medium: 90\nthreshold_high: 80"},
		{NewAlert(), "severity: panic"},
		{NewAlert(), "color: purple"},
		{NewSegmentFade(), "steps: 5"},
		{NewLoading(), "bar_size: 100"},
		{NewRainbowWave(), "wave_length: 1"},
		{NewStateSync(), "animation_mode: fill"},
		{NewChase(), "chase_color: [1, 2]"},
		{NewChase(), "{"},
	}

	for _, v := range data {
		err := newEnv(10).init(v.fx, v.config)
		require.Error(t, err, v.config)
		_, ok := err.(*common.ErrConfiguration)
		assert.True(t, ok, v.config)
	}
}

// Tests unknown state entity.
func TestStateSourceFailure(t *testing.T) {
	err := newEnv(10).init(NewChase(), "state_entity: sensor.missing")
	require.Error(t, err)
	_, ok := err.(*common.ErrStateSource)
	assert.True(t, ok)

	err = newEnv(10).init(NewAlert(), "acknowledge_entity: input_boolean.missing")
	require.Error(t, err)
	_, ok = err.(*common.ErrStateSource)
	assert.True(t, ok)
}

// Tests empty LED range.
func TestEmptyRange(t *testing.T) {
	err := newEnv(0).init(NewSparkle(), "")
	require.Error(t, err)
	_, ok := err.(*common.ErrConfiguration)
	assert.True(t, ok)
}

// Tests blended reactive inputs used without state entity.
func TestReactiveInputs(t *testing.T) {
	v := newEnv(10)
	v.pipeline.input = 100
	v.pipeline.ok = true

	fx := NewRainbowWave().(*RainbowWave)
	v.mustInit(t, fx, "state_controls: speed")
	step(t, fx)
	assert.InDelta(t, 0.0, fx.offset, 0.0001)

	v.pipeline.input = 50
	step(t, fx)
	assert.InDelta(t, 0.505, fx.offset, 0.0001)
}

// Tests control target matching.
func TestControls(t *testing.T) {
	assert.True(t, controls(controlSpeed, controlSpeed))
	assert.False(t, controls(controlSpeed, controlLength))
	assert.True(t, controls(controlBoth, controlSpeed))
	assert.True(t, controls(controlBoth, controlLength))
	assert.False(t, controls(controlBoth, controlDirection))
}
