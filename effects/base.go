// Package effects contains concrete render strategies and the effect table.
package effects

import (
	"math/rand"
	"sync"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/systems/mapper"
	"gopkg.in/yaml.v2"
)

const (
	logSystem = "effects"

	// Default tick of most effects.
	defaultTick = 50 * time.Millisecond
	// Phase advance per default tick.
	phaseStep = 0.05
)

// State control targets.
const (
	controlRate       = "rate"
	controlIntensity  = "intensity"
	controlSpeed      = "speed"
	controlLength     = "length"
	controlDirection  = "direction"
	controlDensity    = "density"
	controlPosition   = "position"
	controlBarSize    = "bar_size"
	controlWavelength = "wavelength"
	controlBoth       = "both"
)

// StateSettings defines optional entity which drives effect parameters.
type StateSettings struct {
	StateEntity    string  `yaml:"state_entity" json:"state_entity"`
	StateAttribute string  `yaml:"state_attribute" json:"state_attribute"`
	StateMin       float64 `yaml:"state_min" json:"state_min"`
	StateMax       float64 `yaml:"state_max" json:"state_max"`
}

// Returns state settings with 0-100 range.
func newStateSettings() StateSettings {
	return StateSettings{
		StateMin: 0,
		StateMax: 100,
	}
}

// Shared part of all effects.
type base struct {
	sync.Mutex
	logger   common.ILoggerProvider
	pipeline effect.IPipeline
	rnd      *rand.Rand
	now      func() time.Time
	ledRange effect.LEDRange
	state    *StateSettings
	source   effect.IValueSource
}

// Decodes effect settings and opens state source.
// Settings object must be populated with default values.
func (b *base) init(data *effect.InitDataEffect, settings interface{}, state *StateSettings) error {
	if nil == data {
		return &common.ErrConfiguration{Message: "init data is empty"}
	}

	b.logger = data.Logger
	b.pipeline = data.Pipeline
	b.ledRange = data.Range
	b.state = state

	b.rnd = data.Random
	if nil == b.rnd {
		b.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	b.now = data.Now
	if nil == b.now {
		b.now = time.Now
	}

	if len(data.RawConfig) > 0 {
		if err := yaml.Unmarshal(data.RawConfig, settings); err != nil {
			return &common.ErrConfiguration{Message: "failed to parse effect settings: " + err.Error()}
		}
	}

	if nil != data.Validator && !data.Validator.Validate(settings) {
		return &common.ErrConfiguration{Message: "effect settings are invalid"}
	}

	if b.ledRange.Count() <= 0 {
		return &common.ErrConfiguration{Message: "LED range is empty"}
	}

	if nil == state || "" == state.StateEntity {
		return nil
	}

	if nil == data.Sources {
		return &common.ErrStateSource{Entity: state.StateEntity, Message: "state sources are not available"}
	}

	src, err := data.Sources.NewSource(state.StateEntity, state.StateAttribute)
	if err != nil {
		return &common.ErrStateSource{Entity: state.StateEntity, Message: err.Error()}
	}

	b.source = src
	return nil
}

// Returns number of LEDs effect renders.
func (b *base) count() int {
	return b.ledRange.Count()
}

// Returns normalized 0-1 state value, smoothed by the engine pipeline.
// Blended reactive inputs are used if state entity is not configured.
func (b *base) stateValue() (float64, bool) {
	min, max := 0.0, 100.0
	if nil != b.state {
		min, max = b.state.StateMin, b.state.StateMax
	}

	var normalized float64
	switch {
	case nil != b.source:
		normalized = mapper.Normalize(b.source.NumericValue(min, max), min, max)
	case nil != b.pipeline:
		v, ok := b.pipeline.Input()
		if !ok {
			return 0, false
		}
		normalized = mapper.Normalize(v, min, max)
	default:
		return 0, false
	}

	if nil != b.pipeline {
		normalized = b.pipeline.Map(normalized, 0, 1, 0, 1)
	}

	return normalized, true
}

// Rescales normalized value into output range.
func mapValue(value, outMin, outMax float64) float64 {
	return mapper.Map(value, 0, 1, outMin, outMax, mapper.Linear, true)
}

// Stops state source.
func (b *base) unload() {
	if nil != b.source {
		b.source.Stop()
		b.source = nil
	}
}

// Checks whether control target is enabled.
func controls(configured string, target string) bool {
	return configured == target || (controlBoth == configured && controlDirection != target)
}

// Converts seconds into duration.
func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// Returns slice of n colors filled with a single one.
func fill(n int, c common.Color) []common.Color {
	res := make([]common.Color, n)
	for ii := range res {
		res[ii] = c
	}

	return res
}

// Returns schema properties of the state entity control.
func stateProperties(def string, targets ...string) map[string]*effect.Property {
	props := map[string]*effect.Property{
		"state_entity":    effect.String("Optional: Entity ID to control effect parameters", nil),
		"state_attribute": effect.String("Optional: Attribute to monitor", nil),
		"state_min":       effect.Number("Minimum state value", nil, nil, 0.0),
		"state_max":       effect.Number("Maximum state value", nil, nil, 100.0),
	}

	if len(targets) > 0 {
		props["state_controls"] = effect.String("What parameter state controls", def, targets...)
	}

	return props
}
