// Package effect contains effect plugin definitions.
package effect

import (
	"context"
	"math/rand"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/device"
)

// IEffect defines render strategy of a single effect.
// Step is invoked sequentially by the engine and must not be called concurrently.
type IEffect interface {
	Init(*InitDataEffect) error
	Step(ctx context.Context) (*Frame, error)
	GetSpec() *Spec
	Unload()
}

// ITriggerable defines effect which reacts on trigger manager events.
// OnTrigger might be invoked concurrently with Step.
type ITriggerable interface {
	OnTrigger(triggerID string, data map[string]interface{})
}

// IValueSource defines reactive value provider.
type IValueSource interface {
	Value() interface{}
	NumericValue(min, max float64) float64
	Normalized(min, max float64) float64
	Stop()
}

// ISourceFactory creates value sources for effects.
type ISourceFactory interface {
	NewSource(entity string, attribute string) (IValueSource, error)
}

// IPipeline defines engine-side value processing shared by all effects.
type IPipeline interface {
	// Map rescales value from input into output range.
	// Result is smoothed when smooth transition mode is configured.
	Map(value, inMin, inMax, outMin, outMax float64) float64
	// Input returns raw reactive inputs values blended with configured mode.
	Input() (float64, bool)
	// Zone returns inclusive LED bounds of the zone.
	Zone(index int) (int, int)
}

// IValidator defines settings validation logic.
type IValidator interface {
	Validate(interface{}) bool
}

// InitDataEffect has data required for initializing a new effect.
type InitDataEffect struct {
	Logger    common.ILoggerProvider
	Validator IValidator
	Sources   ISourceFactory
	Pipeline  IPipeline
	Base      *BaseSettings
	Range     LEDRange
	RawConfig []byte
	Random    *rand.Rand
	Now       func() time.Time
}

// LEDRange defines inclusive range of LEDs effect renders to.
type LEDRange struct {
	Start int `json:"start"`
	Stop  int `json:"stop"`
}

// Count returns number of LEDs in the range.
func (r LEDRange) Count() int {
	return r.Stop - r.Start + 1
}

// Frame defines result of a single render step.
type Frame struct {
	// Per-LED colors. Empty slice means segment-only frame.
	Colors []common.Color
	// Representative color, used by segment commands and per-LED fallback.
	Color common.Color
	// Segment brightness override. Configured brightness is used if nil.
	Brightness *int
	// Segment command used instead of the default one when per-LED output fails.
	Fallback *device.SegmentRequest
	// Turns segment off instead of rendering.
	Off bool
	// Skips transmission.
	Skip bool
	// Asks engine to stop after this frame is sent.
	Done bool
	// Delay before the next step.
	Delay time.Duration
}

// Bri is a syntax sugar for frame brightness override.
func Bri(v int) *int {
	return &v
}

// Representative picks a frame color when effect doesn't have an explicit one.
func Representative(colors []common.Color, def common.Color) common.Color {
	if 0 == len(colors) {
		return def
	}

	return colors[0]
}

// Factory creates a new effect instance.
type Factory func() IEffect
