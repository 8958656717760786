package effects

import (
	"context"
	"math"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/device"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/systems/mapper"
)

// Easing functions.
const (
	easingSine      = "sine"
	easingLinear    = "linear"
	easingEaseInOut = "ease_in_out"
)

// Breathe wave patterns.
const (
	waveNone      = "none"
	waveTraveling = "traveling"
	waveRipple    = "ripple"
	waveGradient  = "gradient"
	waveCenterOut = "center_out"
)

// BreatheSettings has breathe effect parameters.
type BreatheSettings struct {
	StateSettings `yaml:",inline"`
	Color         common.Color `yaml:"color" json:"color"`
	PulseRate     float64      `yaml:"pulse_rate" json:"pulse_rate" validate:"min=0.1,max=10"`
	MinBrightness int          `yaml:"min_brightness" json:"min_brightness" validate:"min=0,max=255"`
	MaxBrightness int          `yaml:"max_brightness" json:"max_brightness" validate:"min=0,max=255,gtefield=MinBrightness"`
	Easing        string       `yaml:"easing" json:"easing" validate:"oneof=sine linear ease_in_out"`
	WavePattern   string       `yaml:"wave_pattern" json:"wave_pattern" validate:"oneof=none traveling ripple gradient center_out"`
	StateControls string       `yaml:"state_controls" json:"state_controls" validate:"oneof=rate intensity both"`
}

// Breathe pulses brightness with an easing curve, optionally as a wave along the strip.
type Breathe struct {
	base
	Settings *BreatheSettings
	phase    float64
}

// NewBreathe creates breathe effect.
func NewBreathe() effect.IEffect {
	return &Breathe{
		Settings: &BreatheSettings{
			StateSettings: newStateSettings(),
			Color:         common.NewColor(0, 100, 255),
			PulseRate:     1.0,
			MinBrightness: 10,
			MaxBrightness: 255,
			Easing:        easingSine,
			WavePattern:   waveTraveling,
			StateControls: controlRate,
		},
	}
}

// Init decodes settings.
func (e *Breathe) Init(data *effect.InitDataEffect) error {
	return e.init(data, e.Settings, &e.Settings.StateSettings)
}

// Step renders a single breath frame.
func (e *Breathe) Step(ctx context.Context) (*effect.Frame, error) {
	e.Lock()
	defer e.Unlock()

	s := e.Settings
	rate := s.PulseRate
	minBri := float64(s.MinBrightness)
	maxBri := float64(s.MaxBrightness)

	if v, ok := e.stateValue(); ok {
		if controls(s.StateControls, controlRate) {
			rate = mapValue(v, 0.1, 10)
		}

		if controls(s.StateControls, controlIntensity) {
			maxBri = mapValue(v, 50, 255)
		}
	}

	eased := Ease(e.phase, s.Easing)
	bri := int(minBri + (maxBri-minBri)*eased)

	frame := &effect.Frame{
		Color: s.Color,
		Delay: defaultTick,
		Fallback: &device.SegmentRequest{
			On:         device.Bool(true),
			Brightness: device.Int(bri),
			Colors:     [][]int{s.Color.Slice()},
		},
	}

	if waveNone == s.WavePattern {
		frame.Brightness = effect.Bri(bri)
	} else {
		n := e.count()
		frame.Colors = make([]common.Color, n)
		for ii := 0; ii < n; ii++ {
			x := e.wave(ii, n, eased)
			ledBri := int(minBri + (maxBri-minBri)*x)
			frame.Colors[ii] = mapper.ScaleColor(s.Color, float64(ledBri)/255)
		}
	}

	e.phase = math.Mod(e.phase+rate*phaseStep, 1)
	return frame, nil
}

// Returns brightness position of the LED.
func (e *Breathe) wave(index int, count int, eased float64) float64 {
	pos := float64(index) / float64(count)
	center := float64(count) / 2
	dist := 0.0
	if center > 0 {
		dist = math.Abs(float64(index)-center) / center
	}

	switch e.Settings.WavePattern {
	case waveTraveling:
		return Ease(math.Mod(pos+e.phase, 1), e.Settings.Easing)
	case waveRipple:
		return Ease(math.Mod(dist+e.phase, 1), e.Settings.Easing)
	case waveGradient:
		return math.Mod(pos+e.phase*0.5, 1) * eased
	case waveCenterOut:
		return eased * (1 - dist*0.5)
	}

	return eased
}

// GetSpec returns effect description.
func (e *Breathe) GetSpec() *effect.Spec {
	return &effect.Spec{
		Name:        "breathe",
		Description: "Breathing effect with smooth brightness pulsing and wave patterns",
		Schema: effect.BaseSchema().
			Extend(map[string]*effect.Property{
				"color":          effect.Color("Breathing color", "0,100,255"),
				"pulse_rate":     effect.Number("Breathing rate in cycles per second", 0.1, 10.0, 1.0),
				"min_brightness": effect.Integer("Minimum brightness (0-255)", 0, 255, 10),
				"max_brightness": effect.Integer("Maximum brightness (0-255)", 0, 255, 255),
				"easing": effect.String("Easing function for breathing pattern", easingSine,
					easingSine, easingLinear, easingEaseInOut),
				"wave_pattern": effect.String("Wave pattern mode for per-LED control", waveTraveling,
					waveNone, waveTraveling, waveRipple, waveGradient, waveCenterOut),
			}).
			Extend(stateProperties(controlRate, controlRate, controlIntensity, controlBoth)),
	}
}

// Unload stops state source.
func (e *Breathe) Unload() {
	e.Lock()
	defer e.Unlock()
	e.unload()
}

// Ease applies easing function to 0-1 cycle position.
// Every function starts and ends at 0 and peaks at the middle of the cycle.
func Ease(t float64, easing string) float64 {
	switch easing {
	case easingLinear:
		return 1 - math.Abs(2*t-1)
	case easingEaseInOut:
		return (math.Cos((2*t-1)*math.Pi) + 1) / 2
	}

	return (math.Sin(2*math.Pi*t-math.Pi/2) + 1) / 2
}
