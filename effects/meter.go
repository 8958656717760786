package effects

import (
	"context"
	"math"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/systems/mapper"
)

// Meter fill modes.
const (
	fillBottomUp      = "bottom_up"
	fillCenterOut     = "center_out"
	fillBidirectional = "bidirectional"
)

const (
	// Peak marker falls by this many percents every step.
	peakDecay = 0.5
)

// MeterSettings has meter effect parameters.
type MeterSettings struct {
	StateSettings    `yaml:",inline"`
	FillMode         string       `yaml:"fill_mode" json:"fill_mode" validate:"oneof=bottom_up center_out bidirectional"`
	DefaultLevel     float64      `yaml:"default_level" json:"default_level" validate:"percent"`
	ColorLow         common.Color `yaml:"color_low" json:"color_low"`
	ColorMedium      common.Color `yaml:"color_medium" json:"color_medium"`
	ColorHigh        common.Color `yaml:"color_high" json:"color_high"`
	ThresholdMedium  float64      `yaml:"threshold_medium" json:"threshold_medium" validate:"percent"`
	ThresholdHigh    float64      `yaml:"threshold_high" json:"threshold_high" validate:"percent,gtefield=ThresholdMedium"`
	InterpolateBands bool         `yaml:"interpolate_bands" json:"interpolate_bands"`
	ShowPeak         bool         `yaml:"show_peak" json:"show_peak"`
	BackgroundColor  common.Color `yaml:"background_color" json:"background_color"`
}

// Meter renders a level gauge with colored threshold bands.
type Meter struct {
	base
	Settings *MeterSettings
	smoother *mapper.ValueSmoother
	level    float64
	peak     float64
}

// NewMeter creates meter effect.
func NewMeter() effect.IEffect {
	return &Meter{
		Settings: &MeterSettings{
			StateSettings:   newStateSettings(),
			FillMode:        fillBottomUp,
			DefaultLevel:    50,
			ColorLow:        common.NewColor(0, 255, 0),
			ColorMedium:     common.NewColor(255, 255, 0),
			ColorHigh:       common.NewColor(255, 0, 0),
			ThresholdMedium: 50,
			ThresholdHigh:   80,
			BackgroundColor: common.NewColor(10, 10, 10),
		},
		smoother: mapper.NewValueSmoother(effect.SmoothingAlpha),
	}
}

// Init decodes settings.
func (e *Meter) Init(data *effect.InitDataEffect) error {
	if err := e.init(data, e.Settings, &e.Settings.StateSettings); err != nil {
		return err
	}

	e.level = e.Settings.DefaultLevel
	return nil
}

// Step renders the gauge for the current level.
func (e *Meter) Step(ctx context.Context) (*effect.Frame, error) {
	e.Lock()
	defer e.Unlock()

	s := e.Settings
	target := s.DefaultLevel
	if v, ok := e.stateValue(); ok {
		target = v * 100
	}

	e.level = e.smoother.Smooth(target)

	if s.ShowPeak {
		e.peak = math.Max(e.peak-peakDecay, e.level)
	}

	n := e.count()
	lit := int(math.Round(e.level / 100 * float64(n)))
	colors := e.render(n, lit)

	if s.ShowPeak && e.peak > 0 {
		idx := int(e.peak / 100 * float64(n))
		if idx >= n {
			idx = n - 1
		}
		colors[idx] = common.White
	}

	return &effect.Frame{
		Colors: colors,
		Color:  e.bandColor(e.level),
		Delay:  defaultTick,
	}, nil
}

// Renders lit LEDs according to fill mode.
func (e *Meter) render(n int, lit int) []common.Color {
	s := e.Settings
	colors := fill(n, s.BackgroundColor)
	if lit <= 0 {
		return colors
	}

	center := n / 2
	half := lit / 2

	for ii := 0; ii < n; ii++ {
		switch s.FillMode {
		case fillCenterOut:
			dist := ii - center
			if dist < 0 {
				dist = -dist
			}

			if dist <= half {
				colors[ii] = e.bandColor(e.spread(dist, center))
			}
		case fillBidirectional:
			dist := ii - center
			if ii < center {
				dist = center - ii
			}

			if dist <= half {
				colors[ii] = e.bandColor(e.edge(dist, center))
			}
		default:
			if ii < lit {
				colors[ii] = e.bandColor(float64(ii+1) / float64(n) * 100)
			}
		}
	}

	return colors
}

// Returns level of the LED located dist LEDs away from the center.
func (e *Meter) spread(dist int, center int) float64 {
	if 0 == center {
		return e.level
	}

	return (1 - float64(dist)/float64(center)) * e.level
}

// Returns level of the LED located dist LEDs away from the center,
// growing towards the edges.
func (e *Meter) edge(dist int, center int) float64 {
	if 0 == center {
		return e.level
	}

	return float64(dist) / float64(center) * e.level
}

// Returns band color of the level.
// Medium band is solid unless band interpolation is enabled,
// in which case it fades from medium to high color.
func (e *Meter) bandColor(level float64) common.Color {
	s := e.Settings
	switch {
	case level < s.ThresholdMedium:
		return s.ColorLow
	case level < s.ThresholdHigh:
		if !s.InterpolateBands {
			return s.ColorMedium
		}

		t := mapper.Normalize(level, s.ThresholdMedium, s.ThresholdHigh)
		return mapper.InterpolateColor(s.ColorMedium, s.ColorHigh, t)
	}

	return s.ColorHigh
}

// GetSpec returns effect description.
func (e *Meter) GetSpec() *effect.Spec {
	return &effect.Spec{
		Name:        "meter",
		Description: "Meter/gauge effect for visualizing levels and percentages",
		Schema: effect.BaseSchema().
			Extend(map[string]*effect.Property{
				"fill_mode": effect.String("How the meter fills", fillBottomUp,
					fillBottomUp, fillCenterOut, fillBidirectional),
				"default_level":     effect.Number("Default level when no state (0-100)", 0.0, 100.0, 50.0),
				"color_low":         effect.Color("Color for low values", "0,255,0"),
				"color_medium":      effect.Color("Color for medium values", "255,255,0"),
				"color_high":        effect.Color("Color for high values", "255,0,0"),
				"threshold_medium":  effect.Number("Threshold for medium color (0-100)", 0.0, 100.0, 50.0),
				"threshold_high":    effect.Number("Threshold for high color (0-100)", 0.0, 100.0, 80.0),
				"interpolate_bands": effect.Bool("Fade medium band towards high color", false),
				"show_peak":         effect.Bool("Show peak level indicator", false),
				"background_color":  effect.Color("Background color for unfilled area", "10,10,10"),
			}).
			Extend(stateProperties("")),
	}
}

// Unload stops state source.
func (e *Meter) Unload() {
	e.Lock()
	defer e.Unlock()
	e.unload()
}
