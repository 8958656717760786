package effects

import (
	"context"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/systems/mapper"
)

const (
	// Sparkle effect tick.
	sparkleTick = 30 * time.Millisecond
	// Sparkles dimmer than this are turned off.
	sparkleCutoff = 0.01
	// Maximum hue variation, in turns.
	sparkleHueVariation = 0.1
)

// SparkleSettings has sparkle effect parameters.
type SparkleSettings struct {
	StateSettings   `yaml:",inline"`
	SparkleColor    common.Color `yaml:"sparkle_color" json:"sparkle_color"`
	BackgroundColor common.Color `yaml:"background_color" json:"background_color"`
	Density         float64      `yaml:"density" json:"density" validate:"min=0,max=1"`
	FadeRate        float64      `yaml:"fade_rate" json:"fade_rate" validate:"min=0,max=1"`
	ColorVariation  bool         `yaml:"color_variation" json:"color_variation"`
	StateControls   string       `yaml:"state_controls" json:"state_controls" validate:"oneof=density speed both"`
}

// Sparkle lights random LEDs which fade out over time.
type Sparkle struct {
	base
	Settings   *SparkleSettings
	brightness []float64
	burst      int
}

// NewSparkle creates sparkle effect.
func NewSparkle() effect.IEffect {
	return &Sparkle{
		Settings: &SparkleSettings{
			StateSettings:   newStateSettings(),
			SparkleColor:    common.White,
			BackgroundColor: common.NewColor(0, 0, 20),
			Density:         0.1,
			FadeRate:        0.8,
			StateControls:   controlDensity,
		},
	}
}

// Init decodes settings and allocates per-LED brightness.
func (e *Sparkle) Init(data *effect.InitDataEffect) error {
	if err := e.init(data, e.Settings, &e.Settings.StateSettings); err != nil {
		return err
	}

	e.brightness = make([]float64, e.count())
	return nil
}

// Step adds new sparkles and fades the existing ones.
func (e *Sparkle) Step(ctx context.Context) (*effect.Frame, error) {
	e.Lock()
	defer e.Unlock()

	s := e.Settings
	density := s.Density
	fade := s.FadeRate

	if v, ok := e.stateValue(); ok {
		if controls(s.StateControls, controlDensity) {
			density = mapValue(v, 0.01, 1)
		}

		if controls(s.StateControls, controlSpeed) {
			fade = mapValue(v, 0.95, 0.5)
		}
	}

	n := len(e.brightness)
	add := int(float64(n) * density * 0.1)
	if 0 == add && density > 0 {
		add = 1
	}

	add += e.burst
	e.burst = 0

	for ii := 0; ii < add; ii++ {
		e.brightness[e.rnd.Intn(n)] = 1
	}

	colors := make([]common.Color, n)
	for ii := range e.brightness {
		if e.brightness[ii] > 0 {
			e.brightness[ii] *= fade
			if e.brightness[ii] < sparkleCutoff {
				e.brightness[ii] = 0
			}
		}

		if 0 == e.brightness[ii] {
			colors[ii] = s.BackgroundColor
			continue
		}

		colors[ii] = mapper.InterpolateColor(s.BackgroundColor, e.vary(s.SparkleColor), e.brightness[ii])
	}

	return &effect.Frame{
		Colors: colors,
		Color:  s.SparkleColor,
		Delay:  sparkleTick,
	}, nil
}

// OnTrigger schedules a burst of sparkles for the next step.
func (e *Sparkle) OnTrigger(triggerID string, data map[string]interface{}) {
	e.Lock()
	defer e.Unlock()

	e.burst += len(e.brightness)/4 + 1
	if nil != e.logger {
		e.logger.Debug("Sparkle burst scheduled", common.LogSystemToken, logSystem,
			common.LogTriggerToken, triggerID)
	}
}

// Applies random hue variation.
func (e *Sparkle) vary(c common.Color) common.Color {
	if !e.Settings.ColorVariation {
		return c
	}

	return mapper.ShiftHue(c, (e.rnd.Float64()*2-1)*sparkleHueVariation)
}

// GetSpec returns effect description.
func (e *Sparkle) GetSpec() *effect.Spec {
	return &effect.Spec{
		Name:        "sparkle",
		Description: "Sparkle/twinkle effect with random pixel illumination",
		Schema: effect.BaseSchema().
			Extend(map[string]*effect.Property{
				"sparkle_color":    effect.Color("Sparkle color", "255,255,255"),
				"background_color": effect.Color("Background color", "0,0,20"),
				"density":          effect.Number("Sparkle density (0.0 to 1.0)", 0.0, 1.0, 0.1),
				"fade_rate":        effect.Number("How fast sparkles fade (0.0 to 1.0)", 0.0, 1.0, 0.8),
				"color_variation":  effect.Bool("Enable random color hue variation", false),
			}).
			Extend(stateProperties(controlDensity, controlDensity, controlSpeed, controlBoth)),
	}
}

// Unload stops state source.
func (e *Sparkle) Unload() {
	e.Lock()
	defer e.Unlock()
	e.unload()
}
