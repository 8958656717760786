package effects

import (
	"context"
	"math"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/systems/mapper"
)

// RainbowWaveSettings has rainbow wave effect parameters.
type RainbowWaveSettings struct {
	StateSettings  `yaml:",inline"`
	WaveSpeed      float64 `yaml:"wave_speed" json:"wave_speed" validate:"min=1,max=100"`
	WaveLength     int     `yaml:"wave_length" json:"wave_length" validate:"min=10,max=500"`
	UpdateInterval float64 `yaml:"update_interval" json:"update_interval" validate:"min=0.01,max=1"`
	StateControls  string  `yaml:"state_controls" json:"state_controls" validate:"oneof=speed wavelength both"`
}

// RainbowWave moves a full saturation rainbow along the strip.
type RainbowWave struct {
	base
	Settings *RainbowWaveSettings
	offset   float64
}

// NewRainbowWave creates rainbow wave effect.
func NewRainbowWave() effect.IEffect {
	return &RainbowWave{
		Settings: &RainbowWaveSettings{
			StateSettings:  newStateSettings(),
			WaveSpeed:      1.0,
			WaveLength:     60,
			UpdateInterval: 0.03,
			StateControls:  controlSpeed,
		},
	}
}

// Init decodes settings.
func (e *RainbowWave) Init(data *effect.InitDataEffect) error {
	return e.init(data, e.Settings, &e.Settings.StateSettings)
}

// Step renders rainbow and shifts hue offset.
func (e *RainbowWave) Step(ctx context.Context) (*effect.Frame, error) {
	e.Lock()
	defer e.Unlock()

	s := e.Settings
	speed := s.WaveSpeed
	length := s.WaveLength

	if v, ok := e.stateValue(); ok {
		if controls(s.StateControls, controlSpeed) {
			speed = mapValue(v, 1, 100)
		}

		if controls(s.StateControls, controlWavelength) {
			length = int(mapValue(v, 10, 200))
		}
	}

	n := e.count()
	colors := make([]common.Color, n)
	for ii := 0; ii < n; ii++ {
		colors[ii] = mapper.HSVToRGB(Hue(ii, length, e.offset), 1, 1)
	}

	e.offset = math.Mod(e.offset+speed/100, 1)

	return &effect.Frame{
		Colors: colors,
		Delay:  seconds(s.UpdateInterval),
	}, nil
}

// Hue returns 0-1 hue of the LED.
func Hue(index int, wavelength int, offset float64) float64 {
	return math.Mod(float64(index)/float64(wavelength)+offset, 1)
}

// GetSpec returns effect description.
func (e *RainbowWave) GetSpec() *effect.Spec {
	return &effect.Spec{
		Name:        "rainbow_wave",
		Description: "Rainbow wave effect that moves along the LED strip",
		Schema: effect.BaseSchema().
			Extend(map[string]*effect.Property{
				"wave_speed":      effect.Number("Hue shift per step, percents of the color wheel", 1.0, 100.0, 1.0),
				"wave_length":     effect.Integer("Number of LEDs in a full rainbow", 10, 500, 60),
				"update_interval": effect.Number("Seconds between steps", 0.01, 1.0, 0.03),
			}).
			Extend(stateProperties(controlSpeed, controlSpeed, controlWavelength, controlBoth)),
	}
}

// Unload stops state source.
func (e *RainbowWave) Unload() {
	e.Lock()
	defer e.Unlock()
	e.unload()
}
