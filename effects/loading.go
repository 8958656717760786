package effects

import (
	"context"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/systems/mapper"
)

// LoadingSettings has loading bar effect parameters.
type LoadingSettings struct {
	StateSettings `yaml:",inline"`
	Color         common.Color `yaml:"color" json:"color"`
	BarSize       int          `yaml:"bar_size" json:"bar_size" validate:"min=1,max=50"`
	Speed         float64      `yaml:"speed" json:"speed" validate:"min=0.01,max=1"`
	TrailFade     bool         `yaml:"trail_fade" json:"trail_fade"`
	StateControls string       `yaml:"state_controls" json:"state_controls" validate:"oneof=speed position bar_size"`
}

// Loading bounces a bar with a fading trail along the strip.
type Loading struct {
	base
	Settings  *LoadingSettings
	position  int
	direction int
}

// NewLoading creates loading bar effect.
func NewLoading() effect.IEffect {
	return &Loading{
		Settings: &LoadingSettings{
			StateSettings: newStateSettings(),
			Color:         common.NewColor(0, 255, 0),
			BarSize:       5,
			Speed:         0.1,
			TrailFade:     true,
			StateControls: controlSpeed,
		},
		direction: 1,
	}
}

// Init decodes settings.
func (e *Loading) Init(data *effect.InitDataEffect) error {
	return e.init(data, e.Settings, &e.Settings.StateSettings)
}

// Step renders the bar and moves it unless position is driven by state.
func (e *Loading) Step(ctx context.Context) (*effect.Frame, error) {
	e.Lock()
	defer e.Unlock()

	s := e.Settings
	n := e.count()
	size := s.BarSize
	speed := s.Speed

	v, ok := e.stateValue()
	if ok {
		switch s.StateControls {
		case controlPosition:
			e.position = int(v * float64(n-1))
		case controlBarSize:
			size = int(mapValue(v, 1, 50))
		case controlSpeed:
			speed = mapValue(v, 0.01, 1)
		}
	}

	if size < 1 {
		size = 1
	}

	colors := make([]common.Color, n)
	for ii := 0; ii < n; ii++ {
		dist := ii - e.position
		if dist < 0 {
			dist = -dist
		}

		switch {
		case dist >= size:
			colors[ii] = common.Black
		case s.TrailFade:
			colors[ii] = mapper.ScaleColor(s.Color, 1-float64(dist)/float64(size))
		default:
			colors[ii] = s.Color
		}
	}

	if !ok || controlPosition != s.StateControls {
		e.advance(n)
	}

	return &effect.Frame{
		Colors: colors,
		Color:  s.Color,
		Delay:  seconds(speed),
	}, nil
}

// Moves bar, bouncing at the ends.
func (e *Loading) advance(n int) {
	e.position += e.direction
	switch {
	case e.position >= n-1:
		e.position = n - 1
		e.direction = -1
	case e.position <= 0:
		e.position = 0
		e.direction = 1
	}
}

// GetSpec returns effect description.
func (e *Loading) GetSpec() *effect.Spec {
	return &effect.Spec{
		Name:        "loading",
		Description: "Moving loading bar with a fading trail",
		Schema: effect.BaseSchema().
			Extend(map[string]*effect.Property{
				"color":      effect.Color("Bar color", "0,255,0"),
				"bar_size":   effect.Integer("Size of the bar in LEDs", 1, 50, 5),
				"speed":      effect.Number("Delay between steps in seconds", 0.01, 1.0, 0.1),
				"trail_fade": effect.Bool("Fade the bar edges", true),
			}).
			Extend(stateProperties(controlSpeed, controlSpeed, controlPosition, controlBarSize)),
	}
}

// Unload stops state source.
func (e *Loading) Unload() {
	e.Lock()
	defer e.Unlock()
	e.unload()
}
