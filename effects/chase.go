package effects

import (
	"context"
	"math"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/systems/mapper"
)

// ChaseSettings has chase effect parameters.
type ChaseSettings struct {
	StateSettings   `yaml:",inline"`
	ChaseColor      common.Color `yaml:"chase_color" json:"chase_color"`
	BackgroundColor common.Color `yaml:"background_color" json:"background_color"`
	ChaseLength     int          `yaml:"chase_length" json:"chase_length" validate:"min=1,max=50"`
	Speed           float64      `yaml:"speed" json:"speed" validate:"min=0.001,max=1"`
	FadeTail        bool         `yaml:"fade_tail" json:"fade_tail"`
	Bounce          bool         `yaml:"bounce" json:"bounce"`
	ScanMode        bool         `yaml:"scan_mode" json:"scan_mode"`
	StateControls   string       `yaml:"state_controls" json:"state_controls" validate:"oneof=speed direction length both"`
}

// Chase moves a block of light along the strip, scanner style when scan mode is on.
type Chase struct {
	base
	Settings  *ChaseSettings
	position  int
	direction int
}

// NewChase creates chase effect.
func NewChase() effect.IEffect {
	return &Chase{
		Settings: &ChaseSettings{
			StateSettings:   newStateSettings(),
			ChaseColor:      common.NewColor(255, 100, 0),
			BackgroundColor: common.Black,
			ChaseLength:     5,
			Speed:           0.05,
			FadeTail:        true,
			Bounce:          true,
			StateControls:   controlSpeed,
		},
		direction: 1,
	}
}

// Init decodes settings.
func (e *Chase) Init(data *effect.InitDataEffect) error {
	return e.init(data, e.Settings, &e.Settings.StateSettings)
}

// Step renders chase and moves it by a single LED.
func (e *Chase) Step(ctx context.Context) (*effect.Frame, error) {
	e.Lock()
	defer e.Unlock()

	s := e.Settings
	speed := s.Speed
	length := s.ChaseLength

	if v, ok := e.stateValue(); ok {
		if controls(s.StateControls, controlSpeed) {
			speed = mapValue(v, 0.001, 0.5)
		}

		if controls(s.StateControls, controlLength) {
			length = int(mapValue(v, 1, 20))
		}

		if controlDirection == s.StateControls {
			if v >= 0.5 {
				e.direction = 1
			} else {
				e.direction = -1
			}
		}
	}

	if length < 1 {
		length = 1
	}

	n := e.count()
	colors := make([]common.Color, n)
	for ii := 0; ii < n; ii++ {
		var offset int
		switch {
		case s.ScanMode:
			offset = int(math.Abs(float64(ii - e.position)))
		case e.direction > 0:
			offset = ii - e.position
		default:
			offset = e.position - ii
		}

		colors[ii] = e.color(offset, length)
	}

	e.advance(n)

	return &effect.Frame{
		Colors: colors,
		Color:  s.ChaseColor,
		Delay:  seconds(speed),
	}, nil
}

// Returns color of LED at the offset from the chase head.
func (e *Chase) color(offset int, length int) common.Color {
	if offset < 0 || offset >= length {
		return e.Settings.BackgroundColor
	}

	if !e.Settings.FadeTail {
		return e.Settings.ChaseColor
	}

	fade := 1 - float64(offset)/float64(length)
	return mapper.InterpolateColor(e.Settings.BackgroundColor, e.Settings.ChaseColor, fade)
}

// Moves chase head, bouncing or wrapping at the ends.
func (e *Chase) advance(n int) {
	e.position += e.direction

	if e.Settings.Bounce {
		switch {
		case e.position >= n-1:
			e.position = n - 1
			e.direction = -1
		case e.position <= 0:
			e.position = 0
			e.direction = 1
		}
		return
	}

	switch {
	case e.position >= n:
		e.position = 0
	case e.position < 0:
		e.position = n - 1
	}
}

// GetSpec returns effect description.
func (e *Chase) GetSpec() *effect.Spec {
	return &effect.Spec{
		Name:        "chase",
		Description: "Chase/scanner effect with moving light pattern",
		Schema: effect.BaseSchema().
			Extend(map[string]*effect.Property{
				"chase_color":      effect.Color("Chase color", "255,100,0"),
				"background_color": effect.Color("Background color", "0,0,0"),
				"chase_length":     effect.Integer("Length of chase in LEDs", 1, 50, 5),
				"speed":            effect.Number("Movement speed (delay between steps)", 0.001, 1.0, 0.05),
				"fade_tail":        effect.Bool("Fade the tail of the chase", true),
				"bounce":           effect.Bool("Bounce at ends (vs wrap around)", true),
				"scan_mode":        effect.Bool("Scanner mode (Cylon/KITT style)", false),
			}).
			Extend(stateProperties(controlSpeed, controlSpeed, controlDirection, controlLength, controlBoth)),
	}
}

// Unload stops state source.
func (e *Chase) Unload() {
	e.Lock()
	defer e.Unlock()
	e.unload()
}
