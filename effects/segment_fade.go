package effects

import (
	"context"
	"math"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/systems/mapper"
)

// Segment fade patterns.
const (
	fadeNone        = "none"
	fadeGradient    = "gradient"
	fadeTraveling   = "traveling"
	fadeWave        = "wave"
	fadeAlternating = "alternating"
)

// SegmentFadeSettings has segment fade effect parameters.
type SegmentFadeSettings struct {
	StateSettings   `yaml:",inline"`
	Color1          common.Color `yaml:"color1" json:"color1"`
	Color2          common.Color `yaml:"color2" json:"color2"`
	TransitionSpeed float64      `yaml:"transition_speed" json:"transition_speed" validate:"min=0.5,max=10"`
	Steps           int          `yaml:"steps" json:"steps" validate:"min=10,max=200"`
	PatternMode     string       `yaml:"pattern_mode" json:"pattern_mode" validate:"oneof=none gradient traveling wave alternating"`
	StateControls   string       `yaml:"state_controls" json:"state_controls" validate:"oneof=speed position"`
}

// SegmentFade morphs between two colors, either globally or as a spatial pattern.
type SegmentFade struct {
	base
	Settings  *SegmentFadeSettings
	step      int
	direction int
}

// NewSegmentFade creates segment fade effect.
func NewSegmentFade() effect.IEffect {
	return &SegmentFade{
		Settings: &SegmentFadeSettings{
			StateSettings:   newStateSettings(),
			Color1:          common.NewColor(255, 0, 0),
			Color2:          common.NewColor(0, 0, 255),
			TransitionSpeed: 2.0,
			Steps:           50,
			PatternMode:     fadeGradient,
			StateControls:   controlSpeed,
		},
		direction: 1,
	}
}

// Init decodes settings.
func (e *SegmentFade) Init(data *effect.InitDataEffect) error {
	return e.init(data, e.Settings, &e.Settings.StateSettings)
}

// Step renders colors for the current position and moves it back and forth.
func (e *SegmentFade) Step(ctx context.Context) (*effect.Frame, error) {
	e.Lock()
	defer e.Unlock()

	s := e.Settings
	multiplier := 1.0
	var position float64

	v, ok := e.stateValue()
	if ok && controlPosition == s.StateControls {
		position = v
	} else {
		position = float64(e.step) / float64(s.Steps)
		e.advance()

		if ok {
			multiplier = mapValue(v, 0.1, 10)
		}
	}

	delay := time.Duration(s.TransitionSpeed / float64(s.Steps) / multiplier * float64(time.Second))
	return &effect.Frame{
		Colors: e.pattern(position),
		Color:  mapper.InterpolateColor(s.Color1, s.Color2, position),
		Delay:  delay,
	}, nil
}

// Moves position in ping-pong manner between 0 and steps.
func (e *SegmentFade) advance() {
	e.step += e.direction
	switch {
	case e.step >= e.Settings.Steps:
		e.step = e.Settings.Steps
		e.direction = -1
	case e.step <= 0:
		e.step = 0
		e.direction = 1
	}
}

// Renders spatial pattern, nil means segment-only frame.
func (e *SegmentFade) pattern(position float64) []common.Color {
	s := e.Settings
	if fadeNone == s.PatternMode {
		return nil
	}

	n := e.count()
	colors := make([]common.Color, n)
	block := n / 8
	if block < 1 {
		block = 1
	}

	for ii := 0; ii < n; ii++ {
		pos := float64(ii) / float64(n)
		switch s.PatternMode {
		case fadeGradient:
			ledPos := 0.0
			if n > 1 {
				ledPos = float64(ii) / float64(n-1)
			}
			target := s.Color1
			if ledPos < 0.5 {
				target = s.Color2
			}
			baseColor := mapper.InterpolateColor(s.Color1, s.Color2, ledPos)
			colors[ii] = mapper.InterpolateColor(baseColor, target, position)
		case fadeTraveling:
			colors[ii] = mapper.InterpolateColor(s.Color1, s.Color2, math.Mod(pos+position, 1))
		case fadeWave:
			wave := (math.Sin((pos+position)*2*math.Pi) + 1) / 2
			colors[ii] = mapper.InterpolateColor(s.Color1, s.Color2, wave)
		case fadeAlternating:
			if 0 == (ii/block+int(position*16))%2 {
				colors[ii] = s.Color1
			} else {
				colors[ii] = s.Color2
			}
		}
	}

	return colors
}

// GetSpec returns effect description.
func (e *SegmentFade) GetSpec() *effect.Spec {
	return &effect.Spec{
		Name:        "segment_fade",
		Description: "Gradient wave effect with per-LED color transitions",
		Schema: effect.BaseSchema().
			Extend(map[string]*effect.Property{
				"color1":           effect.Color("First color", "255,0,0"),
				"color2":           effect.Color("Second color", "0,0,255"),
				"transition_speed": effect.Number("Seconds of a single transition", 0.5, 10.0, 2.0),
				"steps":            effect.Integer("Number of transition steps", 10, 200, 50),
				"pattern_mode": effect.String("Spatial pattern", fadeGradient,
					fadeNone, fadeGradient, fadeTraveling, fadeWave, fadeAlternating),
			}).
			Extend(stateProperties(controlSpeed, controlSpeed, controlPosition)),
	}
}

// Unload stops state source.
func (e *SegmentFade) Unload() {
	e.Lock()
	defer e.Unlock()
	e.unload()
}
