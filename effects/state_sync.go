package effects

import (
	"context"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/systems/mapper"
)

// State sync animation modes.
const (
	syncFill   = "fill"
	syncCenter = "center"
	syncDual   = "dual"
	syncSolid  = "solid"
)

// StateSyncSettings has state sync effect parameters.
type StateSyncSettings struct {
	StateSettings  `yaml:",inline"`
	MinValue       float64      `yaml:"min_value" json:"min_value"`
	MaxValue       float64      `yaml:"max_value" json:"max_value" validate:"gtfield=MinValue"`
	AnimationMode  string       `yaml:"animation_mode" json:"animation_mode" validate:"oneof=fill center dual solid"`
	ColorLow       common.Color `yaml:"color_low" json:"color_low"`
	ColorHigh      common.Color `yaml:"color_high" json:"color_high"`
	UpdateInterval float64      `yaml:"update_interval" json:"update_interval" validate:"min=0.1,max=5"`
}

// StateSync shows entity value as lit LEDs colored between low and high colors.
type StateSync struct {
	base
	Settings *StateSyncSettings
	smoother *mapper.ValueSmoother
}

// NewStateSync creates state sync effect.
func NewStateSync() effect.IEffect {
	return &StateSync{
		Settings: &StateSyncSettings{
			StateSettings:  newStateSettings(),
			MinValue:       0,
			MaxValue:       100,
			AnimationMode:  syncFill,
			ColorLow:       common.NewColor(255, 0, 0),
			ColorHigh:      common.NewColor(0, 255, 0),
			UpdateInterval: 0.5,
		},
		smoother: mapper.NewValueSmoother(effect.SmoothingAlpha),
	}
}

// Init decodes settings, state entity is required.
func (e *StateSync) Init(data *effect.InitDataEffect) error {
	if err := e.init(data, e.Settings, &e.Settings.StateSettings); err != nil {
		return err
	}

	if "" == e.Settings.StateEntity {
		return &common.ErrConfiguration{Message: "state_entity is required"}
	}

	e.Settings.StateMin = e.Settings.MinValue
	e.Settings.StateMax = e.Settings.MaxValue
	return nil
}

// Step renders smoothed entity value.
func (e *StateSync) Step(ctx context.Context) (*effect.Frame, error) {
	e.Lock()
	defer e.Unlock()

	s := e.Settings
	value, ok := e.stateValue()
	if !ok {
		value = 0.5
	}

	value = e.smoother.Smooth(value)

	n := e.count()
	color := mapper.InterpolateColor(s.ColorLow, s.ColorHigh, value)
	colors := fill(n, common.Black)
	spread := int(float64(n) / 2 * value)
	lit := int(float64(n) * value)
	center := n / 2

	for ii := 0; ii < n; ii++ {
		on := false
		switch s.AnimationMode {
		case syncFill:
			on = ii < lit
		case syncCenter:
			dist := ii - center
			if dist < 0 {
				dist = -dist
			}
			on = dist < spread
		case syncDual:
			on = ii < spread || ii >= n-spread
		default:
			on = true
		}

		if on {
			colors[ii] = color
		}
	}

	return &effect.Frame{
		Colors: colors,
		Color:  color,
		Delay:  seconds(s.UpdateInterval),
	}, nil
}

// GetSpec returns effect description.
func (e *StateSync) GetSpec() *effect.Spec {
	props := stateProperties("")
	delete(props, "state_min")
	delete(props, "state_max")
	props["state_entity"] = effect.String("Entity ID to visualize", nil)

	return &effect.Spec{
		Name:        "state_sync",
		Description: "Synchronizes LED display with entity state",
		Schema: effect.BaseSchema().
			Extend(map[string]*effect.Property{
				"min_value": effect.Number("Value mapped to no LEDs", nil, nil, 0.0),
				"max_value": effect.Number("Value mapped to all LEDs", nil, nil, 100.0),
				"animation_mode": effect.String("How value is displayed", syncFill,
					syncFill, syncCenter, syncDual, syncSolid),
				"color_low":       effect.Color("Color of the minimum value", "255,0,0"),
				"color_high":      effect.Color("Color of the maximum value", "0,255,0"),
				"update_interval": effect.Number("Seconds between updates", 0.1, 5.0, 0.5),
			}).
			Extend(props, "state_entity"),
	}
}

// Unload stops state source.
func (e *StateSync) Unload() {
	e.Lock()
	defer e.Unlock()
	e.unload()
}
