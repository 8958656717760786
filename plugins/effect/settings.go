package effect

// BlendMode describes how multiple reactive inputs are combined.
type BlendMode string

const (
	// BlendAverage averages inputs.
	BlendAverage BlendMode = "average"
	// BlendMax picks the largest input.
	BlendMax BlendMode = "max"
	// BlendMin picks the smallest input.
	BlendMin BlendMode = "min"
	// BlendMultiply multiplies inputs.
	BlendMultiply BlendMode = "multiply"
	// BlendAdd sums inputs.
	BlendAdd BlendMode = "add"
)

// TransitionMode describes value transitions smoothness.
type TransitionMode string

const (
	// TransitionInstant applies values as is.
	TransitionInstant TransitionMode = "instant"
	// TransitionFade applies values as is, device handles fading.
	TransitionFade TransitionMode = "fade"
	// TransitionSmooth applies exponential smoothing.
	TransitionSmooth TransitionMode = "smooth"
)

const (
	// DefaultSegmentID is used if segment is not configured.
	DefaultSegmentID = 0
	// DefaultBrightness is used if brightness is not configured.
	DefaultBrightness = 255
	// DefaultZoneCount is used if zones are not configured.
	DefaultZoneCount = 1
	// DefaultStartLED is the first LED of fallback range.
	DefaultStartLED = 0
	// DefaultStopLED is the last LED of fallback range.
	DefaultStopLED = 59
	// SmoothingAlpha is used by smooth transition mode.
	SmoothingAlpha = 0.3
)

// Trigger actions.
const (
	// ActionStart starts the effect.
	ActionStart = "start"
	// ActionStop stops the effect.
	ActionStop = "stop"
	// ActionRunOnce renders a single frame.
	ActionRunOnce = "run_once"
	// ActionNotify passes trigger data to the effect.
	ActionNotify = "notify"
)

// TriggerSettings defines single trigger config.
type TriggerSettings struct {
	ID         string                 `yaml:"id" json:"id"`
	Type       string                 `yaml:"type" json:"type" validate:"required,oneof=state_change threshold time event"`
	Entity     string                 `yaml:"entity_id" json:"entity_id"`
	Attribute  string                 `yaml:"attribute" json:"attribute"`
	Threshold  *float64               `yaml:"threshold" json:"threshold"`
	Comparison string                 `yaml:"comparison" json:"comparison" validate:"omitempty,oneof=> < == >= <="`
	Time       string                 `yaml:"time_pattern" json:"time_pattern" validate:"omitempty,hhmm"`
	EventType  string                 `yaml:"event_type" json:"event_type"`
	EventData  map[string]interface{} `yaml:"event_data" json:"event_data"`
	ActiveHrs  string                 `yaml:"active_hrs" json:"active_hrs"`
	Action     string                 `yaml:"action" json:"action" validate:"omitempty,oneof=start stop run_once notify"`
}

// BaseSettings defines config fields shared by all effects.
type BaseSettings struct {
	Name           string             `yaml:"effect_name" json:"effect_name" validate:"required"`
	Type           string             `yaml:"type" json:"type" validate:"required"`
	Host           string             `yaml:"host" json:"host" validate:"required,host"`
	SegmentID      int                `yaml:"segment_id" json:"segment_id" validate:"segment"`
	StartLED       *int               `yaml:"start_led" json:"start_led" validate:"omitempty,min=0"`
	StopLED        *int               `yaml:"stop_led" json:"stop_led" validate:"omitempty,min=0"`
	Brightness     int                `yaml:"brightness" json:"brightness" validate:"min=0,max=255"`
	Reverse        bool               `yaml:"reverse_direction" json:"reverse_direction"`
	FreezeOnManual bool               `yaml:"freeze_on_manual" json:"freeze_on_manual"`
	BlendMode      BlendMode          `yaml:"blend_mode" json:"blend_mode" validate:"oneof=average max min multiply add"`
	TransitionMode TransitionMode     `yaml:"transition_mode" json:"transition_mode" validate:"oneof=instant fade smooth"`
	ZoneCount      int                `yaml:"zone_count" json:"zone_count" validate:"min=1,max=10"`
	ReactiveInputs []string           `yaml:"reactive_inputs" json:"reactive_inputs"`
	Triggers       []*TriggerSettings `yaml:"trigger_config" json:"trigger_config" validate:"dive"`
	AutoStart      bool               `yaml:"auto_start" json:"auto_start"`
}

// NewBaseSettings returns settings populated with default values.
// Config data is un-marshaled on top of it.
func NewBaseSettings() *BaseSettings {
	return &BaseSettings{
		SegmentID:      DefaultSegmentID,
		Brightness:     DefaultBrightness,
		BlendMode:      BlendAverage,
		TransitionMode: TransitionInstant,
		ZoneCount:      DefaultZoneCount,
		ReactiveInputs: make([]string, 0),
		Triggers:       make([]*TriggerSettings, 0),
	}
}

// RangeConfigured checks whether both LED bounds are present.
func (b *BaseSettings) RangeConfigured() bool {
	return nil != b.StartLED && nil != b.StopLED
}
