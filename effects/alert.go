package effects

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/plugins/helpers"
	"github.com/go-home-io/wled-effects/systems/mapper"
)

// Alert severities, ordered by escalation.
const (
	SeverityDebug    = "debug"
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityAlert    = "alert"
	SeverityCritical = "critical"
	severityAuto     = "auto"
)

// Alert patterns.
const (
	patternAuto         = "auto"
	patternSteady       = "steady"
	patternBlink        = "blink"
	patternPulse        = "pulse"
	patternDoublePulse  = "double_pulse"
	patternTriplePulse  = "triple_pulse"
	patternStrobe       = "strobe"
	patternSparkleBurst = "sparkle_burst"
)

// Affected areas.
const (
	areaFull   = "full"
	areaCenter = "center"
	areaEdges  = "edges"
	areaRandom = "random"
)

// Trigger data key which overrides alert severity.
const alertSeverityKey = "severity"

var severityOrder = []string{SeverityDebug, SeverityInfo, SeverityWarning, SeverityAlert, SeverityCritical}

// Per-severity defaults.
type severityDefaults struct {
	color   common.Color
	rate    float64
	pattern string
}

var severities = map[string]*severityDefaults{
	SeverityDebug:    {color: common.NewColor(50, 50, 150), rate: 0.5, pattern: patternBlink},
	SeverityInfo:     {color: common.NewColor(0, 150, 255), rate: 1.0, pattern: patternPulse},
	SeverityWarning:  {color: common.NewColor(255, 200, 0), rate: 2.0, pattern: patternDoublePulse},
	SeverityAlert:    {color: common.NewColor(255, 100, 0), rate: 3.0, pattern: patternTriplePulse},
	SeverityCritical: {color: common.NewColor(255, 0, 0), rate: 6.0, pattern: patternStrobe},
}

// SeverityThresholds defines upper bounds of auto severities.
type SeverityThresholds struct {
	Debug   float64 `yaml:"debug" json:"debug"`
	Info    float64 `yaml:"info" json:"info"`
	Warning float64 `yaml:"warning" json:"warning"`
	Alert   float64 `yaml:"alert" json:"alert"`
}

// AlertSettings has alert effect parameters.
type AlertSettings struct {
	StateSettings      `yaml:",inline"`
	Severity           string             `yaml:"severity" json:"severity" validate:"oneof=debug info warning alert critical auto"`
	Pattern            string             `yaml:"pattern" json:"pattern" validate:"oneof=auto steady blink pulse double_pulse triple_pulse strobe sparkle_burst"`
	FlashRate          float64            `yaml:"flash_rate" json:"flash_rate" validate:"min=0,max=10"`
	DutyCycle          float64            `yaml:"duty_cycle" json:"duty_cycle" validate:"min=0.1,max=0.9"`
	Color              string             `yaml:"color" json:"color"`
	SecondaryColor     *common.Color      `yaml:"secondary_color" json:"secondary_color"`
	SparkleCount       int                `yaml:"sparkle_count" json:"sparkle_count" validate:"min=10,max=200"`
	SparkleDecay       float64            `yaml:"sparkle_decay" json:"sparkle_decay" validate:"min=0.5,max=0.98"`
	AffectedArea       string             `yaml:"affected_area" json:"affected_area" validate:"oneof=full center edges random"`
	EscalateAfter      float64            `yaml:"escalate_after" json:"escalate_after" validate:"min=0"`
	MaxDuration        float64            `yaml:"max_duration" json:"max_duration" validate:"min=0"`
	AcknowledgeEntity  string             `yaml:"acknowledge_entity" json:"acknowledge_entity"`
	SeverityThresholds SeverityThresholds `yaml:"severity_thresholds" json:"severity_thresholds"`
}

// Alert flashes a notification pattern chosen by severity.
type Alert struct {
	base
	Settings *AlertSettings

	customColor *common.Color
	ack         effect.IValueSource
	severity    string
	phase       float64
	started     time.Time
	escalated   time.Time
	sparkles    []float64
}

// NewAlert creates alert effect.
func NewAlert() effect.IEffect {
	return &Alert{
		Settings: &AlertSettings{
			StateSettings: newStateSettings(),
			Severity:      SeverityInfo,
			Pattern:       patternAuto,
			DutyCycle:     0.5,
			Color:         severityAuto,
			SparkleCount:  50,
			SparkleDecay:  0.85,
			AffectedArea:  areaFull,
			SeverityThresholds: SeverityThresholds{
				Debug:   10,
				Info:    30,
				Warning: 60,
				Alert:   85,
			},
		},
		severity: SeverityInfo,
	}
}

// Init decodes settings and opens acknowledgement source.
func (e *Alert) Init(data *effect.InitDataEffect) error {
	if err := e.init(data, e.Settings, &e.Settings.StateSettings); err != nil {
		return err
	}

	s := e.Settings
	if "" != s.Color && severityAuto != strings.ToLower(s.Color) {
		c, err := common.ParseColor(s.Color)
		if err != nil {
			e.unload()
			return &common.ErrConfiguration{Message: "invalid alert color: " + err.Error()}
		}
		e.customColor = &c
	}

	if severityAuto != s.Severity {
		e.severity = s.Severity
	}

	e.sparkles = make([]float64, e.count())

	if "" == s.AcknowledgeEntity {
		return nil
	}

	if nil == data.Sources {
		e.unload()
		return &common.ErrStateSource{Entity: s.AcknowledgeEntity, Message: "state sources are not available"}
	}

	ack, err := data.Sources.NewSource(s.AcknowledgeEntity, "")
	if err != nil {
		e.unload()
		return &common.ErrStateSource{Entity: s.AcknowledgeEntity, Message: err.Error()}
	}

	e.ack = ack
	return nil
}

// Step renders alert pattern.
func (e *Alert) Step(ctx context.Context) (*effect.Frame, error) {
	e.Lock()
	defer e.Unlock()

	now := e.now()
	if e.started.IsZero() {
		e.started = now
		e.escalated = now
	}

	if e.acknowledged() {
		e.logger.Info("Alert acknowledged", common.LogSystemToken, logSystem,
			common.LogEntityToken, e.Settings.AcknowledgeEntity)
		return e.finish(), nil
	}

	if e.Settings.MaxDuration > 0 && now.Sub(e.started) > seconds(e.Settings.MaxDuration) {
		e.logger.Info("Alert reached max duration", common.LogSystemToken, logSystem)
		return e.finish(), nil
	}

	if severityAuto == e.Settings.Severity {
		if sev, ok := e.autoSeverity(); ok {
			e.severity = sev
		}
	}

	if e.Settings.EscalateAfter > 0 && now.Sub(e.escalated) > seconds(e.Settings.EscalateAfter) {
		e.escalate(now)
	}

	color, rate, pattern := e.current()
	colors := e.render(color, rate, pattern)
	e.phase += rate * phaseStep

	return &effect.Frame{
		Colors: colors,
		Color:  color,
		Delay:  defaultTick,
	}, nil
}

// OnTrigger restarts alert timers and optionally updates severity.
func (e *Alert) OnTrigger(triggerID string, data map[string]interface{}) {
	e.Lock()
	defer e.Unlock()

	now := e.now()
	e.started = now
	e.escalated = now

	if sev, ok := data[alertSeverityKey].(string); ok {
		if _, known := severities[sev]; known {
			e.severity = sev
		}
	}

	e.logger.Debug("Alert re-armed", common.LogSystemToken, logSystem,
		common.LogTriggerToken, triggerID, alertSeverityKey, e.severity)
}

// Severity returns current severity.
func (e *Alert) Severity() string {
	e.Lock()
	defer e.Unlock()
	return e.severity
}

// Turns segment off and resets timers for the next run.
func (e *Alert) finish() *effect.Frame {
	e.started = time.Time{}
	e.phase = 0
	return &effect.Frame{Off: true, Done: true}
}

// Checks acknowledgement entity.
func (e *Alert) acknowledged() bool {
	if nil == e.ack {
		return false
	}

	return helpers.IsTruthy(e.ack.Value())
}

// Returns severity derived from raw state value.
func (e *Alert) autoSeverity() (string, bool) {
	var value float64
	switch {
	case nil != e.source:
		v, ok := helpers.ToFloat(e.source.Value())
		if !ok {
			return SeverityInfo, true
		}
		value = v
	case nil != e.pipeline:
		v, ok := e.pipeline.Input()
		if !ok {
			return "", false
		}
		value = v
	default:
		return "", false
	}

	th := e.Settings.SeverityThresholds
	switch {
	case value < th.Debug:
		return SeverityDebug, true
	case value < th.Info:
		return SeverityInfo, true
	case value < th.Warning:
		return SeverityWarning, true
	case value < th.Alert:
		return SeverityAlert, true
	}

	return SeverityCritical, true
}

// Moves severity one level up.
func (e *Alert) escalate(now time.Time) {
	e.escalated = now
	for ii, v := range severityOrder {
		if v == e.severity && ii < len(severityOrder)-1 {
			e.severity = severityOrder[ii+1]
			e.logger.Info("Alert escalated", common.LogSystemToken, logSystem, alertSeverityKey, e.severity)
			return
		}
	}
}

// Returns color, flash rate and pattern of the current severity.
func (e *Alert) current() (common.Color, float64, string) {
	def := severities[e.severity]
	color := def.color
	if nil != e.customColor {
		color = *e.customColor
	}

	rate := def.rate
	if e.Settings.FlashRate > 0 {
		rate = e.Settings.FlashRate
	}

	pattern := def.pattern
	if patternAuto != e.Settings.Pattern {
		pattern = e.Settings.Pattern
	}

	return color, rate, pattern
}

// Returns mask of affected LEDs.
func (e *Alert) affected(n int) []bool {
	mask := make([]bool, n)
	quarter := n / 4

	switch e.Settings.AffectedArea {
	case areaCenter:
		for ii := quarter; ii < 3*quarter; ii++ {
			mask[ii] = true
		}
	case areaEdges:
		for ii := 0; ii < n; ii++ {
			mask[ii] = ii < quarter || ii >= 3*quarter
		}
	case areaRandom:
		for _, v := range e.rnd.Perm(n)[:n/2] {
			mask[v] = true
		}
	default:
		for ii := range mask {
			mask[ii] = true
		}
	}

	return mask
}

// Renders pattern at the current phase.
func (e *Alert) render(color common.Color, rate float64, pattern string) []common.Color {
	n := e.count()
	colors := fill(n, common.Black)
	mask := e.affected(n)
	cycle := math.Mod(e.phase, 1)

	lit := false
	litColor := color

	switch pattern {
	case patternSteady:
		lit = true
	case patternBlink:
		lit = cycle < e.Settings.DutyCycle
	case patternPulse:
		lit = true
		litColor = mapper.ScaleColor(color, Ease(cycle, easingSine))
	case patternDoublePulse:
		lit = cycle < 0.15 || (cycle > 0.3 && cycle < 0.45)
	case patternTriplePulse:
		lit = cycle < 0.1 || (cycle > 0.2 && cycle < 0.3) || (cycle > 0.4 && cycle < 0.5)
	case patternStrobe:
		lit = cycle < 0.1
		if SeverityCritical == e.severity && nil != e.Settings.SecondaryColor && cycle < 0.05 {
			litColor = *e.Settings.SecondaryColor
		}
	case patternSparkleBurst:
		return e.sparkleBurst(colors, mask, color, cycle)
	}

	if !lit {
		return colors
	}

	for ii, v := range mask {
		if v {
			colors[ii] = litColor
		}
	}

	return colors
}

// Renders decaying sparkles, new ones appear at the start of every cycle.
func (e *Alert) sparkleBurst(colors []common.Color, mask []bool, color common.Color,
	cycle float64) []common.Color {
	targets := make([]int, 0, len(mask))
	for ii, v := range mask {
		if v {
			targets = append(targets, ii)
		}
	}

	if cycle < 0.2 && len(targets) > 0 {
		for ii := 0; ii < e.Settings.SparkleCount/10; ii++ {
			e.sparkles[targets[e.rnd.Intn(len(targets))]] = 1
		}
	}

	for ii := range e.sparkles {
		if 0 == e.sparkles[ii] {
			continue
		}

		e.sparkles[ii] *= e.Settings.SparkleDecay
		if e.sparkles[ii] < sparkleCutoff {
			e.sparkles[ii] = 0
		}

		if mask[ii] {
			colors[ii] = mapper.ScaleColor(color, e.sparkles[ii])
		}
	}

	return colors
}

// GetSpec returns effect description.
func (e *Alert) GetSpec() *effect.Spec {
	return &effect.Spec{
		Name:        "alert",
		Description: "Alert/notification effect with severity levels and patterns",
		Schema: effect.BaseSchema().
			Extend(map[string]*effect.Property{
				"severity": effect.String("Alert severity level or 'auto'", SeverityInfo,
					SeverityDebug, SeverityInfo, SeverityWarning, SeverityAlert, SeverityCritical, severityAuto),
				"pattern": effect.String("Flash pattern type or 'auto' for severity default", patternAuto,
					patternAuto, patternSteady, patternBlink, patternPulse, patternDoublePulse, patternTriplePulse,
					patternStrobe, patternSparkleBurst),
				"flash_rate":      effect.Number("Flash rate in Hz (0 = use severity default)", 0.0, 10.0, 0.0),
				"duty_cycle":      effect.Number("On-time percentage for blink pattern", 0.1, 0.9, 0.5),
				"color":           effect.String("Alert color (R,G,B) or 'auto' for severity default", severityAuto),
				"secondary_color": effect.Color("Secondary color for strobe while critical", "255,255,255"),
				"sparkle_count":   effect.Integer("Number of sparkles for sparkle_burst pattern", 10, 200, 50),
				"sparkle_decay":   effect.Number("Sparkle fade rate (lower = faster fade)", 0.5, 0.98, 0.85),
				"affected_area": effect.String("Which LEDs to affect", areaFull,
					areaFull, areaCenter, areaEdges, areaRandom),
				"escalate_after":     effect.Number("Seconds before escalating severity (0 = disabled)", 0.0, nil, 0.0),
				"max_duration":       effect.Number("Auto-stop after N seconds (0 = infinite)", 0.0, nil, 0.0),
				"acknowledge_entity": effect.String("Entity to monitor for acknowledgment (stops when 'on')", nil),
				"severity_thresholds": {
					Type:        "object",
					Description: "State value thresholds for severity levels",
					Default:     map[string]float64{"debug": 10, "info": 30, "warning": 60, "alert": 85},
				},
			}).
			Extend(stateProperties("")),
	}
}

// Unload stops state sources.
func (e *Alert) Unload() {
	e.Lock()
	defer e.Unlock()

	e.unload()
	if nil != e.ack {
		e.ack.Stop()
		e.ack = nil
	}
}
