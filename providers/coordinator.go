package providers

import (
	"context"
	"time"
)

// Effect coordinator states.
const (
	EffectStateRunning = "running"
	EffectStateStopped = "stopped"
	EffectStateError   = "error"
)

// ICoordinatorProvider defines status polling and lifecycle orchestration of a single effect.
type ICoordinatorProvider interface {
	Name() string
	Start() error
	Stop() error
	RunOnce(ctx context.Context) error
	Status() *EffectStatus
	Refresh()
	UpdateConfig(update *ConfigUpdate) error
	Engine() IEffectEngineProvider
	Unload()
}

// EffectStatus defines effect status snapshot.
type EffectStatus struct {
	Name        string       `json:"name"`
	Type        string       `json:"effect_type"`
	Host        string       `json:"host"`
	SegmentID   int          `json:"segment_id"`
	State       string       `json:"state"`
	Running     bool         `json:"running"`
	LastError   string       `json:"last_error"`
	Stats       *EffectStats `json:"statistics"`
	LastStarted *time.Time   `json:"last_started,omitempty"`
	LastStopped *time.Time   `json:"last_stopped,omitempty"`
	RunningTime float64      `json:"running_time"`
}

// ConfigUpdate defines runtime change of common effect settings.
// Nil fields are left untouched.
type ConfigUpdate struct {
	Brightness     *int      `json:"brightness"`
	SegmentID      *int      `json:"segment_id"`
	Reverse        *bool     `json:"reverse_direction"`
	FreezeOnManual *bool     `json:"freeze_on_manual"`
	BlendMode      *string   `json:"blend_mode"`
	TransitionMode *string   `json:"transition_mode"`
	ZoneCount      *int      `json:"zone_count"`
	ReactiveInputs *[]string `json:"reactive_inputs"`
}
