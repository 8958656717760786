package providers

import (
	"context"
	"time"

	"github.com/go-home-io/wled-effects/plugins/effect"
)

// IEffectEngineProvider defines lifecycle of a single effect instance.
type IEffectEngineProvider interface {
	Name() string
	Type() string
	Setup(ctx context.Context) bool
	Start()
	Stop()
	RunOnce(ctx context.Context) error
	IsRunning() bool
	Stats() *EffectStats
	Range() effect.LEDRange
	MapToZone(index int) (int, int)
	Settings() effect.BaseSettings
	UpdateSettings(update func(settings *effect.BaseSettings))
	GetSpec() *effect.Spec
	Unload()
}

// EffectStats defines effect runtime state snapshot.
type EffectStats struct {
	Running     bool       `json:"running"`
	LastError   string     `json:"last_error"`
	Commands    int64      `json:"commands"`
	Successes   int64      `json:"successes"`
	Failures    int64      `json:"failures"`
	SuccessRate float64    `json:"success_rate"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	RunningTime float64    `json:"running_time"`
}
