package providers

import (
	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/systems"
)

// ISettingsProvider defines loaded configuration and shared sub-systems.
type ISettingsProvider interface {
	SystemLogger() common.ILoggerProvider
	PluginLogger(system systems.SystemType, provider string) common.ILoggerProvider
	Cron() ICronProvider
	Validator() IValidatorProvider
	Secrets() ISecretProvider
	Security() ISecurityProvider
	State() IStateProvider
	StatePoller() IStatePollerProvider
	Sources() effect.ISourceFactory
	Connections() IConnectionManagerProvider
	Registry() IEffectRegistryProvider
	FanOut() IFanOutProvider
	ServerSettings() *ServerSettings
	EffectsConfig() []*RawEffect
}

// ServerSettings has configured data for the control server.
type ServerSettings struct {
	Port int `yaml:"port" validate:"required,port" default:"8000"`
	// Seconds between coordinator status polls.
	RefreshInterval int `yaml:"refreshInterval" validate:"gte=0" default:"30"`
	// Seconds between attempts to load effects which failed on start.
	RetryInterval int `yaml:"retryInterval" validate:"gte=0" default:"60"`
	// Seconds to wait before auto-starting effects.
	DelayedStart int      `yaml:"delayedStart" validate:"gte=0"`
	CORSOrigins  []string `yaml:"corsOrigins"`
}

// RawEffect has effect instance data loaded from config files.
type RawEffect struct {
	Name      string
	Type      string
	Settings  *effect.BaseSettings
	RawConfig []byte
}
