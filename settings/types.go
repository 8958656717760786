package settings

import (
	"time"

	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/systems/wled"
)

// StartUpOptions defines arguments allowed by the system.
type StartUpOptions struct {
	Config   string            `short:"c" long:"config" description:"Config file or folder. Defaults to ./configs/effects.yaml."`
	Secret   map[string]string `short:"s" long:"secret" description:"Secrets provider options. Defaults to local FS."`
	Port     int               `short:"p" long:"port" description:"Overrides control server port."`
	LogLevel string            `short:"l" long:"log-level" description:"Overrides log level."`
	Once     bool              `long:"once" description:"Renders a single frame of every effect and exits."`
}

// Defines loaded provider record.
type rawProvider struct {
	System   string
	Provider string
	Config   []byte
}

// Logger record.
type loggerSettings struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
}

// Device communication record, applied to every WLED client.
type deviceSettings struct {
	Timeout          int                  `yaml:"timeout" validate:"gt=0" default:"10"`
	MaxRetries       int                  `yaml:"maxRetries" validate:"gte=0" default:"3"`
	Backoff          int                  `yaml:"backoff" validate:"gte=0" default:"1000"`
	MaxCommands      int                  `yaml:"maxCommands" validate:"gt=0" default:"20"`
	Window           int                  `yaml:"window" validate:"gt=0" default:"1000"`
	FailureThreshold int                  `yaml:"failureThreshold" validate:"gt=0" default:"5"`
	RecoveryTimeout  int                  `yaml:"recoveryTimeout" validate:"gt=0" default:"60"`
	CachedClients    int                  `yaml:"cachedClients" validate:"gt=0" default:"20"`
	Buffer           *wled.BufferSettings `yaml:"buffer" validate:"required"`
}

// Returns device settings populated with default buffer limits.
func newDeviceSettings() *deviceSettings {
	return &deviceSettings{
		Buffer: wled.NewBufferSettings(),
	}
}

// Request timeout.
func (d *deviceSettings) timeout() time.Duration {
	return time.Duration(d.Timeout) * time.Second
}

// Base of exponential backoff.
func (d *deviceSettings) backoff() time.Duration {
	return time.Duration(d.Backoff) * time.Millisecond
}

// Rate limiter window.
func (d *deviceSettings) window() time.Duration {
	return time.Duration(d.Window) * time.Millisecond
}

// Circuit breaker recovery timeout.
func (d *deviceSettings) recovery() time.Duration {
	return time.Duration(d.RecoveryTimeout) * time.Second
}

// State providers.
const (
	stateHomeAssistant = "home-assistant"
	stateStatic        = "static"
)

// Entity state record.
type stateSettings struct {
	URL      string   `yaml:"url" validate:"omitempty,url"`
	Token    string   `yaml:"token"`
	Entities []string `yaml:"entities"`
	// Seconds between Home Assistant polls.
	Interval int `yaml:"interval" validate:"gte=0" default:"5"`
	// Initial entity states.
	Values map[string]interface{} `yaml:"values"`
	// Value expressions per entity id.
	Expressions map[string]string `yaml:"expressions"`
	// Milliseconds between reactive value refreshes.
	SourceInterval int `yaml:"sourceInterval" validate:"gte=0" default:"500"`
}

// Security provider.
const securityBasic = "basic"

// Control API security record.
type securitySettings struct {
	Roles []*providers.SecRole `yaml:"roles" validate:"dive"`
	// htpasswd file, defaults to _users next to config files.
	UsersFile string `yaml:"usersFile"`
}
