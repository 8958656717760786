package settings

import (
	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/systems"
	"github.com/go-home-io/wled-effects/systems/logger"
)

// SystemLogger returns default system logger.
func (s *settingsProvider) SystemLogger() common.ILoggerProvider {
	return s.logger
}

// PluginLogger returns logger specifically for sub-system provider.
func (s *settingsProvider) PluginLogger(system systems.SystemType, provider string) common.ILoggerProvider {
	return logger.NewPluginLogger(&logger.ConstructPluginLogger{
		SystemLogger: s.logger,
		System:       system.String(),
		Provider:     provider,
	})
}

// Cron returns system's cron provider.
func (s *settingsProvider) Cron() providers.ICronProvider {
	return s.cron
}

// Validator returns yaml validator provider.
func (s *settingsProvider) Validator() providers.IValidatorProvider {
	return s.validator
}

// Secrets returns secrets store.
func (s *settingsProvider) Secrets() providers.ISecretProvider {
	return s.secrets
}

// Security returns control API security provider, nil if API is open.
func (s *settingsProvider) Security() providers.ISecurityProvider {
	return s.security
}

// State returns entity state store.
func (s *settingsProvider) State() providers.IStateProvider {
	return s.state
}

// StatePoller returns Home Assistant poller, nil if not configured.
func (s *settingsProvider) StatePoller() providers.IStatePollerProvider {
	return s.poller
}

// Sources returns reactive value sources factory.
func (s *settingsProvider) Sources() effect.ISourceFactory {
	return s.sources
}

// Connections returns device clients cache.
func (s *settingsProvider) Connections() providers.IConnectionManagerProvider {
	return s.connections
}

// Registry returns known effect types.
func (s *settingsProvider) Registry() providers.IEffectRegistryProvider {
	return s.registry
}

// FanOut returns status fan out channels.
func (s *settingsProvider) FanOut() providers.IFanOutProvider {
	return s.fanOut
}

// ServerSettings returns control server settings.
func (s *settingsProvider) ServerSettings() *providers.ServerSettings {
	return s.sSettings
}

// EffectsConfig returns raw effect configs.
func (s *settingsProvider) EffectsConfig() []*providers.RawEffect {
	return s.effects
}
