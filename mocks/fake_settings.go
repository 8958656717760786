//+build !release

package mocks

import (
	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/systems"
)

// FakeSettingsData has sub-systems returned by fake settings.
// Missing logger, cron and validator are replaced with fakes.
type FakeSettingsData struct {
	Logger      common.ILoggerProvider
	Cron        providers.ICronProvider
	Validator   providers.IValidatorProvider
	Secrets     providers.ISecretProvider
	Security    providers.ISecurityProvider
	State       providers.IStateProvider
	StatePoller providers.IStatePollerProvider
	Sources     effect.ISourceFactory
	Connections providers.IConnectionManagerProvider
	Registry    providers.IEffectRegistryProvider
	FanOut      providers.IFanOutProvider
	Server      *providers.ServerSettings
	Effects     []*providers.RawEffect
}

// Fake settings.
type fakeSettings struct {
	data *FakeSettingsData
}

// SystemLogger returns logger.
func (f *fakeSettings) SystemLogger() common.ILoggerProvider {
	return f.data.Logger
}

// PluginLogger returns system logger.
func (f *fakeSettings) PluginLogger(systems.SystemType, string) common.ILoggerProvider {
	return f.data.Logger
}

// Cron returns cron.
func (f *fakeSettings) Cron() providers.ICronProvider {
	return f.data.Cron
}

// Validator returns validator.
func (f *fakeSettings) Validator() providers.IValidatorProvider {
	return f.data.Validator
}

// Secrets returns secrets store.
func (f *fakeSettings) Secrets() providers.ISecretProvider {
	return f.data.Secrets
}

// Security returns control API security provider.
func (f *fakeSettings) Security() providers.ISecurityProvider {
	return f.data.Security
}

// State returns entity state store.
func (f *fakeSettings) State() providers.IStateProvider {
	return f.data.State
}

// StatePoller returns state poller.
func (f *fakeSettings) StatePoller() providers.IStatePollerProvider {
	return f.data.StatePoller
}

// Sources returns value sources factory.
func (f *fakeSettings) Sources() effect.ISourceFactory {
	return f.data.Sources
}

// Connections returns device clients cache.
func (f *fakeSettings) Connections() providers.IConnectionManagerProvider {
	return f.data.Connections
}

// Registry returns effects table.
func (f *fakeSettings) Registry() providers.IEffectRegistryProvider {
	return f.data.Registry
}

// FanOut returns status fan out.
func (f *fakeSettings) FanOut() providers.IFanOutProvider {
	return f.data.FanOut
}

// ServerSettings returns server settings.
func (f *fakeSettings) ServerSettings() *providers.ServerSettings {
	return f.data.Server
}

// EffectsConfig returns raw effects.
func (f *fakeSettings) EffectsConfig() []*providers.RawEffect {
	return f.data.Effects
}

// FakeNewSettings creates a new fake settings provider.
func FakeNewSettings(data *FakeSettingsData) providers.ISettingsProvider {
	if nil == data.Logger {
		data.Logger = FakeNewLogger(nil)
	}

	if nil == data.Cron {
		data.Cron = FakeNewCron()
	}

	if nil == data.Validator {
		data.Validator = FakeNewValidator(true)
	}

	if nil == data.Server {
		data.Server = &providers.ServerSettings{Port: 8000, RefreshInterval: 30, RetryInterval: 60}
	}

	if nil == data.Effects {
		data.Effects = make([]*providers.RawEffect, 0)
	}

	return &fakeSettings{data: data}
}
