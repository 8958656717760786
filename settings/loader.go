// Package settings is responsible for parsing yaml-based configuration.
package settings

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-home-io/wled-effects/effects"
	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/systems"
	"github.com/go-home-io/wled-effects/systems/breaker"
	"github.com/go-home-io/wled-effects/systems/config"
	"github.com/go-home-io/wled-effects/systems/connection"
	"github.com/go-home-io/wled-effects/systems/fanout"
	"github.com/go-home-io/wled-effects/systems/logger"
	"github.com/go-home-io/wled-effects/systems/metrics"
	"github.com/go-home-io/wled-effects/systems/ratelimit"
	"github.com/go-home-io/wled-effects/systems/secret"
	"github.com/go-home-io/wled-effects/systems/security"
	"github.com/go-home-io/wled-effects/systems/source"
	"github.com/go-home-io/wled-effects/systems/state"
	"github.com/go-home-io/wled-effects/systems/wled"
	"github.com/go-home-io/wled-effects/utils"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	// Logger system.
	logSystem = "settings"

	// Interval of flushing logger buffers.
	flushInterval = 10 * time.Second
)

// System settings.
type settingsProvider struct {
	logger      common.ILoggerProvider
	cron        providers.ICronProvider
	validator   providers.IValidatorProvider
	secrets     providers.ISecretProvider
	security    providers.ISecurityProvider
	state       providers.IStateProvider
	poller      providers.IStatePollerProvider
	sources     effect.ISourceFactory
	connections providers.IConnectionManagerProvider
	registry    providers.IEffectRegistryProvider
	fanOut      providers.IFanOutProvider

	options    *StartUpOptions
	sSettings  *providers.ServerSettings
	dSettings  *deviceSettings
	stSettings *stateSettings
	stProvider string
	scSettings *securitySettings

	effects []*providers.RawEffect
}

// Load system configuration.
func Load(options *StartUpOptions) (providers.ISettingsProvider, error) {
	s := &settingsProvider{
		options: options,
		logger:  logger.NewConsoleLogger(),
		effects: make([]*providers.RawEffect, 0),
	}

	s.validator = utils.NewValidator(s.logger)
	s.registry = effects.NewRegistry(s.logger)

	secretOptions := make(map[string]string)
	for k, v := range options.Secret {
		secretOptions[k] = v
	}

	if _, ok := secretOptions["location"]; !ok {
		secretOptions["location"] = configsDir(options.Config)
	}

	s.secrets = secret.NewSecretProvider(&secret.ConstructSecret{
		Options: secretOptions,
		Logger:  s.logger,
	})

	templateProvider := newTemplateProvider(&constructTemplate{
		Logger:  s.logger,
		Secrets: s.secrets,
	})

	configProvider := config.NewConfigProvider(&config.ConstructConfig{
		Location: options.Config,
		Logger:   s.logger,
	})

	dataChan := configProvider.Load()
	if nil == dataChan {
		return nil, &common.ErrConfiguration{Message: "didn't get any configuration"}
	}

	allProviders := make([]*rawProvider, 0)
	for fileData := range dataChan {
		allProviders = append(allProviders, s.loadFile(fileData, templateProvider)...)
	}

	allProviders = s.loadLoggerProvider(allProviders)

	for _, v := range allProviders {
		s.parseProvider(v)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Returns folder which keeps config files.
func configsDir(location string) string {
	if "" == location {
		return utils.GetDefaultConfigsDir()
	}

	if info, err := os.Stat(location); nil == err && info.IsDir() {
		return location
	}

	return filepath.Dir(location)
}

// Processes single yaml file.
func (s *settingsProvider) loadFile(fileData []byte, templateProvider ITemplateProvider) []*rawProvider {
	provs := make([]*rawProvider, 0)

	fileData, err := templateProvider.Process(fileData)
	if err != nil {
		s.logger.Error("Failed to process config template", err, common.LogSystemToken, logSystem)
		return provs
	}

	decoder := yaml.NewDecoder(bytes.NewReader(fileData))
	for {
		var value map[string]interface{}
		err := decoder.Decode(&value)
		if err == io.EOF {
			break
		}

		if err != nil {
			s.logger.Error("Failed to parse config file", err, common.LogSystemToken, logSystem)
			break
		}

		if nil == value {
			continue
		}

		componentType := ""
		componentProvider := ""

		if cs, ok := value["system"].(string); ok {
			componentType = strings.ToLower(cs)
		}

		if ct, ok := value["provider"].(string); ok {
			componentProvider = strings.ToLower(ct)
		}

		if componentType == "" || componentProvider == "" {
			s.logger.Warn("Failed to parse a record in the config file: system or provider is not defined",
				common.LogSystemToken, logSystem)
			continue
		}

		byteData, err := yaml.Marshal(value)
		if err != nil {
			s.logger.Error("Failed to parse config file", err, common.LogSystemToken, componentType,
				common.LogProviderToken, componentProvider)
			continue
		}

		provs = append(provs, &rawProvider{
			Provider: componentProvider,
			System:   componentType,
			Config:   byteData,
		})
	}

	return provs
}

// Loads logger configuration.
func (s *settingsProvider) loadLoggerProvider(provs []*rawProvider) []*rawProvider {
	providersLeft := make([]*rawProvider, 0)
	loggerType := logger.ConsoleLogger
	level := ""

	for _, v := range provs {
		if v.System != systems.SysLogger.String() {
			providersLeft = append(providersLeft, v)
			continue
		}

		set := &loggerSettings{}
		if err := yaml.Unmarshal(v.Config, set); err != nil || !s.validator.Validate(set) {
			s.logger.Warn("Incorrect logger settings", common.LogProviderToken, v.Provider,
				common.LogSystemToken, logSystem)
			continue
		}

		loggerType = v.Provider
		level = set.Level
	}

	if "" != s.options.LogLevel {
		level = s.options.LogLevel
	}

	log, err := logger.NewLoggerProvider(&logger.ConstructLogger{
		LoggerType: loggerType,
		Level:      level,
	})
	if err != nil {
		s.logger.Error("Failed to load logger", err, common.LogProviderToken, loggerType,
			common.LogSystemToken, logSystem)
		return providersLeft
	}

	s.logger = log
	s.validator.SetLogger(s.PluginLogger(systems.SysConfig, "validator"))
	s.secrets.UpdateLogger(s.PluginLogger(systems.SysSecret, "fs"))
	return providersLeft
}

// Processes single provider config.
func (s *settingsProvider) parseProvider(provider *rawProvider) {
	s.logger.Debug("Processing config", common.LogProviderToken, provider.Provider,
		common.LogSystemToken, provider.System)

	sys, err := systems.SystemTypeString(provider.System)
	if err != nil {
		s.logger.Warn("Unknown provider's system", common.LogProviderToken, provider.Provider,
			common.LogSystemToken, provider.System)
		return
	}

	switch sys {
	case systems.SysServer:
		err = s.loadServerSettings(provider)
	case systems.SysDevice:
		err = s.loadDeviceSettings(provider)
	case systems.SysState:
		err = s.loadStateSettings(provider)
	case systems.SysEffect:
		err = s.loadEffect(provider)
	case systems.SysSecurity:
		err = s.loadSecuritySettings(provider)
	default:
		s.logger.Warn("System can't be configured from config files", common.LogProviderToken, provider.Provider,
			common.LogSystemToken, provider.System)
	}

	if err != nil {
		s.logger.Error("Failed to load provider config", err, common.LogProviderToken, provider.Provider,
			common.LogSystemToken, provider.System)
	}
}

// Loads control server settings.
func (s *settingsProvider) loadServerSettings(provider *rawProvider) error {
	if nil != s.sSettings {
		return &common.ErrConfiguration{Message: "duplicated server settings"}
	}

	set := &providers.ServerSettings{}
	if err := yaml.Unmarshal(provider.Config, set); err != nil {
		return errors.Wrap(err, "unmarshal server settings")
	}

	if !s.validator.Validate(set) {
		return &common.ErrConfiguration{Message: "incorrect server settings"}
	}

	s.sSettings = set
	return nil
}

// Loads device communication settings.
func (s *settingsProvider) loadDeviceSettings(provider *rawProvider) error {
	if nil != s.dSettings {
		return &common.ErrConfiguration{Message: "duplicated device settings"}
	}

	set := newDeviceSettings()
	if err := yaml.Unmarshal(provider.Config, set); err != nil {
		return errors.Wrap(err, "unmarshal device settings")
	}

	if !s.validator.Validate(set) {
		return &common.ErrConfiguration{Message: "incorrect device settings"}
	}

	s.dSettings = set
	return nil
}

// Loads entity state source settings.
func (s *settingsProvider) loadStateSettings(provider *rawProvider) error {
	if nil != s.stSettings {
		return &common.ErrConfiguration{Message: "duplicated state settings"}
	}

	switch provider.Provider {
	case stateHomeAssistant, stateStatic:
	default:
		return &common.ErrConfiguration{Message: fmt.Sprintf("unknown state provider %s", provider.Provider)}
	}

	set := &stateSettings{}
	if err := yaml.Unmarshal(provider.Config, set); err != nil {
		return errors.Wrap(err, "unmarshal state settings")
	}

	if !s.validator.Validate(set) {
		return &common.ErrConfiguration{Message: "incorrect state settings"}
	}

	if stateHomeAssistant == provider.Provider && "" == set.URL {
		return &common.ErrConfiguration{Message: "home assistant url is required"}
	}

	s.stSettings = set
	s.stProvider = provider.Provider
	return nil
}

// Loads control API security settings.
func (s *settingsProvider) loadSecuritySettings(provider *rawProvider) error {
	if nil != s.scSettings {
		return &common.ErrConfiguration{Message: "duplicated security settings"}
	}

	if securityBasic != provider.Provider {
		return &common.ErrConfiguration{Message: fmt.Sprintf("unknown security provider %s", provider.Provider)}
	}

	set := &securitySettings{}
	if err := yaml.Unmarshal(provider.Config, set); err != nil {
		return errors.Wrap(err, "unmarshal security settings")
	}

	if !s.validator.Validate(set) {
		return &common.ErrConfiguration{Message: "incorrect security settings"}
	}

	if "" == set.UsersFile {
		set.UsersFile = filepath.Join(configsDir(s.options.Config), "_users")
	}

	s.scSettings = set
	return nil
}

// Loads effect instance.
func (s *settingsProvider) loadEffect(provider *rawProvider) error {
	set := effect.NewBaseSettings()
	if err := yaml.Unmarshal(provider.Config, set); err != nil {
		return errors.Wrap(err, "unmarshal effect settings")
	}

	set.Type = provider.Provider
	set.Name = utils.NormalizeName(set.Name)

	if _, err := s.registry.Info(set.Type); err != nil {
		return err
	}

	if !s.validator.Validate(set) {
		return &common.ErrConfiguration{Message: fmt.Sprintf("incorrect settings of effect %s", set.Name)}
	}

	if set.RangeConfigured() && *set.StartLED > *set.StopLED {
		return &common.ErrConfiguration{
			Message: fmt.Sprintf("start_led %d is greater than stop_led %d", *set.StartLED, *set.StopLED)}
	}

	for _, v := range s.effects {
		if v.Name == set.Name {
			return &common.ErrConfiguration{Message: fmt.Sprintf("duplicated effect name %s", set.Name)}
		}
	}

	s.effects = append(s.effects, &providers.RawEffect{
		Name:      set.Name,
		Type:      set.Type,
		Settings:  set,
		RawConfig: provider.Config,
	})

	return nil
}

// Fills missing settings and constructs shared sub-systems.
func (s *settingsProvider) validate() error {
	if nil == s.sSettings {
		s.logger.Warn("Server settings are not defined, using the default ones",
			common.LogSystemToken, logSystem)
		s.sSettings = &providers.ServerSettings{}
		s.validator.Validate(s.sSettings)
	}

	if s.options.Port > 0 {
		s.sSettings.Port = s.options.Port
	}

	if nil == s.dSettings {
		s.dSettings = newDeviceSettings()
		s.validator.Validate(s.dSettings)
	}

	if nil == s.stSettings {
		s.stSettings = &stateSettings{}
		s.stProvider = stateStatic
		s.validator.Validate(s.stSettings)
	}

	s.cron = utils.NewCron()
	if _, err := s.cron.AddFunc(utils.EverySpec(flushInterval), s.logger.Flush); err != nil {
		return errors.Wrap(err, "register logger flushing")
	}

	s.fanOut = fanout.NewFanOut()

	if nil != s.scSettings {
		s.security = security.NewSecurityProvider(&security.ConstructSecurityProvider{
			Logger:    s.PluginLogger(systems.SysSecurity, securityBasic),
			Secret:    s.secrets,
			Roles:     s.scSettings.Roles,
			UsersFile: s.scSettings.UsersFile,
		})
	}

	if err := s.loadState(); err != nil {
		return err
	}

	s.connections = connection.NewConnectionManager(&connection.ConstructConnectionManager{
		Logger:   s.logger,
		Capacity: s.dSettings.CachedClients,
		Factory:  s.newClient,
	})

	if 0 == len(s.effects) {
		s.logger.Warn("No effects are configured", common.LogSystemToken, logSystem)
	}

	return nil
}

// Constructs entity state store, optional poller and value sources.
func (s *settingsProvider) loadState() error {
	s.state = state.NewStore(&state.ConstructStore{
		Logger: s.PluginLogger(systems.SysState, s.stProvider),
	})

	for k, v := range s.stSettings.Values {
		s.state.Set(k, v, nil)
	}

	s.sources = source.NewFactory(&source.ConstructFactory{
		Logger:      s.PluginLogger(systems.SysState, s.stProvider),
		Store:       s.state,
		Interval:    time.Duration(s.stSettings.SourceInterval) * time.Millisecond,
		Expressions: s.stSettings.Expressions,
	})

	if stateHomeAssistant != s.stProvider {
		return nil
	}

	var err error
	s.poller, err = state.NewPoller(&state.ConstructPoller{
		Logger:   s.PluginLogger(systems.SysState, s.stProvider),
		Store:    s.state,
		Cron:     s.cron,
		URL:      s.stSettings.URL,
		Token:    s.stSettings.Token,
		Entities: s.stSettings.Entities,
		Interval: time.Duration(s.stSettings.Interval) * time.Second,
	})

	return err
}

// Constructs a new WLED client with its own rate limiter and circuit breaker.
func (s *settingsProvider) newClient(host string) providers.IDeviceClientProvider {
	log := s.PluginLogger(systems.SysDevice, host)

	return wled.NewClient(&wled.ConstructClient{
		Logger:     log,
		Host:       host,
		Timeout:    s.dSettings.timeout(),
		MaxRetries: s.dSettings.MaxRetries,
		Backoff:    s.dSettings.backoff(),
		Buffer:     s.dSettings.Buffer,
		Limiter: ratelimit.NewRateLimiter(&ratelimit.ConstructRateLimiter{
			Logger:      log,
			MaxCommands: s.dSettings.MaxCommands,
			Window:      s.dSettings.window(),
		}),
		Breaker: breaker.NewCircuitBreaker(&breaker.ConstructCircuitBreaker{
			Logger:    log,
			Name:      host,
			Threshold: s.dSettings.FailureThreshold,
			Timeout:   s.dSettings.recovery(),
			OnStateChange: func(name string, st providers.CircuitState) {
				metrics.SetCircuitState(name, string(st))
			},
		}),
	})
}
