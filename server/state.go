package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/systems"
	"github.com/go-home-io/wled-effects/systems/coordinator"
	"github.com/go-home-io/wled-effects/systems/engine"
	"github.com/go-home-io/wled-effects/utils"
)

// Timeout of a single effect load.
const loadTimeout = 30 * time.Second

// IServerStateProvider defines server state logic.
type IServerStateProvider interface {
	Load(ctx context.Context)
	GetEffect(name string) (providers.ICoordinatorProvider, error)
	GetEffects() []providers.ICoordinatorProvider
	Pending() []string
	AutoStart()
	RunOnceAll(ctx context.Context) int
	Unload()
}

// Loaded effects.
type serverState struct {
	sync.RWMutex

	settings providers.ISettingsProvider
	logger   common.ILoggerProvider

	effects map[string]providers.ICoordinatorProvider
	pending map[string]*providers.RawEffect

	retryJob       int
	unsubscribeEvt func()
}

// Constructs a new server state.
func newServerState(settings providers.ISettingsProvider) *serverState {
	return &serverState{
		settings: settings,
		logger:   settings.SystemLogger(),
		effects:  make(map[string]providers.ICoordinatorProvider),
		pending:  make(map[string]*providers.RawEffect),
	}
}

// Load creates coordinators of all configured effects.
// Effects which failed to load are retried periodically.
func (s *serverState) Load(ctx context.Context) {
	s.Lock()
	for _, v := range s.settings.EffectsConfig() {
		s.pending[v.Name] = v
	}
	s.Unlock()

	s.retry(ctx)

	s.unsubscribeEvt = s.settings.State().SubscribeEvents(func(ev providers.CustomEvent) {
		select {
		case s.settings.FanOut().ChannelInEventUpdates() <- ev.EventType:
		default:
		}
	})

	interval := s.settings.ServerSettings().RetryInterval
	if interval <= 0 {
		return
	}

	var err error
	s.retryJob, err = s.settings.Cron().AddFunc(utils.EverySpec(time.Duration(interval)*time.Second), func() {
		loaded := s.retry(context.Background())
		for _, v := range loaded {
			if v.Engine().Settings().AutoStart {
				s.start(v)
			}
		}
	})

	if err != nil {
		s.logger.Error("Failed to schedule effects load retry", err, common.LogSystemToken, logSystem)
	}
}

// GetEffect returns effect coordinator.
func (s *serverState) GetEffect(name string) (providers.ICoordinatorProvider, error) {
	s.RLock()
	defer s.RUnlock()

	c, ok := s.effects[name]
	if !ok {
		return nil, &ErrUnknownEffect{Name: name}
	}

	return c, nil
}

// GetEffects returns all loaded effects sorted by name.
func (s *serverState) GetEffects() []providers.ICoordinatorProvider {
	s.RLock()
	defer s.RUnlock()

	res := make([]providers.ICoordinatorProvider, 0, len(s.effects))
	for _, v := range s.effects {
		res = append(res, v)
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].Name() < res[j].Name()
	})

	return res
}

// Pending returns names of effects which are not loaded yet.
func (s *serverState) Pending() []string {
	s.RLock()
	defer s.RUnlock()

	res := make([]string, 0, len(s.pending))
	for k := range s.pending {
		res = append(res, k)
	}

	sort.Strings(res)
	return res
}

// AutoStart starts effects with auto_start flag.
func (s *serverState) AutoStart() {
	for _, v := range s.GetEffects() {
		if v.Engine().Settings().AutoStart {
			s.start(v)
		}
	}
}

// RunOnceAll renders a single frame of every effect.
// Returns number of failed effects, not loaded ones are counted as failed.
func (s *serverState) RunOnceAll(ctx context.Context) int {
	failed := len(s.Pending())

	for _, v := range s.GetEffects() {
		if err := v.RunOnce(ctx); err != nil {
			s.logger.Error("Failed to render effect", err, common.LogSystemToken, logSystem,
				common.LogEffectToken, v.Name())
			failed++
		}
	}

	return failed
}

// Unload stops and releases all effects.
func (s *serverState) Unload() {
	if 0 != s.retryJob {
		s.settings.Cron().RemoveFunc(s.retryJob)
	}

	if nil != s.unsubscribeEvt {
		s.unsubscribeEvt()
	}

	s.Lock()
	effects := s.effects
	s.effects = make(map[string]providers.ICoordinatorProvider)
	s.Unlock()

	wg := sync.WaitGroup{}
	for _, v := range effects {
		wg.Add(1)
		go func(c providers.ICoordinatorProvider) {
			defer wg.Done()
			c.Unload()
		}(v)
	}

	wg.Wait()
}

// Starts effect and logs failure.
func (s *serverState) start(c providers.ICoordinatorProvider) {
	if err := c.Start(); err != nil {
		s.logger.Error("Failed to auto-start effect", err, common.LogSystemToken, logSystem,
			common.LogEffectToken, c.Name())
	}
}

// Attempts to load pending effects, returns loaded ones.
func (s *serverState) retry(ctx context.Context) []providers.ICoordinatorProvider {
	s.RLock()
	pending := make([]*providers.RawEffect, 0, len(s.pending))
	for _, v := range s.pending {
		pending = append(pending, v)
	}
	s.RUnlock()

	loaded := make([]providers.ICoordinatorProvider, 0)
	for _, v := range pending {
		c, err := s.loadEffect(ctx, v)
		if err != nil {
			s.logger.Error("Failed to load effect", err, common.LogSystemToken, logSystem,
				common.LogEffectToken, v.Name, common.LogEffectTypeToken, v.Type)
			continue
		}

		s.Lock()
		delete(s.pending, v.Name)
		s.effects[v.Name] = c
		s.Unlock()

		loaded = append(loaded, c)
		s.logger.Info("Loaded effect", common.LogSystemToken, logSystem,
			common.LogEffectToken, v.Name, common.LogEffectTypeToken, v.Type)
	}

	return loaded
}

// Creates engine and coordinator of a single effect.
func (s *serverState) loadEffect(ctx context.Context, raw *providers.RawEffect) (providers.ICoordinatorProvider, error) {
	eff, err := s.settings.Registry().Create(raw.Type)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	client, err := s.settings.Connections().GetClient(ctx, raw.Settings.Host)
	if err != nil {
		return nil, err
	}

	// Runtime updates must not leak into the next load attempt.
	set := *raw.Settings
	log := s.settings.PluginLogger(systems.SysEffect, raw.Type)

	eng := engine.NewEngine(&engine.ConstructEngine{
		Logger:    log,
		Client:    client,
		Effect:    eff,
		Settings:  &set,
		RawConfig: raw.RawConfig,
		Validator: s.settings.Validator(),
		Sources:   s.settings.Sources(),
		Store:     s.settings.State(),
		Cron:      s.settings.Cron(),
	})

	if !eng.Setup(ctx) {
		eng.Unload()
		return nil, &ErrEffectSetup{Name: raw.Name}
	}

	return coordinator.NewCoordinator(&coordinator.ConstructCoordinator{
		Logger:          log,
		Engine:          eng,
		Cron:            s.settings.Cron(),
		FanOut:          s.settings.FanOut(),
		RefreshInterval: time.Duration(s.settings.ServerSettings().RefreshInterval) * time.Second,
	}), nil
}
