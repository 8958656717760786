package effects

import (
	"sort"
	"sync"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/providers"
)

// Built-in effects.
var builtIn = map[string]effect.Factory{
	"breathe":      NewBreathe,
	"chase":        NewChase,
	"sparkle":      NewSparkle,
	"meter":        NewMeter,
	"alert":        NewAlert,
	"segment_fade": NewSegmentFade,
	"loading":      NewLoading,
	"rainbow_wave": NewRainbowWave,
	"state_sync":   NewStateSync,
}

// Effects table implementation.
type registry struct {
	sync.RWMutex
	logger    common.ILoggerProvider
	factories map[string]effect.Factory
}

// NewRegistry creates effects table with all built-in effects.
func NewRegistry(logger common.ILoggerProvider) providers.IEffectRegistryProvider {
	r := &registry{
		logger:    logger,
		factories: make(map[string]effect.Factory, len(builtIn)),
	}

	for k, v := range builtIn {
		r.factories[k] = v
	}

	return r
}

// Register adds effect factory, existing one is overwritten.
func (r *registry) Register(name string, factory effect.Factory) {
	r.Lock()
	defer r.Unlock()

	if _, ok := r.factories[name]; ok {
		r.logger.Warn("Effect is already registered, overwriting", common.LogSystemToken, logSystem,
			common.LogEffectTypeToken, name)
	}

	r.factories[name] = factory
	r.logger.Debug("Registered effect", common.LogSystemToken, logSystem, common.LogEffectTypeToken, name)
}

// Unregister removes effect factory.
func (r *registry) Unregister(name string) {
	r.Lock()
	defer r.Unlock()

	if _, ok := r.factories[name]; !ok {
		r.logger.Warn("Attempted to unregister unknown effect", common.LogSystemToken, logSystem,
			common.LogEffectTypeToken, name)
		return
	}

	delete(r.factories, name)
}

// Create instantiates a new effect.
func (r *registry) Create(name string) (effect.IEffect, error) {
	r.RLock()
	factory, ok := r.factories[name]
	r.RUnlock()

	if !ok {
		r.logger.Error("Effect not found", &common.ErrEffectNotFound{Name: name},
			common.LogSystemToken, logSystem, common.LogEffectTypeToken, name)
		return nil, &common.ErrEffectNotFound{Name: name}
	}

	return factory(), nil
}

// List returns sorted names of registered effects.
func (r *registry) List() []string {
	r.RLock()
	defer r.RUnlock()

	names := make([]string, 0, len(r.factories))
	for k := range r.factories {
		names = append(names, k)
	}

	sort.Strings(names)
	return names
}

// Info returns effect description.
func (r *registry) Info(name string) (*effect.Spec, error) {
	fx, err := r.Create(name)
	if err != nil {
		return nil, err
	}

	spec := fx.GetSpec()
	spec.Name = name
	return spec, nil
}

// AllInfo returns descriptions of all registered effects.
func (r *registry) AllInfo() map[string]*effect.Spec {
	res := make(map[string]*effect.Spec)
	for _, v := range r.List() {
		spec, err := r.Info(v)
		if err != nil {
			continue
		}

		res[v] = spec
	}

	return res
}
