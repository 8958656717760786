package source

import (
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/providers"
)

// ConstructFactory has data required for a new value source factory.
type ConstructFactory struct {
	Logger   common.ILoggerProvider
	Store    providers.IStateProvider
	Interval time.Duration
	// Value expressions per entity id.
	Expressions map[string]string
}

// Source factory implementation.
type factory struct {
	logger      common.ILoggerProvider
	store       providers.IStateProvider
	interval    time.Duration
	expressions map[string]string
}

// NewFactory constructs a new value source factory.
func NewFactory(ctor *ConstructFactory) effect.ISourceFactory {
	f := &factory{
		logger:      ctor.Logger,
		store:       ctor.Store,
		interval:    ctor.Interval,
		expressions: ctor.Expressions,
	}

	if nil == f.expressions {
		f.expressions = make(map[string]string)
	}

	return f
}

// NewSource creates a new value source for entity attribute.
// Empty attribute means entity state.
func (f *factory) NewSource(entity string, attribute string) (effect.IValueSource, error) {
	return NewSource(&ConstructSource{
		Logger:     f.logger,
		Store:      f.store,
		Entity:     entity,
		Attribute:  attribute,
		Expression: f.expressions[entity],
		Interval:   f.interval,
	})
}
