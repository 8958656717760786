// Package source contains reactive value sources backed by the state store.
package source

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/plugins/helpers"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/systems/mapper"
	"github.com/go-home-io/wled-effects/systems/state"
)

const (
	// Logger system.
	logSystem = "source"

	// DefaultInterval is the default value refresh interval.
	DefaultInterval = 500 * time.Millisecond
)

// ConstructSource has data required for a new value source.
type ConstructSource struct {
	Logger    common.ILoggerProvider
	Store     providers.IStateProvider
	Entity    string
	Attribute string
	// Optional govaluate expression. Parameters: value, state, attributes.
	Expression string
	Interval   time.Duration
}

// Value source implementation.
type source struct {
	sync.RWMutex

	logger    common.ILoggerProvider
	store     providers.IStateProvider
	entity    string
	attribute string
	expr      helpers.ITemplateExpression
	interval  time.Duration
	value     interface{}

	unsubscribe func()
	stop        chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewSource constructs a new value source and starts refreshing it.
func NewSource(ctor *ConstructSource) (effect.IValueSource, error) {
	if "" == ctor.Entity {
		return nil, &common.ErrStateSource{Entity: ctor.Entity, Message: "entity is empty"}
	}

	s := &source{
		logger:    ctor.Logger,
		store:     ctor.Store,
		entity:    ctor.Entity,
		attribute: ctor.Attribute,
		interval:  ctor.Interval,
		stop:      make(chan struct{}),
	}

	if s.interval <= 0 {
		s.interval = DefaultInterval
	}

	if "" != ctor.Expression {
		expr, err := helpers.NewParser().Compile(ctor.Expression)
		if err != nil {
			return nil, &common.ErrStateSource{Entity: ctor.Entity,
				Message: fmt.Sprintf("wrong expression: %s", err.Error())}
		}

		s.expr = expr
	}

	s.refresh()
	s.unsubscribe = s.store.SubscribeStateChanges(func(e providers.StateChangedEvent) {
		if e.EntityID == s.entity {
			s.refresh()
		}
	})

	s.wg.Add(1)
	go s.loop()

	s.logger.Debug("Value source started", common.LogSystemToken, logSystem,
		common.LogEntityToken, s.entity, common.LogAttributeToken, s.attribute)
	return s, nil
}

// Value returns latest raw value. Nil means unavailable.
func (s *source) Value() interface{} {
	s.RLock()
	defer s.RUnlock()
	return s.value
}

// NumericValue returns value clamped to the range.
// Minimum is returned if value is unavailable or not numeric.
func (s *source) NumericValue(min, max float64) float64 {
	v := s.Value()
	if nil == v {
		return min
	}

	f, ok := helpers.ToFloat(v)
	if !ok {
		s.logger.Debug(fmt.Sprintf("Value %v is not numeric, using minimum", v), common.LogSystemToken, logSystem,
			common.LogEntityToken, s.entity)
		return min
	}

	return helpers.ClampFloat(f, min, max)
}

// Normalized returns value converted into 0-1 range.
func (s *source) Normalized(min, max float64) float64 {
	return mapper.Normalize(s.NumericValue(min, max), min, max)
}

// Stop stops refreshing.
func (s *source) Stop() {
	s.stopOnce.Do(func() {
		if nil != s.unsubscribe {
			s.unsubscribe()
		}

		close(s.stop)
		s.wg.Wait()
	})
}

// Periodic refresh.
func (s *source) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.refresh()
		}
	}
}

// Reads value from the store.
func (s *source) refresh() {
	value := s.read()

	s.Lock()
	s.value = value
	s.Unlock()
}

// Resolves current value.
func (s *source) read() interface{} {
	e, ok := s.store.Get(s.entity)
	if !ok || state.IsUnavailable(e.State) {
		return nil
	}

	var raw interface{} = e.State
	if "" != s.attribute {
		raw, ok = e.Attributes[s.attribute]
		if !ok {
			return nil
		}
	}

	if nil == s.expr {
		return raw
	}

	res, err := s.expr.Evaluate(map[string]interface{}{
		"value":      raw,
		"state":      e.State,
		"attributes": e.Attributes,
	})

	if err != nil {
		s.logger.Warn(fmt.Sprintf("Failed to evaluate value expression: %s", err.Error()),
			common.LogSystemToken, logSystem, common.LogEntityToken, s.entity)
		return nil
	}

	return res
}
