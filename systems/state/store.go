// Package state contains entity state store and external state pollers.
package state

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/helpers"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/google/go-cmp/cmp"
	"github.com/kelindar/event"
)

// Logger system.
const logSystem = "state"

// States which mean that entity value is missing.
var unavailableStates = []string{"unavailable", "unknown", ""}

// ConstructStore has data required for a new state store.
type ConstructStore struct {
	Logger common.ILoggerProvider
}

// State store implementation.
type store struct {
	sync.RWMutex

	logger     common.ILoggerProvider
	entities   map[string]*providers.EntityState
	dispatcher *event.Dispatcher
	closeOnce  sync.Once
}

// NewStore constructs a new state store.
func NewStore(ctor *ConstructStore) providers.IStateProvider {
	return &store{
		logger:     ctor.Logger,
		entities:   make(map[string]*providers.EntityState),
		dispatcher: event.NewDispatcher(),
	}
}

// IsUnavailable checks whether raw state means missing value.
func IsUnavailable(state interface{}) bool {
	if nil == state {
		return true
	}

	str, ok := state.(string)
	return ok && helpers.SliceContainsString(unavailableStates, strings.ToLower(strings.TrimSpace(str)))
}

// Get returns copy of entity state.
func (s *store) Get(entityID string) (*providers.EntityState, bool) {
	s.RLock()
	defer s.RUnlock()

	e, ok := s.entities[entityID]
	if !ok {
		return nil, false
	}

	return copyState(e), true
}

// Attribute returns entity attribute. Empty attribute name returns state itself.
func (s *store) Attribute(entityID string, attribute string) (interface{}, bool) {
	s.RLock()
	defer s.RUnlock()

	e, ok := s.entities[entityID]
	if !ok {
		return nil, false
	}

	if "" == attribute {
		return e.State, true
	}

	v, ok := e.Attributes[attribute]
	return v, ok
}

// Set updates entity and publishes event if anything changed.
func (s *store) Set(entityID string, state interface{}, attributes map[string]interface{}) bool {
	if nil == attributes {
		attributes = make(map[string]interface{})
	}

	s.Lock()
	old, ok := s.entities[entityID]
	if ok && helpers.StateDeepEqual(old.State, state) && cmp.Equal(old.Attributes, attributes) {
		s.Unlock()
		return false
	}

	updated := &providers.EntityState{
		EntityID:    entityID,
		State:       state,
		Attributes:  attributes,
		LastChanged: time.Now().UTC(),
	}
	s.entities[entityID] = updated
	s.Unlock()

	s.logger.Debug(fmt.Sprintf("State changed to %v", state), common.LogSystemToken, logSystem,
		common.LogEntityToken, entityID)

	ev := providers.StateChangedEvent{EntityID: entityID, NewState: copyState(updated)}
	if ok {
		ev.OldState = copyState(old)
	}

	event.Publish(s.dispatcher, ev)
	return true
}

// All returns all entities sorted by id.
func (s *store) All() []*providers.EntityState {
	s.RLock()
	defer s.RUnlock()

	result := make([]*providers.EntityState, 0, len(s.entities))
	for _, v := range s.entities {
		result = append(result, copyState(v))
	}

	sort.Slice(result, func(i, j int) bool { return result[i].EntityID < result[j].EntityID })
	return result
}

// FireEvent publishes custom event.
func (s *store) FireEvent(eventType string, data map[string]interface{}) {
	if nil == data {
		data = make(map[string]interface{})
	}

	s.logger.Debug(fmt.Sprintf("Firing event %s", eventType), common.LogSystemToken, logSystem)
	event.Publish(s.dispatcher, providers.CustomEvent{EventType: eventType, Data: data, Time: time.Now().UTC()})
}

// SubscribeStateChanges subscribes to state changes. Returns unsubscribe function.
func (s *store) SubscribeStateChanges(handler func(providers.StateChangedEvent)) func() {
	return event.Subscribe(s.dispatcher, handler)
}

// SubscribeEvents subscribes to custom events. Returns unsubscribe function.
func (s *store) SubscribeEvents(handler func(providers.CustomEvent)) func() {
	return event.Subscribe(s.dispatcher, handler)
}

// Close stops event dispatching.
func (s *store) Close() {
	s.closeOnce.Do(func() {
		s.dispatcher.Close()
	})
}

// Copies entity state.
func copyState(e *providers.EntityState) *providers.EntityState {
	attrs := make(map[string]interface{}, len(e.Attributes))
	for k, v := range e.Attributes {
		attrs[k] = v
	}

	return &providers.EntityState{
		EntityID:    e.EntityID,
		State:       e.State,
		Attributes:  attrs,
		LastChanged: e.LastChanged,
	}
}
