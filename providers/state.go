package providers

import "time"

// Event type identifiers.
const (
	EventTypeStateChanged uint32 = iota + 1
	EventTypeCustom
)

// IStateProvider defines entity state store.
type IStateProvider interface {
	Get(entityID string) (*EntityState, bool)
	Attribute(entityID string, attribute string) (interface{}, bool)
	Set(entityID string, state interface{}, attributes map[string]interface{}) bool
	All() []*EntityState
	FireEvent(eventType string, data map[string]interface{})
	SubscribeStateChanges(handler func(StateChangedEvent)) func()
	SubscribeEvents(handler func(CustomEvent)) func()
	Close()
}

// IStatePollerProvider defines external state source.
type IStatePollerProvider interface {
	Start() error
	Stop()
}

// EntityState defines external entity state.
type EntityState struct {
	EntityID    string                 `json:"entity_id"`
	State       interface{}            `json:"state"`
	Attributes  map[string]interface{} `json:"attributes"`
	LastChanged time.Time              `json:"last_changed"`
}

// StateChangedEvent is published when entity state changes.
type StateChangedEvent struct {
	EntityID string
	OldState *EntityState
	NewState *EntityState
}

// Type returns the event type identifier.
func (e StateChangedEvent) Type() uint32 { return EventTypeStateChanged }

// CustomEvent is published by FireEvent.
type CustomEvent struct {
	EventType string
	Data      map[string]interface{}
	Time      time.Time
}

// Type returns the event type identifier.
func (e CustomEvent) Type() uint32 { return EventTypeCustom }
