package trigger

// Known trigger types.
const (
	TypeStateChange = "state_change"
	TypeThreshold   = "threshold"
	TypeTime        = "time"
	TypeEvent       = "event"
)

// DefaultComparison is used by threshold triggers without explicit comparison.
const DefaultComparison = ">"

// Data keys passed to callbacks.
const (
	DataValue     = "value"
	DataState     = "state"
	DataEntity    = "entity_id"
	DataThreshold = "threshold"
	DataTime      = "time"
	DataEvent     = "event_type"
	DataEventData = "event_data"
)

// Fired trigger, queued for callbacks processing.
type firedTrigger struct {
	id   string
	data map[string]interface{}
}
