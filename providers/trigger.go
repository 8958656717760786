package providers

import "github.com/go-home-io/wled-effects/plugins/effect"

// TriggerCallback is invoked when trigger fires.
type TriggerCallback func(triggerID string, data map[string]interface{}) error

// ITriggerManagerProvider defines watcher of state, threshold, time and event triggers.
type ITriggerManagerProvider interface {
	AddTrigger(settings *effect.TriggerSettings, callback TriggerCallback) (string, error)
	Setup() error
	Shutdown()
	Count() int
}
