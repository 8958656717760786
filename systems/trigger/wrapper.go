// Package trigger contains effect triggers implementation.
package trigger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/plugins/helpers"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/utils"
	"github.com/gobwas/glob"
)

// Describes single trigger wrapper object.
type wrapper struct {
	sync.Mutex
	ID       string
	settings *effect.TriggerSettings
	logger   common.ILoggerProvider

	entity     glob.Glob
	eventType  glob.Glob
	comparison helpers.ITemplateExpression
	hour       int
	minute     int

	// Last threshold evaluation per entity.
	above map[string]bool

	callbacks []providers.TriggerCallback

	activeWindow bool
	from         int
	to           int
}

// Creates a new wrapper and validates type-specific settings.
func newWrapper(id string, settings *effect.TriggerSettings, logger common.ILoggerProvider,
	parser helpers.ITemplateParser) (*wrapper, error) {
	w := &wrapper{
		ID:        id,
		settings:  settings,
		logger:    logger,
		above:     make(map[string]bool),
		callbacks: make([]providers.TriggerCallback, 0),
	}

	var err error
	switch settings.Type {
	case TypeStateChange, TypeThreshold:
		if "" == settings.Entity {
			return nil, &ErrInvalidTrigger{ID: id, Message: "entity_id is required"}
		}

		w.entity, err = glob.Compile(settings.Entity)
		if err != nil {
			return nil, &ErrInvalidTrigger{ID: id, Message: err.Error()}
		}

		if TypeStateChange == settings.Type {
			break
		}

		if nil == settings.Threshold {
			return nil, &ErrInvalidTrigger{ID: id, Message: "threshold is required"}
		}

		cmp := settings.Comparison
		if "" == cmp {
			cmp = DefaultComparison
		}

		w.comparison, err = parser.Compile(fmt.Sprintf("value %s threshold", cmp))
		if err != nil {
			return nil, &ErrInvalidTrigger{ID: id, Message: err.Error()}
		}
	case TypeTime:
		w.hour, w.minute, err = utils.ParseHHMM(settings.Time)
		if err != nil {
			return nil, &ErrInvalidTrigger{ID: id, Message: "time_pattern must be HH:MM"}
		}
	case TypeEvent:
		if "" == settings.EventType {
			return nil, &ErrInvalidTrigger{ID: id, Message: "event_type is required"}
		}

		w.eventType, err = glob.Compile(settings.EventType)
		if err != nil {
			return nil, &ErrInvalidTrigger{ID: id, Message: err.Error()}
		}
	default:
		return nil, &ErrInvalidTrigger{ID: id, Message: fmt.Sprintf("unknown type %s", settings.Type)}
	}

	w.loadActiveWindow(settings.ActiveHrs)
	return w, nil
}

// Returns a copy of registered callbacks.
func (w *wrapper) getCallbacks() []providers.TriggerCallback {
	w.Lock()
	defer w.Unlock()

	cb := make([]providers.TriggerCallback, len(w.callbacks))
	copy(cb, w.callbacks)
	return cb
}

// Adds a new callback.
func (w *wrapper) addCallback(cb providers.TriggerCallback) {
	w.Lock()
	defer w.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Checks state change against state_change and threshold triggers.
// Returns callback data and whether trigger has fired.
func (w *wrapper) checkState(ev providers.StateChangedEvent) (map[string]interface{}, bool) {
	if nil == w.entity || nil == ev.NewState || !w.entity.Match(ev.EntityID) {
		return nil, false
	}

	value := w.watchedValue(ev.NewState)

	if TypeStateChange == w.settings.Type {
		if nil != ev.OldState && "" != w.settings.Attribute &&
			helpers.StateDeepEqual(w.watchedValue(ev.OldState), value) {
			return nil, false
		}

		return map[string]interface{}{
			DataValue:  value,
			DataState:  ev.NewState.State,
			DataEntity: ev.EntityID,
		}, true
	}

	num, ok := helpers.ToFloat(value)
	if !ok {
		w.logger.Debug("Ignoring non-numeric value", common.LogTriggerToken, w.ID,
			common.LogEntityToken, ev.EntityID)
		return nil, false
	}

	res, err := w.comparison.Evaluate(map[string]interface{}{
		"value":     num,
		"threshold": *w.settings.Threshold,
	})
	if err != nil {
		w.logger.Error("Failed to evaluate threshold", err, common.LogTriggerToken, w.ID)
		return nil, false
	}

	crossed, _ := res.(bool)

	w.Lock()
	prev := w.above[ev.EntityID]
	w.above[ev.EntityID] = crossed
	w.Unlock()

	if !crossed || prev {
		return nil, false
	}

	return map[string]interface{}{
		DataValue:     num,
		DataThreshold: *w.settings.Threshold,
		DataEntity:    ev.EntityID,
	}, true
}

// Checks custom event against event trigger.
func (w *wrapper) checkEvent(ev providers.CustomEvent) (map[string]interface{}, bool) {
	if nil == w.eventType || !w.eventType.Match(ev.EventType) {
		return nil, false
	}

	for k, v := range w.settings.EventData {
		actual, ok := ev.Data[k]
		if !ok || !helpers.StateDeepEqual(v, actual) {
			return nil, false
		}
	}

	return map[string]interface{}{
		DataEvent:     ev.EventType,
		DataEventData: ev.Data,
	}, true
}

// Returns either entity state or configured attribute.
func (w *wrapper) watchedValue(state *providers.EntityState) interface{} {
	if "" == w.settings.Attribute {
		return state.State
	}

	return state.Attributes[w.settings.Attribute]
}

// Determines whether local time is within operation hours.
func (w *wrapper) isInActiveTimeWindow(nowT time.Time) bool {
	if !w.activeWindow {
		return true
	}

	now := nowT.Hour()*60 + nowT.Minute()
	if w.from > w.to {
		return now <= w.to || now >= w.from
	}

	return w.from <= now && now <= w.to
}

// Loads active time window.
// Format is 3:04PM-5:00PM.
func (w *wrapper) loadActiveWindow(window string) {
	w.activeWindow = false
	if len(window) > 0 {
		parts := strings.Split(window, "-")
		if len(parts) != 2 {
			w.logger.Warn("Active window is wrong, ignoring", common.LogTriggerToken, w.ID)
			return
		}

		from, err := time.Parse(time.Kitchen, parts[0])
		if err != nil {
			w.logger.Warn("Active window FROM is wrong, ignoring", common.LogTriggerToken, w.ID)
			return
		}

		to, err := time.Parse(time.Kitchen, parts[1])
		if err != nil {
			w.logger.Warn("Active window TO is wrong, ignoring", common.LogTriggerToken, w.ID)
			return
		}

		w.from = from.Hour()*60 + from.Minute()
		w.to = to.Hour()*60 + to.Minute()
		w.activeWindow = true
	}
}
