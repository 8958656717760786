package trigger

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/plugins/helpers"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/systems/metrics"
	"github.com/go-home-io/wled-effects/utils"
	"github.com/pkg/errors"
)

const (
	logSystem = "trigger"

	// Size of fired triggers queue.
	queueSize = 16
)

// ConstructTriggerManager has data required for a new trigger manager.
type ConstructTriggerManager struct {
	Logger common.ILoggerProvider
	Store  providers.IStateProvider
	Cron   providers.ICronProvider
	Effect string
	Now    func() time.Time
}

// Trigger manager implementation.
type manager struct {
	sync.Mutex
	logger common.ILoggerProvider
	store  providers.IStateProvider
	cron   providers.ICronProvider
	parser helpers.ITemplateParser
	effect string
	now    func() time.Time

	wrappers []*wrapper
	byID     map[string]*wrapper

	unsubscribe []func()
	cronIDs     []int

	triggerChan chan *firedTrigger
	done        chan struct{}
	finished    chan struct{}
	started     bool
}

// NewTriggerManager creates a new trigger manager for a single effect.
func NewTriggerManager(ctor *ConstructTriggerManager) providers.ITriggerManagerProvider {
	now := ctor.Now
	if nil == now {
		now = time.Now
	}

	return &manager{
		logger:   ctor.Logger,
		store:    ctor.Store,
		cron:     ctor.Cron,
		parser:   helpers.NewParser(),
		effect:   ctor.Effect,
		now:      now,
		wrappers: make([]*wrapper, 0),
		byID:     make(map[string]*wrapper),
	}
}

// AddTrigger registers callback for the trigger.
// Callbacks added with the same trigger id share a single watcher.
func (m *manager) AddTrigger(settings *effect.TriggerSettings, callback providers.TriggerCallback) (string, error) {
	m.Lock()
	defer m.Unlock()

	if m.started {
		return "", &ErrAlreadyStarted{}
	}

	if nil == settings {
		return "", &ErrInvalidTrigger{Message: "empty settings"}
	}

	id := settings.ID
	if "" == id {
		id = fmt.Sprintf("%s_%d", settings.Type, len(m.wrappers))
	}

	w, ok := m.byID[id]
	if !ok {
		var err error
		w, err = newWrapper(id, settings, m.logger, m.parser)
		if err != nil {
			m.logger.Error("Failed to add trigger", err, common.LogSystemToken, logSystem,
				common.LogEffectToken, m.effect, common.LogTriggerToken, id)
			return "", err
		}

		m.byID[id] = w
		m.wrappers = append(m.wrappers, w)
	}

	if nil != callback {
		w.addCallback(callback)
	}

	return id, nil
}

// Setup starts watching for state, events and time.
func (m *manager) Setup() error {
	m.Lock()
	defer m.Unlock()

	if m.started {
		return &ErrAlreadyStarted{}
	}

	m.unsubscribe = make([]func(), 0)
	m.cronIDs = make([]int, 0)
	m.triggerChan = make(chan *firedTrigger, queueSize)
	m.done = make(chan struct{})

	needStates := false
	needEvents := false
	for _, w := range m.wrappers {
		switch w.settings.Type {
		case TypeStateChange, TypeThreshold:
			needStates = true
		case TypeEvent:
			needEvents = true
		case TypeTime:
			if err := m.scheduleTime(w); err != nil {
				m.cleanup()
				return err
			}
		}
	}

	if needStates {
		m.unsubscribe = append(m.unsubscribe, m.store.SubscribeStateChanges(m.onStateChanged))
	}

	if needEvents {
		m.unsubscribe = append(m.unsubscribe, m.store.SubscribeEvents(m.onEvent))
	}

	m.started = true
	m.finished = make(chan struct{})
	go m.processTriggers(m.triggerChan, m.done, m.finished)

	m.logger.Debug("Triggers are set up", common.LogSystemToken, logSystem,
		common.LogEffectToken, m.effect, "count", fmt.Sprintf("%d", len(m.wrappers)))
	return nil
}

// Shutdown removes all listeners and waits for queued callbacks.
func (m *manager) Shutdown() {
	m.Lock()
	if !m.started {
		m.Unlock()
		return
	}

	m.cleanup()
	m.started = false
	close(m.done)
	finished := m.finished
	m.Unlock()

	<-finished
}

// Count returns number of registered triggers.
func (m *manager) Count() int {
	m.Lock()
	defer m.Unlock()
	return len(m.wrappers)
}

// Removes listeners and scheduled jobs.
func (m *manager) cleanup() {
	for _, v := range m.unsubscribe {
		v()
	}

	for _, v := range m.cronIDs {
		m.cron.RemoveFunc(v)
	}

	m.unsubscribe = nil
	m.cronIDs = nil
}

// Schedules time trigger.
func (m *manager) scheduleTime(w *wrapper) error {
	id, err := m.cron.AddFunc(utils.DailySpec(w.hour, w.minute), func() {
		m.fire(w, map[string]interface{}{
			DataTime: m.now().Format("15:04"),
		})
	})

	if err != nil {
		m.logger.Error("Failed to schedule time trigger", err, common.LogSystemToken, logSystem,
			common.LogTriggerToken, w.ID)
		return errors.Wrap(err, "cron")
	}

	m.cronIDs = append(m.cronIDs, id)
	return nil
}

// Returns registered wrappers.
func (m *manager) getWrappers() []*wrapper {
	m.Lock()
	defer m.Unlock()

	res := make([]*wrapper, len(m.wrappers))
	copy(res, m.wrappers)
	return res
}

// Processes entity state changes.
func (m *manager) onStateChanged(ev providers.StateChangedEvent) {
	for _, w := range m.getWrappers() {
		if data, ok := w.checkState(ev); ok {
			m.fire(w, data)
		}
	}
}

// Processes custom events.
func (m *manager) onEvent(ev providers.CustomEvent) {
	for _, w := range m.getWrappers() {
		if data, ok := w.checkEvent(ev); ok {
			m.fire(w, data)
		}
	}
}

// Queues fired trigger.
func (m *manager) fire(w *wrapper, data map[string]interface{}) {
	if !w.isInActiveTimeWindow(m.now()) {
		m.logger.Debug("Triggered but outside of active window", common.LogSystemToken, logSystem,
			common.LogTriggerToken, w.ID)
		return
	}

	m.Lock()
	if !m.started {
		m.Unlock()
		return
	}

	queue := m.triggerChan
	done := m.done
	m.Unlock()

	select {
	case queue <- &firedTrigger{id: w.ID, data: data}:
	case <-done:
	}
}

// Processes fired triggers queue.
// Callbacks are invoked sequentially in the order triggers were fired.
func (m *manager) processTriggers(queue chan *firedTrigger, done chan struct{}, finished chan struct{}) {
	defer close(finished)

	for {
		select {
		case <-done:
			return
		case msg := <-queue:
			m.triggered(msg)
		}
	}
}

// Invokes all callbacks of the fired trigger.
func (m *manager) triggered(msg *firedTrigger) {
	m.Lock()
	w, ok := m.byID[msg.id]
	m.Unlock()

	if !ok {
		return
	}

	m.logger.Info("Trigger fired", common.LogSystemToken, logSystem,
		common.LogEffectToken, m.effect, common.LogTriggerToken, msg.id)
	metrics.IncrementTriggers(m.effect, w.settings.Type)

	for _, cb := range w.getCallbacks() {
		m.invoke(msg, cb)
	}
}

// Invokes a single callback, errors and panics don't affect other callbacks.
func (m *manager) invoke(msg *firedTrigger, cb providers.TriggerCallback) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Trigger callback panicked", fmt.Errorf("%v", r), common.LogSystemToken, logSystem,
				common.LogEffectToken, m.effect, common.LogTriggerToken, msg.id)
		}
	}()

	if err := cb(msg.id, msg.data); err != nil {
		m.logger.Error("Trigger callback failed", err, common.LogSystemToken, logSystem,
			common.LogEffectToken, m.effect, common.LogTriggerToken, msg.id)
	}
}
