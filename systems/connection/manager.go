// Package connection contains bounded cache of device clients.
package connection

import (
	"container/list"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/systems/metrics"
	"github.com/go-home-io/wled-effects/systems/wled"
	"golang.org/x/sync/singleflight"
)

const (
	// Logger system.
	logSystem = "connection_manager"

	// DefaultCapacity is the maximum number of cached clients.
	DefaultCapacity = 20
	// DefaultProbeTimeout limits connectivity check of a new client.
	DefaultProbeTimeout = 10 * time.Second
)

// ClientFactory creates a new device client.
type ClientFactory func(host string) providers.IDeviceClientProvider

// ConstructConnectionManager has data required for a new connection manager.
type ConstructConnectionManager struct {
	Logger       common.ILoggerProvider
	Capacity     int
	ProbeTimeout time.Duration
	Factory      ClientFactory
}

// Cached client.
type entry struct {
	host   string
	client providers.IDeviceClientProvider
}

// LRU cache implementation.
type manager struct {
	sync.Mutex

	logger       common.ILoggerProvider
	capacity     int
	probeTimeout time.Duration
	factory      ClientFactory

	order   *list.List
	clients map[string]*list.Element
	group   singleflight.Group
}

// NewConnectionManager constructs a new connection manager.
func NewConnectionManager(ctor *ConstructConnectionManager) providers.IConnectionManagerProvider {
	m := &manager{
		logger:       ctor.Logger,
		capacity:     ctor.Capacity,
		probeTimeout: ctor.ProbeTimeout,
		factory:      ctor.Factory,
		order:        list.New(),
		clients:      make(map[string]*list.Element),
	}

	if m.capacity <= 0 {
		m.capacity = DefaultCapacity
	}

	if m.probeTimeout <= 0 {
		m.probeTimeout = DefaultProbeTimeout
	}

	if nil == m.factory {
		m.factory = func(host string) providers.IDeviceClientProvider {
			return wled.NewClient(&wled.ConstructClient{Logger: ctor.Logger, Host: host})
		}
	}

	m.logger.Debug("Connection manager initialized", common.LogSystemToken, logSystem)
	return m
}

// GetClient returns cached client or creates a new one.
// Concurrent calls for the same host share a single connection attempt.
func (m *manager) GetClient(ctx context.Context, host string) (providers.IDeviceClientProvider, error) {
	if client, ok := m.cached(host); ok {
		m.logger.Debug("Reusing existing client", common.LogSystemToken, logSystem,
			common.LogDeviceHostToken, host)
		return client, nil
	}

	v, err, _ := m.group.Do(host, func() (interface{}, error) {
		if client, ok := m.cached(host); ok {
			return client, nil
		}

		return m.connect(ctx, host)
	})

	if err != nil {
		return nil, err
	}

	return v.(providers.IDeviceClientProvider), nil
}

// CloseClient closes and removes a single client.
func (m *manager) CloseClient(host string) {
	m.Lock()
	el, ok := m.clients[host]
	if ok {
		m.order.Remove(el)
		delete(m.clients, host)
	}
	count := len(m.clients)
	m.Unlock()

	if !ok {
		return
	}

	metrics.SetCachedClients(count)
	m.close(el.Value.(*entry))
}

// CloseAll closes every cached client. Failing clients don't block the others.
func (m *manager) CloseAll() {
	m.Lock()
	entries := make([]*entry, 0, len(m.clients))
	for el := m.order.Front(); el != nil; el = el.Next() {
		entries = append(entries, el.Value.(*entry))
	}

	m.order.Init()
	m.clients = make(map[string]*list.Element)
	m.Unlock()

	m.logger.Info(fmt.Sprintf("Closing all connections (%d clients)", len(entries)),
		common.LogSystemToken, logSystem)
	for _, v := range entries {
		m.close(v)
	}

	metrics.SetCachedClients(0)
}

// ClientCount returns number of cached clients.
func (m *manager) ClientCount() int {
	m.Lock()
	defer m.Unlock()
	return len(m.clients)
}

// ConnectedHosts returns sorted cached hosts.
func (m *manager) ConnectedHosts() []string {
	m.Lock()
	defer m.Unlock()

	hosts := make([]string, 0, len(m.clients))
	for k := range m.clients {
		hosts = append(hosts, k)
	}

	sort.Strings(hosts)
	return hosts
}

// TestConnection checks device availability without caching the client.
func (m *manager) TestConnection(ctx context.Context, host string) bool {
	client := m.factory(host)
	defer m.close(&entry{host: host, client: client})

	ctx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	if err := client.TestConnection(ctx); err != nil {
		m.logger.Debug(fmt.Sprintf("Connection test failed: %s", err.Error()), common.LogSystemToken, logSystem,
			common.LogDeviceHostToken, host)
		return false
	}

	return true
}

// Returns cached client, refreshing its LRU position.
func (m *manager) cached(host string) (providers.IDeviceClientProvider, bool) {
	m.Lock()
	defer m.Unlock()

	el, ok := m.clients[host]
	if !ok {
		return nil, false
	}

	m.order.MoveToFront(el)
	return el.Value.(*entry).client, true
}

// Evicts least recently used client if needed, creates and probes a new one.
func (m *manager) connect(ctx context.Context, host string) (providers.IDeviceClientProvider, error) {
	m.Lock()
	evicted := m.evictLocked(m.capacity - 1)
	m.Unlock()
	m.closeEvicted(evicted)

	m.logger.Info("Creating new client", common.LogSystemToken, logSystem, common.LogDeviceHostToken, host)
	client := m.factory(host)

	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	if err := client.TestConnection(probeCtx); err != nil {
		m.logger.Error("Failed to connect to device", err, common.LogSystemToken, logSystem,
			common.LogDeviceHostToken, host)
		m.close(&entry{host: host, client: client})
		return nil, &common.ErrConnection{Host: host, Message: "connection test failed", Err: err}
	}

	// Other hosts might have been added while probing.
	m.Lock()
	m.clients[host] = m.order.PushFront(&entry{host: host, client: client})
	evicted = m.evictLocked(m.capacity)
	count := len(m.clients)
	m.Unlock()
	m.closeEvicted(evicted)

	metrics.SetCachedClients(count)
	return client, nil
}

// Removes least recently used clients until no more than limit are left.
// Must be called under the lock.
func (m *manager) evictLocked(limit int) []*entry {
	evicted := make([]*entry, 0)
	for len(m.clients) > limit {
		el := m.order.Back()
		e := el.Value.(*entry)
		m.order.Remove(el)
		delete(m.clients, e.host)
		evicted = append(evicted, e)
	}

	return evicted
}

// Closes evicted clients.
func (m *manager) closeEvicted(evicted []*entry) {
	for _, v := range evicted {
		m.logger.Info(fmt.Sprintf("Client cache full (%d), evicting oldest", m.capacity),
			common.LogSystemToken, logSystem, common.LogDeviceHostToken, v.host)
		m.close(v)
	}
}

// Closes client logging failures.
func (m *manager) close(e *entry) {
	if err := e.client.Close(); err != nil {
		m.logger.Error("Error closing client", err, common.LogSystemToken, logSystem,
			common.LogDeviceHostToken, e.host)
	}
}
