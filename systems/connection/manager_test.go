package connection

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-home-io/wled-effects/mocks"
	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/systems/wled"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Client which fails to close.
type brokenClient struct {
	providers.IDeviceClientProvider
	closed *int32
}

// Close fails.
func (c *brokenClient) Close() error {
	atomic.AddInt32(c.closed, 1)
	c.IDeviceClientProvider.Close() // nolint: errcheck
	return errors.New("close failed")
}

// Returns manager with counting factory.
func getManager(capacity int, created *int32, closed *int32) providers.IConnectionManagerProvider {
	logger := mocks.FakeNewLogger(nil)
	return NewConnectionManager(&ConstructConnectionManager{
		Logger:       logger,
		Capacity:     capacity,
		ProbeTimeout: time.Second,
		Factory: func(host string) providers.IDeviceClientProvider {
			atomic.AddInt32(created, 1)
			return &brokenClient{
				IDeviceClientProvider: wled.NewClient(&wled.ConstructClient{
					Logger:     logger,
					Host:       host,
					MaxRetries: 1,
				}),
				closed: closed,
			}
		},
	})
}

// Tests client reuse.
func TestReuse(t *testing.T) {
	fake := mocks.FakeNewWLED("esp32", 30)
	defer fake.Close()

	var created, closed int32
	m := getManager(2, &created, &closed)
	c1, err := m.GetClient(context.Background(), fake.URL())
	require.NoError(t, err)
	c2, err := m.GetClient(context.Background(), fake.URL())
	require.NoError(t, err)

	assert.Equal(t, c1, c2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&created))
	assert.Equal(t, 1, m.ClientCount())
	assert.Equal(t, []string{fake.URL()}, m.ConnectedHosts())
}

// Tests LRU eviction.
func TestEviction(t *testing.T) {
	fakes := make([]*mocks.FakeWLED, 3)
	for ii := range fakes {
		fakes[ii] = mocks.FakeNewWLED("esp32", 30)
		defer fakes[ii].Close()
	}

	var created, closed int32
	m := getManager(2, &created, &closed)
	ctx := context.Background()

	first, err := m.GetClient(ctx, fakes[0].URL())
	require.NoError(t, err)
	_, err = m.GetClient(ctx, fakes[1].URL())
	require.NoError(t, err)
	_, err = m.GetClient(ctx, fakes[0].URL())
	require.NoError(t, err)
	_, err = m.GetClient(ctx, fakes[2].URL())
	require.NoError(t, err)

	assert.Equal(t, 2, m.ClientCount())
	assert.Equal(t, int32(1), atomic.LoadInt32(&closed))
	assert.ElementsMatch(t, []string{fakes[0].URL(), fakes[2].URL()}, m.ConnectedHosts())

	_, err = first.GetState(ctx)
	assert.NoError(t, err)
}

// Tests that failed probe doesn't cache client.
func TestProbeFailure(t *testing.T) {
	fake := mocks.FakeNewWLED("esp32", 30)
	fake.Close()

	var created, closed int32
	m := getManager(2, &created, &closed)
	_, err := m.GetClient(context.Background(), fake.URL())
	require.Error(t, err)
	assert.IsType(t, &common.ErrConnection{}, err)
	assert.Equal(t, 0, m.ClientCount())
	assert.Equal(t, int32(1), atomic.LoadInt32(&closed))
	assert.False(t, m.TestConnection(context.Background(), fake.URL()))
}

// Tests concurrent creation for the same host.
func TestConcurrentCreation(t *testing.T) {
	fake := mocks.FakeNewWLED("esp32", 30)
	defer fake.Close()

	var created, closed int32
	m := getManager(5, &created, &closed)

	wg := sync.WaitGroup{}
	for ii := 0; ii < 10; ii++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.GetClient(context.Background(), fake.URL())
			assert.NoError(t, err)
		}()
	}

	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&created))
	assert.Equal(t, 1, m.ClientCount())
}

// Tests concurrent creation for different hosts respects capacity.
func TestConcurrentCapacity(t *testing.T) {
	fakes := make([]*mocks.FakeWLED, 6)
	for ii := range fakes {
		fakes[ii] = mocks.FakeNewWLED("esp32", 30)
		defer fakes[ii].Close()
	}

	var created, closed int32
	m := getManager(2, &created, &closed)

	wg := sync.WaitGroup{}
	for _, v := range fakes {
		wg.Add(1)
		go func(host string) {
			defer wg.Done()
			_, err := m.GetClient(context.Background(), host)
			assert.NoError(t, err)
		}(v.URL())
	}

	wg.Wait()
	assert.Equal(t, 2, m.ClientCount())
	assert.Equal(t, 2, len(m.ConnectedHosts()))
	assert.Equal(t, int32(6), atomic.LoadInt32(&created))
	assert.Equal(t, int32(4), atomic.LoadInt32(&closed))
}

// Tests closing clients.
func TestCloseAll(t *testing.T) {
	fakes := make([]*mocks.FakeWLED, 3)
	for ii := range fakes {
		fakes[ii] = mocks.FakeNewWLED("esp32", 30)
		defer fakes[ii].Close()
	}

	var created, closed int32
	m := getManager(5, &created, &closed)
	for _, v := range fakes {
		_, err := m.GetClient(context.Background(), v.URL())
		require.NoError(t, err)
	}

	m.CloseClient(fakes[0].URL())
	m.CloseClient("unknown")
	assert.Equal(t, 2, m.ClientCount())

	m.CloseAll()
	assert.Equal(t, 0, m.ClientCount())
	assert.Equal(t, int32(3), atomic.LoadInt32(&closed))
	assert.Equal(t, 0, len(m.ConnectedHosts()))
}

// Tests connectivity check.
func TestTestConnection(t *testing.T) {
	fake := mocks.FakeNewWLED("esp32", 30)
	defer fake.Close()

	var created, closed int32
	m := getManager(5, &created, &closed)
	assert.True(t, m.TestConnection(context.Background(), fake.URL()))
	assert.Equal(t, 0, m.ClientCount())
	assert.Equal(t, int32(1), atomic.LoadInt32(&closed))
}
