package wled

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-home-io/wled-effects/mocks"
	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/device"
	"github.com/go-home-io/wled-effects/systems/breaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Returns client connected to the fake device.
func getClient(t *testing.T, fake *mocks.FakeWLED, buffer *BufferSettings) *client {
	c := NewClient(&ConstructClient{
		Logger:  mocks.FakeNewLogger(nil),
		Host:    fake.URL(),
		Timeout: time.Second,
		Backoff: time.Millisecond,
		Buffer:  buffer,
	}).(*client)

	t.Cleanup(func() { c.Close() }) // nolint: errcheck
	return c
}

// Returns LED indexes from all per-LED posts in order.
func ledIndexes(t *testing.T, posts []*device.StateRequest) ([]int, int) {
	indexes := make([]int, 0)
	batches := 0
	for _, p := range posts {
		for _, s := range p.Segments {
			if 0 == len(s.LEDs) {
				continue
			}

			batches++
			assignments, err := s.LEDs.Expand()
			require.NoError(t, err)
			for _, v := range assignments {
				indexes = append(indexes, v.Index)
			}
		}
	}

	return indexes, batches
}

// Tests base URL conversion.
func TestBaseURL(t *testing.T) {
	data := map[string]string{
		"192.168.1.10":          "http://192.168.1.10",
		"wled.local:8080":       "http://wled.local:8080",
		"http://127.0.0.1:123/": "http://127.0.0.1:123",
		"https://wled":          "https://wled",
	}

	for k, v := range data {
		assert.Equal(t, v, BaseURL(k))
	}
}

// Tests buffer heuristic.
func TestBufferSettings(t *testing.T) {
	b := NewBufferSettings()
	assert.Equal(t, 744, b.Estimate(60))
	assert.Equal(t, 798, b.BatchSize(MaxBufferESP8266))
	assert.Equal(t, 1918, b.BatchSize(MaxBufferESP32))
	assert.Equal(t, 1, b.BatchSize(10))
	assert.Equal(t, MaxBufferESP32, b.ForArch("ESP32-S3"))
	assert.Equal(t, MaxBufferESP8266, b.ForArch("esp8266"))
	assert.Equal(t, MaxBufferESP8266, b.ForArch(""))
}

// Tests queries and info cache.
func TestQueries(t *testing.T) {
	fake := mocks.FakeNewWLED("esp32", 60)
	defer fake.Close()
	c := getClient(t, fake, nil)
	ctx := context.Background()

	state, err := c.GetState(ctx)
	require.NoError(t, err)
	assert.True(t, state.On)
	assert.Equal(t, 1, len(state.Segments))

	info, err := c.GetInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, info.LEDs.Count)

	_, err = c.GetInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, MaxBufferESP32, c.MaxBufferSize(ctx))
	assert.Equal(t, 2, fake.Requests())

	effects, err := c.GetEffects(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, len(effects))

	palettes, err := c.GetPalettes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Default", "Rainbow"}, palettes)
	assert.NoError(t, c.TestConnection(ctx))
}

// Tests that malformed state is rejected without network I/O.
func TestSetStateValidation(t *testing.T) {
	fake := mocks.FakeNewWLED("esp8266", 30)
	defer fake.Close()
	c := getClient(t, fake, nil)

	data := []*device.StateRequest{
		nil,
		{Brightness: device.Int(256)},
		{Brightness: device.Int(-1)},
		{On: "x"},
		{On: 1},
		{Segments: []*device.SegmentRequest{nil}},
		{Segments: []*device.SegmentRequest{{ID: 32}}},
		{Segments: []*device.SegmentRequest{{ID: 0, Brightness: device.Int(300)}}},
		{Segments: []*device.SegmentRequest{{ID: 0, Start: device.Int(10), Stop: device.Int(5)}}},
		{Segments: []*device.SegmentRequest{{ID: 0, Colors: [][]int{{1, 2}}}}},
		{Segments: []*device.SegmentRequest{{ID: 0, Colors: [][]int{{1, 2, 256}}}}},
	}

	for ii, v := range data {
		_, err := c.SetState(context.Background(), v, false)
		require.Error(t, err, "case %d", ii)
		assert.IsType(t, &common.ErrConfiguration{}, err, "case %d", ii)
	}

	assert.Equal(t, 0, fake.Requests())
}

// Tests full state response.
func TestSetStateFull(t *testing.T) {
	fake := mocks.FakeNewWLED("esp8266", 30)
	defer fake.Close()
	c := getClient(t, fake, nil)

	state, err := c.SetState(context.Background(), &device.StateRequest{Brightness: device.Int(10)}, true)
	require.NoError(t, err)
	assert.Equal(t, 10, state.Brightness)

	state, err = c.SetState(context.Background(), &device.StateRequest{Brightness: device.Int(20)}, false)
	require.NoError(t, err)
	assert.Nil(t, state)
	assert.False(t, fake.Posts()[1].Verbose)
}

// Tests retries of server errors.
func TestRetries(t *testing.T) {
	fake := mocks.FakeNewWLED("esp8266", 30)
	defer fake.Close()
	c := getClient(t, fake, nil)

	fake.FailNext(http.StatusServiceUnavailable)
	_, err := c.GetState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fake.Requests())

	fake.FailNext(http.StatusInternalServerError, http.StatusInternalServerError, http.StatusInternalServerError)
	_, err = c.GetState(context.Background())
	require.Error(t, err)
	assert.IsType(t, &common.ErrConnection{}, err)
	assert.Equal(t, &ErrStatus{Code: http.StatusInternalServerError}, err.(*common.ErrConnection).Err)
	assert.Equal(t, 5, fake.Requests())
}

// Tests that client errors are not retried.
func TestNoRetryOnClientError(t *testing.T) {
	fake := mocks.FakeNewWLED("esp8266", 30)
	defer fake.Close()
	c := getClient(t, fake, nil)

	fake.FailNext(http.StatusBadRequest)
	err := c.TurnOff(context.Background())
	require.Error(t, err)
	assert.IsType(t, &common.ErrConnection{}, err)
	assert.Equal(t, &ErrStatus{Code: http.StatusBadRequest}, err.(*common.ErrConnection).Err)
	assert.Equal(t, 1, fake.Requests())
}

// Tests connection errors.
func TestConnectionError(t *testing.T) {
	fake := mocks.FakeNewWLED("esp8266", 30)
	c := getClient(t, fake, nil)
	fake.Close()

	_, err := c.GetState(context.Background())
	require.Error(t, err)
	assert.IsType(t, &common.ErrConnection{}, err)
}

// Tests that circuit breaker stops calls to failing device.
func TestCircuitBreaker(t *testing.T) {
	fake := mocks.FakeNewWLED("esp8266", 30)
	defer fake.Close()
	logger := mocks.FakeNewLogger(nil)
	c := NewClient(&ConstructClient{
		Logger:     logger,
		Host:       fake.URL(),
		MaxRetries: 1,
		Breaker: breaker.NewCircuitBreaker(&breaker.ConstructCircuitBreaker{
			Logger:    logger,
			Threshold: 2,
			Timeout:   time.Minute,
		}),
	})
	defer c.Close() // nolint: errcheck

	fake.FailNext(http.StatusInternalServerError, http.StatusInternalServerError)
	for ii := 0; ii < 2; ii++ {
		assert.IsType(t, &common.ErrConnection{}, c.TurnOff(context.Background()))
	}

	assert.IsType(t, &common.ErrCircuitOpen{}, c.TurnOff(context.Background()))
	assert.Equal(t, 2, fake.Requests())
}

// Tests closed client.
func TestClosed(t *testing.T) {
	fake := mocks.FakeNewWLED("esp8266", 30)
	defer fake.Close()
	c := getClient(t, fake, nil)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.GetState(context.Background())
	assert.IsType(t, &common.ErrConnection{}, err)
	assert.Equal(t, 0, fake.Requests())
}

// Tests power and segment commands.
func TestSegmentCommands(t *testing.T) {
	fake := mocks.FakeNewWLED("esp8266", 30)
	defer fake.Close()
	c := getClient(t, fake, nil)
	ctx := context.Background()

	require.NoError(t, c.TurnOn(ctx, device.Int(300)))
	assert.Equal(t, 255, fake.State().Brightness)

	require.NoError(t, c.SetBrightness(ctx, -5))
	assert.Equal(t, 0, fake.State().Brightness)

	on, err := c.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, c.SetSegmentColor(ctx, 0, common.Color{R: 1, G: 2, B: 3}, common.White))
	st := fake.State()
	seg, _ := st.Segment(0)
	assert.Equal(t, [][]int{{1, 2, 3}, {255, 255, 255}}, seg.Colors)
	assert.Error(t, c.SetSegmentColor(ctx, 0, common.White, common.White, common.White, common.White))

	require.NoError(t, c.SetSegmentEffect(ctx, 0, 2, device.Int(500), device.Int(-1), nil))
	posts := fake.Posts()
	last := posts[len(posts)-1].Segments[0]
	assert.Equal(t, 255, *last.Speed)
	assert.Equal(t, 0, *last.Intensity)
	assert.Nil(t, last.Palette)

	require.NoError(t, c.FreezeSegment(ctx, 0, true))
	st = fake.State()
	seg, _ = st.Segment(0)
	assert.True(t, seg.Freeze)

	require.NoError(t, c.ClearIndividualLEDs(ctx, 0))
	st = fake.State()
	seg, _ = st.Segment(0)
	assert.False(t, seg.Freeze)
}

// Tests single LED commands.
func TestLEDCommands(t *testing.T) {
	fake := mocks.FakeNewWLED("esp8266", 30)
	defer fake.Close()
	c := getClient(t, fake, nil)
	ctx := context.Background()
	red := common.Color{R: 255}

	require.NoError(t, c.SetLED(ctx, 0, 7, red))
	require.NoError(t, c.SetLEDRange(ctx, 0, 2, 4, common.White))
	assert.Error(t, c.SetLEDRange(ctx, 0, 4, 2, common.White))

	leds := fake.LEDs()
	assert.Equal(t, 4, len(leds))
	assert.Equal(t, red, leds[7])
	for ii := 2; ii <= 4; ii++ {
		assert.Equal(t, common.White, leds[ii])
	}
}

// Tests that small payload is sent in a single call.
func TestSingleCall(t *testing.T) {
	fake := mocks.FakeNewWLED("esp8266", 60)
	defer fake.Close()
	c := getClient(t, fake, nil)

	colors := make([]common.Color, 60)
	for ii := range colors {
		colors[ii] = common.NewColor(ii, 0, 0)
	}

	require.NoError(t, c.SetIndividualLEDs(context.Background(), 0, colors, 0))
	indexes, batches := ledIndexes(t, fake.Posts())
	assert.Equal(t, 1, batches)
	assert.Equal(t, 60, len(indexes))
	assert.Equal(t, common.NewColor(59, 0, 0), fake.LEDs()[59])
	assert.IsType(t, "", fake.Posts()[0].Segments[0].LEDs[0])

	require.NoError(t, c.SetIndividualLEDs(context.Background(), 0, nil, 0))
	assert.Equal(t, 1, len(fake.Posts()))
}

// Tests that large payload is split into batches covering the whole range exactly once.
func TestBatching(t *testing.T) {
	data := []struct {
		arch    string
		count   int
		start   int
		batches int
	}{
		{arch: "esp8266", count: 2000, start: 0, batches: 3},
		{arch: "esp8266", count: 1000, start: 5, batches: 2},
		{arch: "esp32", count: 2000, start: 10, batches: 2},
	}

	for _, v := range data {
		fake := mocks.FakeNewWLED(v.arch, v.count+v.start)
		buffer := NewBufferSettings()
		buffer.BatchDelay = time.Millisecond
		c := getClient(t, fake, buffer)

		colors := make([]common.Color, v.count)
		for ii := range colors {
			colors[ii] = common.NewColor(ii%256, ii/256, 1)
		}

		require.NoError(t, c.SetIndividualLEDs(context.Background(), 0, colors, v.start))
		indexes, batches := ledIndexes(t, fake.Posts())
		assert.Equal(t, v.batches, batches, "%s/%d", v.arch, v.count)
		require.Equal(t, v.count, len(indexes))
		for ii, idx := range indexes {
			assert.Equal(t, v.start+ii, idx)
		}

		leds := fake.LEDs()
		assert.Equal(t, v.count, len(leds))
		assert.Equal(t, colors[v.count-1], leds[v.start+v.count-1])
		fake.Close()
	}
}

// Tests that conservative buffer is used if device info is unavailable.
func TestBufferFallback(t *testing.T) {
	fake := mocks.FakeNewWLED("esp32", 30)
	defer fake.Close()
	c := NewClient(&ConstructClient{
		Logger:     mocks.FakeNewLogger(nil),
		Host:       fake.URL(),
		MaxRetries: 1,
		Breaker: breaker.NewCircuitBreaker(&breaker.ConstructCircuitBreaker{
			Logger:    mocks.FakeNewLogger(nil),
			Threshold: 100,
		}),
	})
	defer c.Close() // nolint: errcheck

	fake.FailReads(true)
	assert.Equal(t, MaxBufferESP8266, c.MaxBufferSize(context.Background()))
	fake.FailReads(false)
	assert.Equal(t, MaxBufferESP32, c.MaxBufferSize(context.Background()))
}

// Tests cancellation of the backoff.
func TestCancelledBackoff(t *testing.T) {
	fake := mocks.FakeNewWLED("esp8266", 30)
	defer fake.Close()
	c := NewClient(&ConstructClient{
		Logger:  mocks.FakeNewLogger(nil),
		Host:    fake.URL(),
		Backoff: time.Minute,
	})
	defer c.Close() // nolint: errcheck

	fake.FailNext(http.StatusInternalServerError)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.GetState(ctx)
	assert.Equal(t, context.DeadlineExceeded, err)
	assert.True(t, time.Since(start) < 10*time.Second)
}
