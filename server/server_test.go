package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-home-io/wled-effects/effects"
	"github.com/go-home-io/wled-effects/mocks"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/systems/connection"
	"github.com/go-home-io/wled-effects/systems/fanout"
	"github.com/go-home-io/wled-effects/systems/source"
	"github.com/go-home-io/wled-effects/systems/state"
	"github.com/go-home-io/wled-effects/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Host which fails connection probe until brought online.
const offlineHost = "10.0.0.99"

// Test environment.
type env struct {
	sync.Mutex
	offline  bool
	clients  map[string]*mocks.FakeDeviceClient
	cron     interface{ Fire() }
	data     *mocks.FakeSettingsData
	settings providers.ISettingsProvider
	server   *EffectsServer
	ts       *httptest.Server
}

// Creates raw effect config.
func rawEffect(name, effectType, host, config string) *providers.RawEffect {
	set := effect.NewBaseSettings()
	set.Name = name
	set.Type = effectType
	set.Host = host

	return &providers.RawEffect{
		Name:      name,
		Type:      effectType,
		Settings:  set,
		RawConfig: []byte(config),
	}
}

// Default effects: two healthy and one on the offline device.
func defaultEffects() []*providers.RawEffect {
	offline := rawEffect("porch", "sparkle", offlineHost, "")
	offline.Settings.AutoStart = true

	return []*providers.RawEffect{
		rawEffect("hall", "chase", "10.0.0.5", "speed: 0.01"),
		rawEffect("desk", "sparkle", "10.0.0.6", ""),
		offline,
	}
}

// Creates server with loaded effects.
func newEnv(t *testing.T, raw []*providers.RawEffect) *env {
	logger := mocks.FakeNewLogger(nil)
	cron := mocks.FakeNewCron()
	store := state.NewStore(&state.ConstructStore{Logger: logger})

	v := &env{
		offline: true,
		clients: make(map[string]*mocks.FakeDeviceClient),
		cron:    cron,
	}

	conn := connection.NewConnectionManager(&connection.ConstructConnectionManager{
		Logger: logger,
		Factory: func(host string) providers.IDeviceClientProvider {
			v.Lock()
			defer v.Unlock()

			c := mocks.FakeNewDeviceClient(host, 10)
			if offlineHost == host && v.offline {
				c.SetProbeError(errors.New("offline"))
			}

			v.clients[host] = c
			return c
		},
	})

	v.data = &mocks.FakeSettingsData{
		Logger:      logger,
		Cron:        cron,
		Validator:   utils.NewValidator(logger),
		State:       store,
		Sources:     source.NewFactory(&source.ConstructFactory{Logger: logger, Store: store}),
		Connections: conn,
		Registry:    effects.NewRegistry(logger),
		FanOut:      fanout.NewFanOut(),
		Effects:     raw,
	}
	v.settings = mocks.FakeNewSettings(v.data)

	var err error
	v.server, err = NewServer(v.settings)
	require.NoError(t, err)

	v.server.state.Load(context.Background())
	v.ts = httptest.NewServer(v.server.Handler())

	t.Cleanup(func() {
		v.ts.Close()
		v.server.Shutdown()
	})

	return v
}

// Brings offline device online.
func (v *env) online() {
	v.Lock()
	defer v.Unlock()
	v.offline = false
}

// Performs request and returns status with body.
func (v *env) do(t *testing.T, method string, url string, body string) (int, []byte) {
	var reader io.Reader
	if "" != body {
		reader = bytes.NewBufferString(body)
	}

	req, err := http.NewRequest(method, v.ts.URL+url, reader)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint: errcheck

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

// Performs request and decodes JSON response.
func (v *env) decode(t *testing.T, method string, url string, body string, expected int, out interface{}) {
	code, data := v.do(t, method, url, body)
	require.Equal(t, expected, code, string(data))
	if nil != out {
		require.NoError(t, json.Unmarshal(data, out), string(data))
	}
}

// Tests ping.
func TestPing(t *testing.T) {
	v := newEnv(t, nil)
	code, data := v.do(t, http.MethodGet, "/pub/ping", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(data), "OK")

	code, _ = v.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, code)
}

// Tests effect types schemas.
func TestEffectTypes(t *testing.T) {
	v := newEnv(t, nil)

	all := make(map[string]*effect.Spec)
	v.decode(t, http.MethodGet, "/api/v1/effect-types", "", http.StatusOK, &all)
	assert.Equal(t, 9, len(all))
	assert.Contains(t, all, "state_sync")

	spec := &effect.Spec{}
	v.decode(t, http.MethodGet, "/api/v1/effect-types/chase", "", http.StatusOK, spec)
	assert.Equal(t, "chase", spec.Name)

	v.decode(t, http.MethodGet, "/api/v1/effect-types/unknown", "", http.StatusNotFound, nil)
}

// Tests effects listing.
func TestEffects(t *testing.T) {
	v := newEnv(t, defaultEffects())

	res := &effectsResponse{}
	v.decode(t, http.MethodGet, "/api/v1/effects", "", http.StatusOK, res)
	require.Equal(t, 2, len(res.Effects))
	assert.Equal(t, "desk", res.Effects[0].Name)
	assert.Equal(t, "hall", res.Effects[1].Name)
	assert.Equal(t, []string{"porch"}, res.Pending)

	status := &providers.EffectStatus{}
	v.decode(t, http.MethodGet, "/api/v1/effects/hall", "", http.StatusOK, status)
	assert.Equal(t, "chase", status.Type)
	assert.Equal(t, "10.0.0.5", status.Host)
	assert.Equal(t, providers.EffectStateStopped, status.State)

	spec := &effect.Spec{}
	v.decode(t, http.MethodGet, "/api/v1/effects/hall/spec", "", http.StatusOK, spec)
	assert.Equal(t, "chase", spec.Name)

	v.decode(t, http.MethodGet, "/api/v1/effects/porch", "", http.StatusNotFound, nil)
	v.decode(t, http.MethodGet, "/api/v1/effects/porch/spec", "", http.StatusNotFound, nil)
}

// Tests effect commands.
func TestEffectCommands(t *testing.T) {
	v := newEnv(t, defaultEffects())

	status := &providers.EffectStatus{}
	v.decode(t, http.MethodPost, "/api/v1/effects/hall/start", "", http.StatusOK, status)
	assert.Equal(t, providers.EffectStateRunning, status.State)
	assert.True(t, status.Running)
	assert.NotNil(t, status.LastStarted)

	v.decode(t, http.MethodPost, "/api/v1/effects/hall/stop", "", http.StatusOK, status)
	assert.Equal(t, providers.EffectStateStopped, status.State)
	assert.NotNil(t, status.LastStopped)

	v.decode(t, http.MethodPost, "/api/v1/effects/desk/run_once", "", http.StatusOK, status)
	assert.True(t, status.Stats.Commands > 0)

	v.decode(t, http.MethodPost, "/api/v1/effects/hall/jump", "", http.StatusBadRequest, nil)
	v.decode(t, http.MethodPost, "/api/v1/effects/porch/start", "", http.StatusNotFound, nil)
	v.decode(t, http.MethodGet, "/api/v1/effects/hall/start", "", http.StatusMethodNotAllowed, nil)
}

// Tests failed single render.
func TestEffectRunOnceFailure(t *testing.T) {
	v := newEnv(t, defaultEffects())

	v.Lock()
	c := v.clients["10.0.0.6"]
	v.Unlock()

	c.SetLEDError(errors.New("buffer"))
	c.SetSegmentError(errors.New("offline"))

	code, data := v.do(t, http.MethodPost, "/api/v1/effects/desk/run_once", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, string(data), "ERROR")

	status := &providers.EffectStatus{}
	v.decode(t, http.MethodGet, "/api/v1/effects/desk", "", http.StatusOK, status)
	assert.Equal(t, providers.EffectStateError, status.State)
}

// Tests effect config updates.
func TestUpdateConfig(t *testing.T) {
	v := newEnv(t, defaultEffects())

	status := &providers.EffectStatus{}
	v.decode(t, http.MethodPut, "/api/v1/effects/hall/config", `{"brightness": 100, "segment_id": 2}`,
		http.StatusOK, status)
	assert.Equal(t, 2, status.SegmentID)

	c, err := v.server.state.GetEffect("hall")
	require.NoError(t, err)
	assert.Equal(t, 100, c.Engine().Settings().Brightness)

	v.decode(t, http.MethodPut, "/api/v1/effects/hall/config", `{"brightness": 300}`, http.StatusBadRequest, nil)
	v.decode(t, http.MethodPut, "/api/v1/effects/hall/config", `{"brightness": `, http.StatusBadRequest, nil)
	v.decode(t, http.MethodPost, "/api/v1/effects/hall/config", `{"blend_mode": "xor"}`, http.StatusBadRequest, nil)
	v.decode(t, http.MethodPut, "/api/v1/effects/porch/config", `{}`, http.StatusNotFound, nil)

	assert.Equal(t, 100, c.Engine().Settings().Brightness)
}

// Tests connected devices.
func TestDevices(t *testing.T) {
	v := newEnv(t, defaultEffects())

	res := &devicesResponse{}
	v.decode(t, http.MethodGet, "/api/v1/devices", "", http.StatusOK, res)
	assert.ElementsMatch(t, []string{"10.0.0.5", "10.0.0.6"}, res.Connected)
}

// Tests that failed effects are loaded later and auto-started.
func TestLoadRetry(t *testing.T) {
	v := newEnv(t, defaultEffects())
	assert.Equal(t, []string{"porch"}, v.server.state.Pending())

	v.cron.Fire()
	assert.Equal(t, []string{"porch"}, v.server.state.Pending())

	v.online()
	v.cron.Fire()
	assert.Equal(t, 0, len(v.server.state.Pending()))
	require.Equal(t, 3, len(v.server.state.GetEffects()))

	c, err := v.server.state.GetEffect("porch")
	require.NoError(t, err)
	assert.True(t, c.Engine().IsRunning())
}

// Tests auto-start.
func TestAutoStart(t *testing.T) {
	raw := defaultEffects()
	raw[0].Settings.AutoStart = true
	v := newEnv(t, raw)

	v.server.state.AutoStart()

	hall, err := v.server.state.GetEffect("hall")
	require.NoError(t, err)
	assert.True(t, hall.Engine().IsRunning())

	desk, err := v.server.state.GetEffect("desk")
	require.NoError(t, err)
	assert.False(t, desk.Engine().IsRunning())
}

// Tests single render mode.
func TestRunOnce(t *testing.T) {
	raw := defaultEffects()
	v := newEnv(t, raw[:2])

	require.NoError(t, v.server.RunOnce(context.Background()))

	v.Lock()
	defer v.Unlock()
	assert.True(t, len(v.clients["10.0.0.5"].LEDFrames()) > 0)
	assert.True(t, v.clients["10.0.0.5"].IsClosed())
}

// Tests single render mode with effects which failed to load.
func TestRunOnceFailure(t *testing.T) {
	v := newEnv(t, nil)
	srv, err := NewServer(mocks.FakeNewSettings(&mocks.FakeSettingsData{
		Logger:      mocks.FakeNewLogger(nil),
		Validator:   v.settings.Validator(),
		State:       state.NewStore(&state.ConstructStore{Logger: mocks.FakeNewLogger(nil)}),
		Connections: v.settings.Connections(),
		Registry:    v.settings.Registry(),
		FanOut:      fanout.NewFanOut(),
		Effects:     []*providers.RawEffect{rawEffect("porch", "sparkle", offlineHost, "")},
	}))
	require.NoError(t, err)

	assert.Error(t, srv.RunOnce(context.Background()))
}
