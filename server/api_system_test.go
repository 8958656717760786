package server

import (
	"net/http"
	"testing"

	"github.com/go-home-io/wled-effects/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests entities state.
func TestEntities(t *testing.T) {
	v := newEnv(t, nil)

	st := &providers.EntityState{}
	v.decode(t, http.MethodPost, "/api/v1/entities/sensor.temp",
		`{"state": 21.5, "attributes": {"unit": "C"}}`, http.StatusOK, st)
	assert.Equal(t, "sensor.temp", st.EntityID)
	assert.Equal(t, 21.5, st.State)
	assert.Equal(t, "C", st.Attributes["unit"])

	v.decode(t, http.MethodPut, "/api/v1/entities/light.desk", `{"state": "on"}`, http.StatusOK, nil)

	all := make([]*providers.EntityState, 0)
	v.decode(t, http.MethodGet, "/api/v1/entities", "", http.StatusOK, &all)
	require.Equal(t, 2, len(all))
	assert.Equal(t, "light.desk", all[0].EntityID)
	assert.Equal(t, "sensor.temp", all[1].EntityID)

	v.decode(t, http.MethodGet, "/api/v1/entities/light.desk", "", http.StatusOK, st)
	assert.Equal(t, "on", st.State)

	v.decode(t, http.MethodGet, "/api/v1/entities/light.hall", "", http.StatusNotFound, nil)
	v.decode(t, http.MethodPost, "/api/v1/entities/light.hall", `{"state":`, http.StatusBadRequest, nil)
}

// Tests custom events.
func TestFireEvent(t *testing.T) {
	v := newEnv(t, nil)

	fired := make(chan providers.CustomEvent, 2)
	unsubscribe := v.settings.State().SubscribeEvents(func(ev providers.CustomEvent) {
		fired <- ev
	})
	defer unsubscribe()

	code, _ := v.do(t, http.MethodPost, "/api/v1/events/doorbell", `{"who": "courier"}`)
	require.Equal(t, http.StatusOK, code)

	ev := <-fired
	assert.Equal(t, "doorbell", ev.EventType)
	assert.Equal(t, "courier", ev.Data["who"])

	code, _ = v.do(t, http.MethodPost, "/api/v1/events/motion", "")
	require.Equal(t, http.StatusOK, code)

	ev = <-fired
	assert.Equal(t, "motion", ev.EventType)
	assert.Equal(t, 0, len(ev.Data))

	code, _ = v.do(t, http.MethodPost, "/api/v1/events/motion", "{")
	assert.Equal(t, http.StatusBadRequest, code)
}
