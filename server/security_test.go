package server

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/go-home-io/wled-effects/mocks"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/systems/security"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Enables security with admin and viewer users from the secret store.
func secure(v *env) {
	v.data.Security = security.NewSecurityProvider(&security.ConstructSecurityProvider{
		Logger: mocks.FakeNewLogger(nil),
		Secret: mocks.FakeNewSecretStore(map[string]string{"admin": "admin", "viewer": "viewer"}, true),
		Roles: []*providers.SecRole{
			{
				Name:  "admins",
				Users: []string{"admin"},
				Rules: []*providers.SecRoleRule{
					{Resources: []string{"*"}, Verbs: []providers.SecVerb{providers.SecVerbAll}},
				},
			},
			{
				Name:  "viewers",
				Users: []string{"viewer"},
				Rules: []*providers.SecRoleRule{
					{Resources: []string{"*"}, Verbs: []providers.SecVerb{providers.SecVerbGet}},
				},
			},
		},
	})
}

// Performs request with basic auth.
func (v *env) doAuth(t *testing.T, user string, method string, url string, body string) int {
	var reader io.Reader
	if "" != body {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, v.ts.URL+url, reader)
	require.NoError(t, err)
	if "" != user {
		req.SetBasicAuth(user, user)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close() // nolint: errcheck, gosec
	return resp.StatusCode
}

// Tests API authentication and authorization.
func TestSecurity(t *testing.T) {
	v := newEnv(t, defaultEffects())
	secure(v)

	assert.Equal(t, http.StatusOK, v.doAuth(t, "", http.MethodGet, "/pub/ping", ""))
	assert.Equal(t, http.StatusUnauthorized, v.doAuth(t, "", http.MethodGet, "/api/v1/effects", ""))
	assert.Equal(t, http.StatusUnauthorized, v.doAuth(t, "nobody", http.MethodGet, "/api/v1/effects", ""))

	assert.Equal(t, http.StatusOK, v.doAuth(t, "viewer", http.MethodGet, "/api/v1/effects", ""))
	assert.Equal(t, http.StatusOK, v.doAuth(t, "viewer", http.MethodGet, "/api/v1/effects/hall", ""))
	assert.Equal(t, http.StatusForbidden, v.doAuth(t, "viewer", http.MethodPost, "/api/v1/effects/hall/start", ""))
	assert.Equal(t, http.StatusForbidden, v.doAuth(t, "viewer", http.MethodPost, "/api/v1/events/doorbell", ""))

	assert.Equal(t, http.StatusOK, v.doAuth(t, "admin", http.MethodPost, "/api/v1/effects/hall/start", ""))
	assert.Equal(t, http.StatusOK, v.doAuth(t, "admin", http.MethodPut, "/api/v1/entities/light.desk",
		`{"state": "on"}`))
}

// Tests WS commands of read-only user.
func TestSecurityWS(t *testing.T) {
	v := newEnv(t, defaultEffects())
	secure(v)

	url := "ws" + strings.TrimPrefix(v.ts.URL, "http") + routeAPI + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	header := http.Header{}
	header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("viewer:viewer")))
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close() // nolint: errcheck

	require.NoError(t, conn.WriteJSON(&wsCmd{Name: "hall", Cmd: cmdStart}))
	msg := readWS(t, conn, func(m *wsTestMessage) bool { return wsError == m.Type })
	assert.Contains(t, string(msg.Data), "not allowed")

	c, err := v.server.state.GetEffect("hall")
	require.NoError(t, err)
	assert.False(t, c.Engine().IsRunning())
}

// Tests resource resolution.
func TestRequestResource(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://localhost/api/v1/entities/light.desk", nil)
	require.NoError(t, err)
	assert.Equal(t, "entities", requestResource(req))

	assert.Nil(t, requestUser(req))
	assert.NoError(t, canCommand(nil, "hall"))
	assert.Error(t, canCommand(&providers.AuthenticatedUser{Username: "x"}, "hall"))
}
