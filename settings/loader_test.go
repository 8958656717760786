package settings

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-home-io/wled-effects/mocks"
	"github.com/go-home-io/wled-effects/systems/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testConfig = `system: server
provider: wled-effects
port: 9000
refreshInterval: 5
---
system: logger
provider: console
level: debug
---
system: device
provider: wled
maxCommands: 10
buffer:
  safety_margin: 1.5
---
system: state
provider: static
values:
  sensor.cpu: 42
expressions:
  sensor.cpu: "value / 2"
---
system: effect
provider: chase
effect_name: Hall Way
host: '{{ env "WLED_TEST_HOST" }}'
speed: 0.1
---
system: effect
provider: unknown
effect_name: x
host: 10.0.0.1
---
system: effect
provider: breathe
effect_name: hall way
host: 10.0.0.1
---
system: effect
provider: meter
effect_name: bad
host: 10.0.0.1
start_led: 10
stop_led: 5
---
system: effect
provider: loading
effect_name: no host
---
system: effect
provider: sparkle
effect_name: secret
host: '{{ sec "wled_host" }}'
---
system: bus
provider: mqtt
`

// Writes config and secrets into a temp folder.
func writeConfig(t *testing.T, data string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "effects.yaml"), []byte(data), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_secrets.yaml"), []byte("wled_host: 10.0.0.6"), 0600))
	return dir
}

// Tests complete config loading.
func TestLoad(t *testing.T) {
	t.Setenv("WLED_TEST_HOST", "10.0.0.5")
	dir := writeConfig(t, testConfig)

	s, err := Load(&StartUpOptions{Config: dir})
	require.NoError(t, err)
	defer s.FanOut().Close()
	defer s.Cron().Stop()

	assert.Equal(t, 9000, s.ServerSettings().Port)
	assert.Equal(t, 5, s.ServerSettings().RefreshInterval)
	assert.Equal(t, 60, s.ServerSettings().RetryInterval)

	effects := s.EffectsConfig()
	require.Equal(t, 2, len(effects))

	assert.Equal(t, "hall_way", effects[0].Name)
	assert.Equal(t, "chase", effects[0].Type)
	assert.Equal(t, "10.0.0.5", effects[0].Settings.Host)
	assert.Equal(t, 255, effects[0].Settings.Brightness)
	assert.Contains(t, string(effects[0].RawConfig), "speed: 0.1")

	assert.Equal(t, "secret", effects[1].Name)
	assert.Equal(t, "sparkle", effects[1].Type)
	assert.Equal(t, "10.0.0.6", effects[1].Settings.Host)

	st, ok := s.State().Get("sensor.cpu")
	require.True(t, ok)
	assert.Equal(t, 42, st.State)
	assert.Nil(t, s.StatePoller())
	assert.NotNil(t, s.Sources())

	assert.Equal(t, 9, len(s.Registry().List()))
	assert.Equal(t, 0, s.Connections().ClientCount())
	assert.NotNil(t, s.Validator())
	assert.NotNil(t, s.Secrets())
	assert.NotNil(t, s.SystemLogger())
	assert.Nil(t, s.Security())
}

// Tests command line overrides and defaults.
func TestLoadDefaults(t *testing.T) {
	dir := writeConfig(t, "system: logger\nprovider: json\nlevel: error\n")

	s, err := Load(&StartUpOptions{Config: filepath.Join(dir, "effects.yaml"), Port: 8123, LogLevel: "warn"})
	require.NoError(t, err)
	defer s.FanOut().Close()
	defer s.Cron().Stop()

	assert.Equal(t, 8123, s.ServerSettings().Port)
	assert.Equal(t, 30, s.ServerSettings().RefreshInterval)
	assert.Equal(t, 0, len(s.EffectsConfig()))

	v, err := s.Secrets().Get("wled_host")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.6", v)
}

// Tests Home Assistant state poller config.
func TestLoadHomeAssistant(t *testing.T) {
	dir := writeConfig(t, `system: state
provider: home-assistant
url: http://127.0.0.1:8123
token: abc
entities:
  - sensor.*
`)

	s, err := Load(&StartUpOptions{Config: dir})
	require.NoError(t, err)
	defer s.FanOut().Close()
	defer s.Cron().Stop()

	assert.NotNil(t, s.StatePoller())
}

// Tests Home Assistant config without url.
func TestLoadHomeAssistantNoURL(t *testing.T) {
	dir := writeConfig(t, "system: state\nprovider: home-assistant\n")

	s, err := Load(&StartUpOptions{Config: dir})
	require.NoError(t, err)
	defer s.FanOut().Close()
	defer s.Cron().Stop()

	assert.Nil(t, s.StatePoller())
}

// Tests control API security config.
func TestLoadSecurity(t *testing.T) {
	dir := writeConfig(t, `system: security
provider: basic
roles:
  - name: admins
    users: [ "admin" ]
    rules:
      - resources: [ "*" ]
        verbs: [ "all" ]
`)

	pwd, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_users"), []byte("admin:"+string(pwd)), 0600))

	s, err := Load(&StartUpOptions{Config: dir})
	require.NoError(t, err)
	defer s.FanOut().Close()
	defer s.Cron().Stop()

	require.NotNil(t, s.Security())

	auth := base64.StdEncoding.EncodeToString([]byte("admin:secret"))
	usr, err := s.Security().GetUser(map[string][]string{"Authorization": {"Basic " + auth}})
	require.NoError(t, err)
	assert.True(t, usr.CanCommand("hallway"))
}

// Tests unknown security provider.
func TestLoadSecurityUnknownProvider(t *testing.T) {
	dir := writeConfig(t, "system: security\nprovider: oauth\n")

	s, err := Load(&StartUpOptions{Config: dir})
	require.NoError(t, err)
	defer s.FanOut().Close()
	defer s.Cron().Stop()

	assert.Nil(t, s.Security())
}

// Tests missing config.
func TestLoadMissing(t *testing.T) {
	_, err := Load(&StartUpOptions{Config: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

// Tests template functions.
func TestTemplates(t *testing.T) {
	t.Setenv("WLED_TEST_VALUE", "value")
	log := mocks.FakeNewLogger(nil)
	tpl := newTemplateProvider(&constructTemplate{
		Logger: log,
		Secrets: secret.NewSecretProvider(&secret.ConstructSecret{
			Logger:  log,
			Options: map[string]string{"location": t.TempDir()},
		}),
	})

	out, err := tpl.Process([]byte(`v: {{ env "WLED_TEST_VALUE" }}`))
	require.NoError(t, err)
	assert.Equal(t, "v: value", string(out))

	_, err = tpl.Process([]byte(`v: {{ sec "missing" }}`))
	assert.Error(t, err)

	_, err = tpl.Process([]byte(`v: {{ env `))
	assert.Error(t, err)
}
