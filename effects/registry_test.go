package effects

import (
	"testing"

	"github.com/go-home-io/wled-effects/mocks"
	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests built-in effects list.
func TestRegistryList(t *testing.T) {
	r := NewRegistry(mocks.FakeNewLogger(nil))
	assert.Equal(t, []string{"alert", "breathe", "chase", "loading", "meter", "rainbow_wave",
		"segment_fade", "sparkle", "state_sync"}, r.List())
}

// Tests unknown effect.
func TestRegistryUnknown(t *testing.T) {
	r := NewRegistry(mocks.FakeNewLogger(nil))
	_, err := r.Create("fireworks")
	require.Error(t, err)
	_, ok := err.(*common.ErrEffectNotFound)
	assert.True(t, ok)

	_, err = r.Info("fireworks")
	assert.Error(t, err)
}

// Tests effect descriptions.
func TestRegistryInfo(t *testing.T) {
	r := NewRegistry(mocks.FakeNewLogger(nil))
	spec, err := r.Info("chase")
	require.NoError(t, err)
	assert.Equal(t, "chase", spec.Name)
	assert.NotEmpty(t, spec.Description)
	assert.Equal(t, "object", spec.Schema.Type)
	assert.Contains(t, spec.Schema.Properties, "chase_color")
	assert.Contains(t, spec.Schema.Properties, "segment_id")
	assert.Contains(t, spec.Schema.Properties, "state_controls")
	assert.Equal(t, []string{"effect_name", "type", "host"}, spec.Schema.Required)

	spec, err = r.Info("state_sync")
	require.NoError(t, err)
	assert.Contains(t, spec.Schema.Required, "state_entity")
	assert.NotContains(t, spec.Schema.Properties, "state_controls")

	all := r.AllInfo()
	assert.Equal(t, 9, len(all))
	for k, v := range all {
		assert.Equal(t, k, v.Name)
	}
}

// Tests registering custom effects.
func TestRegistryRegister(t *testing.T) {
	r := NewRegistry(mocks.FakeNewLogger(nil))
	r.Register("custom", func() effect.IEffect {
		return NewSparkle()
	})

	fx, err := r.Create("custom")
	require.NoError(t, err)
	_, ok := fx.(*Sparkle)
	assert.True(t, ok)

	spec, err := r.Info("custom")
	require.NoError(t, err)
	assert.Equal(t, "custom", spec.Name)

	r.Unregister("custom")
	r.Unregister("custom")
	_, err = r.Create("custom")
	assert.Error(t, err)
	assert.Equal(t, 9, len(r.List()))
}

// Tests that every effect instance is independent.
func TestRegistryInstances(t *testing.T) {
	r := NewRegistry(mocks.FakeNewLogger(nil))
	first, err := r.Create("chase")
	require.NoError(t, err)
	second, err := r.Create("chase")
	require.NoError(t, err)

	first.(*Chase).Settings.ChaseLength = 3
	assert.NotEqual(t, 3, second.(*Chase).Settings.ChaseLength)
}
