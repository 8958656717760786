package effects

import (
	"testing"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/stretchr/testify/assert"
)

// Tests fill mode.
func TestStateSyncFill(t *testing.T) {
	v := newEnv(10)
	v.sources["sensor.humidity"] = &fakeSource{value: 50}
	fx := NewStateSync()
	v.mustInit(t, fx, "state_entity: sensor.humidity")

	frame := step(t, fx)
	half := common.NewColor(127, 127, 0)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, lit(frame.Colors, common.Black))
	assert.Equal(t, half, frame.Colors[0])
	assert.Equal(t, half, frame.Color)
}

// Tests custom value range.
func TestStateSyncRange(t *testing.T) {
	v := newEnv(10)
	v.sources["sensor.temp"] = &fakeSource{value: 25}
	fx := NewStateSync().(*StateSync)
	v.mustInit(t, fx, "state_entity: sensor.temp\nmin_value: 20\nmax_value: 30\nanimation_mode: solid")

	assert.Equal(t, 20.0, fx.Settings.StateMin)
	assert.Equal(t, 30.0, fx.Settings.StateMax)

	frame := step(t, fx)
	assert.Equal(t, 10, len(lit(frame.Colors, common.Black)))
}

// Tests dual mode lights both ends.
func TestStateSyncDual(t *testing.T) {
	v := newEnv(10)
	v.sources["sensor.level"] = &fakeSource{value: 40}
	fx := NewStateSync()
	v.mustInit(t, fx, "state_entity: sensor.level\nanimation_mode: dual")

	frame := step(t, fx)
	assert.Equal(t, []int{0, 1, 8, 9}, lit(frame.Colors, common.Black))
}

// Tests that state entity is required.
func TestStateSyncMissingEntity(t *testing.T) {
	err := newEnv(10).init(NewStateSync(), "animation_mode: solid")
	assert.Error(t, err)
	_, ok := err.(*common.ErrConfiguration)
	assert.True(t, ok)
}
