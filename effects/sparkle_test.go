package effects

import (
	"testing"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sparkleBg = common.NewColor(0, 0, 20)

// Tests that sparkles decay to exactly zero without new ones.
func TestSparkleDecay(t *testing.T) {
	v := newEnv(10)
	fx := NewSparkle().(*Sparkle)
	v.mustInit(t, fx, "density: 0")

	frame := step(t, fx)
	assert.Equal(t, 0, len(lit(frame.Colors, sparkleBg)))
	assert.Equal(t, 30*time.Millisecond, frame.Delay)

	fx.brightness[3] = 1
	for ii := 0; ii < 20; ii++ {
		frame = step(t, fx)
		assert.Equal(t, []int{3}, lit(frame.Colors, sparkleBg), "step %d", ii)
	}

	frame = step(t, fx)
	assert.Equal(t, 0, len(lit(frame.Colors, sparkleBg)))
	for _, b := range fx.brightness {
		assert.Equal(t, 0.0, b)
	}
}

// Tests amount of new sparkles.
func TestSparkleDensity(t *testing.T) {
	v := newEnv(10)
	fx := NewSparkle()
	v.mustInit(t, fx, "density: 0.1")
	frame := step(t, fx)
	require.Equal(t, 1, len(lit(frame.Colors, sparkleBg)))
	assert.Equal(t, common.NewColor(204, 204, 208), frame.Colors[lit(frame.Colors, sparkleBg)[0]])

	v = newEnv(100)
	fx = NewSparkle()
	v.mustInit(t, fx, "density: 0.5")
	frame = step(t, fx)
	count := len(lit(frame.Colors, sparkleBg))
	assert.True(t, count >= 1 && count <= 5)
}

// Tests state controlled density and fade.
func TestSparkleState(t *testing.T) {
	v := newEnv(100)
	v.sources["sensor.activity"] = &fakeSource{value: 100}
	fx := NewSparkle().(*Sparkle)
	v.mustInit(t, fx, "state_entity: sensor.activity\nstate_controls: both")

	step(t, fx)
	lit := 0
	for _, b := range fx.brightness {
		if b > 0 {
			lit++
			assert.InDelta(t, 0.5, b, 0.0001)
		}
	}
	assert.True(t, lit >= 1 && lit <= 10)
}

// Tests trigger burst.
func TestSparkleBurst(t *testing.T) {
	v := newEnv(20)
	fx := NewSparkle().(*Sparkle)
	v.mustInit(t, fx, "density: 0")

	fx.OnTrigger("event_0", nil)
	assert.Equal(t, 6, fx.burst)

	frame := step(t, fx)
	assert.True(t, len(lit(frame.Colors, sparkleBg)) >= 1)
	assert.Equal(t, 0, fx.burst)
}

// Tests hue variation keeps brightness.
func TestSparkleVariation(t *testing.T) {
	v := newEnv(10)
	fx := NewSparkle().(*Sparkle)
	v.mustInit(t, fx, "color_variation: true\nsparkle_color: 255,0,0")

	for ii := 0; ii < 10; ii++ {
		c := fx.vary(common.NewColor(255, 0, 0))
		max := c.R
		if c.G > max {
			max = c.G
		}
		if c.B > max {
			max = c.B
		}
		assert.True(t, max >= 254)
	}
}
