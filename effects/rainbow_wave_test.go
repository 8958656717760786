package effects

import (
	"testing"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/stretchr/testify/assert"
)

// Tests hue calculation.
func TestHue(t *testing.T) {
	assert.InDelta(t, 0.0, Hue(0, 60, 0), 1e-9)
	assert.InDelta(t, 0.5, Hue(30, 60, 0), 1e-9)
	assert.InDelta(t, 0.25, Hue(30, 60, 0.75), 1e-9)
	assert.InDelta(t, 0.0, Hue(60, 60, 0), 1e-9)
}

// Tests rendered rainbow.
func TestRainbowWave(t *testing.T) {
	v := newEnv(60)
	fx := NewRainbowWave().(*RainbowWave)
	v.mustInit(t, fx, "")

	frame := step(t, fx)
	assert.Equal(t, 60, len(frame.Colors))
	assert.Equal(t, common.NewColor(255, 0, 0), frame.Colors[0])
	assert.Equal(t, 0, int(frame.Colors[30].R))
	assert.Equal(t, 255, int(frame.Colors[30].G))
	assert.Equal(t, 255, int(frame.Colors[30].B))
	assert.InDelta(t, 0.01, fx.offset, 1e-9)
	assert.InDelta(t, float64(30*time.Millisecond), float64(frame.Delay), float64(time.Microsecond))
}

// Tests offset stays within a single turn.
func TestRainbowWaveOffset(t *testing.T) {
	v := newEnv(10)
	fx := NewRainbowWave().(*RainbowWave)
	v.mustInit(t, fx, "wave_speed: 30")

	for ii := 0; ii < 20; ii++ {
		step(t, fx)
		assert.True(t, fx.offset >= 0 && fx.offset < 1)
	}
}
