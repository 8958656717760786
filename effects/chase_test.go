package effects

import (
	"testing"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Returns index of the chase head for a single-LED chase.
func head(t *testing.T, colors []common.Color) int {
	l := lit(colors, common.Black)
	require.Equal(t, 1, len(l))
	return l[0]
}

// Tests bouncing chase stays in bounds and flips exactly at the ends.
func TestChaseBounce(t *testing.T) {
	v := newEnv(5)
	fx := NewChase().(*Chase)
	v.mustInit(t, fx, "chase_length: 1\nfade_tail: false")

	expected := []int{0, 1, 2, 3, 4, 3, 2, 1, 0, 1, 2, 3, 4, 3}
	for _, want := range expected {
		frame := step(t, fx)
		assert.Equal(t, want, head(t, frame.Colors))
		assert.True(t, fx.position >= 0 && fx.position <= 4)
	}
}

// Tests wrapping chase.
func TestChaseWrap(t *testing.T) {
	v := newEnv(3)
	fx := NewChase()
	v.mustInit(t, fx, "chase_length: 1\nbounce: false\nspeed: 0.2")

	for _, want := range []int{0, 1, 2, 0, 1, 2} {
		frame := step(t, fx)
		assert.Equal(t, want, head(t, frame.Colors))
		assert.Equal(t, 200*time.Millisecond, frame.Delay)
	}
}

// Tests fading tail.
func TestChaseFadeTail(t *testing.T) {
	v := newEnv(10)
	fx := NewChase()
	v.mustInit(t, fx, "chase_color: 255,100,0\nchase_length: 5")

	frame := step(t, fx)
	assert.Equal(t, common.NewColor(255, 100, 0), frame.Colors[0])
	assert.Equal(t, common.NewColor(204, 80, 0), frame.Colors[1])
	assert.Equal(t, common.Black, frame.Colors[5])
	assert.Equal(t, common.NewColor(255, 100, 0), frame.Color)
}

// Tests scanner mode lights both sides of the head.
func TestChaseScanMode(t *testing.T) {
	v := newEnv(10)
	fx := NewChase().(*Chase)
	v.mustInit(t, fx, "scan_mode: true\nchase_length: 3\nfade_tail: false")
	fx.position = 5

	frame := step(t, fx)
	assert.Equal(t, []int{3, 4, 5, 6, 7}, lit(frame.Colors, common.Black))
}

// Tests state controlled direction.
func TestChaseDirection(t *testing.T) {
	v := newEnv(10)
	src := &fakeSource{value: 20}
	v.sources["sensor.flow"] = src
	fx := NewChase().(*Chase)
	v.mustInit(t, fx, "state_entity: sensor.flow\nstate_controls: direction\nchase_length: 1\nbounce: false")
	fx.position = 5

	frame := step(t, fx)
	assert.Equal(t, 5, head(t, frame.Colors))
	assert.Equal(t, -1, fx.direction)
	assert.Equal(t, 4, fx.position)

	src.set(80)
	step(t, fx)
	assert.Equal(t, 1, fx.direction)
	assert.Equal(t, 5, fx.position)
}

// Tests state controlled length and speed.
func TestChaseLengthAndSpeed(t *testing.T) {
	v := newEnv(30)
	v.sources["sensor.load"] = &fakeSource{value: 100}
	fx := NewChase()
	v.mustInit(t, fx, "state_entity: sensor.load\nstate_controls: both\nfade_tail: false")

	frame := step(t, fx)
	assert.Equal(t, 20, len(lit(frame.Colors, common.Black)))
	assert.InDelta(t, float64(500*time.Millisecond), float64(frame.Delay), float64(time.Microsecond))
}
