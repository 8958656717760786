package effects

import (
	"testing"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	meterBg     = common.NewColor(10, 10, 10)
	meterGreen  = common.NewColor(0, 255, 0)
	meterYellow = common.NewColor(255, 255, 0)
)

// Tests bottom up fill with default level.
func TestMeterBottomUp(t *testing.T) {
	v := newEnv(10)
	fx := NewMeter()
	v.mustInit(t, fx, "")

	frame := step(t, fx)
	require.Equal(t, 10, len(frame.Colors))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, lit(frame.Colors, meterBg))
	for ii := 0; ii < 4; ii++ {
		assert.Equal(t, meterGreen, frame.Colors[ii])
	}
	assert.Equal(t, meterYellow, frame.Colors[4])
	assert.Equal(t, meterYellow, frame.Color)
}

// Tests peak marker.
func TestMeterPeak(t *testing.T) {
	v := newEnv(10)
	fx := NewMeter().(*Meter)
	v.mustInit(t, fx, "show_peak: true")

	frame := step(t, fx)
	assert.Equal(t, common.White, frame.Colors[5])
	assert.Equal(t, 50.0, fx.peak)

	step(t, fx)
	assert.Equal(t, 50.0, fx.peak)
}

// Tests band colors.
func TestMeterBands(t *testing.T) {
	v := newEnv(10)
	fx := NewMeter().(*Meter)
	v.mustInit(t, fx, "")

	assert.Equal(t, meterGreen, fx.bandColor(10))
	assert.Equal(t, meterYellow, fx.bandColor(50))
	assert.Equal(t, meterYellow, fx.bandColor(79))
	assert.Equal(t, common.NewColor(255, 0, 0), fx.bandColor(80))

	fx.Settings.InterpolateBands = true
	assert.Equal(t, common.NewColor(255, 127, 0), fx.bandColor(65))
	assert.Equal(t, meterGreen, fx.bandColor(49))
}

// Tests full and empty levels.
func TestMeterLimits(t *testing.T) {
	v := newEnv(10)
	v.sources["sensor.level"] = &fakeSource{value: 100}
	fx := NewMeter()
	v.mustInit(t, fx, "state_entity: sensor.level")
	frame := step(t, fx)
	assert.Equal(t, 10, len(lit(frame.Colors, meterBg)))

	v = newEnv(10)
	fx = NewMeter()
	v.mustInit(t, fx, "default_level: 0")
	frame = step(t, fx)
	assert.Equal(t, 0, len(lit(frame.Colors, meterBg)))
	assert.Equal(t, meterGreen, frame.Color)
}

// Tests level smoothing.
func TestMeterSmoothing(t *testing.T) {
	v := newEnv(10)
	src := &fakeSource{value: 0}
	v.sources["sensor.level"] = src
	fx := NewMeter().(*Meter)
	v.mustInit(t, fx, "state_entity: sensor.level")

	step(t, fx)
	assert.Equal(t, 0.0, fx.level)

	src.set(100)
	step(t, fx)
	assert.True(t, fx.level > 0 && fx.level < 100)
}

// Tests center out fill is symmetric.
func TestMeterCenterOut(t *testing.T) {
	v := newEnv(11)
	fx := NewMeter()
	v.mustInit(t, fx, "fill_mode: center_out\ndefault_level: 40")

	frame := step(t, fx)
	assert.Equal(t, []int{3, 4, 5, 6, 7}, lit(frame.Colors, meterBg))
	assert.Equal(t, frame.Colors[4], frame.Colors[6])
	assert.Equal(t, frame.Colors[3], frame.Colors[7])
}

// Tests bidirectional fill grows band colors towards the edges.
func TestMeterBidirectional(t *testing.T) {
	red := common.NewColor(255, 0, 0)

	v := newEnv(20)
	centerOut := NewMeter()
	v.mustInit(t, centerOut, "fill_mode: center_out\ndefault_level: 100")
	co := step(t, centerOut)

	v = newEnv(20)
	bidir := NewMeter()
	v.mustInit(t, bidir, "fill_mode: bidirectional\ndefault_level: 100")
	bd := step(t, bidir)

	require.Equal(t, 20, len(bd.Colors))
	assert.Equal(t, 20, len(lit(bd.Colors, meterBg)))
	assert.NotEqual(t, co.Colors, bd.Colors)

	assert.Equal(t, red, co.Colors[10])
	assert.Equal(t, meterGreen, bd.Colors[10])
	assert.Equal(t, meterGreen, co.Colors[0])
	assert.Equal(t, red, bd.Colors[0])
	assert.Equal(t, bd.Colors[9], bd.Colors[11])
}
