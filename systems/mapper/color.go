package mapper

import (
	"math"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/lucasb-eyer/go-colorful"
)

// InterpolateColor performs per-channel linear interpolation.
// Position isn't clamped, channels are truncated and clamped to 0-255.
func InterpolateColor(c1, c2 common.Color, t float64) common.Color {
	return common.NewColor(
		int(float64(c1.R)+(float64(c2.R)-float64(c1.R))*t),
		int(float64(c1.G)+(float64(c2.G)-float64(c1.G))*t),
		int(float64(c1.B)+(float64(c2.B)-float64(c1.B))*t),
	)
}

// MapToColor maps value into position between two colors.
func MapToColor(value, inMin, inMax float64, low, high common.Color, curve Curve) common.Color {
	pos := Map(value, inMin, inMax, 0, 1, curve, true)
	return InterpolateColor(low, high, pos)
}

// ScaleColor multiplies every channel by factor.
func ScaleColor(c common.Color, factor float64) common.Color {
	return common.NewColor(
		int(float64(c.R)*factor),
		int(float64(c.G)*factor),
		int(float64(c.B)*factor),
	)
}

// HSVToRGB converts hue/saturation/value in 0-1 range into RGB.
func HSVToRGB(h, s, v float64) common.Color {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}

	c := colorful.Hsv(h*360, s, v)
	return common.NewColor(int(c.R*255), int(c.G*255), int(c.B*255))
}

// ShiftHue rotates color hue by delta turns, keeping saturation and value.
func ShiftHue(c common.Color, delta float64) common.Color {
	cf := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	h, s, v := cf.Hsv()
	return HSVToRGB(h/360+delta, s, v)
}
