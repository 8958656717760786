// Package mapper contains range mapping, color math, blending and smoothing helpers.
package mapper

import (
	"math"
)

// Curve describes interpolation curve.
type Curve string

const (
	// Linear keeps normalized value as is.
	Linear Curve = "linear"
	// EaseIn uses x^2.
	EaseIn Curve = "ease_in"
	// EaseOut uses 1-(1-x)^2.
	EaseOut Curve = "ease_out"
	// EaseInOut uses piecewise quadratic.
	EaseInOut Curve = "ease_in_out"
)

// DataMapper maps values from input range to output range.
type DataMapper struct {
	InputMin  float64
	InputMax  float64
	OutputMin float64
	OutputMax float64
	Clamp     bool
	Curve     Curve
}

// NewDataMapper constructs a mapper with 0-100 input and 0-255 output.
func NewDataMapper() *DataMapper {
	return &DataMapper{
		InputMin:  0,
		InputMax:  100,
		OutputMin: 0,
		OutputMax: 255,
		Clamp:     true,
		Curve:     Linear,
	}
}

// Map converts value into output range.
func (m *DataMapper) Map(value float64) float64 {
	return Map(value, m.InputMin, m.InputMax, m.OutputMin, m.OutputMax, m.Curve, m.Clamp)
}

// MapToInt converts value into output range and truncates the result.
func (m *DataMapper) MapToInt(value float64) int {
	return int(m.Map(value))
}

// Map normalizes value, applies curve and rescales it to the output range.
// Degenerate input range maps to the middle of the output range.
func Map(value, inMin, inMax, outMin, outMax float64, curve Curve, clamp bool) float64 {
	var normalized float64
	inRange := inMax - inMin
	if 0 == inRange {
		normalized = 0.5
	} else {
		normalized = (value - inMin) / inRange
	}

	normalized = ApplyCurve(normalized, curve)
	out := outMin + normalized*(outMax-outMin)

	if clamp {
		out = math.Max(math.Min(outMin, outMax), math.Min(math.Max(outMin, outMax), out))
	}

	return out
}

// ApplyCurve applies interpolation curve to the normalized value.
// Unknown curves are treated as linear.
func ApplyCurve(x float64, curve Curve) float64 {
	switch curve {
	case EaseIn:
		return x * x
	case EaseOut:
		return 1 - (1-x)*(1-x)
	case EaseInOut:
		if x < 0.5 {
			return 2 * x * x
		}
		return 1 - 2*(1-x)*(1-x)
	}

	return x
}

// Normalize converts value into 0-1 range, clamped.
// Degenerate range yields 0.5.
func Normalize(value, min, max float64) float64 {
	if max-min <= 0 {
		return 0.5
	}

	n := (value - min) / (max - min)
	return math.Max(0, math.Min(1, n))
}

// Lerp interpolates between two values.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
