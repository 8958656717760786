package mapper

import (
	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/effect"
)

// MultiInputBlender combines multiple reactive inputs.
type MultiInputBlender struct {
	logger common.ILoggerProvider
}

// NewMultiInputBlender constructs a new blender.
// Logger is used to report unknown modes and might be nil.
func NewMultiInputBlender(logger common.ILoggerProvider) *MultiInputBlender {
	return &MultiInputBlender{
		logger: logger,
	}
}

// Blend combines values using mode.
// Empty input yields 0, unknown mode falls back to average.
func (b *MultiInputBlender) Blend(values []float64, mode effect.BlendMode) float64 {
	if 0 == len(values) {
		return 0
	}

	switch mode {
	case effect.BlendAverage:
		return sum(values) / float64(len(values))
	case effect.BlendMax:
		m := values[0]
		for _, v := range values[1:] {
			if v > m {
				m = v
			}
		}
		return m
	case effect.BlendMin:
		m := values[0]
		for _, v := range values[1:] {
			if v < m {
				m = v
			}
		}
		return m
	case effect.BlendMultiply:
		r := 1.0
		for _, v := range values {
			r *= v
		}
		return r
	case effect.BlendAdd:
		return sum(values)
	}

	if nil != b.logger {
		b.logger.Warn("Unknown blend mode, using average", "mode", string(mode))
	}

	return sum(values) / float64(len(values))
}

// BlendColors blends colors channel by channel.
func (b *MultiInputBlender) BlendColors(colors []common.Color, mode effect.BlendMode) common.Color {
	if 0 == len(colors) {
		return common.Black
	}

	if 1 == len(colors) {
		return colors[0]
	}

	r := make([]float64, len(colors))
	g := make([]float64, len(colors))
	bl := make([]float64, len(colors))
	for ii, c := range colors {
		r[ii] = float64(c.R)
		g[ii] = float64(c.G)
		bl[ii] = float64(c.B)
	}

	return common.NewColor(int(b.Blend(r, mode)), int(b.Blend(g, mode)), int(b.Blend(bl, mode)))
}

// Sums values.
func sum(values []float64) float64 {
	s := 0.0
	for _, v := range values {
		s += v
	}

	return s
}
