package engine

import (
	"sync"

	"github.com/go-home-io/wled-effects/plugins/effect"
	"github.com/go-home-io/wled-effects/plugins/helpers"
	"github.com/go-home-io/wled-effects/systems/mapper"
)

// Engine-side value processing exposed to effects.
type pipeline struct {
	sync.Mutex
	e        *engine
	blender  *mapper.MultiInputBlender
	smoother *mapper.ValueSmoother
}

// Creates a new pipeline.
func newPipeline(e *engine) *pipeline {
	return &pipeline{
		e:       e,
		blender: mapper.NewMultiInputBlender(e.logger),
	}
}

// Map rescales value with a linear clamped curve.
// Output is smoothed while transition mode is smooth, switching
// the mode away drops the smoothing state.
func (p *pipeline) Map(value, inMin, inMax, outMin, outMax float64) float64 {
	p.e.Lock()
	smooth := effect.TransitionSmooth == p.e.settings.TransitionMode
	p.e.Unlock()

	mapped := mapper.Map(value, inMin, inMax, outMin, outMax, mapper.Linear, true)

	p.Lock()
	defer p.Unlock()

	if !smooth {
		p.smoother = nil
		return mapped
	}

	if nil == p.smoother {
		p.smoother = mapper.NewValueSmoother(effect.SmoothingAlpha)
	}

	return p.smoother.Smooth(mapped)
}

// Input blends available numeric reactive inputs.
func (p *pipeline) Input() (float64, bool) {
	p.e.Lock()
	mode := p.e.settings.BlendMode
	inputs := make([]effect.IValueSource, len(p.e.inputs))
	copy(inputs, p.e.inputs)
	p.e.Unlock()

	values := make([]float64, 0, len(inputs))
	for _, v := range inputs {
		if f, ok := helpers.ToFloat(v.Value()); ok {
			values = append(values, f)
		}
	}

	if 0 == len(values) {
		return 0, false
	}

	return p.blender.Blend(values, mode), true
}

// Zone returns inclusive LED bounds of the zone.
func (p *pipeline) Zone(index int) (int, int) {
	return p.e.MapToZone(index)
}
