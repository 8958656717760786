package mapper

// ValueSmoother applies exponential moving average.
// Not safe for concurrent use, every effect owns its own instance.
type ValueSmoother struct {
	alpha       float64
	current     float64
	initialized bool
}

// NewValueSmoother constructs a smoother, lower alpha means smoother output.
func NewValueSmoother(alpha float64) *ValueSmoother {
	return &ValueSmoother{
		alpha: alpha,
	}
}

// Smooth adds a new sample. First sample initializes the state directly.
func (s *ValueSmoother) Smooth(value float64) float64 {
	if !s.initialized {
		s.current = value
		s.initialized = true
		return value
	}

	s.current = s.alpha*value + (1-s.alpha)*s.current
	return s.current
}

// Current returns the last smoothed value.
func (s *ValueSmoother) Current() (float64, bool) {
	return s.current, s.initialized
}

// Reset drops the state.
func (s *ValueSmoother) Reset() {
	s.current = 0
	s.initialized = false
}
