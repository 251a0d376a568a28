package controls

import "math"

const defaultSliderSteps = 100

// SliderRange returns the range and step a panel slider should use. Bounded
// controls use their own range; unbounded vectors get a window around their
// default wide enough to double or negate it.
func (c Control) SliderRange() (lo, hi, step float64) {
	if c.Bounded() && c.Max > c.Min {
		lo, hi = c.Min, c.Max
	} else {
		span := 1.0
		for i := 0; i < c.Kind.Dims(); i++ {
			span = math.Max(span, 2*math.Abs(c.Default[i]))
		}
		lo, hi = -span, span
	}
	step = c.Step
	if step <= 0 {
		step = (hi - lo) / defaultSliderSteps
	}
	return lo, hi, step
}

// Ticks maps v onto the integer slider position.
func (c Control) Ticks(v float64) int {
	lo, hi, step := c.SliderRange()
	v = math.Max(lo, math.Min(hi, v))
	return int(math.Round((v - lo) / step))
}

// MaxTicks is the slider position of the upper bound.
func (c Control) MaxTicks() int {
	_, hi, _ := c.SliderRange()
	return c.Ticks(hi)
}

// FromTicks is the inverse of Ticks, snapped to the range.
func (c Control) FromTicks(t int) float64 {
	lo, hi, step := c.SliderRange()
	return math.Max(lo, math.Min(hi, lo+float64(t)*step))
}
