package phonograph

import (
	"math"
	"sync/atomic"

	"github.com/dudk/phonograph/automation"
	"github.com/dudk/phonograph/signal"
)

const (
	// DefaultSmoothingConstant is the fraction of the distance to the
	// target value smoothed value moves every quantum.
	DefaultSmoothingConstant = 0.05
	// SnapThreshold is the distance to the target value when smoothed value
	// snaps to it.
	SnapThreshold = 0.001
)

// Param is a scalar control value of a node. The value can be set
// directly, automated with the timeline and modulated at audio rate by
// connected outputs.
type Param struct {
	junction
	name         string
	value        atomic.Uint64
	defaultValue float64
	minValue     float64
	maxValue     float64
	timeline     automation.Timeline

	// render path only
	smoothedValue     float64
	smoothingConstant float64
	summing           signal.Float64
	control           [1]float64
}

// NewParam creates a new param with provided default value and bounds.
func NewParam(name string, defaultValue, minValue, maxValue float64) *Param {
	p := &Param{
		name:              name,
		defaultValue:      defaultValue,
		minValue:          minValue,
		maxValue:          maxValue,
		smoothedValue:     defaultValue,
		smoothingConstant: DefaultSmoothingConstant,
		summing:           make(signal.Float64, 1),
	}
	p.store(defaultValue)
	return p
}

// Name returns the name of param.
func (p *Param) Name() string {
	return p.name
}

// DefaultValue returns default value of param.
func (p *Param) DefaultValue() float64 {
	return p.defaultValue
}

// MinValue returns lower bound of param.
func (p *Param) MinValue() float64 {
	return p.minValue
}

// MaxValue returns upper bound of param.
func (p *Param) MaxValue() float64 {
	return p.maxValue
}

// Timeline returns automation timeline of the param.
func (p *Param) Timeline() *automation.Timeline {
	return &p.timeline
}

// SetValue sets the static value of param. Non-finite values are ignored.
func (p *Param) SetValue(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	p.store(v)
}

// Value returns the current value. If render lock is valid and the
// timeline has a value for the current context time, the timeline value is
// adopted.
func (p *Param) Value(r RenderLock) float64 {
	v := p.load()
	if c := r.Context(); c != nil {
		if tv, ok := p.timeline.ValueForContextTime(c.CurrentTime(), float64(c.sampleRate), v); ok {
			p.store(tv)
			v = tv
		}
	}
	return v
}

// SmoothedValue returns the dezippered value. Only valid on the render
// path.
func (p *Param) SmoothedValue() float64 {
	return p.smoothedValue
}

// ResetSmoothedValue snaps smoothed value to the current value.
func (p *Param) ResetSmoothedValue() {
	p.smoothedValue = p.load()
}

// SetSmoothingConstant sets the fraction smoothed value moves towards the
// target every call of Smooth.
func (p *Param) SetSmoothingConstant(k float64) {
	p.smoothingConstant = k
}

// Smooth moves smoothed value towards the current value. Automated values
// are adopted without smoothing. It returns true if smoothed value is
// already equal to the target.
func (p *Param) Smooth(r RenderLock) bool {
	value := p.load()
	useTimelineValue := false
	if c := r.Context(); c != nil {
		value, useTimelineValue = p.timeline.ValueForContextTime(c.CurrentTime(), float64(c.sampleRate), value)
		if useTimelineValue {
			p.store(value)
		}
	}
	if p.smoothedValue == value {
		return true
	}
	if useTimelineValue {
		p.smoothedValue = value
		return false
	}
	p.smoothedValue += (value - p.smoothedValue) * p.smoothingConstant
	if math.Abs(p.smoothedValue-value) < SnapThreshold {
		p.smoothedValue = value
	}
	return false
}

// HasSampleAccurateValues returns true if param is automated or modulated.
// Only valid on the render path.
func (p *Param) HasSampleAccurateValues() bool {
	return p.timeline.HasValues() || p.numberOfRenderingConnections() > 0 || p.hasStaged
}

// FinalValue returns the control rate value of the param with audio rate
// modulation of the first frame summed in.
func (p *Param) FinalValue(r RenderLock) float64 {
	p.control[0] = 0
	p.calculateFinalValues(r, p.control[:], false)
	return p.control[0]
}

// CalculateSampleAccurateValues fills values with one value per frame of
// current quantum.
func (p *Param) CalculateSampleAccurateValues(r RenderLock, values []float64) {
	p.calculateFinalValues(r, values, true)
}

func (p *Param) calculateFinalValues(r RenderLock, values []float64, sampleAccurate bool) {
	if len(values) == 0 {
		return
	}
	c := r.Context()
	if c == nil {
		v := p.load()
		for i := range values {
			values[i] = v
		}
		return
	}

	if sampleAccurate {
		sampleRate := float64(c.sampleRate)
		start := c.CurrentTime()
		end := start + float64(len(values))/sampleRate
		p.store(p.timeline.ValuesForTimeRange(start, end, p.load(), values, sampleRate))
	} else {
		values[0] = p.Value(r)
	}

	p.commit()
	if len(p.rendering) == 0 {
		return
	}
	// summing bus aliases values and mixes modulation down to mono
	p.summing[0] = values
	for _, out := range p.rendering {
		if out == nil {
			continue
		}
		p.summing.SumFrom(out.pull(r, nil, ProcessingSizeInFrames))
	}
	p.summing[0] = nil
}

func (p *Param) load() float64 {
	return math.Float64frombits(p.value.Load())
}

func (p *Param) store(v float64) {
	p.value.Store(math.Float64bits(v))
}
