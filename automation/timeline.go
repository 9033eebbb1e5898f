// Package automation schedules parameter changes in time and resolves them
// into values for a render quantum.
//
// A Timeline is written by the control path and read by the render path.
// The render path never waits: if the timeline is being modified at the
// moment it's read, the default value is used for that quantum.
package automation

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// EventType identifies how the value changes towards an event.
type EventType int

const (
	// SetValue sets the value at the event time.
	SetValue EventType = iota
	// LinearRamp linearly ramps the value from previous event to this one.
	LinearRamp
	// ExponentialRamp exponentially ramps the value from previous event to
	// this one. Both values must be positive.
	ExponentialRamp
	// SetTarget exponentially approaches the target starting at the event
	// time with the provided time constant.
	SetTarget
	// SetValueCurve follows the curve values for the event duration.
	SetValueCurve
	// lastType marks that there is no next event.
	lastType
)

// ErrInvalidEvent is returned when event contains non-finite or negative
// values.
var ErrInvalidEvent = errors.New("invalid automation event")

// Event is a single scheduled change.
type Event struct {
	Type         EventType
	Value        float64
	Time         float64
	TimeConstant float64
	Duration     float64
	Curve        []float64
}

// Timeline is an ordered by time sequence of events. Zero value is an empty
// timeline ready to use.
type Timeline struct {
	m      sync.Mutex
	events []Event
	count  atomic.Int32
}

func (t EventType) String() string {
	switch t {
	case SetValue:
		return "setValue"
	case LinearRamp:
		return "linearRamp"
	case ExponentialRamp:
		return "exponentialRamp"
	case SetTarget:
		return "setTarget"
	case SetValueCurve:
		return "setValueCurve"
	}
	return "unknown"
}

// SetValueAtTime schedules the value to be set at time.
func (tl *Timeline) SetValueAtTime(value, time float64) error {
	return tl.insert(Event{Type: SetValue, Value: value, Time: time})
}

// LinearRampToValueAtTime schedules a linear ramp ending with value at time.
func (tl *Timeline) LinearRampToValueAtTime(value, time float64) error {
	return tl.insert(Event{Type: LinearRamp, Value: value, Time: time})
}

// ExponentialRampToValueAtTime schedules an exponential ramp ending with
// value at time.
func (tl *Timeline) ExponentialRampToValueAtTime(value, time float64) error {
	return tl.insert(Event{Type: ExponentialRamp, Value: value, Time: time})
}

// SetTargetAtTime schedules an exponential approach to target starting at
// time.
func (tl *Timeline) SetTargetAtTime(target, time, timeConstant float64) error {
	if !finite(timeConstant) || timeConstant <= 0 {
		return fmt.Errorf("%w: time constant %v", ErrInvalidEvent, timeConstant)
	}
	return tl.insert(Event{Type: SetTarget, Value: target, Time: time, TimeConstant: timeConstant})
}

// SetValueCurveAtTime schedules the curve values to be played starting at
// time for the duration. The curve is copied.
func (tl *Timeline) SetValueCurveAtTime(curve []float64, time, duration float64) error {
	if len(curve) == 0 {
		return fmt.Errorf("%w: empty curve", ErrInvalidEvent)
	}
	if !finite(duration) || duration <= 0 {
		return fmt.Errorf("%w: duration %v", ErrInvalidEvent, duration)
	}
	c := make([]float64, len(curve))
	copy(c, curve)
	return tl.insert(Event{Type: SetValueCurve, Time: time, Duration: duration, Curve: c})
}

// CancelScheduledValues removes all events scheduled at or after startTime.
func (tl *Timeline) CancelScheduledValues(startTime float64) {
	tl.m.Lock()
	defer tl.m.Unlock()
	for i := range tl.events {
		if tl.events[i].Time >= startTime {
			tl.events = tl.events[:i]
			tl.count.Store(int32(len(tl.events)))
			return
		}
	}
}

// Len returns number of scheduled events. It doesn't wait for the
// timeline to be modified.
func (tl *Timeline) Len() int {
	return int(tl.count.Load())
}

// HasValues returns true if any event is scheduled.
func (tl *Timeline) HasValues() bool {
	return tl.count.Load() > 0
}

// insert keeps events sorted by time. An event of the same type at the same
// time replaces the existing one, otherwise the event is inserted after all
// events at the same time.
func (tl *Timeline) insert(e Event) error {
	if !finite(e.Value) || !finite(e.Time) || e.Time < 0 {
		return fmt.Errorf("%w: %v value %v at %v", ErrInvalidEvent, e.Type, e.Value, e.Time)
	}
	tl.m.Lock()
	defer tl.m.Unlock()
	i := 0
	for ; i < len(tl.events); i++ {
		if tl.events[i].Type == e.Type && tl.events[i].Time == e.Time {
			tl.events[i] = e
			return nil
		}
		if tl.events[i].Time > e.Time {
			break
		}
	}
	tl.events = append(tl.events, Event{})
	copy(tl.events[i+1:], tl.events[i:])
	tl.events[i] = e
	tl.count.Store(int32(len(tl.events)))
	return nil
}

// ValueForContextTime returns the value for a single frame at currentTime.
// If no event has started yet or the timeline is being modified, the
// defaultValue and false are returned.
func (tl *Timeline) ValueForContextTime(currentTime, sampleRate, defaultValue float64) (float64, bool) {
	if !tl.m.TryLock() {
		return defaultValue, false
	}
	defer tl.m.Unlock()
	if len(tl.events) == 0 || currentTime < tl.events[0].Time {
		return defaultValue, false
	}
	var value [1]float64
	// time just beyond one sample frame
	endTime := currentTime + 1.1/sampleRate
	v := tl.valuesForTimeRange(currentTime, endTime, defaultValue, value[:], sampleRate)
	return v, true
}

// ValuesForTimeRange fills values with one value per sample frame for the
// time range [startTime, endTime). The last calculated value is returned.
// If the timeline is being modified, values are filled with defaultValue.
func (tl *Timeline) ValuesForTimeRange(startTime, endTime, defaultValue float64, values []float64, sampleRate float64) float64 {
	if !tl.m.TryLock() {
		fill(values, defaultValue)
		return defaultValue
	}
	defer tl.m.Unlock()
	return tl.valuesForTimeRange(startTime, endTime, defaultValue, values, sampleRate)
}

func (tl *Timeline) valuesForTimeRange(startTime, endTime, defaultValue float64, values []float64, sampleRate float64) float64 {
	numberOfValues := len(values)
	if len(tl.events) == 0 || numberOfValues == 0 || sampleRate <= 0 || endTime <= tl.events[0].Time {
		fill(values, defaultValue)
		return defaultValue
	}

	writeIndex := 0
	currentTime := startTime
	incr := 1 / sampleRate

	// fill with default until the first event starts
	if firstTime := tl.events[0].Time; firstTime > startTime {
		fillToFrame := sampleFrame(firstTime-startTime, sampleRate, numberOfValues)
		for ; writeIndex < fillToFrame; writeIndex++ {
			values[writeIndex] = defaultValue
		}
		currentTime += float64(fillToFrame) * incr
	}

	value := defaultValue
	for i := 0; i < len(tl.events) && writeIndex < numberOfValues; i++ {
		event := tl.events[i]
		var next *Event
		if i+1 < len(tl.events) {
			next = &tl.events[i+1]
		}

		// wait until we get a more recent event
		if next != nil && next.Time < currentTime {
			// the previous event might have ended with a curve or a
			// target, keep the value it reached
			value = endValue(event, next.Time, value)
			continue
		}

		value1, time1 := event.Value, event.Time
		value2, time2 := value1, endTime+1
		nextType := lastType
		if next != nil {
			value2, time2, nextType = next.Value, next.Time, next.Type
		}
		deltaTime := time2 - time1
		k := 0.0
		if deltaTime > 0 {
			k = 1 / deltaTime
		}
		fillToTime := math.Min(endTime, time2)
		fillToFrame := sampleFrame(fillToTime-startTime, sampleRate, numberOfValues)

		switch nextType {
		case LinearRamp:
			if event.Type == SetTarget || event.Type == SetValueCurve {
				value1 = value
			}
			for ; writeIndex < fillToFrame; writeIndex++ {
				x := (currentTime - time1) * k
				value = (1-x)*value1 + x*value2
				values[writeIndex] = value
				currentTime += incr
			}
		case ExponentialRamp:
			if event.Type == SetTarget || event.Type == SetValueCurve {
				value1 = value
			}
			if value1 <= 0 || value2 <= 0 {
				// invalid ramp keeps previous value
				for ; writeIndex < fillToFrame; writeIndex++ {
					values[writeIndex] = value
					currentTime += incr
				}
				break
			}
			numSampleFrames := deltaTime * sampleRate
			multiplier := math.Pow(value2/value1, 1/numSampleFrames)
			value = value1 * math.Pow(value2/value1, (currentTime-time1)*k)
			for ; writeIndex < fillToFrame; writeIndex++ {
				values[writeIndex] = value
				value *= multiplier
				currentTime += incr
			}
		default:
			switch event.Type {
			case SetValue, LinearRamp, ExponentialRamp:
				value = event.Value
				for ; writeIndex < fillToFrame; writeIndex++ {
					values[writeIndex] = value
					currentTime += incr
				}
			case SetTarget:
				if currentTime <= time1 {
					value = valueAt(values, writeIndex, value)
				}
				discreteTimeConstant := 1 - math.Exp(-1/(sampleRate*event.TimeConstant))
				for ; writeIndex < fillToFrame; writeIndex++ {
					values[writeIndex] = value
					value += (event.Value - value) * discreteTimeConstant
					currentTime += incr
				}
			case SetValueCurve:
				curve := event.Curve
				durationFrames := event.Duration * sampleRate
				curvePointsPerFrame := float64(len(curve)) / durationFrames
				startFrameOffset := (currentTime - time1) * sampleRate
				for ; writeIndex < fillToFrame; writeIndex++ {
					curveIndex := int(curvePointsPerFrame * startFrameOffset)
					if curveIndex < len(curve) {
						value = curve[curveIndex]
					} else {
						value = curve[len(curve)-1]
					}
					values[writeIndex] = value
					startFrameOffset++
					currentTime += incr
				}
			}
		}
	}

	// fill the rest with the last value
	for ; writeIndex < numberOfValues; writeIndex++ {
		values[writeIndex] = value
	}
	return value
}

// endValue returns the value which event reached by the time the next event
// starts. It's used when the whole event lies before the requested range.
func endValue(event Event, nextTime, current float64) float64 {
	switch event.Type {
	case SetTarget:
		return event.Value + (current-event.Value)*math.Exp(-(nextTime-event.Time)/event.TimeConstant)
	case SetValueCurve:
		return event.Curve[len(event.Curve)-1]
	}
	return event.Value
}

// valueAt returns the last written value before index or fallback.
func valueAt(values []float64, index int, fallback float64) float64 {
	if index > 0 {
		return values[index-1]
	}
	return fallback
}

// sampleFrame converts time to sample frame index clamped to [0, max].
func sampleFrame(t, sampleRate float64, max int) int {
	frame := int(math.Round(t * sampleRate))
	if frame < 0 {
		return 0
	}
	if frame > max {
		return max
	}
	return frame
}

func fill(values []float64, value float64) {
	for i := range values {
		values[i] = value
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
