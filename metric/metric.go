// Package metric publishes render counters of audio contexts with expvar.
//
// Counters are grouped by context name, so multiple contexts with the same
// name share counters. All meter methods are safe to call from the render
// path: they don't allocate and don't block.
package metric

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dudk/phonograph/signal"
)

const contextsLabel = "phonograph.contexts"

const (
	// QuantumCounter measures number of rendered quanta.
	QuantumCounter = "Quanta"
	// FrameCounter measures number of rendered sample frames.
	FrameCounter = "Frames"
	// LatencyCounter holds how long the last quantum took to render.
	LatencyCounter = "Latency"
	// DurationCounter counts what's the duration of rendered signal.
	DurationCounter = "Duration"
	// SkippedCounter counts quanta rendered as silence because the render
	// lock wasn't acquired or the context wasn't runnable.
	SkippedCounter = "Skipped"
	// DroppedCounter counts graph mutations skipped on lock contention.
	DroppedCounter = "Dropped"
	// ContextCounter counts number of metered contexts.
	ContextCounter = "Contexts"
)

var (
	contexts = metrics{
		m: make(map[string]metric),
	}

	counters = []string{
		QuantumCounter,
		FrameCounter,
		LatencyCounter,
		DurationCounter,
		SkippedCounter,
		DroppedCounter,
		ContextCounter,
	}
)

// Get metrics values for provided context name.
func Get(name string) map[string]string {
	return getCounters(name)
}

// GetAll returns counters for all measured contexts.
func GetAll() map[string]map[string]string {
	m := make(map[string]map[string]string)
	contexts.Lock()
	defer contexts.Unlock()
	for name := range contexts.m {
		m[name] = getCounters(name)
	}
	return m
}

func getCounters(name string) map[string]string {
	m := make(map[string]string)
	for _, counter := range counters {
		v := expvar.Get(key(name, counter))
		if v != nil {
			m[counter] = v.String()
		}
	}
	return m
}

// Meter captures counters of a single context.
type Meter struct {
	metric
	sampleRate int
	frames     int64
	duration   time.Duration
}

// NewMeter creates new meter for the context with provided name.
func NewMeter(name string, sampleRate int) *Meter {
	m := contexts.get(name)
	m.contexts.Add(1)
	return &Meter{
		metric:     m,
		sampleRate: sampleRate,
	}
}

// Quantum captures metrics when a quantum of frames is rendered in took
// time.
func (m *Meter) Quantum(frames int64, took time.Duration) {
	if m == nil {
		return
	}
	m.latency.set(took)
	m.quanta.Add(1)
	m.framesCount.Add(frames)
	// recalculate quantum duration only when its size has changed
	if m.frames != frames {
		m.frames = frames
		m.duration = signal.DurationOf(m.sampleRate, frames)
	}
	m.signal.add(m.duration)
}

// Skip captures a quantum rendered as silence.
func (m *Meter) Skip() {
	if m == nil {
		return
	}
	m.skipped.Add(1)
}

// Drop captures a graph mutation skipped on lock contention.
func (m *Meter) Drop() {
	if m == nil {
		return
	}
	m.dropped.Add(1)
}

type metrics struct {
	sync.Mutex
	m map[string]metric
}

func (m *metrics) get(name string) metric {
	m.Lock()
	defer m.Unlock()
	if metric, ok := m.m[name]; ok {
		return metric
	}
	metric := newMetric(name)
	m.m[name] = metric
	return metric
}

type metric struct {
	key         string
	contexts    *expvar.Int
	quanta      *expvar.Int
	framesCount *expvar.Int
	skipped     *expvar.Int
	dropped     *expvar.Int
	latency     *duration
	signal      *duration
}

func newMetric(name string) metric {
	m := metric{
		key:         name,
		contexts:    expvar.NewInt(key(name, ContextCounter)),
		quanta:      expvar.NewInt(key(name, QuantumCounter)),
		framesCount: expvar.NewInt(key(name, FrameCounter)),
		skipped:     expvar.NewInt(key(name, SkippedCounter)),
		dropped:     expvar.NewInt(key(name, DroppedCounter)),
		latency:     &duration{},
		signal:      &duration{},
	}
	expvar.Publish(key(name, LatencyCounter), m.latency)
	expvar.Publish(key(name, DurationCounter), m.signal)
	return m
}

func key(name, counter string) string {
	return fmt.Sprintf("%s.%s.%s", contextsLabel, name, counter)
}

// duration allows to format time.Duration metric values.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%q", time.Duration(atomic.LoadInt64(&v.d)))
}

func (v *duration) add(delta time.Duration) {
	atomic.AddInt64(&v.d, int64(delta))
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}
