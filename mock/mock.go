// Package mock provides mock kernels and allows to execute integration
// tests of the graph.
package mock

import (
	"github.com/dudk/phonograph"
)

// Source mocks a source kernel. It renders constant Value into all
// channels of its output. Counters are not thread-safe, so should not be
// checked while context is rendering.
type Source struct {
	counter
	Hooks
	Value float64
}

// NewSource returns a node with one output of provided number of channels
// and its kernel.
func NewSource(value float64, channels int) (*phonograph.Node, *Source) {
	s := &Source{Value: value}
	return phonograph.NewNode("mock source", s, phonograph.WithOutputs(channels)), s
}

// Process implements phonograph.Kernel.
func (m *Source) Process(r phonograph.RenderLock, n *phonograph.Node, frames int) {
	bus := n.Output(0).Bus()
	for i := range bus {
		for j := 0; j < frames && j < len(bus[i]); j++ {
			bus[i][j] = m.Value
		}
	}
	m.advance(frames)
}

// ScheduledSource mocks a scheduled source kernel. It renders constant
// Value only while playing.
type ScheduledSource struct {
	Source
}

// NewScheduledSource returns a scheduled node with one output of provided
// number of channels and its kernel.
func NewScheduledSource(value float64, channels int) (*phonograph.Node, *ScheduledSource) {
	s := &ScheduledSource{Source: Source{Value: value}}
	return phonograph.NewNode("mock scheduled source", s,
		phonograph.WithOutputs(channels),
		phonograph.WithSchedule(),
	), s
}

// Process implements phonograph.Kernel.
func (m *ScheduledSource) Process(r phonograph.RenderLock, n *phonograph.Node, frames int) {
	bus := n.Output(0).Bus()
	offset, count := n.Schedule().Update(r, frames, bus)
	if count == 0 {
		return
	}
	for i := range bus {
		for j := offset; j < offset+count; j++ {
			bus[i][j] = m.Value
		}
	}
	m.advance(count)
}

// Processor mocks a processing kernel. It scales the first input by Gain
// and renders it into the first output. Output follows the number of
// channels of the input.
type Processor struct {
	counter
	Hooks
	Gain    float64
	Tail    float64
	Latency float64
}

// NewProcessor returns a node with one input and one output and its
// kernel.
func NewProcessor(gain float64) (*phonograph.Node, *Processor) {
	p := &Processor{Gain: gain}
	return phonograph.NewNode("mock processor", p,
		phonograph.WithInputs(1),
		phonograph.WithOutputs(1),
		phonograph.WithOutputFollowsInput(),
	), p
}

// Process implements phonograph.Kernel.
func (m *Processor) Process(r phonograph.RenderLock, n *phonograph.Node, frames int) {
	out := n.Output(0).Bus()
	out.Zero()
	out.SumFrom(n.Input(0).Bus())
	out.Scale(m.Gain)
	m.advance(frames)
}

// TailTime implements phonograph.Kernel.
func (m *Processor) TailTime() float64 {
	return m.Tail
}

// LatencyTime implements phonograph.Kernel.
func (m *Processor) LatencyTime() float64 {
	return m.Latency
}

// Hooks allows to mock kernel lifecycle hooks.
type Hooks struct {
	Initialized   bool
	Uninitialized bool
	Resetted      bool

	ErrorOnInitialize error
}

// Initialize implements phonograph.Kernel.
func (h *Hooks) Initialize() error {
	if h.ErrorOnInitialize != nil {
		return h.ErrorOnInitialize
	}
	h.Initialized = true
	return nil
}

// Uninitialize implements phonograph.Kernel.
func (h *Hooks) Uninitialize() {
	h.Uninitialized = true
}

// Reset implements phonograph.Kernel.
func (h *Hooks) Reset(phonograph.RenderLock) {
	h.Resetted = true
}

// TailTime implements phonograph.Kernel.
func (h *Hooks) TailTime() float64 {
	return 0
}

// LatencyTime implements phonograph.Kernel.
func (h *Hooks) LatencyTime() float64 {
	return 0
}

// counter counts processed quanta and frames.
type counter struct {
	quanta int
	frames int
}

// advance counter's metrics.
func (c *counter) advance(frames int) {
	c.quanta++
	c.frames += frames
}

// Count returns quanta and frames metrics.
func (c *counter) Count() (int, int) {
	return c.quanta, c.frames
}
