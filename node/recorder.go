package node

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/dudk/phonograph"
	"github.com/dudk/phonograph/signal"
)

// Recorder captures its input while recording is enabled and passes it
// to the output. It should be registered as automatic pull node if its
// output is not connected.
type Recorder struct {
	*phonograph.Node
	kernel *recorderKernel
}

type recorderKernel struct {
	phonograph.Stateless
	recording atomic.Bool

	mu       sync.Mutex
	recorded signal.Float64

	// render path only
	pending signal.Float64
}

// NewRecorder returns a recorder node. Recording is not started.
func NewRecorder() *Recorder {
	k := &recorderKernel{}
	return &Recorder{
		Node: phonograph.NewNode("recorder", k,
			phonograph.WithInputs(1),
			phonograph.WithOutputs(2),
			phonograph.WithOutputFollowsInput(),
		),
		kernel: k,
	}
}

// StartRecording enables recording.
func (r *Recorder) StartRecording() {
	r.kernel.recording.Store(true)
}

// StopRecording disables recording.
func (r *Recorder) StopRecording() {
	r.kernel.recording.Store(false)
}

// IsRecording returns true if recording is enabled.
func (r *Recorder) IsRecording() bool {
	return r.kernel.recording.Load()
}

// Recorded returns the signal captured so far and resets the recorder. It
// doesn't include quanta the render path hasn't handed over yet.
func (r *Recorder) Recorded() signal.Float64 {
	r.kernel.mu.Lock()
	defer r.kernel.mu.Unlock()
	recorded := r.kernel.recorded
	r.kernel.recorded = nil
	return recorded
}

// Process implements phonograph.Kernel.
func (k *recorderKernel) Process(r phonograph.RenderLock, n *phonograph.Node, frames int) {
	in := n.Input(0).Bus()
	n.Output(0).Bus().CopyFrom(in)
	if !k.recording.Load() {
		return
	}
	if k.pending != nil && k.pending.NumChannels() != in.NumChannels() {
		k.pending = nil
	}
	k.pending = k.pending.Append(in.Slice(0, frames))
	if !k.mu.TryLock() {
		return
	}
	if k.recorded != nil && k.recorded.NumChannels() != k.pending.NumChannels() {
		k.recorded = nil
	}
	k.recorded = k.recorded.Append(k.pending)
	k.mu.Unlock()
	k.pending = nil
}

// TailTime implements phonograph.Kernel. Recorder is processed even if its
// input is silent.
func (k *recorderKernel) TailTime() float64 {
	return math.Inf(1)
}
