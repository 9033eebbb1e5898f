package phonograph

import (
	"sync/atomic"

	"github.com/dudk/phonograph/signal"
)

// Output is the sending side of a connection. It can be connected to any
// number of inputs and params. Connected inputs and params are not owned
// by the output.
type Output struct {
	node *Node

	// guarded by graph lock
	inputs []*Input
	params []*Param
	fanOut atomic.Int32

	// render path only
	bus          signal.Float64
	inPlace      signal.Float64
	inPlaceFrame int64
	silent       bool
}

func newOutput(n *Node, numChannels int) *Output {
	return &Output{
		node:         n,
		bus:          signal.EmptyFloat64(numChannels, ProcessingSizeInFrames),
		inPlaceFrame: -1,
		silent:       true,
	}
}

// Node returns the node this output belongs to.
func (o *Output) Node() *Node {
	return o.node
}

// NumChannels returns number of channels of the output bus.
func (o *Output) NumChannels() int {
	return o.bus.NumChannels()
}

// FanOut returns number of connected inputs and params.
func (o *Output) FanOut() int {
	return int(o.fanOut.Load())
}

// Bus returns the buffer kernel should render into. It's the consumer
// buffer if output renders in place during current quantum. Only valid on
// the render path.
func (o *Output) Bus() signal.Float64 {
	if o.inPlace != nil && o.inPlaceFrame == o.node.lastProcessed {
		return o.inPlace
	}
	return o.bus
}

// IsSilent returns true if output was zeroed instead of being processed.
func (o *Output) IsSilent() bool {
	return o.silent
}

// Zero silences the output bus.
func (o *Output) Zero() {
	o.Bus().Zero()
	o.silent = true
}

// SetNumChannels resizes the output bus. It must be called from the
// render path.
func (o *Output) SetNumChannels(r RenderLock, numChannels int) {
	if !r.Valid() {
		return
	}
	o.setNumChannels(numChannels)
}

func (o *Output) setNumChannels(numChannels int) {
	if numChannels == o.bus.NumChannels() {
		return
	}
	o.bus = o.bus.Resize(numChannels, ProcessingSizeInFrames)
	if o.inPlace != nil && o.inPlace.NumChannels() != numChannels {
		o.inPlace = nil
	}
}

// pull processes the node if it wasn't processed during current quantum
// and returns the output bus. Output with a single consumer renders in the
// provided buffer if its layout matches.
func (o *Output) pull(r RenderLock, inPlace signal.Float64, frames int) signal.Float64 {
	now := r.c.currentSampleFrame.Load()
	if o.node.lastProcessed != now {
		o.inPlace = nil
		if inPlace != nil && o.FanOut() == 1 &&
			inPlace.NumChannels() == o.bus.NumChannels() &&
			inPlace.Size() == o.bus.Size() {
			o.inPlace = inPlace
			o.inPlaceFrame = now
		}
	}
	o.node.processIfNecessary(r, frames)
	return o.Bus()
}

// updateFanOut must be called under graph lock.
func (o *Output) updateFanOut() {
	o.fanOut.Store(int32(len(o.inputs) + len(o.params)))
}

func (o *Output) addInput(in *Input) {
	for _, i := range o.inputs {
		if i == in {
			return
		}
	}
	o.inputs = append(o.inputs, in)
	o.updateFanOut()
}

func (o *Output) removeInput(in *Input) {
	for i := range o.inputs {
		if o.inputs[i] == in {
			o.inputs = append(o.inputs[:i], o.inputs[i+1:]...)
			break
		}
	}
	o.updateFanOut()
}

func (o *Output) addParam(p *Param) {
	for _, i := range o.params {
		if i == p {
			return
		}
	}
	o.params = append(o.params, p)
	o.updateFanOut()
}

func (o *Output) removeParam(p *Param) {
	for i := range o.params {
		if o.params[i] == p {
			o.params = append(o.params[:i], o.params[i+1:]...)
			break
		}
	}
	o.updateFanOut()
}
