package phonograph

import (
	"github.com/dudk/phonograph/signal"
)

// Input is the receiving side of a connection. It sums all connected
// outputs into a single bus.
type Input struct {
	junction
	node *Node

	// render path only
	bus    signal.Float64 // summing bus
	pulled signal.Float64
	silent bool
}

func newInput(n *Node) *Input {
	in := &Input{
		node:   n,
		silent: true,
	}
	in.bus = signal.EmptyFloat64(in.channelCount(), ProcessingSizeInFrames)
	in.pulled = in.bus
	return in
}

// Node returns the node this input belongs to.
func (in *Input) Node() *Node {
	return in.node
}

// Bus returns the buffer produced by the last pull. Only valid on the
// render path.
func (in *Input) Bus() signal.Float64 {
	return in.pulled
}

// NumChannels returns resolved number of channels of the summing bus.
func (in *Input) NumChannels() int {
	return in.bus.NumChannels()
}

// IsSilent returns true if all connected outputs were silent during the
// last pull.
func (in *Input) IsSilent() bool {
	return in.silent
}

// IsConnected returns true if output is connected to this input. Graph
// lock must be held on the context the node is connected in.
func (in *Input) IsConnected(g GraphLock, out *Output) bool {
	if !g.holds(in.node.owner.Load()) {
		return false
	}
	return in.isConnected(out)
}

// NumberOfConnections returns number of connected outputs. Graph lock
// must be held on the context the node is connected in.
func (in *Input) NumberOfConnections(g GraphLock) int {
	if !g.holds(in.node.owner.Load()) {
		return 0
	}
	return len(in.outputs)
}

// channelCount resolves number of channels according to node's channel
// count mode. Only valid on the render path.
func (in *Input) channelCount() int {
	mode, count := in.node.ChannelCountMode(), in.node.ChannelCount()
	if mode == Explicit {
		return count
	}
	max := 1
	for _, out := range in.rendering {
		if out == nil {
			continue
		}
		if ch := out.NumChannels(); ch > max {
			max = ch
		}
	}
	if mode == ClampedMax && max > count {
		max = count
	}
	return max
}

// pull renders all connected outputs and returns the result. If inPlace
// buffer is provided, the single connected output is allowed to render
// directly into it.
func (in *Input) pull(r RenderLock, inPlace signal.Float64, frames int) signal.Float64 {
	in.commit()
	in.node.checkNumberOfChannelsForInput(in)

	switch len(in.rendering) {
	case 0:
		in.bus.Zero()
		in.silent = true
		in.pulled = in.bus
		return in.pulled
	case 1:
		out := in.rendering[0]
		if out == nil {
			in.bus.Zero()
			in.silent = true
			in.pulled = in.bus
			return in.pulled
		}
		if in.node.ChannelCountMode() == Max || out.NumChannels() == in.bus.NumChannels() {
			in.pulled = out.pull(r, inPlace, frames)
			in.silent = out.IsSilent()
			return in.pulled
		}
	}

	in.bus.Zero()
	silent := true
	for _, out := range in.rendering {
		if out == nil {
			continue
		}
		in.bus.SumFrom(out.pull(r, nil, frames))
		silent = silent && out.IsSilent()
	}
	in.silent = silent
	in.pulled = in.bus
	return in.pulled
}
