package node

import (
	"github.com/dudk/phonograph"
	"github.com/dudk/phonograph/mutable"
	"github.com/dudk/phonograph/signal"
)

// BufferSource is a scheduled source which plays the buffer. It finishes
// when the end of the buffer is reached, unless looping is enabled.
type BufferSource struct {
	*phonograph.Node
	kernel *bufferKernel
}

type bufferKernel struct {
	phonograph.Stateless
	buffer    signal.Float64
	loop      bool
	loopStart int
	loopEnd   int

	// render path only
	position int
	ended    bool
}

// NewBufferSource returns a source which plays the buffer. Output has as
// many channels as the buffer.
func NewBufferSource(buffer signal.Float64) *BufferSource {
	channels := buffer.NumChannels()
	if channels == 0 {
		channels = 1
	}
	k := &bufferKernel{buffer: buffer}
	return &BufferSource{
		Node: phonograph.NewNode("buffer source", k,
			phonograph.WithOutputs(channels),
			phonograph.WithSchedule(),
		),
		kernel: k,
	}
}

// SetBuffer returns mutation which replaces the buffer and rewinds the
// playback.
func (b *BufferSource) SetBuffer(buffer signal.Float64) mutable.Mutation {
	return b.Mutate(func() error {
		b.kernel.buffer = buffer
		b.kernel.position = 0
		b.kernel.ended = false
		return nil
	})
}

// SetLoop returns mutation which enables looping between start and end
// sample frames. Zero end means the end of the buffer.
func (b *BufferSource) SetLoop(loop bool, start, end int) mutable.Mutation {
	return b.Mutate(func() error {
		if start < 0 || end < 0 || (end != 0 && end <= start) {
			return phonograph.ErrInvalidArgument
		}
		b.kernel.loop = loop
		b.kernel.loopStart = start
		b.kernel.loopEnd = end
		return nil
	})
}

// Process implements phonograph.Kernel.
func (k *bufferKernel) Process(r phonograph.RenderLock, n *phonograph.Node, frames int) {
	out := n.Output(0)
	if ch := k.buffer.NumChannels(); ch > 0 && ch != out.NumChannels() {
		out.SetNumChannels(r, ch)
	}
	bus := out.Bus()
	offset, count := n.Schedule().Update(r, frames, bus)
	if count == 0 {
		return
	}
	size := k.buffer.Size()
	if size == 0 || k.ended {
		bus.ZeroRange(offset, offset+count)
		return
	}

	start, end := 0, size
	if k.loop {
		start = k.loopStart
		if k.loopEnd != 0 && k.loopEnd < size {
			end = k.loopEnd
		}
		if start >= end {
			start = 0
		}
	}
	for j := offset; j < offset+count; j++ {
		if k.position >= end {
			if !k.loop {
				bus.ZeroRange(j, offset+count)
				k.ended = true
				// finish the source when the last frame is played
				c := r.Context()
				n.Schedule().Stop(c.CurrentTime() + float64(j)/float64(c.SampleRate()))
				return
			}
			k.position = start
		}
		for i := range bus {
			bus[i][j] = k.buffer[i%len(k.buffer)][k.position]
		}
		k.position++
	}
}

// Reset implements phonograph.Kernel.
func (k *bufferKernel) Reset(phonograph.RenderLock) {
	k.position = 0
	k.ended = false
}
