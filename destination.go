package phonograph

import (
	"github.com/dudk/phonograph/signal"
)

// Destination is the final node of the graph. Render driver pulls its
// input every quantum.
type Destination struct {
	*Node
}

type destinationKernel struct {
	Stateless
}

// Process does nothing, destination input is pulled by render.
func (destinationKernel) Process(RenderLock, *Node, int) {}

func newDestination(channels int) *Destination {
	return &Destination{
		Node: NewNode("destination", destinationKernel{},
			WithInputs(1),
			WithChannelCount(channels, Explicit),
		),
	}
}

// Render pulls the graph into dst. It must be called by render driver.
// If layout of dst matches, the graph renders directly into it.
func (d *Destination) Render(r RenderLock, dst signal.Float64, frames int) {
	if !d.IsInitialized() {
		dst.Zero()
		return
	}
	in := d.inputs[0]
	var inPlace signal.Float64
	if dst.Size() == frames && dst.NumChannels() == d.ChannelCount() {
		inPlace = dst
	}
	bus := in.pull(r, inPlace, frames)
	if sameBuffer(bus, dst) {
		return
	}
	dst.Zero()
	dst.SumFrom(bus)
}

func sameBuffer(a, b signal.Float64) bool {
	if len(a) == 0 || len(b) == 0 || len(a[0]) == 0 || len(b[0]) == 0 {
		return false
	}
	return &a[0][0] == &b[0][0]
}
