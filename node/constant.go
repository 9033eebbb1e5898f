package node

import (
	"github.com/dudk/phonograph"
)

// Constant is a scheduled source which renders the value of its offset
// param.
type Constant struct {
	*phonograph.Node
	offset *phonograph.Param
}

type constantKernel struct {
	phonograph.Stateless
	offset *phonograph.Param
	values []float64
}

// NewConstant returns a mono constant source with provided offset.
func NewConstant(offset float64) *Constant {
	p := phonograph.NewParam("offset", offset, -3.4e38, 3.4e38)
	return &Constant{
		Node: phonograph.NewNode("constant",
			&constantKernel{
				offset: p,
				values: make([]float64, phonograph.ProcessingSizeInFrames),
			},
			phonograph.WithOutputs(1),
			phonograph.WithParams(p),
			phonograph.WithSchedule(),
		),
		offset: p,
	}
}

// Offset returns the offset param.
func (c *Constant) Offset() *phonograph.Param {
	return c.offset
}

// Process implements phonograph.Kernel.
func (k *constantKernel) Process(r phonograph.RenderLock, n *phonograph.Node, frames int) {
	bus := n.Output(0).Bus()
	offset, count := n.Schedule().Update(r, frames, bus)
	if count == 0 {
		return
	}
	if k.offset.HasSampleAccurateValues() {
		values := k.values[:frames]
		k.offset.CalculateSampleAccurateValues(r, values)
		for i := range bus {
			copy(bus[i][offset:offset+count], values[offset:offset+count])
		}
		return
	}
	v := k.offset.Value(r)
	for i := range bus {
		for j := offset; j < offset+count; j++ {
			bus[i][j] = v
		}
	}
}
