// Package node provides kernels of commonly used graph nodes.
//
// Every node type embeds *phonograph.Node, so it can be passed to context
// methods directly:
//
//	g := node.NewGain()
//	c.Connect(src, g.Node, 0, 0)
//	c.Connect(g.Node, c.Destination().Node, 0, 0)
package node

import (
	"github.com/cwbudde/algo-vecmath"

	"github.com/dudk/phonograph"
)

// Gain multiplies its input by the gain param.
type Gain struct {
	*phonograph.Node
	gain *phonograph.Param
}

type gainKernel struct {
	phonograph.Stateless
	gain   *phonograph.Param
	values []float64
}

// NewGain returns a gain node with unity gain.
func NewGain() *Gain {
	p := phonograph.NewParam("gain", 1, 0, 10000)
	k := &gainKernel{
		gain:   p,
		values: make([]float64, phonograph.ProcessingSizeInFrames),
	}
	return &Gain{
		Node: phonograph.NewNode("gain", k,
			phonograph.WithInputs(1),
			phonograph.WithOutputs(1),
			phonograph.WithParams(p),
			phonograph.WithOutputFollowsInput(),
		),
		gain: p,
	}
}

// Gain returns the gain param.
func (g *Gain) Gain() *phonograph.Param {
	return g.gain
}

// Process implements phonograph.Kernel. Automated or modulated gain is
// applied per sample, otherwise the smoothed value is used.
func (k *gainKernel) Process(r phonograph.RenderLock, n *phonograph.Node, frames int) {
	out := n.Output(0).Bus()
	out.CopyFrom(n.Input(0).Bus())
	if k.gain.HasSampleAccurateValues() {
		values := k.values[:frames]
		k.gain.CalculateSampleAccurateValues(r, values)
		for i := range out {
			vecmath.MulBlockInPlace(out[i][:frames], values)
		}
		return
	}
	k.gain.Smooth(r)
	out.Scale(k.gain.SmoothedValue())
}

// Reset implements phonograph.Kernel.
func (k *gainKernel) Reset(phonograph.RenderLock) {
	k.gain.ResetSmoothedValue()
}
