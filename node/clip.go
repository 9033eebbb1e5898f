package node

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/dudk/phonograph"
)

// ClipMode defines how clip node limits the signal.
type ClipMode int32

const (
	// HardClip limits samples to [a, b] range.
	HardClip ClipMode = iota
	// Tanh renders a * tanh(b * x).
	Tanh
)

func (m ClipMode) String() string {
	switch m {
	case HardClip:
		return "clip"
	case Tanh:
		return "tanh"
	}
	return fmt.Sprintf("mode(%d)", int32(m))
}

// ErrInvalidMode is returned when unknown clip mode is set.
var ErrInvalidMode = errors.New("invalid mode")

// Clip limits its input. Params a and b are the minimum and maximum in
// HardClip mode and the output and input gain in Tanh mode.
type Clip struct {
	*phonograph.Node
	kernel *clipKernel
}

type clipKernel struct {
	phonograph.Stateless
	mode atomic.Int32
	a    *phonograph.Param
	b    *phonograph.Param
}

// NewClip returns a clip node in HardClip mode with [-1, 1] range.
func NewClip() *Clip {
	k := &clipKernel{
		a: phonograph.NewParam("a", -1, -math.MaxFloat32, math.MaxFloat32),
		b: phonograph.NewParam("b", 1, -math.MaxFloat32, math.MaxFloat32),
	}
	return &Clip{
		Node: phonograph.NewNode("clip", k,
			phonograph.WithInputs(1),
			phonograph.WithOutputs(2),
			phonograph.WithParams(k.a, k.b),
			phonograph.WithOutputFollowsInput(),
		),
		kernel: k,
	}
}

// Mode returns current clip mode.
func (c *Clip) Mode() ClipMode {
	return ClipMode(c.kernel.mode.Load())
}

// SetMode sets clip mode. It's picked up by the next quantum.
func (c *Clip) SetMode(m ClipMode) error {
	if m != HardClip && m != Tanh {
		return fmt.Errorf("%v: %v: %w", c.Node, m, ErrInvalidMode)
	}
	c.kernel.mode.Store(int32(m))
	return nil
}

// A returns the a param.
func (c *Clip) A() *phonograph.Param {
	return c.kernel.a
}

// B returns the b param.
func (c *Clip) B() *phonograph.Param {
	return c.kernel.b
}

// Process implements phonograph.Kernel.
func (k *clipKernel) Process(r phonograph.RenderLock, n *phonograph.Node, frames int) {
	in, out := n.Input(0).Bus(), n.Output(0).Bus()
	a, b := k.a.Value(r), k.b.Value(r)
	tanh := ClipMode(k.mode.Load()) == Tanh
	for i := range out {
		src := in[0]
		if len(in) == len(out) {
			src = in[i]
		}
		dst := out[i]
		for j := 0; j < frames; j++ {
			if tanh {
				dst[j] = a * math.Tanh(b*src[j])
				continue
			}
			dst[j] = math.Min(math.Max(src[j], a), b)
		}
	}
}
