package node

import (
	"errors"
	"fmt"
	"math"
	"sync"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/dudk/phonograph"
)

const (
	// DefaultWindowSize is the window size of new spectral monitors.
	DefaultWindowSize = 512
	// MinWindowSize is the smallest supported window size.
	MinWindowSize = 32
	// MaxWindowSize is the largest supported window size.
	MaxWindowSize = 32768
)

// ErrInvalidWindowSize is returned when window size is not a power of two
// in [MinWindowSize, MaxWindowSize] range.
var ErrInvalidWindowSize = errors.New("invalid window size")

// SpectralMonitor passes its input through and keeps the latest window of
// the signal mixed to mono. Magnitude spectrum of the window is calculated
// on demand by the control path. It should be registered as automatic pull
// node if its output is not connected.
type SpectralMonitor struct {
	*phonograph.Node
	kernel *spectralKernel
}

type spectralKernel struct {
	phonograph.Stateless

	// guards the window, the render path skips a quantum on contention
	mu      sync.Mutex
	size    int
	samples []float64
	write   int
	window  []float64
	winGain float64
	plan    *algofft.Plan[complex128]
	in      []complex128
	out     []complex128
	re, im  []float64

	// render path only
	mono []float64
}

// NewSpectralMonitor returns a spectral monitor with DefaultWindowSize.
func NewSpectralMonitor() (*SpectralMonitor, error) {
	k := &spectralKernel{
		mono: make([]float64, phonograph.ProcessingSizeInFrames),
	}
	if err := k.resize(DefaultWindowSize); err != nil {
		return nil, err
	}
	return &SpectralMonitor{
		Node: phonograph.NewNode("spectral monitor", k,
			phonograph.WithInputs(1),
			phonograph.WithOutputs(2),
			phonograph.WithOutputFollowsInput(),
		),
		kernel: k,
	}, nil
}

// WindowSize returns the number of frames in the analysis window.
func (s *SpectralMonitor) WindowSize() int {
	s.kernel.mu.Lock()
	defer s.kernel.mu.Unlock()
	return s.kernel.size
}

// SetWindowSize changes the analysis window. Captured signal is dropped.
func (s *SpectralMonitor) SetWindowSize(size int) error {
	if size < MinWindowSize || size > MaxWindowSize || size&(size-1) != 0 {
		return fmt.Errorf("%v: %d: %w", s.Node, size, ErrInvalidWindowSize)
	}
	s.kernel.mu.Lock()
	defer s.kernel.mu.Unlock()
	return s.kernel.resize(size)
}

// SpectralMagnitudes writes normalized magnitudes of the first
// WindowSize/2 frequency bins into dst and returns the number of written
// bins. A full-scale sine renders a magnitude close to one in its bin.
func (s *SpectralMonitor) SpectralMagnitudes(dst []float64) (int, error) {
	k := s.kernel
	k.mu.Lock()
	defer k.mu.Unlock()

	size := k.size
	// the oldest sample is at the write position
	for i := 0; i < size; i++ {
		k.in[i] = complex(k.samples[(k.write+i)%size]*k.window[i], 0)
	}
	if err := k.plan.Forward(k.out, k.in); err != nil {
		return 0, fmt.Errorf("%v: %w", s.Node, err)
	}
	bins := size / 2
	if len(dst) < bins {
		bins = len(dst)
	}
	for i := 0; i < bins; i++ {
		k.re[i] = real(k.out[i])
		k.im[i] = imag(k.out[i])
	}
	vecmath.Magnitude(dst[:bins], k.re[:bins], k.im[:bins])
	norm := 2 / (float64(size) * k.winGain)
	vecmath.ScaleBlock(dst[:bins], dst[:bins], norm)
	if bins > 0 {
		// DC is not mirrored
		dst[0] /= 2
	}
	return bins, nil
}

// resize must be called with mu held.
func (k *spectralKernel) resize(size int) error {
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return fmt.Errorf("fft plan of %d: %w", size, err)
	}
	k.plan = plan
	k.size = size
	k.samples = make([]float64, size)
	k.write = 0
	k.in = make([]complex128, size)
	k.out = make([]complex128, size)
	k.re = make([]float64, size/2)
	k.im = make([]float64, size/2)
	k.window = hann(size)
	var sum float64
	for _, w := range k.window {
		sum += w
	}
	k.winGain = sum / float64(size)
	return nil
}

// Process implements phonograph.Kernel.
func (k *spectralKernel) Process(r phonograph.RenderLock, n *phonograph.Node, frames int) {
	in := n.Input(0).Bus()
	n.Output(0).Bus().CopyFrom(in)
	if !k.mu.TryLock() {
		return
	}
	defer k.mu.Unlock()

	mono := k.mono[:frames]
	for i := range mono {
		mono[i] = 0
	}
	in.MixToMono(mono)
	size := len(k.samples)
	for _, v := range mono {
		k.samples[k.write] = v
		k.write++
		if k.write == size {
			k.write = 0
		}
	}
}

// TailTime implements phonograph.Kernel. Monitor keeps consuming silence so
// the window decays once the input stops.
func (k *spectralKernel) TailTime() float64 {
	return math.Inf(1)
}

// Reset implements phonograph.Kernel.
func (k *spectralKernel) Reset(phonograph.RenderLock) {
	if !k.mu.TryLock() {
		return
	}
	defer k.mu.Unlock()
	for i := range k.samples {
		k.samples[i] = 0
	}
	k.write = 0
}

// hann returns periodic Hann window.
func hann(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
	}
	return w
}
