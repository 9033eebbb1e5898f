package node_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/phonograph"
	"github.com/dudk/phonograph/mock"
	"github.com/dudk/phonograph/node"
	"github.com/dudk/phonograph/signal"
)

const frames = phonograph.ProcessingSizeInFrames

func newContext(t *testing.T) *phonograph.Context {
	t.Helper()
	c, err := phonograph.New()
	require.NoError(t, err)
	return c
}

func render(c *phonograph.Context) signal.Float64 {
	dst := signal.EmptyFloat64(c.Channels(), frames)
	c.RenderQuantum(dst)
	return dst
}

func assertAll(t *testing.T, expected float64, buf signal.Float64) {
	t.Helper()
	for i := range buf {
		for j := range buf[i] {
			if !assert.InDelta(t, expected, buf[i][j], 1e-9, "channel %d frame %d", i, j) {
				return
			}
		}
	}
}

func TestGain(t *testing.T) {
	c := newContext(t)
	src, _ := mock.NewSource(1, 2)
	g := node.NewGain()
	require.NoError(t, c.Connect(src, g.Node, 0, 0))
	require.NoError(t, c.Connect(g.Node, c.Destination().Node, 0, 0))
	assertAll(t, 1, render(c))

	g.Gain().SetSmoothingConstant(1)
	g.Gain().SetValue(0.5)
	assertAll(t, 0.5, render(c))

	require.NoError(t, g.Gain().Timeline().SetValueAtTime(0.25, c.CurrentTime()))
	assertAll(t, 0.25, render(c))
}

func TestGainSmoothing(t *testing.T) {
	c := newContext(t)
	src, _ := mock.NewSource(1, 1)
	g := node.NewGain()
	require.NoError(t, c.Connect(src, g.Node, 0, 0))
	require.NoError(t, c.Connect(g.Node, c.Destination().Node, 0, 0))
	g.Gain().SetValue(0)

	previous := 1.0
	for i := 0; i < 10; i++ {
		dst := render(c)
		require.Less(t, dst[0][0], previous)
		previous = dst[0][0]
	}
	assert.Greater(t, previous, 0.0)
}

func TestConstant(t *testing.T) {
	c := newContext(t)
	k := node.NewConstant(0.75)
	require.NoError(t, c.Connect(k.Node, c.Destination().Node, 0, 0))
	assertAll(t, 0, render(c))

	require.NoError(t, k.Schedule().Start(c, 0))
	assertAll(t, 0.75, render(c))

	k.Offset().SetValue(0.5)
	assertAll(t, 0.5, render(c))

	require.NoError(t, k.Offset().Timeline().SetValueAtTime(0.25, c.CurrentTime()))
	assertAll(t, 0.25, render(c))

	require.NoError(t, k.Schedule().Stop(c.CurrentTime()))
	assertAll(t, 0, render(c))
	assert.Equal(t, phonograph.Finished, k.Schedule().State())
}

func ramp(channels, size int) signal.Float64 {
	buf := signal.EmptyFloat64(channels, size)
	for i := range buf {
		for j := range buf[i] {
			buf[i][j] = float64(j+1) / 1000
		}
	}
	return buf
}

func TestBufferSource(t *testing.T) {
	c := newContext(t)
	b := node.NewBufferSource(ramp(2, 200))
	require.NoError(t, c.Connect(b.Node, c.Destination().Node, 0, 0))
	require.NoError(t, b.Schedule().Start(c, 0))

	dst := render(c)
	assert.Equal(t, 0.001, dst[0][0])
	assert.Equal(t, 0.128, dst[1][127])

	dst = render(c)
	assert.Equal(t, 0.2, dst[0][71])
	assert.Equal(t, 0.0, dst[0][72])
	assert.Equal(t, 0.0, dst[1][127])
	assert.Equal(t, 1, c.ActiveSourceCount())

	assertAll(t, 0, render(c))
	assert.Equal(t, phonograph.Finished, b.Schedule().State())
	assert.Equal(t, 0, c.ActiveSourceCount())
}

func TestBufferSourceLoop(t *testing.T) {
	c := newContext(t)
	b := node.NewBufferSource(ramp(1, 200))
	require.NoError(t, c.Connect(b.Node, c.Destination().Node, 0, 0))
	require.NoError(t, b.Schedule().Start(c, 0))
	c.Push(b.SetLoop(true, 10, 0))

	render(c)
	dst := render(c)
	assert.Equal(t, 0.2, dst[0][71])
	assert.Equal(t, 0.011, dst[1][72])
	assert.Equal(t, phonograph.Playing, b.Schedule().State())

	c.Push(b.SetBuffer(ramp(1, 10)))
	render(c)
	assert.Equal(t, phonograph.Playing, b.Schedule().State())
}

func TestClip(t *testing.T) {
	c := newContext(t)
	src, kernel := mock.NewSource(2, 2)
	clip := node.NewClip()
	require.NoError(t, c.Connect(src, clip.Node, 0, 0))
	require.NoError(t, c.Connect(clip.Node, c.Destination().Node, 0, 0))
	assert.Equal(t, node.HardClip, clip.Mode())
	assertAll(t, 1, render(c))

	c.Push(src.Mutate(func() error {
		kernel.Value = -2
		return nil
	}))
	render(c)
	assertAll(t, -1, render(c))

	require.NoError(t, clip.SetMode(node.Tanh))
	clip.A().SetValue(1)
	clip.B().SetValue(0.5)
	assertAll(t, math.Tanh(-1), render(c))

	assert.ErrorIs(t, clip.SetMode(node.ClipMode(5)), node.ErrInvalidMode)
	assert.Equal(t, node.Tanh, clip.Mode())
}

func TestRecorder(t *testing.T) {
	c := newContext(t)
	src, _ := mock.NewSource(0.5, 1)
	rec := node.NewRecorder()
	require.NoError(t, c.Connect(src, rec.Node, 0, 0))
	c.AddAutomaticPullNode(rec.Node)

	render(c)
	assert.Nil(t, rec.Recorded())

	rec.StartRecording()
	assert.True(t, rec.IsRecording())
	for i := 0; i < 3; i++ {
		render(c)
	}
	recorded := rec.Recorded()
	require.Equal(t, 1, recorded.NumChannels())
	assert.Equal(t, 3*frames, recorded.Size())
	assertAll(t, 0.5, recorded)

	rec.StopRecording()
	render(c)
	assert.Nil(t, rec.Recorded())
}

func TestSpectralMonitor(t *testing.T) {
	c := newContext(t)
	src, _ := mock.NewSource(0.5, 2)
	m, err := node.NewSpectralMonitor()
	require.NoError(t, err)
	assert.Equal(t, node.DefaultWindowSize, m.WindowSize())
	require.NoError(t, c.Connect(src, m.Node, 0, 0))
	c.AddAutomaticPullNode(m.Node)

	for i := 0; i < node.DefaultWindowSize/frames; i++ {
		render(c)
	}
	magnitudes := make([]float64, node.DefaultWindowSize)
	n, err := m.SpectralMagnitudes(magnitudes)
	require.NoError(t, err)
	assert.Equal(t, node.DefaultWindowSize/2, n)
	assert.InDelta(t, 0.5, magnitudes[0], 1e-6)
	for i := 2; i < n; i++ {
		assert.InDelta(t, 0, magnitudes[i], 1e-6, "bin %d", i)
	}

	assert.ErrorIs(t, m.SetWindowSize(100), node.ErrInvalidWindowSize)
	assert.ErrorIs(t, m.SetWindowSize(node.MaxWindowSize*2), node.ErrInvalidWindowSize)
	require.NoError(t, m.SetWindowSize(1024))
	assert.Equal(t, 1024, m.WindowSize())

	// captured signal is dropped on resize
	n, err = m.SpectralMagnitudes(magnitudes[:16])
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, 0.0, magnitudes[0])
}

func TestSpectralMonitorDecaysOnSilence(t *testing.T) {
	c := newContext(t)
	src, _ := mock.NewSource(1, 1)
	m, err := node.NewSpectralMonitor()
	require.NoError(t, err)
	require.NoError(t, c.Connect(src, m.Node, 0, 0))
	c.AddAutomaticPullNode(m.Node)

	quanta := node.DefaultWindowSize / frames
	for i := 0; i < quanta; i++ {
		render(c)
	}
	magnitudes := make([]float64, 4)
	_, err = m.SpectralMagnitudes(magnitudes)
	require.NoError(t, err)
	assert.InDelta(t, 1, magnitudes[0], 1e-6)

	require.NoError(t, c.Disconnect(src, m.Node, 0, 0))
	for i := 0; i < quanta+2; i++ {
		render(c)
	}
	_, err = m.SpectralMagnitudes(magnitudes)
	require.NoError(t, err)
	assert.InDelta(t, 0, magnitudes[0], 1e-9)
}
