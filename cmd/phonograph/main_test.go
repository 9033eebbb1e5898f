package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/phonograph/signal"
	"github.com/dudk/phonograph/wav"
)

func TestInit(t *testing.T) {
	// check if commands are registered
	assert.Equal(t, len(commands), 2)
}

func TestStringList(t *testing.T) {
	var l stringList
	require.NoError(t, l.Set("a;b;"))
	require.NoError(t, l.Set("c"))
	assert.Equal(t, stringList{"a", "b", "c"}, l)
	assert.Equal(t, "a;b;c", l.String())
}

func TestRun(t *testing.T) {
	tests := []struct {
		args     []string
		exitCode int
	}{
		{args: []string{"phonograph"}, exitCode: errorExitCode},
		{args: []string{"phonograph", "unknown"}, exitCode: errorExitCode},
		{args: []string{"phonograph", "render"}, exitCode: errorExitCode},
		{args: []string{"phonograph", "list", "-scan", t.TempDir()}, exitCode: successExitCode},
	}
	for _, test := range tests {
		a := app{args: test.args}
		assert.Equal(t, test.exitCode, a.run(), "%v", test.args)
	}
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in.wav"), filepath.Join(dir, "out.wav")
	buf := signal.EmptyFloat64(1, 300)
	for j := range buf[0] {
		buf[0][j] = float64(j+1) / 1000
	}
	require.NoError(t, wav.WriteFile(in, buf, 44100, signal.BitDepth32))

	cmd := renderCommand{
		in:       in,
		out:      out,
		gain:     0.5,
		bitDepth: 32,
	}
	require.NoError(t, cmd.Run())

	rendered, sampleRate, err := wav.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 44100, sampleRate)
	require.Equal(t, 2, rendered.NumChannels())
	require.Equal(t, 300, rendered.Size())
	for i := range rendered {
		for j := range rendered[i] {
			require.InDelta(t, 0.5*buf[0][j], rendered[i][j], 1e-6, "channel %d frame %d", i, j)
		}
	}

	assert.ErrorIs(t, (&renderCommand{in: in}).Run(), errMissingFlag)
}
