package wav_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/phonograph/signal"
	"github.com/dudk/phonograph/wav"
)

func testBuffer() signal.Float64 {
	return signal.Float64{
		{0, 0.5, -0.5, 1, -1, 0.25},
		{0.1, 0.2, 0.3, 0.4, 0.5, 0.6},
	}
}

func TestFile(t *testing.T) {
	tests := []struct {
		bitDepth signal.BitDepth
		delta    float64
	}{
		{bitDepth: signal.BitDepth16, delta: 1e-3},
		{bitDepth: signal.BitDepth24, delta: 1e-6},
		{bitDepth: signal.BitDepth32, delta: 1e-6},
	}
	for _, test := range tests {
		path := filepath.Join(t.TempDir(), "out.wav")
		buf := testBuffer()
		require.NoError(t, wav.WriteFile(path, buf, 44100, test.bitDepth))

		decoded, sampleRate, err := wav.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 44100, sampleRate)
		require.Equal(t, buf.NumChannels(), decoded.NumChannels())
		require.Equal(t, buf.Size(), decoded.Size())
		for i := range buf {
			assert.InDeltaSlice(t, buf[i], decoded[i], test.delta)
		}
	}
}

func TestUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	err := wav.WriteFile(path, testBuffer(), 44100, signal.BitDepth(8))
	assert.ErrorIs(t, err, wav.ErrUnsupportedBitDepth)

	_, _, err = wav.Decode(bytes.NewReader([]byte("not a wav file at all")))
	assert.ErrorIs(t, err, wav.ErrInvalidFile)

	_, _, err = wav.ReadFile(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}
