//go:build mp3

package mp3_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/phonograph/mp3"
	"github.com/dudk/phonograph/signal"
)

const sampleRate = 44100

func sine(channels, size int) signal.Float64 {
	buf := signal.EmptyFloat64(channels, size)
	for i := range buf {
		for j := range buf[i] {
			buf[i][j] = 0.5 * math.Sin(2*math.Pi*440*float64(j)/sampleRate)
		}
	}
	return buf
}

func TestWriteFile(t *testing.T) {
	tests := []struct {
		channels int
	}{
		{channels: 1},
		{channels: 2},
	}
	for _, test := range tests {
		path := filepath.Join(t.TempDir(), "out.mp3")
		require.NoError(t, mp3.WriteFile(path, sine(test.channels, sampleRate), sampleRate, 192, 2))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestEncoder(t *testing.T) {
	var out bytes.Buffer
	e := mp3.NewEncoder(&out, sampleRate, 2, 128, 5)
	for i := 0; i < 10; i++ {
		require.NoError(t, e.Write(sine(2, 4096)))
	}
	assert.ErrorIs(t, e.Write(sine(1, 128)), mp3.ErrChannelMismatch)
	require.NoError(t, e.Close())
	assert.NotZero(t, out.Len())
}
