package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/phonograph"
	"github.com/dudk/phonograph/config"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		document string
		expected config.Config
		negative bool
	}{
		{
			document: ``,
			expected: config.Config{SampleRate: 44100, Channels: 2},
		},
		{
			document: `
name = "session"
sample_rate = 48000
channels = 1
debug = true

[offline]
frames = 4800
`,
			expected: config.Config{
				Name:       "session",
				SampleRate: 48000,
				Channels:   1,
				Debug:      true,
				Offline:    config.Offline{Frames: 4800},
			},
		},
		{
			document: `sample_rate = "fast"`,
			negative: true,
		},
		{
			document: `unknown = 1`,
			negative: true,
		},
	}
	for _, test := range tests {
		c, err := config.Decode(strings.NewReader(test.document))
		if test.negative {
			assert.Error(t, err, test.document)
			continue
		}
		require.NoError(t, err, test.document)
		assert.Equal(t, test.expected, c)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phonograph.toml")
	require.NoError(t, os.WriteFile(path, []byte("channels = 4\n"), 0o644))
	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Channels)
	assert.Equal(t, 44100, c.SampleRate)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestNewContext(t *testing.T) {
	c := config.Default()
	c.Name = "config test"
	c.SampleRate = 22050
	ctx, err := c.NewContext()
	require.NoError(t, err)
	assert.False(t, ctx.IsOffline())
	assert.Equal(t, 22050, ctx.SampleRate())
	assert.Equal(t, "config test", ctx.String())

	c.Offline.Frames = 1000
	c.Channels = 1
	ctx, err = c.NewContext()
	require.NoError(t, err)
	assert.True(t, ctx.IsOffline())
	assert.Equal(t, 1000, ctx.Frames())
	assert.Equal(t, 1, ctx.Target().NumChannels())

	c.Channels = 0
	_, err = c.NewContext()
	assert.ErrorIs(t, err, phonograph.ErrInvalidChannelCount)
}
