// Package config reads context configuration from TOML documents.
//
// Example document:
//
//	name = "session"
//	sample_rate = 48000
//	channels = 2
//	debug = true
//
//	[offline]
//	frames = 480000
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/dudk/phonograph"
	"github.com/dudk/phonograph/log"
)

// Config holds context settings.
type Config struct {
	Name       string  `toml:"name"`
	SampleRate int     `toml:"sample_rate"`
	Channels   int     `toml:"channels"`
	Debug      bool    `toml:"debug"`
	Metric     bool    `toml:"metric"`
	Offline    Offline `toml:"offline"`
}

// Offline holds settings of offline rendering. Context is realtime if
// Frames is zero.
type Offline struct {
	Frames int `toml:"frames"`
}

// Default returns config with default values.
func Default() Config {
	return Config{
		SampleRate: phonograph.DefaultSampleRate,
		Channels:   phonograph.DefaultChannels,
	}
}

// Load reads config from the file.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads config from reader. Values missing in the document are set
// to defaults.
func Decode(r io.Reader) (Config, error) {
	c := Default()
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("decode config: unknown keys %v", undecoded)
	}
	return c, nil
}

// Options converts config to context options.
func (c Config) Options() []phonograph.Option {
	options := []phonograph.Option{
		phonograph.WithSampleRate(c.SampleRate),
		phonograph.WithChannels(c.Channels),
	}
	if c.Name != "" {
		options = append(options, phonograph.WithName(c.Name))
	}
	if c.Debug {
		options = append(options, phonograph.WithLogger(log.WithDebug()))
	}
	if c.Metric {
		options = append(options, phonograph.WithMetric())
	}
	return options
}

// NewContext creates offline context if offline frames are set and
// realtime context otherwise.
func (c Config) NewContext(options ...phonograph.Option) (*phonograph.Context, error) {
	options = append(c.Options(), options...)
	if c.Offline.Frames > 0 {
		return phonograph.NewOffline(c.Channels, c.Offline.Frames, c.SampleRate, options...)
	}
	return phonograph.New(options...)
}
