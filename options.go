package phonograph

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Option provides a way to set functional parameters to context.
type Option func(c *Context) error

// WithSampleRate sets sample rate of the context.
func WithSampleRate(sampleRate int) Option {
	return func(c *Context) error {
		if sampleRate <= 0 {
			return fmt.Errorf("sample rate %d: %w", sampleRate, ErrInvalidArgument)
		}
		c.sampleRate = sampleRate
		return nil
	}
}

// WithChannels sets number of destination channels.
func WithChannels(channels int) Option {
	return func(c *Context) error {
		if channels <= 0 || channels > MaxChannels {
			return fmt.Errorf("%d destination channels: %w", channels, ErrInvalidChannelCount)
		}
		c.channels = channels
		return nil
	}
}

// WithName sets name to context. Name is used for logging and metrics.
func WithName(name string) Option {
	return func(c *Context) error {
		c.name = name
		return nil
	}
}

// leveled is implemented by loggers with levels, such as logrus.Logger.
type leveled interface {
	IsLevelEnabled(logrus.Level) bool
}

// WithLogger sets logger to context. If this option is not provided,
// silent logger is used. Debug records are formatted only if logger has
// debug level enabled.
func WithLogger(logger Logger) Option {
	return func(c *Context) error {
		c.log = logger
		c.debug = true
		if l, ok := logger.(leveled); ok {
			c.debug = l.IsLevelEnabled(logrus.DebugLevel)
		}
		return nil
	}
}

// WithMetric enables metrics for this context. Metrics are published
// under context name.
func WithMetric() Option {
	return func(c *Context) error {
		c.withMetric = true
		return nil
	}
}

// WithLoader adds loader which is executed when context is initializing.
func WithLoader(loader Loader) Option {
	return func(c *Context) error {
		c.loaders = append(c.loaders, loader)
		return nil
	}
}
