// Package portaudio renders realtime contexts on the default output device.
package portaudio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/dudk/phonograph"
	"github.com/dudk/phonograph/signal"
)

// Driver pulls the context from portaudio callback.
type Driver struct {
	c      *phonograph.Context
	stream *portaudio.Stream

	// callback only
	quantum signal.Float64
	pos     int
}

// New returns a driver for realtime context.
func New(c *phonograph.Context) (*Driver, error) {
	if c.IsOffline() {
		return nil, fmt.Errorf("portaudio driver for offline context %v: %w", c, phonograph.ErrInvalidArgument)
	}
	return &Driver{
		c:       c,
		quantum: signal.EmptyFloat64(c.Channels(), phonograph.ProcessingSizeInFrames),
		pos:     phonograph.ProcessingSizeInFrames,
	}, nil
}

// Start initializes portaudio and starts the default output stream.
func (d *Driver) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	stream, err := portaudio.OpenDefaultStream(0, d.c.Channels(), float64(d.c.SampleRate()), phonograph.ProcessingSizeInFrames, d.process)
	if err != nil {
		portaudio.Terminate()
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return err
	}
	d.stream = stream
	return nil
}

// Stop stops the stream and notifies context that render is finished.
// Context is stopped if it's running.
func (d *Driver) Stop() error {
	if d.stream == nil {
		return nil
	}
	if err := d.stream.Stop(); err != nil {
		return err
	}
	if err := d.stream.Close(); err != nil {
		return err
	}
	d.stream = nil
	d.c.RenderFinished()
	if s := d.c.State(); s == phonograph.Running || s == phonograph.StopScheduled {
		if err := d.c.Stop(); err != nil {
			return err
		}
	}
	return portaudio.Terminate()
}

// process fills the device buffer. Host buffer size may differ from
// quantum size, so rendered frames are carried over between callbacks.
func (d *Driver) process(out [][]float32) {
	if len(out) == 0 {
		return
	}
	for i := 0; i < len(out[0]); i++ {
		if d.pos == phonograph.ProcessingSizeInFrames {
			d.c.RenderQuantum(d.quantum)
			d.pos = 0
		}
		for ch := range out {
			out[ch][i] = float32(d.quantum[ch%len(d.quantum)][d.pos])
		}
		d.pos++
	}
}
