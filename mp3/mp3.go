// Package mp3 encodes signal buffers with lame. Encoder can be used to
// stream recorded material or to save offline render target.
package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/viert/lame"

	"github.com/dudk/phonograph/signal"
)

// ErrChannelMismatch is returned when written buffer has different
// number of channels than encoder.
var ErrChannelMismatch = errors.New("number of channels doesn't match")

// Encoder writes buffers into mp3 stream.
type Encoder struct {
	channels int
	wr       *lame.LameWriter
	buf      bytes.Buffer
}

// NewEncoder returns encoder with variable bit rate. Quality is lame
// algorithm quality in range [0, 9], where 0 is the best.
func NewEncoder(w io.Writer, sampleRate, channels, bitRate, quality int) *Encoder {
	wr := lame.NewWriter(w)
	wr.Encoder.SetBitrate(bitRate)
	wr.Encoder.SetQuality(quality)
	wr.Encoder.SetNumChannels(channels)
	wr.Encoder.SetInSamplerate(sampleRate)
	if channels > 1 {
		wr.Encoder.SetMode(lame.JOINT_STEREO)
	}
	wr.Encoder.SetVBR(lame.VBR_RH)
	wr.Encoder.InitParams()
	return &Encoder{
		channels: channels,
		wr:       wr,
	}
}

// Write encodes the buffer as 16 bit samples.
func (e *Encoder) Write(buf signal.Float64) error {
	if buf.NumChannels() != e.channels {
		return fmt.Errorf("write %d channels into %d channels encoder: %w", buf.NumChannels(), e.channels, ErrChannelMismatch)
	}
	e.buf.Reset()
	ints := buf.AsInterInt(signal.BitDepth16)
	for i := range ints {
		if err := binary.Write(&e.buf, binary.LittleEndian, int16(ints[i])); err != nil {
			return err
		}
	}
	_, err := e.wr.Write(e.buf.Bytes())
	return err
}

// Close flushes encoder.
func (e *Encoder) Close() error {
	return e.wr.Close()
}

// WriteFile encodes the buffer into a new file.
func WriteFile(path string, buf signal.Float64, sampleRate, bitRate, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	e := NewEncoder(f, sampleRate, buf.NumChannels(), bitRate, quality)
	if err := e.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := e.Close(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
