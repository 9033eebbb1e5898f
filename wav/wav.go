// Package wav converts signal buffers to and from wav files. It's used to
// save render targets of offline contexts and to load material for buffer
// sources.
package wav

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/dudk/phonograph/signal"
)

const pcmFormat = 1

var (
	// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
	ErrUnsupportedBitDepth = errors.New("only 16, 24 and 32 bit depth is supported")
	// ErrInvalidFile is returned when decoded file is not a valid wav.
	ErrInvalidFile = errors.New("wav is not valid")
)

func supported(bitDepth signal.BitDepth) bool {
	switch bitDepth {
	case signal.BitDepth16, signal.BitDepth24, signal.BitDepth32:
		return true
	}
	return false
}

// Encode writes the buffer as PCM wav.
func Encode(w io.WriteSeeker, buf signal.Float64, sampleRate int, bitDepth signal.BitDepth) error {
	if !supported(bitDepth) {
		return ErrUnsupportedBitDepth
	}
	e := wav.NewEncoder(w, sampleRate, int(bitDepth), buf.NumChannels(), pcmFormat)
	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: buf.NumChannels(),
			SampleRate:  sampleRate,
		},
		Data:           buf.AsInterInt(bitDepth),
		SourceBitDepth: int(bitDepth),
	}
	if err := e.Write(ib); err != nil {
		return err
	}
	return e.Close()
}

// Decode reads the whole wav into buffer.
func Decode(r io.ReadSeeker) (buf signal.Float64, sampleRate int, err error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, 0, ErrInvalidFile
	}
	bitDepth := signal.BitDepth(d.BitDepth)
	if !supported(bitDepth) {
		return nil, 0, ErrUnsupportedBitDepth
	}
	ib, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	buf = signal.InterInt{
		Data:        ib.Data,
		NumChannels: int(d.NumChans),
		BitDepth:    bitDepth,
	}.AsFloat64()
	return buf, int(d.SampleRate), nil
}

// WriteFile saves the buffer into a new file.
func WriteFile(path string, buf signal.Float64, sampleRate int, bitDepth signal.BitDepth) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, buf, sampleRate, bitDepth); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// ReadFile loads the whole file into buffer.
func ReadFile(path string) (signal.Float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	buf, sampleRate, err := Decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return buf, sampleRate, nil
}
