// Package asset loads audio files while context is initializing.
//
// Asset is read by a context loader, so decoding doesn't block neither
// control nor render path:
//
//	a := asset.New("kick.wav")
//	src := node.NewBufferSource(nil)
//	c, _ := phonograph.New(phonograph.WithLoader(a.Into(src)))
package asset

import (
	"context"
	"fmt"
	"sync"

	"github.com/dudk/phonograph"
	"github.com/dudk/phonograph/node"
	"github.com/dudk/phonograph/signal"
	"github.com/dudk/phonograph/wav"
)

// Asset is a wav file decoded into buffer.
type Asset struct {
	path string

	mu         sync.Mutex
	buffer     signal.Float64
	sampleRate int
}

// New returns asset for the file. File is not read until Load is called.
func New(path string) *Asset {
	return &Asset{path: path}
}

func (a *Asset) String() string {
	return a.path
}

// Load reads the file. It implements phonograph.Loader.
func (a *Asset) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buf, sampleRate, err := wav.ReadFile(a.path)
	if err != nil {
		return fmt.Errorf("load asset: %w", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.buffer, a.sampleRate = buf, sampleRate
	return nil
}

// Buffer returns decoded buffer. It's nil if asset isn't loaded.
func (a *Asset) Buffer() signal.Float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buffer
}

// SampleRate returns sample rate of decoded file.
func (a *Asset) SampleRate() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sampleRate
}

// Into returns loader that reads the asset and sets it as buffer of the
// source. Loader must be added with phonograph.WithLoader: context doesn't
// render the source before loaders are done.
func (a *Asset) Into(src *node.BufferSource) phonograph.Loader {
	return func(ctx context.Context) error {
		if err := a.Load(ctx); err != nil {
			return err
		}
		return src.SetBuffer(a.Buffer()).Apply()
	}
}
