// Package offline renders offline contexts as fast as possible.
package offline

import (
	"context"
	"fmt"

	"github.com/dudk/phonograph"
	"github.com/dudk/phonograph/signal"
)

// CompletionFunc is called when all frames are rendered into the target.
type CompletionFunc func(target signal.Float64)

// Renderer drives offline context. Context is rendered quantum by quantum
// and every quantum is copied into the context target. The last quantum
// is truncated to the number of frames left.
type Renderer struct {
	c          *phonograph.Context
	onComplete CompletionFunc
}

// New returns renderer for offline context.
func New(c *phonograph.Context, onComplete CompletionFunc) (*Renderer, error) {
	if !c.IsOffline() {
		return nil, fmt.Errorf("offline renderer for %v: %w", c, phonograph.ErrNotOffline)
	}
	return &Renderer{
		c:          c,
		onComplete: onComplete,
	}, nil
}

// Render blocks until all frames are rendered or ctx is done. Completion
// callback is called only if all frames were rendered. Context is stopped
// when rendering ends.
func (r *Renderer) Render(ctx context.Context) (err error) {
	if err = r.c.StartRendering(); err != nil {
		return err
	}
	defer func() {
		if ferr := r.finish(); err == nil {
			err = ferr
		}
	}()

	target, frames := r.c.Target(), r.c.Frames()
	quantum := signal.EmptyFloat64(target.NumChannels(), phonograph.ProcessingSizeInFrames)
	for pos := 0; pos < frames; pos += phonograph.ProcessingSizeInFrames {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		r.c.RenderQuantum(quantum)
		n := frames - pos
		if n > phonograph.ProcessingSizeInFrames {
			n = phonograph.ProcessingSizeInFrames
		}
		for i := range target {
			copy(target[i][pos:pos+n], quantum[i][:n])
		}
	}
	if r.onComplete != nil {
		r.onComplete(target)
	}
	return nil
}

// Start renders in a separate goroutine. Returned channel receives the
// error of rendering and is closed when it's done.
func (r *Renderer) Start(ctx context.Context) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		if err := r.Render(ctx); err != nil {
			errc <- err
		}
	}()
	return errc
}

// finish completes rendering and stops the context unless it was already
// stopped.
func (r *Renderer) finish() error {
	r.c.RenderFinished()
	if s := r.c.State(); s != phonograph.Running && s != phonograph.StopScheduled {
		return nil
	}
	if err := r.c.Stop(); err != nil && r.c.State() != phonograph.Stopped {
		return fmt.Errorf("finish offline rendering: %w", err)
	}
	return nil
}
