package phonograph

import (
	"fmt"
	"time"

	"github.com/dudk/phonograph/signal"
)

// HandlePreRenderTasks must be called by render driver before the
// destination is pulled. It stages connection changes and automatic pull
// nodes for the quantum. If graph lock is not available, changes are
// picked up before the next quantum.
func (c *Context) HandlePreRenderTasks(r RenderLock) {
	if !r.Valid() {
		return
	}
	g := c.tryLockGraph(&preRenderSuitor)
	if !g.Valid() {
		c.meter.Drop()
		return
	}
	defer g.Unlock()

	for j := range c.dirty {
		j.stage()
		delete(c.dirty, j)
	}

	if c.automaticPullMu.TryLock() {
		for _, n := range c.automaticPullRemovals {
			c.removeAutomaticPull(n)
		}
		c.automaticPullRemovals = c.automaticPullRemovals[:0]
		if c.automaticPullDirty {
			c.renderingAutomaticPull = append(c.renderingAutomaticPull[:0], c.automaticPull...)
			c.automaticPullDirty = false
		}
		c.automaticPullMu.Unlock()
	}
}

// ProcessAutomaticPullNodes processes nodes which must be rendered every
// quantum even if they're not connected to destination.
func (c *Context) ProcessAutomaticPullNodes(r RenderLock, frames int) {
	if !r.Valid() {
		return
	}
	for _, n := range c.renderingAutomaticPull {
		n.processIfNecessary(r, frames)
	}
}

// HandlePostRenderTasks must be called by render driver after the quantum
// is rendered. It releases finished sources, applies pending mutations and
// connections, deletes marked nodes and completes scheduled stop. Current
// sample frame is advanced by one quantum.
func (c *Context) HandlePostRenderTasks(r RenderLock) {
	if !r.Valid() {
		return
	}
	defer c.currentSampleFrame.Add(ProcessingSizeInFrames)

	g := c.tryLockGraph(&postRenderSuitor)
	if !g.Valid() {
		c.meter.Drop()
		return
	}
	defer g.Unlock()

	c.handleAutomaticSources(g)
	c.applyPendingMutations(g)
	c.applyPendingConnections(g)

	c.toDelete = append(c.toDelete, c.marked...)
	c.marked = c.marked[:0]
	c.deleteMarkedNodes(g)

	if c.State() == StopScheduled {
		c.completeStop(g, false)
	}
}

// handleAutomaticSources takes ownership of started sources and releases
// finished ones.
func (c *Context) handleAutomaticSources(g GraphLock) {
	if c.automaticSourcesMu.TryLock() {
		for _, n := range c.automaticSources {
			c.referenced[n] = struct{}{}
		}
		c.automaticSources = c.automaticSources[:0]
		c.automaticSourcesMu.Unlock()
	}
	for n := range c.referenced {
		if n.schedule != nil && n.schedule.State() == Finished {
			delete(c.referenced, n)
			c.toDelete = append(c.toDelete, n)
		}
	}
}

// RenderQuantum renders one quantum of the graph into dst. It executes
// pre-render tasks, pulls destination, processes automatic pull nodes and
// executes post-render tasks. If render lock is not available or context
// is not running, dst is filled with silence.
func (c *Context) RenderQuantum(dst signal.Float64) {
	c.lazyInitialize()
	r := c.tryLockRender(&renderQuantumSuitor)
	if !r.Valid() {
		dst.Zero()
		c.meter.Skip()
		return
	}
	defer r.Unlock()
	if !c.isRunnable() {
		dst.Zero()
		c.meter.Skip()
		return
	}

	start := time.Now()
	c.HandlePreRenderTasks(r)
	c.destination.Render(r, dst, ProcessingSizeInFrames)
	c.ProcessAutomaticPullNodes(r, ProcessingSizeInFrames)
	c.HandlePostRenderTasks(r)
	c.meter.Quantum(ProcessingSizeInFrames, time.Since(start))
}

// StartRendering must be called by offline render driver before the first
// quantum. It waits for context initialization.
func (c *Context) StartRendering() error {
	if !c.offline {
		return ErrNotOffline
	}
	if !c.renderingStarted.CompareAndSwap(false, true) {
		return fmt.Errorf("start rendering %v: %w", c, ErrInvalidState)
	}
	c.lazyInitialize()
	<-c.initialized
	return nil
}
