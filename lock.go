package phonograph

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

// Names of render path suitors. Guards keep pointers to them, so
// acquiring a lock on the render path doesn't allocate.
var (
	renderQuantumSuitor = "render quantum"
	preRenderSuitor     = "pre-render"
	postRenderSuitor    = "post-render"
)

// guard is a non-blocking mutual exclusion flag. It remembers the name of
// its holder to report contention.
type guard struct {
	locked atomic.Bool
	holder atomic.Pointer[string]
}

func (g *guard) tryLock(suitor *string) bool {
	if !g.locked.CompareAndSwap(false, true) {
		return false
	}
	g.holder.Store(suitor)
	return true
}

func (g *guard) unlock() {
	g.locked.Store(false)
}

func (g *guard) isLocked() bool {
	return g.locked.Load()
}

func (g *guard) holderName() string {
	if s := g.holder.Load(); s != nil {
		return *s
	}
	return ""
}

// GraphLock is a token that grants the right to mutate graph topology and
// registries of the context. Lock is acquired without waiting: if it's
// held by someone else, the returned token is not valid and holds no
// context. Every operation gated by the lock checks it and degrades to a
// no-op.
type GraphLock struct {
	c      *Context
	suitor string
}

// RenderLock is a token that grants the right to render a quantum. Same
// as GraphLock it's acquired without waiting.
type RenderLock struct {
	c      *Context
	suitor string
}

// TryLockGraph attempts to acquire the graph lock.
func (c *Context) TryLockGraph(suitor string) GraphLock {
	return c.tryLockGraph(&suitor)
}

func (c *Context) tryLockGraph(suitor *string) GraphLock {
	if !c.graph.tryLock(suitor) {
		if c.debug {
			c.log.Debug(fmt.Sprintf("%v: graph lock held by %s, wanted by %s", c, c.graph.holderName(), *suitor))
		}
		return GraphLock{suitor: *suitor}
	}
	return GraphLock{c: c, suitor: *suitor}
}

// lockGraph spins until the graph lock is acquired. It must only be used
// by the control path when render path is finished.
func (c *Context) lockGraph(suitor string) GraphLock {
	for !c.graph.tryLock(&suitor) {
		runtime.Gosched()
	}
	return GraphLock{c: c, suitor: suitor}
}

// TryLockRender attempts to acquire the render lock.
func (c *Context) TryLockRender(suitor string) RenderLock {
	return c.tryLockRender(&suitor)
}

func (c *Context) tryLockRender(suitor *string) RenderLock {
	if !c.render.tryLock(suitor) {
		if c.debug {
			c.log.Debug(fmt.Sprintf("%v: render lock held by %s, wanted by %s", c, c.render.holderName(), *suitor))
		}
		return RenderLock{suitor: *suitor}
	}
	return RenderLock{c: c, suitor: *suitor}
}

// Valid returns true if the lock was acquired.
func (g GraphLock) Valid() bool {
	return g.c != nil
}

// holds returns true if the lock was acquired on the context.
func (g GraphLock) holds(c *Context) bool {
	return g.c != nil && g.c == c
}

// Context returns the locked context or nil if lock is not valid.
func (g GraphLock) Context() *Context {
	return g.c
}

// Unlock releases the lock. The token is not valid after this call.
func (g *GraphLock) Unlock() {
	if g.c == nil {
		return
	}
	g.c.graph.unlock()
	g.c = nil
}

// Valid returns true if the lock was acquired.
func (r RenderLock) Valid() bool {
	return r.c != nil
}

// Context returns the locked context or nil if lock is not valid.
func (r RenderLock) Context() *Context {
	return r.c
}

// Unlock releases the lock. The token is not valid after this call.
func (r *RenderLock) Unlock() {
	if r.c == nil {
		return
	}
	r.c.render.unlock()
	r.c = nil
}
