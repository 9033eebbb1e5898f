package phonograph

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"

	"github.com/dudk/phonograph/metric"
	"github.com/dudk/phonograph/mutable"
	"github.com/dudk/phonograph/signal"
)

const (
	// ProcessingSizeInFrames is the number of frames in one render quantum.
	ProcessingSizeInFrames = 128
	// DefaultSampleRate is used when sample rate is not provided.
	DefaultSampleRate = 44100
	// DefaultChannels is the number of destination channels when it's not
	// provided.
	DefaultChannels = 2
)

// Logger is a global interface for context loggers.
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
}

type silentLogger struct{}

func (silentLogger) Debug(...interface{}) {}
func (silentLogger) Info(...interface{})  {}

var defaultLogger silentLogger

// Loader performs auxiliary loading while context is initializing. Context
// starts running once all loaders are done.
type Loader func(context.Context) error

// Context owns the graph and drives rendering of one quantum at a time.
//
// There are two execution domains. Control path calls connect, disconnect
// and param methods from any goroutine. Render path executes quanta and
// never waits for the control path. They are coordinated by graph and
// render locks, which are acquired without waiting. When the graph lock
// is not available, mutations are either skipped or queued and applied
// after the next quantum.
type Context struct {
	id         string
	name       string
	sampleRate int
	channels   int
	offline    bool
	frames     int
	target     signal.Float64
	log        Logger
	debug      bool
	withMetric bool
	meter      *metric.Meter
	loaders    []Loader

	graph  guard
	render guard

	state              atomic.Int32
	currentSampleFrame atomic.Int64
	activeSourceCount  atomic.Int32
	connectionCount    atomic.Int64
	renderFinished     atomic.Bool
	renderingStarted   atomic.Bool
	initialized        chan struct{}
	done               chan struct{}

	destination *Destination
	listener    *Listener

	// guarded by graph lock
	referenced map[*Node]struct{}
	toDelete   []*Node
	dirty      map[*junction]struct{}

	// render path only
	marked                 []*Node
	renderingAutomaticPull []*Node
	automaticPullRemovals  []*Node

	automaticPullMu    sync.Mutex
	automaticPull      []*Node
	automaticPullDirty bool

	automaticSourcesMu sync.Mutex
	automaticSources   []*Node

	pending mutable.Queue

	pendingConnectionsMu sync.Mutex
	pendingConnections   []pendingConnection
}

// New creates a new realtime context.
func New(options ...Option) (*Context, error) {
	c := &Context{
		id:          xid.New().String(),
		sampleRate:  DefaultSampleRate,
		channels:    DefaultChannels,
		log:         defaultLogger,
		initialized: make(chan struct{}),
		done:        make(chan struct{}),
		listener:    newListener(),
		referenced:  make(map[*Node]struct{}),
		dirty:       make(map[*junction]struct{}),
	}
	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}
	if c.withMetric {
		name := c.name
		if name == "" {
			name = c.id
		}
		c.meter = metric.NewMeter(name, c.sampleRate)
	}
	c.destination = newDestination(c.channels)
	return c, nil
}

// NewOffline creates a new context which renders the provided number of
// frames into its target.
func NewOffline(channels, frames, sampleRate int, options ...Option) (*Context, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("offline context with %d frames: %w", frames, ErrInvalidArgument)
	}
	options = append([]Option{WithChannels(channels), WithSampleRate(sampleRate)}, options...)
	c, err := New(options...)
	if err != nil {
		return nil, err
	}
	c.offline = true
	c.frames = frames
	c.target = signal.EmptyFloat64(channels, frames)
	return c, nil
}

func (c *Context) String() string {
	if c.name != "" {
		return c.name
	}
	return c.id
}

// ID returns unique id of the context.
func (c *Context) ID() string {
	return c.id
}

// SampleRate returns sample rate of the context.
func (c *Context) SampleRate() int {
	return c.sampleRate
}

// Channels returns the number of destination channels.
func (c *Context) Channels() int {
	return c.channels
}

// IsOffline returns true if context renders into target.
func (c *Context) IsOffline() bool {
	return c.offline
}

// Frames returns the number of frames offline context renders.
func (c *Context) Frames() int {
	return c.frames
}

// Target returns the buffer offline context renders into.
func (c *Context) Target() signal.Float64 {
	return c.target
}

// Meter returns context meter. It's nil if metrics are not enabled.
func (c *Context) Meter() *metric.Meter {
	return c.meter
}

// CurrentSampleFrame returns the index of the first frame of the current
// quantum.
func (c *Context) CurrentSampleFrame() int64 {
	return c.currentSampleFrame.Load()
}

// CurrentTime returns context time in seconds.
func (c *Context) CurrentTime() float64 {
	return float64(c.currentSampleFrame.Load()) / float64(c.sampleRate)
}

// ActiveSourceCount returns the number of playing scheduled sources.
func (c *Context) ActiveSourceCount() int {
	return int(c.activeSourceCount.Load())
}

// ConnectionCount returns the number of connections made in this context.
// It's never decremented.
func (c *Context) ConnectionCount() int64 {
	return c.connectionCount.Load()
}

// Destination returns the destination node.
func (c *Context) Destination() *Destination {
	return c.destination
}

// Listener returns the listener of the context.
func (c *Context) Listener() *Listener {
	return c.listener
}

// Done returns a channel which is closed when context is stopped.
func (c *Context) Done() <-chan struct{} {
	return c.done
}

// Initialized returns a channel which is closed when initialization is
// finished.
func (c *Context) Initialized() <-chan struct{} {
	return c.initialized
}

// Push mutations to the context. They're applied between two quanta.
func (c *Context) Push(mutations ...mutable.Mutation) {
	c.pending.Put(mutations...)
}

// IsReferenced returns true if context holds the node as playing source.
func (c *Context) IsReferenced(g GraphLock, n *Node) bool {
	if !g.holds(c) {
		return false
	}
	_, ok := c.referenced[n]
	return ok
}

// MarkForDeletion must be called from the render path. The node is
// deleted after the current quantum is rendered.
func (c *Context) MarkForDeletion(r RenderLock, n *Node) {
	if !r.Valid() || n == nil {
		return
	}
	c.marked = append(c.marked, n)
}

// Remove deletes the node from the context: it's disconnected, removed
// from registries and uninitialized. If context is rendering, deletion is
// deferred until the end of the quantum. If render path is finished, node
// is deleted synchronously.
func (c *Context) Remove(n *Node) {
	if n == nil {
		return
	}
	if c.renderFinished.Load() {
		g := c.lockGraph("remove")
		c.toDelete = append(c.toDelete, n)
		c.deleteMarkedNodes(g)
		g.Unlock()
		return
	}
	c.Push(n.Mutate(func() error {
		c.toDelete = append(c.toDelete, n)
		return nil
	}))
}

// AddAutomaticPullNode registers the node to be processed every quantum
// regardless of its connections.
func (c *Context) AddAutomaticPullNode(n *Node) {
	c.automaticPullMu.Lock()
	defer c.automaticPullMu.Unlock()
	for _, a := range c.automaticPull {
		if a == n {
			return
		}
	}
	c.automaticPull = append(c.automaticPull, n)
	c.automaticPullDirty = true
}

// RemoveAutomaticPullNode unregisters automatic pull node.
func (c *Context) RemoveAutomaticPullNode(n *Node) {
	c.automaticPullMu.Lock()
	defer c.automaticPullMu.Unlock()
	c.removeAutomaticPull(n)
}

// removeAutomaticPull must be called with automaticPullMu held.
func (c *Context) removeAutomaticPull(n *Node) {
	for i, a := range c.automaticPull {
		if a == n {
			c.automaticPull = append(c.automaticPull[:i], c.automaticPull[i+1:]...)
			c.automaticPullDirty = true
			return
		}
	}
}

func (c *Context) holdSourceNodeUntilFinished(n *Node) {
	c.automaticSourcesMu.Lock()
	defer c.automaticSourcesMu.Unlock()
	c.automaticSources = append(c.automaticSources, n)
}

func (c *Context) incrementActiveSourceCount() {
	c.activeSourceCount.Add(1)
}

func (c *Context) decrementActiveSourceCount() {
	c.activeSourceCount.Add(-1)
}

// lazyInitialize moves context from uninitialized to initializing state.
// Loaders are executed in a separate goroutine, context starts running
// when all of them are done. Context without loaders starts running
// immediately.
func (c *Context) lazyInitialize() {
	if !c.state.CompareAndSwap(int32(Uninitialized), int32(Initializing)) {
		return
	}
	if err := c.destination.Initialize(); err != nil {
		c.log.Info(fmt.Sprintf("%v: %v", c, err))
	}
	if len(c.loaders) == 0 {
		c.state.CompareAndSwap(int32(Initializing), int32(Running))
		close(c.initialized)
		return
	}
	go func() {
		defer close(c.initialized)
		eg, ctx := errgroup.WithContext(context.Background())
		for _, l := range c.loaders {
			l := l
			eg.Go(func() error {
				return l(ctx)
			})
		}
		if err := eg.Wait(); err != nil {
			c.log.Info(fmt.Sprintf("%v: loader failed: %v", c, err))
		}
		c.state.CompareAndSwap(int32(Initializing), int32(Running))
	}()
}

// Initialize triggers lazy initialization of the context. It doesn't wait
// for loaders to finish.
func (c *Context) Initialize() {
	c.lazyInitialize()
}

// Stop stops the running context. If render path is finished, context is
// stopped synchronously. Otherwise stop is scheduled and completed after
// the next quantum.
func (c *Context) Stop() error {
	for {
		s := c.State()
		if s != Running && s != StopScheduled {
			return fmt.Errorf("stop %v context %v: %w", s, c, ErrInvalidState)
		}
		if s == StopScheduled || c.state.CompareAndSwap(int32(Running), int32(StopScheduled)) {
			break
		}
	}
	if c.renderFinished.Load() {
		g := c.lockGraph("stop")
		c.completeStop(g, true)
		g.Unlock()
	}
	return nil
}

// RenderFinished must be called by render driver when it won't render
// quanta anymore. Pending stop is completed synchronously. Nodes left
// marked for deletion by the last quantum are deleted, so are the
// registries the render path couldn't release when it completed stop.
func (c *Context) RenderFinished() {
	c.renderFinished.Store(true)
	g := c.lockGraph("render finished")
	defer g.Unlock()
	switch c.State() {
	case StopScheduled:
		c.completeStop(g, true)
	case Stopped:
		c.uninitialize(g, true)
	default:
		c.toDelete = append(c.toDelete, c.marked...)
		c.marked = c.marked[:0]
		c.deleteMarkedNodes(g)
	}
}

// completeStop must be called with graph lock held. Render path passes
// false to wait: registries locked by the control path at the moment are
// released by RenderFinished.
func (c *Context) completeStop(g GraphLock, wait bool) {
	if !c.state.CompareAndSwap(int32(StopScheduled), int32(Stopped)) {
		return
	}
	c.uninitialize(g, wait)
	if c.debug {
		c.log.Debug(fmt.Sprintf("%v: stopped", c))
	}
	close(c.done)
}

func lock(mu *sync.Mutex, wait bool) bool {
	if wait {
		mu.Lock()
		return true
	}
	return mu.TryLock()
}

// uninitialize releases all nodes held by the context. If wait is false,
// registries locked at the moment are skipped.
func (c *Context) uninitialize(g GraphLock, wait bool) {
	if lock(&c.automaticSourcesMu, wait) {
		for _, n := range c.automaticSources {
			c.referenced[n] = struct{}{}
		}
		c.automaticSources = nil
		c.automaticSourcesMu.Unlock()
	}

	for n := range c.referenced {
		c.toDelete = append(c.toDelete, n)
	}
	c.toDelete = append(c.toDelete, c.marked...)
	c.marked = nil
	c.deleteMarkedNodes(g)

	c.disconnectAll(c.destination.Node)
	c.destination.Uninitialize()

	if lock(&c.automaticPullMu, wait) {
		c.automaticPull = nil
		c.automaticPullDirty = true
		c.automaticPullMu.Unlock()
	}
	c.renderingAutomaticPull = nil

	if wait {
		c.pending.Discard()
	} else {
		c.pending.TryDiscard()
	}
	if lock(&c.pendingConnectionsMu, wait) {
		c.pendingConnections = nil
		c.pendingConnectionsMu.Unlock()
	}
}

// deleteMarkedNodes must be called with graph lock held.
func (c *Context) deleteMarkedNodes(g GraphLock) {
	for _, n := range c.toDelete {
		c.disconnectAll(n)
		if n.schedule != nil {
			n.schedule.finish(c)
		}
		n.Uninitialize()
		delete(c.referenced, n)
		c.automaticPullRemovals = append(c.automaticPullRemovals, n)
		if c.debug {
			c.log.Debug(fmt.Sprintf("%v: deleted %v", c, n))
		}
	}
	c.toDelete = c.toDelete[:0]
}
