package phonograph

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/rs/xid"

	"github.com/dudk/phonograph/mutable"
)

// MaxChannels is the maximum number of channels node can have.
const MaxChannels = 32

// ChannelCountMode defines how the number of channels of node inputs is
// resolved.
type ChannelCountMode int32

const (
	// Max uses maximum number of channels of all connected outputs.
	Max ChannelCountMode = iota
	// ClampedMax uses maximum number of channels of all connected outputs,
	// but not more than node channel count.
	ClampedMax
	// Explicit always uses node channel count.
	Explicit
)

func (m ChannelCountMode) String() string {
	switch m {
	case Max:
		return "max"
	case ClampedMax:
		return "clamped-max"
	case Explicit:
		return "explicit"
	}
	return fmt.Sprintf("mode(%d)", int32(m))
}

// Kernel is the processing part of the node. Process is called at most
// once per quantum from the render path. It reads input buses and renders
// into output buses of the node.
type Kernel interface {
	Process(r RenderLock, n *Node, frames int)
	Reset(r RenderLock)
	Initialize() error
	Uninitialize()
	// TailTime is the number of seconds node produces output after its
	// inputs became silent.
	TailTime() float64
	// LatencyTime is the number of seconds node delays its input.
	LatencyTime() float64
}

// Stateless can be embedded into kernels that don't need initialization
// and don't have tail or latency.
type Stateless struct{}

// Reset does nothing.
func (Stateless) Reset(RenderLock) {}

// Initialize does nothing.
func (Stateless) Initialize() error { return nil }

// Uninitialize does nothing.
func (Stateless) Uninitialize() {}

// TailTime returns zero.
func (Stateless) TailTime() float64 { return 0 }

// LatencyTime returns zero.
func (Stateless) LatencyTime() float64 { return 0 }

// Node is a vertex of the graph. It owns inputs, outputs and params and
// delegates processing to its kernel.
type Node struct {
	mctx   mutable.Context
	id     string
	kind   string
	kernel Kernel

	inputs             []*Input
	outputs            []*Output
	params             []*Param
	channelCount       atomic.Int32
	mode               atomic.Int32
	outputFollowsInput bool
	schedule           *Schedule
	initialized        atomic.Bool
	// context where node was connected first
	owner atomic.Pointer[Context]

	// render path only
	lastProcessed     int64
	lastNonSilentTime float64
	// kernel processed since the last reset
	active bool
}

// NodeOption configures the node during construction.
type NodeOption func(*Node)

// WithInputs adds number of inputs to the node.
func WithInputs(n int) NodeOption {
	return func(node *Node) {
		for i := 0; i < n; i++ {
			node.inputs = append(node.inputs, nil)
		}
	}
}

// WithOutputs adds outputs with provided number of channels.
func WithOutputs(channels ...int) NodeOption {
	return func(node *Node) {
		for _, ch := range channels {
			node.outputs = append(node.outputs, newOutput(node, ch))
		}
	}
}

// WithParams adds params to the node.
func WithParams(params ...*Param) NodeOption {
	return func(node *Node) {
		node.params = append(node.params, params...)
	}
}

// WithChannelCount sets node channel count and channel count mode.
func WithChannelCount(count int, mode ChannelCountMode) NodeOption {
	return func(node *Node) {
		node.channelCount.Store(int32(count))
		node.mode.Store(int32(mode))
	}
}

// WithOutputFollowsInput makes the first output to have the same number of
// channels as the first input.
func WithOutputFollowsInput() NodeOption {
	return func(node *Node) {
		node.outputFollowsInput = true
	}
}

// WithSchedule makes the node a scheduled source. Its kernel must update
// the schedule every quantum.
func WithSchedule() NodeOption {
	return func(node *Node) {
		node.schedule = &Schedule{node: node}
		node.schedule.stopTime.Store(math.Float64bits(math.Inf(1)))
	}
}

// NewNode creates a new node of provided kind. By default node has two
// channels and Max channel count mode.
func NewNode(kind string, k Kernel, options ...NodeOption) *Node {
	n := &Node{
		mctx:              mutable.Mutable(),
		id:                xid.New().String(),
		kind:              kind,
		kernel:            k,
		lastProcessed:     -1,
		lastNonSilentTime: -1,
	}
	n.channelCount.Store(2)
	for _, option := range options {
		option(n)
	}
	// inputs are created after options to resolve channels with final
	// channel count and mode.
	for i := range n.inputs {
		n.inputs[i] = newInput(n)
	}
	return n
}

func (n *Node) String() string {
	return fmt.Sprintf("%s %s", n.kind, n.id)
}

// ID returns unique id of the node.
func (n *Node) ID() string {
	return n.id
}

// Kind returns the type tag of the node.
func (n *Node) Kind() string {
	return n.kind
}

// Kernel returns the node kernel.
func (n *Node) Kernel() Kernel {
	return n.kernel
}

// NumInputs returns number of node inputs.
func (n *Node) NumInputs() int {
	return len(n.inputs)
}

// NumOutputs returns number of node outputs.
func (n *Node) NumOutputs() int {
	return len(n.outputs)
}

// Input returns input with index i or nil if it doesn't exist.
func (n *Node) Input(i int) *Input {
	if i < 0 || i >= len(n.inputs) {
		return nil
	}
	return n.inputs[i]
}

// Output returns output with index i or nil if it doesn't exist.
func (n *Node) Output(i int) *Output {
	if i < 0 || i >= len(n.outputs) {
		return nil
	}
	return n.outputs[i]
}

// Param returns param with provided name or nil if it doesn't exist.
func (n *Node) Param(name string) *Param {
	for _, p := range n.params {
		if p.name == name {
			return p
		}
	}
	return nil
}

// Params returns all node params.
func (n *Node) Params() []*Param {
	return n.params
}

// ChannelCount returns configured channel count.
func (n *Node) ChannelCount() int {
	return int(n.channelCount.Load())
}

// SetChannelCount sets configured channel count. Change is picked up by
// inputs during the next quantum.
func (n *Node) SetChannelCount(count int) error {
	if count <= 0 || count > MaxChannels {
		return fmt.Errorf("%v: %d channels: %w", n, count, ErrInvalidChannelCount)
	}
	n.channelCount.Store(int32(count))
	return nil
}

// ChannelCountMode returns channel count mode.
func (n *Node) ChannelCountMode() ChannelCountMode {
	return ChannelCountMode(n.mode.Load())
}

// SetChannelCountMode sets channel count mode.
func (n *Node) SetChannelCountMode(mode ChannelCountMode) error {
	if mode < Max || mode > Explicit {
		return fmt.Errorf("%v: %v: %w", n, mode, ErrInvalidChannelCount)
	}
	n.mode.Store(int32(mode))
	return nil
}

// Schedule returns the schedule of source node or nil if node is not
// scheduled.
func (n *Node) Schedule() *Schedule {
	return n.schedule
}

// IsScheduledNode returns true if node is a scheduled source.
func (n *Node) IsScheduledNode() bool {
	return n.schedule != nil
}

// StartTime returns the time when scheduled source starts. Nodes that
// aren't scheduled return negative infinity, so they're ordered before
// any scheduled node.
func (n *Node) StartTime() float64 {
	if n.schedule == nil || n.schedule.State() == Unscheduled {
		return math.Inf(-1)
	}
	return n.schedule.StartTime()
}

// IsInitialized returns true if node kernel was initialized.
func (n *Node) IsInitialized() bool {
	return n.initialized.Load()
}

// Initialize initializes node kernel. It's a no-op if node is already
// initialized.
func (n *Node) Initialize() error {
	if n.initialized.Load() {
		return nil
	}
	if err := n.kernel.Initialize(); err != nil {
		return fmt.Errorf("initialize %v: %w", n, err)
	}
	n.initialized.Store(true)
	return nil
}

// Uninitialize releases kernel resources. Uninitialized node renders
// silence.
func (n *Node) Uninitialize() {
	if n.initialized.CompareAndSwap(true, false) {
		n.kernel.Uninitialize()
	}
}

func (n *Node) adopt(c *Context) {
	n.owner.CompareAndSwap(nil, c)
}

// Reset resets kernel state.
func (n *Node) Reset(r RenderLock) {
	n.kernel.Reset(r)
}

// Mutate wraps the change of kernel properties into mutation. Mutations
// are pushed to the context and applied between two quanta.
func (n *Node) Mutate(fn func() error) mutable.Mutation {
	return n.mctx.Mutate(fn)
}

// checkNumberOfChannelsForInput resizes summing bus of the input when
// resolved number of channels changes.
func (n *Node) checkNumberOfChannelsForInput(in *Input) {
	ch := in.channelCount()
	if ch != in.bus.NumChannels() {
		in.bus = in.bus.Resize(ch, ProcessingSizeInFrames)
	}
	if n.outputFollowsInput && len(n.inputs) > 0 && n.inputs[0] == in && len(n.outputs) > 0 {
		n.outputs[0].setNumChannels(ch)
	}
}

// processIfNecessary processes the node once per quantum. Inputs are
// pulled first. If inputs are silent long enough for tail and latency to
// pass, outputs are zeroed and kernel is not called. Kernel is reset once
// when the node goes silent.
func (n *Node) processIfNecessary(r RenderLock, frames int) {
	now := r.c.currentSampleFrame.Load()
	if n.lastProcessed == now {
		return
	}
	n.lastProcessed = now

	if !n.initialized.Load() {
		n.silenceOutputs()
		return
	}

	n.pullInputs(r, frames)
	silentInputs := n.inputsAreSilent()
	if !silentInputs {
		n.lastNonSilentTime = float64(now+int64(frames)) / float64(r.c.sampleRate)
	}

	if silentInputs && n.propagatesSilence(r) {
		if n.active {
			n.kernel.Reset(r)
			n.active = false
		}
		n.silenceOutputs()
		return
	}
	n.kernel.Process(r, n, frames)
	n.active = true
	n.unsilenceOutputs()
}

func (n *Node) pullInputs(r RenderLock, frames int) {
	for _, in := range n.inputs {
		in.pull(r, nil, frames)
	}
}

func (n *Node) inputsAreSilent() bool {
	for _, in := range n.inputs {
		if !in.IsSilent() {
			return false
		}
	}
	return true
}

// propagatesSilence returns true if node output is silent when its inputs
// are silent.
func (n *Node) propagatesSilence(r RenderLock) bool {
	if n.schedule != nil {
		s := n.schedule.State()
		return s == Unscheduled || s == Finished
	}
	if len(n.inputs) == 0 {
		return false
	}
	return n.lastNonSilentTime+n.kernel.LatencyTime()+n.kernel.TailTime() < r.c.CurrentTime()
}

func (n *Node) silenceOutputs() {
	for _, out := range n.outputs {
		out.Zero()
	}
}

func (n *Node) unsilenceOutputs() {
	for _, out := range n.outputs {
		out.silent = false
	}
}
