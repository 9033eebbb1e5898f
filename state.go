package phonograph

import "fmt"

// State identifies one of the possible states context can be in.
type State int32

// states
const (
	// Uninitialized context wasn't used yet.
	Uninitialized State = iota
	// Initializing context is executing loaders.
	Initializing
	// Running context renders the graph.
	Running
	// StopScheduled context will stop after the current quantum.
	StopScheduled
	// Stopped context released all its nodes and renders silence.
	Stopped
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case StopScheduled:
		return "stop scheduled"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// State returns current state of the context.
func (c *Context) State() State {
	return State(c.state.Load())
}

// isRunnable returns true if quanta must be rendered.
func (c *Context) isRunnable() bool {
	s := c.State()
	return s == Running || s == StopScheduled
}
