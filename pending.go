package phonograph

import (
	"fmt"
	"sort"
)

// pendingConnection is a connect or disconnect request which is applied
// between two quanta. Either input or param is set.
type pendingConnection struct {
	from    *Node
	to      *Node
	out     *Output
	in      *Input
	param   *Param
	connect bool
}

func (c *Context) queueConnection(pc pendingConnection) {
	c.pendingConnectionsMu.Lock()
	defer c.pendingConnectionsMu.Unlock()
	c.pendingConnections = append(c.pendingConnections, pc)
}

// applyConnection must be called with graph lock held.
func (c *Context) applyConnection(pc pendingConnection) {
	switch {
	case pc.param != nil && pc.connect:
		c.connectParam(pc.param, pc.out)
	case pc.param != nil:
		c.disconnectParam(pc.param, pc.out)
	case pc.connect:
		c.connectInput(pc.in, pc.out)
	default:
		c.disconnectInput(pc.in, pc.out)
	}
}

// applyPendingConnections applies queued connections ordered by start time
// of the source nodes. Sources that are not scheduled go first. If the
// queue is being modified at the moment, connections stay queued.
func (c *Context) applyPendingConnections(g GraphLock) {
	if !c.pendingConnectionsMu.TryLock() {
		return
	}
	pending := c.pendingConnections
	c.pendingConnections = nil
	c.pendingConnectionsMu.Unlock()
	if len(pending) == 0 {
		return
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].from.StartTime() < pending[j].from.StartTime()
	})
	for _, pc := range pending {
		c.applyConnection(pc)
	}
	if c.debug {
		c.log.Debug(fmt.Sprintf("%v: applied %d pending connections", c, len(pending)))
	}
}

// applyPendingMutations applies mutations pushed to the context in the
// order they were pushed. Errors are logged.
func (c *Context) applyPendingMutations(g GraphLock) {
	errs, _ := c.pending.TryApply()
	if err := execErrors(errs).ret(); err != nil {
		c.log.Info(fmt.Sprintf("%v: apply mutations: %v", c, err))
	}
}
