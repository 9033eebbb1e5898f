package phonograph

import "fmt"

// ConnectInput connects output to input. It's a no-op if the lock is not
// held on this context or they're already connected. Connections dropped
// on invalid lock are not retried.
func (c *Context) ConnectInput(g GraphLock, in *Input, out *Output) {
	if !g.holds(c) {
		if c.debug {
			c.log.Debug(fmt.Sprintf("%v: connect input dropped: %s didn't get graph lock", c, g.suitor))
		}
		c.meter.Drop()
		return
	}
	c.connectInput(in, out)
}

// DisconnectInput disconnects output from input. It's a no-op if the lock
// is not held on this context, either side is nil or they're not
// connected.
func (c *Context) DisconnectInput(g GraphLock, in *Input, out *Output) {
	if !g.holds(c) {
		if c.debug {
			c.log.Debug(fmt.Sprintf("%v: disconnect input dropped: %s didn't get graph lock", c, g.suitor))
		}
		c.meter.Drop()
		return
	}
	c.disconnectInput(in, out)
}

// ConnectJunction queues connection of output to input. It's applied
// after the next quantum.
func (c *Context) ConnectJunction(in *Input, out *Output) {
	if in == nil || out == nil {
		return
	}
	c.Push(in.node.Mutate(func() error {
		c.connectInput(in, out)
		return nil
	}))
}

// DisconnectJunction queues disconnection of output from input.
func (c *Context) DisconnectJunction(in *Input, out *Output) {
	if in == nil || out == nil {
		return
	}
	c.Push(in.node.Mutate(func() error {
		c.disconnectInput(in, out)
		return nil
	}))
}

// Connect connects output of the source node to input of the destination
// node. Nodes are initialized if needed. The connection is applied
// immediately if graph lock is available and no quantum is being
// rendered, otherwise it's queued and applied after the quantum in order
// of start time of source nodes.
func (c *Context) Connect(from, to *Node, out, in int) error {
	if from == nil || to == nil {
		return nil
	}
	o, i := from.Output(out), to.Input(in)
	if o == nil || i == nil {
		return fmt.Errorf("connect %v output %d to %v input %d: %w", from, out, to, in, ErrIndexOutOfRange)
	}
	if err := from.Initialize(); err != nil {
		return err
	}
	if err := to.Initialize(); err != nil {
		return err
	}
	c.lazyInitialize()
	c.applyOrQueue(pendingConnection{from: from, to: to, out: o, in: i, connect: true})
	return nil
}

// Disconnect disconnects output of the source node from input of the
// destination node. It's deferred the same way as Connect.
func (c *Context) Disconnect(from, to *Node, out, in int) error {
	if from == nil || to == nil {
		return nil
	}
	o, i := from.Output(out), to.Input(in)
	if o == nil || i == nil {
		return fmt.Errorf("disconnect %v output %d from %v input %d: %w", from, out, to, in, ErrIndexOutOfRange)
	}
	c.applyOrQueue(pendingConnection{from: from, to: to, out: o, in: i})
	return nil
}

// ConnectParam connects output of the source node to the param. Param
// value is modulated by the output signal mixed to mono.
func (c *Context) ConnectParam(from *Node, out int, p *Param) error {
	if from == nil || p == nil {
		return nil
	}
	o := from.Output(out)
	if o == nil {
		return fmt.Errorf("connect %v output %d to param %s: %w", from, out, p.name, ErrIndexOutOfRange)
	}
	if err := from.Initialize(); err != nil {
		return err
	}
	c.lazyInitialize()
	c.applyOrQueue(pendingConnection{from: from, out: o, param: p, connect: true})
	return nil
}

// DisconnectParam disconnects output of the source node from the param.
func (c *Context) DisconnectParam(from *Node, out int, p *Param) error {
	if from == nil || p == nil {
		return nil
	}
	o := from.Output(out)
	if o == nil {
		return fmt.Errorf("disconnect %v output %d from param %s: %w", from, out, p.name, ErrIndexOutOfRange)
	}
	c.applyOrQueue(pendingConnection{from: from, out: o, param: p})
	return nil
}

// DisconnectAll removes all connections of the node's inputs, outputs and
// params.
func (c *Context) DisconnectAll(n *Node) {
	if n == nil {
		return
	}
	if !c.render.isLocked() {
		if g := c.TryLockGraph("disconnect all"); g.Valid() {
			c.disconnectAll(n)
			g.Unlock()
			return
		}
	}
	c.Push(n.Mutate(func() error {
		c.disconnectAll(n)
		return nil
	}))
}

// applyOrQueue applies connection under graph lock if no quantum is being
// rendered, otherwise it's queued.
func (c *Context) applyOrQueue(pc pendingConnection) {
	if !c.render.isLocked() {
		if g := c.TryLockGraph("connect"); g.Valid() {
			c.applyConnection(pc)
			g.Unlock()
			return
		}
	}
	c.queueConnection(pc)
}

// The following methods must be called with graph lock held.

func (c *Context) connectInput(in *Input, out *Output) {
	if in == nil || out == nil {
		return
	}
	if !in.connect(out) {
		return
	}
	in.node.adopt(c)
	out.node.adopt(c)
	out.addInput(in)
	c.dirty[&in.junction] = struct{}{}
	c.connectionCount.Add(1)
}

func (c *Context) disconnectInput(in *Input, out *Output) {
	if in == nil || out == nil {
		return
	}
	if !in.disconnect(out) {
		return
	}
	out.removeInput(in)
	c.dirty[&in.junction] = struct{}{}
}

func (c *Context) connectParam(p *Param, out *Output) {
	if p == nil || out == nil {
		return
	}
	if !p.connect(out) {
		return
	}
	out.addParam(p)
	c.dirty[&p.junction] = struct{}{}
	c.connectionCount.Add(1)
}

func (c *Context) disconnectParam(p *Param, out *Output) {
	if p == nil || out == nil {
		return
	}
	if !p.disconnect(out) {
		return
	}
	out.removeParam(p)
	c.dirty[&p.junction] = struct{}{}
}

func (c *Context) disconnectAll(n *Node) {
	for _, in := range n.inputs {
		for _, out := range append([]*Output(nil), in.outputs...) {
			c.disconnectInput(in, out)
		}
	}
	for _, p := range n.params {
		for _, out := range append([]*Output(nil), p.outputs...) {
			c.disconnectParam(p, out)
		}
	}
	for _, out := range n.outputs {
		for _, in := range append([]*Input(nil), out.inputs...) {
			c.disconnectInput(in, out)
		}
		for _, p := range append([]*Param(nil), out.params...) {
			c.disconnectParam(p, out)
		}
	}
}
