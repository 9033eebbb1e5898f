/*
Package phonograph is a real-time audio graph engine.

Concept

A graph consists of nodes. Every node owns inputs, outputs and params and
delegates signal processing to its Kernel. Outputs are connected to inputs
and params of other nodes. Input sums all connected outputs into a single
bus, so any number of signals can be mixed without dedicated mixer nodes.

The graph is rendered by the Context in quanta of ProcessingSizeInFrames
frames. Rendering is pull-based: destination pulls its input, which pulls
connected outputs, which process their nodes, which pull their own inputs
and so on. Nodes that aren't connected to destination perform no work,
unless they're registered as automatic pull nodes.

Concurrency

There are two execution domains:

    Control path - any goroutine which connects nodes and sets params;
    Render path - the goroutine which renders quanta under deadline.

Render path never waits for the control path. Graph and render locks are
acquired without waiting and the caller must check the returned token:

    g := c.TryLockGraph("my change")
    defer g.Unlock()
    c.ConnectInput(g, in, out)

Raw input connections are silently dropped when graph lock is not valid.
Node connections made with Connect are queued instead and applied between
two quanta. All connection changes become visible to the render path at
quantum boundary, so all inputs observe one consistent set of
connections during a quantum.

Rendering

Render driver calls RenderQuantum once per quantum. Custom drivers can call
the hooks directly, in this order:

    r := c.TryLockRender("driver")
    c.HandlePreRenderTasks(r)
    c.Destination().Render(r, dst, frames)
    c.ProcessAutomaticPullNodes(r, frames)
    c.HandlePostRenderTasks(r)
    r.Unlock()

Nodes are never deleted in the middle of a quantum. They're marked and
swept by post-render tasks. When render driver stops for good, it calls
RenderFinished and the context performs the cleanup synchronously.
*/
package phonograph
