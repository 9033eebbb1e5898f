package phonograph

// junction aggregates connected outputs. Connections are changed by the
// control path under graph lock, staged by pre-render tasks and committed
// by the render path when the junction is pulled. This way all pulls of a
// quantum observe one consistent set of connections.
type junction struct {
	// outputs is guarded by graph lock.
	outputs []*Output

	// staged and rendering are only accessed by the render path.
	staged    []*Output
	hasStaged bool
	rendering []*Output
}

func (j *junction) isConnected(out *Output) bool {
	for _, o := range j.outputs {
		if o == out {
			return true
		}
	}
	return false
}

// connect returns false if output is already connected.
func (j *junction) connect(out *Output) bool {
	if j.isConnected(out) {
		return false
	}
	j.outputs = append(j.outputs, out)
	return true
}

// disconnect returns false if output wasn't connected.
func (j *junction) disconnect(out *Output) bool {
	for i, o := range j.outputs {
		if o == out {
			j.outputs = append(j.outputs[:i], j.outputs[i+1:]...)
			return true
		}
	}
	return false
}

// stage copies connections for the next commit. Graph lock must be held.
func (j *junction) stage() {
	j.staged = append(make([]*Output, 0, len(j.outputs)), j.outputs...)
	j.hasStaged = true
}

// commit makes staged connections visible to the render path. It returns
// true if connections have changed.
func (j *junction) commit() bool {
	if !j.hasStaged {
		return false
	}
	j.rendering, j.staged = j.staged, nil
	j.hasStaged = false
	return true
}

// numberOfRenderingConnections is only valid on the render path.
func (j *junction) numberOfRenderingConnections() int {
	return len(j.rendering)
}
