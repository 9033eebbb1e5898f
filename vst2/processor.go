//go:build vst2

package vst2

import (
	"fmt"

	"github.com/dudk/vst2"

	"github.com/dudk/phonograph"
)

// Processor is a graph node that processes its input with vst2 plugin.
type Processor struct {
	*phonograph.Node
	plugin *vst2.Plugin
}

type processorKernel struct {
	phonograph.Stateless
	plugin *vst2.Plugin
	view   [][]float64
}

// Open loads plugin from the path and wraps it into processor.
func Open(path string) (*Processor, error) {
	plugin, err := vst2.LoadPlugin(path)
	if err != nil {
		return nil, fmt.Errorf("load vst2 plugin %s: %w", path, err)
	}
	return NewProcessor(plugin), nil
}

// NewProcessor returns a processor node for loaded plugin. Output has
// the same number of channels as input.
func NewProcessor(plugin *vst2.Plugin) *Processor {
	return &Processor{
		Node: phonograph.NewNode("vst2", &processorKernel{plugin: plugin},
			phonograph.WithInputs(1),
			phonograph.WithOutputs(1),
			phonograph.WithOutputFollowsInput(),
		),
		plugin: plugin,
	}
}

// Plugin returns wrapped plugin.
func (p *Processor) Plugin() *vst2.Plugin {
	return p.plugin
}

// Process implements phonograph.Kernel. Plugin processes samples in place.
func (k *processorKernel) Process(r phonograph.RenderLock, n *phonograph.Node, frames int) {
	out := n.Output(0).Bus()
	out.CopyFrom(n.Input(0).Bus())
	k.view = k.view[:0]
	for i := range out {
		k.view = append(k.view, out[i][:frames])
	}
	k.plugin.Process(k.view)
}
