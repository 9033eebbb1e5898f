package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dudk/phonograph/config"
	"github.com/dudk/phonograph/log"
	"github.com/dudk/phonograph/metric"
	"github.com/dudk/phonograph/mp3"
	"github.com/dudk/phonograph/node"
	"github.com/dudk/phonograph/offline"
	"github.com/dudk/phonograph/signal"
	"github.com/dudk/phonograph/wav"
)

var errMissingFlag = errors.New("missing required flag")

// renderCommand plays input file through a gain node in offline context
// and saves the result.
type renderCommand struct {
	config   string
	in       string
	out      string
	gain     float64
	bitDepth int
	bitRate  int
}

func (cmd *renderCommand) Name() string {
	return "render"
}

func (cmd *renderCommand) Help() string {
	return "Render wav file through gain into wav or mp3 file"
}

func (cmd *renderCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.config, "config", "", "path to toml config")
	fs.StringVar(&cmd.in, "in", "", "input wav file (required)")
	fs.StringVar(&cmd.out, "out", "", "output .wav or .mp3 file (required)")
	fs.Float64Var(&cmd.gain, "gain", 1, "gain applied to input")
	fs.IntVar(&cmd.bitDepth, "bitdepth", 16, "wav bit depth, 16, 24 or 32")
	fs.IntVar(&cmd.bitRate, "bitrate", 192, "mp3 bit rate")
}

func (cmd *renderCommand) validate() error {
	if cmd.in == "" {
		return fmt.Errorf("-in: %w", errMissingFlag)
	}
	if cmd.out == "" {
		return fmt.Errorf("-out: %w", errMissingFlag)
	}
	return nil
}

func (cmd *renderCommand) Run() error {
	if err := cmd.validate(); err != nil {
		return err
	}
	cfg := config.Default()
	if cmd.config != "" {
		var err error
		if cfg, err = config.Load(cmd.config); err != nil {
			return err
		}
	}

	buf, sampleRate, err := wav.ReadFile(cmd.in)
	if err != nil {
		return err
	}
	cfg.SampleRate = sampleRate
	if cfg.Offline.Frames == 0 {
		cfg.Offline.Frames = buf.Size()
	}
	c, err := cfg.NewContext()
	if err != nil {
		return err
	}
	l := log.GetLogger()
	if cfg.Debug {
		l = log.WithDebug()
	}
	logger := log.Fields(l, c.String(), c.ID())

	src := node.NewBufferSource(buf)
	g := node.NewGain()
	if err := g.Gain().Timeline().SetValueAtTime(cmd.gain, 0); err != nil {
		return err
	}
	if err := c.Connect(src.Node, g.Node, 0, 0); err != nil {
		return err
	}
	if err := c.Connect(g.Node, c.Destination().Node, 0, 0); err != nil {
		return err
	}
	if err := src.Schedule().Start(c, 0); err != nil {
		return err
	}

	var saveErr error
	r, err := offline.New(c, func(target signal.Float64) {
		saveErr = cmd.save(target, c.SampleRate())
	})
	if err != nil {
		return err
	}
	logger.Debugf("rendering %s", cmd.in)
	if err := r.Render(context.Background()); err != nil {
		return err
	}
	if saveErr != nil {
		return saveErr
	}
	if cfg.Metric {
		logger.WithField("metric", metric.Get(c.String())).Info("rendered")
	}
	logger.Infof("saved %d frames into %s", c.Frames(), cmd.out)
	return nil
}

func (cmd *renderCommand) save(target signal.Float64, sampleRate int) error {
	switch strings.ToLower(filepath.Ext(cmd.out)) {
	case ".mp3":
		return mp3.WriteFile(cmd.out, target, sampleRate, cmd.bitRate, 2)
	default:
		return wav.WriteFile(cmd.out, target, sampleRate, signal.BitDepth(cmd.bitDepth))
	}
}
