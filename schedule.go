package phonograph

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/dudk/phonograph/signal"
)

// PlaybackState is the state of scheduled source.
type PlaybackState int32

const (
	// Unscheduled source was not started yet.
	Unscheduled PlaybackState = iota
	// Scheduled source was started, but its start time is not reached yet.
	Scheduled
	// Playing source produces output.
	Playing
	// Finished source was stopped and produces silence.
	Finished
)

func (s PlaybackState) String() string {
	switch s {
	case Unscheduled:
		return "unscheduled"
	case Scheduled:
		return "scheduled"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Schedule controls when a source node plays. Start and Stop are called by
// the control path, Update is called by the node kernel every quantum.
type Schedule struct {
	node      *Node
	state     atomic.Int32
	startTime atomic.Uint64
	stopTime  atomic.Uint64
	// set by render path when source started playing
	counted bool
}

// State returns current playback state.
func (s *Schedule) State() PlaybackState {
	return PlaybackState(s.state.Load())
}

// StartTime returns the time source is scheduled to start.
func (s *Schedule) StartTime() float64 {
	return math.Float64frombits(s.startTime.Load())
}

// StopTime returns the time source is scheduled to stop. It's positive
// infinity if stop wasn't scheduled.
func (s *Schedule) StopTime() float64 {
	return math.Float64frombits(s.stopTime.Load())
}

// IsPlayingOrScheduled returns true if source was started and is not
// finished.
func (s *Schedule) IsPlayingOrScheduled() bool {
	state := s.State()
	return state == Scheduled || state == Playing
}

// Start schedules the source to play at the provided context time. The
// context holds the source until it finishes, even if there are no other
// references to it.
func (s *Schedule) Start(c *Context, when float64) error {
	if s.State() != Unscheduled {
		return fmt.Errorf("%v: %w", s.node, ErrAlreadyStarted)
	}
	if math.IsNaN(when) || when < 0 {
		when = 0
	}
	s.startTime.Store(math.Float64bits(when))
	if !s.state.CompareAndSwap(int32(Unscheduled), int32(Scheduled)) {
		return fmt.Errorf("%v: %w", s.node, ErrAlreadyStarted)
	}
	c.holdSourceNodeUntilFinished(s.node)
	return nil
}

// Stop schedules the source to stop at the provided context time.
func (s *Schedule) Stop(when float64) error {
	if !s.IsPlayingOrScheduled() {
		return fmt.Errorf("stop %v %v: %w", s.State(), s.node, ErrInvalidState)
	}
	if math.IsNaN(when) || when < 0 {
		when = 0
	}
	s.stopTime.Store(math.Float64bits(when))
	return nil
}

// Update must be called by the kernel of scheduled source at the start of
// every quantum. It zeroes the frames of bus which must be silent and
// returns the offset of the first frame to render and the number of frames
// to render.
func (s *Schedule) Update(r RenderLock, frames int, bus signal.Float64) (offset, nonSilentFrames int) {
	c := r.c
	sampleRate := float64(c.sampleRate)
	quantumStartFrame := c.currentSampleFrame.Load()
	quantumEndFrame := quantumStartFrame + int64(frames)
	startFrame := timeToSampleFrame(s.StartTime(), sampleRate)
	stopTime := s.StopTime()
	hasStop := !math.IsInf(stopTime, 1)
	var endFrame int64
	if hasStop {
		endFrame = timeToSampleFrame(stopTime, sampleRate)
	}

	if hasStop && endFrame <= quantumStartFrame {
		s.finish(c)
	}

	state := s.State()
	if state == Unscheduled || state == Finished || startFrame >= quantumEndFrame {
		bus.Zero()
		return 0, 0
	}

	if state == Scheduled {
		s.state.Store(int32(Playing))
		c.incrementActiveSourceCount()
		s.counted = true
	}

	if startFrame > quantumStartFrame {
		offset = int(startFrame - quantumStartFrame)
	}
	if offset > frames {
		offset = frames
	}
	nonSilentFrames = frames - offset
	if nonSilentFrames == 0 {
		bus.Zero()
		return offset, 0
	}
	if offset > 0 {
		bus.ZeroRange(0, offset)
	}

	if hasStop && endFrame >= quantumStartFrame && endFrame < quantumEndFrame {
		zeroStart := int(endFrame - quantumStartFrame)
		framesToZero := frames - zeroStart
		if framesToZero > nonSilentFrames {
			framesToZero = nonSilentFrames
		}
		nonSilentFrames -= framesToZero
		bus.ZeroRange(zeroStart, frames)
		s.finish(c)
	}
	return offset, nonSilentFrames
}

// finish moves source to the finished state. It's only called from the
// render path.
func (s *Schedule) finish(c *Context) {
	if s.State() == Finished {
		return
	}
	s.state.Store(int32(Finished))
	if s.counted {
		s.counted = false
		c.decrementActiveSourceCount()
	}
}

func timeToSampleFrame(t, sampleRate float64) int64 {
	return int64(math.Round(t * sampleRate))
}
