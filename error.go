package phonograph

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidState is returned if context method cannot be executed at
	// this moment.
	ErrInvalidState = errors.New("invalid state")
	// ErrIndexOutOfRange is returned when node doesn't have input, output
	// or param with requested index.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrAlreadyStarted is returned when scheduled source is started twice.
	ErrAlreadyStarted = errors.New("source already started")
	// ErrNotOffline is returned when offline rendering is requested from
	// realtime context.
	ErrNotOffline = errors.New("context is not offline")
	// ErrInvalidChannelCount is returned when channel count or channel
	// count mode is not supported.
	ErrInvalidChannelCount = errors.New("invalid channel count")
	// ErrInvalidArgument is returned when sample rate or number of frames
	// is not positive.
	ErrInvalidArgument = errors.New("invalid argument")
)

// execErrors wraps errors that might occure when multiple deferred
// mutations are failing.
type execErrors []error

func (e execErrors) Error() string {
	s := []string{}
	for _, se := range e {
		s = append(s, se.Error())
	}
	return strings.Join(s, ",")
}

// Is checks if any of errors match provided sentinel error.
func (e execErrors) Is(err error) bool {
	for _, se := range e {
		if errors.Is(se, err) {
			return true
		}
	}
	return false
}

// ret returns untyped nil if error is list is empty.
func (e execErrors) ret() error {
	if len(e) > 0 {
		return e
	}
	return nil
}
