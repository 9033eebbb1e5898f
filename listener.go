package phonograph

import "sync"

// Vec3 is a vector in listener space.
type Vec3 struct {
	X, Y, Z float64
}

// Listener holds position and orientation of the listener in space. It's
// used by spatialization kernels.
type Listener struct {
	m             sync.Mutex
	position      Vec3
	front         Vec3
	up            Vec3
	velocity      Vec3
	dopplerFactor float64
	speedOfSound  float64
}

func newListener() *Listener {
	return &Listener{
		front:         Vec3{0, 0, -1},
		up:            Vec3{0, 1, 0},
		dopplerFactor: 1,
		speedOfSound:  343.3,
	}
}

// Position returns listener position.
func (l *Listener) Position() Vec3 {
	l.m.Lock()
	defer l.m.Unlock()
	return l.position
}

// SetPosition sets listener position.
func (l *Listener) SetPosition(v Vec3) {
	l.m.Lock()
	defer l.m.Unlock()
	l.position = v
}

// Orientation returns front and up vectors of listener.
func (l *Listener) Orientation() (front, up Vec3) {
	l.m.Lock()
	defer l.m.Unlock()
	return l.front, l.up
}

// SetOrientation sets front and up vectors of listener.
func (l *Listener) SetOrientation(front, up Vec3) {
	l.m.Lock()
	defer l.m.Unlock()
	l.front, l.up = front, up
}

// Velocity returns listener velocity.
func (l *Listener) Velocity() Vec3 {
	l.m.Lock()
	defer l.m.Unlock()
	return l.velocity
}

// SetVelocity sets listener velocity.
func (l *Listener) SetVelocity(v Vec3) {
	l.m.Lock()
	defer l.m.Unlock()
	l.velocity = v
}

// DopplerFactor returns doppler shift factor.
func (l *Listener) DopplerFactor() float64 {
	l.m.Lock()
	defer l.m.Unlock()
	return l.dopplerFactor
}

// SetDopplerFactor sets doppler shift factor. Negative values are ignored.
func (l *Listener) SetDopplerFactor(v float64) {
	if v < 0 {
		return
	}
	l.m.Lock()
	defer l.m.Unlock()
	l.dopplerFactor = v
}

// SpeedOfSound returns speed of sound in meters per second.
func (l *Listener) SpeedOfSound() float64 {
	l.m.Lock()
	defer l.m.Unlock()
	return l.speedOfSound
}

// SetSpeedOfSound sets speed of sound. Non-positive values are ignored.
func (l *Listener) SetSpeedOfSound(v float64) {
	if v <= 0 {
		return
	}
	l.m.Lock()
	defer l.m.Unlock()
	l.speedOfSound = v
}
