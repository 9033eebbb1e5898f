package metric_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/phonograph/metric"
)

func TestMeter(t *testing.T) {
	sampleRate := 44100
	var tests = []struct {
		name             string
		routines         int
		quanta           int
		frames           int64
		expectedFrames   string
		expectedQuanta   string
		expectedContexts string
	}{
		{
			name:             "first",
			routines:         2,
			quanta:           10,
			frames:           128,
			expectedFrames:   "2560",
			expectedQuanta:   "20",
			expectedContexts: "2",
		},
		{
			name:             "first",
			routines:         1,
			quanta:           10,
			frames:           128,
			expectedFrames:   "3840",
			expectedQuanta:   "30",
			expectedContexts: "3",
		},
		{
			name:             "second",
			routines:         1,
			quanta:           1,
			frames:           44100,
			expectedFrames:   "44100",
			expectedQuanta:   "1",
			expectedContexts: "1",
		},
	}
	testFn := func(m *metric.Meter, wg *sync.WaitGroup, quanta int, frames int64) {
		for i := 0; i < quanta; i++ {
			m.Quantum(frames, time.Millisecond)
		}
		m.Skip()
		m.Drop()
		wg.Done()
	}

	for _, c := range tests {
		wg := &sync.WaitGroup{}
		wg.Add(c.routines)
		for i := 0; i < c.routines; i++ {
			go testFn(metric.NewMeter(c.name, sampleRate), wg, c.quanta, c.frames)
		}
		wg.Wait()
		values := metric.Get(c.name)
		assert.Equal(t, c.expectedFrames, values[metric.FrameCounter])
		assert.Equal(t, c.expectedQuanta, values[metric.QuantumCounter])
		assert.Equal(t, c.expectedContexts, values[metric.ContextCounter])
		assert.Equal(t, `"1ms"`, values[metric.LatencyCounter])
	}
	assert.Equal(t, `"1s"`, metric.Get("second")[metric.DurationCounter])
	assert.Contains(t, metric.GetAll(), "first")
}

func TestNilMeter(t *testing.T) {
	var m *metric.Meter
	assert.NotPanics(t, func() {
		m.Quantum(128, time.Millisecond)
		m.Skip()
		m.Drop()
	})
}
