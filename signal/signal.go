// Package signal provides an API to manipulate digital signals. It allows to:
// 	- allocate, zero and resize non-interleaved buffers
//	- sum buffers with unity gain, mixing channels up or down
//	- convert interleaved data to non-interleaved
//	- convert bit depth for int signals
package signal

import (
	"math"
	"time"

	"github.com/cwbudde/algo-vecmath"
)

// Float64 is a non-interleaved float64 signal.
type Float64 [][]float64

const (
	// BitDepth16 is 16 bit depth.
	BitDepth16 = BitDepth(16)
	// BitDepth24 is 24 bit depth.
	BitDepth24 = BitDepth(24)
	// BitDepth32 is 32 bit depth.
	BitDepth32 = BitDepth(32)
)

// InterInt is an interleaved int signal.
type InterInt struct {
	Data        []int
	NumChannels int
	BitDepth
}

// BitDepth contains values required for int-to-float and backward conversion.
type BitDepth int

// devider is used when int to float conversion is done.
func (bitDepth BitDepth) devider() int {
	switch bitDepth {
	case BitDepth16:
		return math.MaxInt16
	case BitDepth24:
		return 1<<23 - 1
	case BitDepth32:
		return math.MaxInt32
	default:
		return 1
	}
}

// multiplier is used when float to int conversion is done.
func (bitDepth BitDepth) multiplier() int {
	switch bitDepth {
	case BitDepth16:
		return math.MaxInt16 - 1
	case BitDepth24:
		return 1<<23 - 2
	case BitDepth32:
		return math.MaxInt32 - 1
	default:
		return 1
	}
}

// DurationOf returns time duration of passed samples for this sample rate.
func DurationOf(sampleRate int, samples int64) time.Duration {
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}

// AsFloat64 converts interleaved int signal to float64.
func (ints InterInt) AsFloat64() Float64 {
	if ints.Data == nil || ints.NumChannels == 0 {
		return nil
	}
	floats := make([][]float64, ints.NumChannels)
	bufSize := int(math.Ceil(float64(len(ints.Data)) / float64(ints.NumChannels)))

	devider := float64(ints.BitDepth.devider())

	for i := range floats {
		floats[i] = make([]float64, bufSize)
		pos := 0
		for j := i; j < len(ints.Data); j = j + ints.NumChannels {
			floats[i][pos] = float64(ints.Data[j]) / devider
			pos++
		}
	}
	return floats
}

// AsInterInt converts float64 signal to interleaved int. Samples are
// clipped to [-1, 1] before conversion.
func (floats Float64) AsInterInt(bitDepth BitDepth) []int {
	var numChannels int
	if numChannels = len(floats); numChannels == 0 {
		return nil
	}

	multiplier := float64(bitDepth.multiplier())

	ints := make([]int, len(floats[0])*numChannels)

	for j := range floats {
		for i := range floats[j] {
			v := floats[j][i]
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			ints[i*numChannels+j] = int(v * multiplier)
		}
	}
	return ints
}

// EmptyFloat64 returns an empty buffer of specified dimentions.
func EmptyFloat64(numChannels int, bufferSize int) Float64 {
	result := make([][]float64, numChannels)
	for i := range result {
		result[i] = make([]float64, bufferSize)
	}
	return result
}

// NumChannels returns number of channels in this sample slice
func (floats Float64) NumChannels() int {
	return len(floats)
}

// Size returns number of samples in single block in this sample slice
func (floats Float64) Size() int {
	if floats.NumChannels() == 0 {
		return 0
	}
	return len(floats[0])
}

// Resize returns a buffer with requested dimensions. The receiver is
// returned as is when it already matches, otherwise a new zeroed buffer is
// allocated.
func (floats Float64) Resize(numChannels, bufferSize int) Float64 {
	if floats.NumChannels() == numChannels && floats.Size() == bufferSize {
		return floats
	}
	return EmptyFloat64(numChannels, bufferSize)
}

// Zero sets all samples to 0.
func (floats Float64) Zero() {
	for i := range floats {
		for j := range floats[i] {
			floats[i][j] = 0
		}
	}
}

// ZeroRange sets samples in [start, end) of every channel to 0. Indices are
// clamped to the buffer bounds.
func (floats Float64) ZeroRange(start, end int) {
	size := floats.Size()
	if start < 0 {
		start = 0
	}
	if end > size {
		end = size
	}
	if start >= end {
		return
	}
	for i := range floats {
		for j := start; j < end; j++ {
			floats[i][j] = 0
		}
	}
}

// CopyFrom zeroes the buffer and sums source into it.
func (floats Float64) CopyFrom(source Float64) {
	floats.Zero()
	floats.SumFrom(source)
}

// SumFrom adds source to the buffer with unity gain. Only the common
// number of frames is summed. Channel layouts are mixed this way:
//	- equal channels are summed channel by channel;
//	- mono source is added to every destination channel;
//	- mono destination receives the average of all source channels;
//	- otherwise channels are summed discretely, extra ones are dropped.
func (floats Float64) SumFrom(source Float64) {
	dstChannels, srcChannels := floats.NumChannels(), source.NumChannels()
	if dstChannels == 0 || srcChannels == 0 {
		return
	}
	size := floats.Size()
	if source.Size() < size {
		size = source.Size()
	}
	if size == 0 {
		return
	}
	switch {
	case dstChannels == srcChannels:
		for i := range floats {
			vecmath.AddBlockInPlace(floats[i][:size], source[i][:size])
		}
	case srcChannels == 1:
		for i := range floats {
			vecmath.AddBlockInPlace(floats[i][:size], source[0][:size])
		}
	case dstChannels == 1:
		source.MixToMono(floats[0][:size])
	default:
		n := dstChannels
		if srcChannels < n {
			n = srcChannels
		}
		for i := 0; i < n; i++ {
			vecmath.AddBlockInPlace(floats[i][:size], source[i][:size])
		}
	}
}

// MixToMono adds the average of all channels into dst. Only min(len(dst),
// Size()) frames are mixed.
func (floats Float64) MixToMono(dst []float64) {
	numChannels := floats.NumChannels()
	if numChannels == 0 {
		return
	}
	size := len(dst)
	if floats.Size() < size {
		size = floats.Size()
	}
	scale := 1 / float64(numChannels)
	for i := 0; i < size; i++ {
		var sum float64
		for c := range floats {
			sum += floats[c][i]
		}
		dst[i] += sum * scale
	}
}

// Scale multiplies every sample by gain.
func (floats Float64) Scale(gain float64) {
	for i := range floats {
		vecmath.ScaleBlock(floats[i], floats[i], gain)
	}
}

// Append buffers set to existing one one
// new buffer is returned if b is nil
func (floats Float64) Append(source Float64) Float64 {
	if floats == nil {
		floats = make([][]float64, source.NumChannels())
		for i := range floats {
			floats[i] = make([]float64, 0, source.Size())
		}
	}
	for i := range source {
		floats[i] = append(floats[i], source[i]...)
	}
	return floats
}

// Slice creates a new copy of buffer from start position with defined legth
// if buffer doesn't have enough samples - shorten block is returned
//
// if start >= buffer size, nil is returned
// if start + len >= buffer size, len is decreased till the end of slice
// if start < 0, nil is returned
func (floats Float64) Slice(start int, len int) Float64 {
	if floats == nil || start >= floats.Size() || start < 0 {
		return nil
	}
	end := start + len
	result := make([][]float64, floats.NumChannels())
	for i := range floats {
		if end > floats.Size() {
			end = floats.Size()
		}
		result[i] = append(result[i], floats[i][start:end]...)
	}
	return result
}
