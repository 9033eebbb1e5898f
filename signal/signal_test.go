package signal_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/phonograph/signal"
)

func TestInterIntsAsFloat64(t *testing.T) {
	tests := []struct {
		ints        []int
		numChannels int
		bitDepth    signal.BitDepth
		expected    [][]float64
	}{
		{
			ints:        []int{1, 2, 1, 2, 1, 2, 1, 2},
			numChannels: 2,
			expected: [][]float64{
				{1, 1, 1, 1},
				{2, 2, 2, 2},
			},
		},
		{
			ints:        []int{1, 2, 1, 2, 1},
			numChannels: 2,
			expected: [][]float64{
				{1, 1, 1},
				{2, 2, 0},
			},
		},
		{
			ints:        []int{math.MaxInt16, -math.MaxInt16},
			numChannels: 2,
			expected: [][]float64{
				{1},
				{-1},
			},
			bitDepth: signal.BitDepth16,
		},
		{
			ints:     nil,
			expected: nil,
		},
		{
			ints:     []int{1, 2, 3},
			expected: nil,
		},
	}

	for _, test := range tests {
		ints := signal.InterInt{
			Data:        test.ints,
			NumChannels: test.numChannels,
			BitDepth:    test.bitDepth,
		}
		result := ints.AsFloat64()
		assert.Equal(t, len(test.expected), len(result))
		for i := range test.expected {
			for j, val := range test.expected[i] {
				assert.Equal(t, val, result[i][j])
			}
		}
	}
}

func TestFloat64AsInterInt(t *testing.T) {
	tests := []struct {
		floats   [][]float64
		bitDepth signal.BitDepth
		expected []int
	}{
		{
			floats: [][]float64{
				{1, 1, 1},
				{0, 0, 0},
			},
			expected: []int{1, 0, 1, 0, 1, 0},
		},
		{
			floats: [][]float64{
				{0.5},
				{-1},
			},
			bitDepth: signal.BitDepth16,
			expected: []int{int(0.5 * (math.MaxInt16 - 1)), -(math.MaxInt16 - 1)},
		},
		{
			floats: [][]float64{
				{2},
			},
			bitDepth: signal.BitDepth16,
			expected: []int{math.MaxInt16 - 1},
		},
		{
			floats:   nil,
			expected: nil,
		},
	}

	for _, test := range tests {
		ints := signal.Float64(test.floats).AsInterInt(test.bitDepth)
		assert.Equal(t, test.expected, ints)
	}
}

func TestSumFrom(t *testing.T) {
	tests := []struct {
		description string
		dst         signal.Float64
		src         signal.Float64
		expected    signal.Float64
	}{
		{
			description: "equal channels",
			dst:         signal.Float64{{1, 1}, {2, 2}},
			src:         signal.Float64{{0.5, 0.5}, {1, 1}},
			expected:    signal.Float64{{1.5, 1.5}, {3, 3}},
		},
		{
			description: "mono up-mix",
			dst:         signal.Float64{{0, 0}, {1, 1}},
			src:         signal.Float64{{0.25, 0.5}},
			expected:    signal.Float64{{0.25, 0.5}, {1.25, 1.5}},
		},
		{
			description: "mono down-mix",
			dst:         signal.Float64{{1, 1}},
			src:         signal.Float64{{1, 0}, {0, 1}},
			expected:    signal.Float64{{1.5, 1.5}},
		},
		{
			description: "discrete",
			dst:         signal.Float64{{0}, {0}},
			src:         signal.Float64{{1}, {2}, {3}},
			expected:    signal.Float64{{1}, {2}},
		},
		{
			description: "shorter source",
			dst:         signal.Float64{{1, 1, 1}},
			src:         signal.Float64{{1}},
			expected:    signal.Float64{{2, 1, 1}},
		},
		{
			description: "empty source",
			dst:         signal.Float64{{1}},
			src:         nil,
			expected:    signal.Float64{{1}},
		},
	}
	for _, test := range tests {
		test.dst.SumFrom(test.src)
		assert.Equal(t, test.expected, test.dst, test.description)
	}
}

func TestZero(t *testing.T) {
	buf := signal.Float64{{1, 2, 3}, {4, 5, 6}}
	buf.ZeroRange(1, 10)
	assert.Equal(t, signal.Float64{{1, 0, 0}, {4, 0, 0}}, buf)
	buf.Zero()
	assert.Equal(t, signal.Float64{{0, 0, 0}, {0, 0, 0}}, buf)

	resized := buf.Resize(2, 3)
	assert.Equal(t, buf, resized)
	resized = buf.Resize(1, 4)
	assert.Equal(t, 1, resized.NumChannels())
	assert.Equal(t, 4, resized.Size())
}

func TestMixToMono(t *testing.T) {
	dst := make([]float64, 2)
	signal.Float64{{1, 2}, {3, 4}}.MixToMono(dst)
	assert.Equal(t, []float64{2, 3}, dst)
}

func TestDurationOf(t *testing.T) {
	assert.Equal(t, int64(1e9), int64(signal.DurationOf(44100, 44100)))
}
