package mutable_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/phonograph/mutable"
)

// mutableMock used to set up test cases for mutators
type mutableMock struct {
	mutable.Context
	value int
}

// mutators closure to mutable.value
func (m *mutableMock) AddDelta(delta int) mutable.Mutation {
	return m.Context.Mutate(func() error {
		m.value += delta
		return nil
	})
}

// Set returns mutation which records the value into the log.
func (m *mutableMock) Set(log *[]int, value int) mutable.Mutation {
	return m.Context.Mutate(func() error {
		m.value = value
		*log = append(*log, value)
		return nil
	})
}

func TestMutability(t *testing.T) {
	mut := mutable.Mutable()
	assert.NotEqual(t, mutable.Mutable(), mut)
	assert.NotEmpty(t, mut.String())
	assert.Panics(t, func() {
		mutable.Context{}.Mutate(func() error {
			return nil
		})
	})
	mock := &mutableMock{
		Context: mutable.Mutable(),
	}
	assert.NoError(t, mock.AddDelta(10).Apply())
	assert.Equal(t, 10, mock.value)
}

func TestQueueOrder(t *testing.T) {
	var tests = []struct {
		mocks  int
		values []int
	}{
		{mocks: 1, values: []int{1, 2, 3}},
		{mocks: 2, values: []int{1, 2, 3, 4, 5, 6, 7, 8}},
		{mocks: 5, values: []int{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}},
	}
	for _, test := range tests {
		mocks := make([]*mutableMock, test.mocks)
		for i := range mocks {
			mocks[i] = &mutableMock{Context: mutable.Mutable()}
		}
		var (
			q   mutable.Queue
			log []int
		)
		for i, v := range test.values {
			q.Put(mocks[i%len(mocks)].Set(&log, v))
		}
		errs, ok := q.TryApply()
		assert.True(t, ok)
		assert.Empty(t, errs)
		assert.Equal(t, test.values, log)
		assert.Equal(t, 0, q.Len())
	}
}

func TestQueueApplyError(t *testing.T) {
	errMutation := errors.New("mutation error")
	m := &mutableMock{Context: mutable.Mutable()}
	var q mutable.Queue
	q.Put(m.Mutate(func() error { return errMutation }))
	q.Put(m.AddDelta(10))

	errs, ok := q.TryApply()
	assert.True(t, ok)
	assert.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], errMutation)
	assert.Equal(t, 10, m.value)
}

func TestQueuePutWhileApplying(t *testing.T) {
	m := &mutableMock{Context: mutable.Mutable()}
	var q mutable.Queue
	q.Put(m.Mutate(func() error {
		q.Put(m.AddDelta(5))
		return nil
	}))

	_, ok := q.TryApply()
	assert.True(t, ok)
	assert.Equal(t, 0, m.value)
	assert.Equal(t, 1, q.Len())

	_, ok = q.TryApply()
	assert.True(t, ok)
	assert.Equal(t, 5, m.value)
}

func TestQueue(t *testing.T) {
	var q mutable.Queue
	m := &mutableMock{Context: mutable.Mutable()}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Put(m.AddDelta(1))
		}()
	}
	wg.Wait()
	q.Put(mutable.Mutation{})
	assert.Equal(t, 10, q.Len())

	errs, ok := q.TryApply()
	assert.True(t, ok)
	assert.Empty(t, errs)
	assert.Equal(t, 10, m.value)
	assert.Equal(t, 0, q.Len())

	q.Put(m.AddDelta(5))
	assert.True(t, q.TryDiscard())
	q.Put(m.AddDelta(5))
	q.Discard()
	_, ok = q.TryApply()
	assert.True(t, ok)
	assert.Equal(t, 10, m.value)
}
