// Package mutable provides types to mutate graph components at quantum
// boundaries.
//
// The render path must never wait for the control path. Instead of locking
// a component, the control path wraps a change into a Mutation which is
// put to a Queue. The render path drains the queue between two render
// quanta and applies all mutations there, in the order they were put.
// Zero value of Context is immutable.
package mutable

import (
	"sync"

	"github.com/rs/xid"
)

// zero value for context is immutable.
var immutable = Context{}

type (
	// Context can be embedded to make structure behaviour mutable.
	Context xid.ID

	// Mutation is mutator function associated with a certain mutable context.
	Mutation struct {
		Context
		mutator MutatorFunc
	}

	// MutatorFunc mutates the object.
	MutatorFunc func() error
)

// Mutable returns new mutable context.
func Mutable() Context {
	return Context(xid.New())
}

// Mutate associates provided mutator with mutable and return mutation.
func (c Context) Mutate(m MutatorFunc) Mutation {
	if c == immutable {
		panic("mutate immutable")
	}
	return Mutation{
		Context: c,
		mutator: m,
	}
}

// String returns the text form of context id.
func (c Context) String() string {
	return xid.ID(c).String()
}

// Apply mutator function.
func (m Mutation) Apply() error {
	return m.mutator()
}

// Queue accumulates mutations from any number of goroutines. It's applied
// by a single consumer which never waits for producers. Mutations are
// applied in the order they were put, regardless of their contexts.
type Queue struct {
	m       sync.Mutex
	pending []Mutation

	// consumer only
	spare []Mutation
}

// Put mutations into the queue. Mutations of immutable context are
// ignored.
func (q *Queue) Put(mutations ...Mutation) {
	q.m.Lock()
	defer q.m.Unlock()
	for _, m := range mutations {
		if m.Context == immutable {
			continue
		}
		q.pending = append(q.pending, m)
	}
}

// TryApply applies all queued mutations. If the queue is being modified
// at the moment, false is returned and mutations stay in the queue for
// the next attempt. Failed mutation doesn't prevent the following ones,
// errors of all of them are returned. Mutations put while applying are
// left for the next call.
func (q *Queue) TryApply() ([]error, bool) {
	if !q.m.TryLock() {
		return nil, false
	}
	ms := q.pending
	q.pending = q.spare[:0]
	q.m.Unlock()

	var errs []error
	for i := range ms {
		if err := ms[i].Apply(); err != nil {
			errs = append(errs, err)
		}
		ms[i] = Mutation{}
	}
	q.spare = ms[:0]
	return errs, true
}

// TryDiscard drops all queued mutations without applying them. It
// returns false if the queue is being modified at the moment.
func (q *Queue) TryDiscard() bool {
	if !q.m.TryLock() {
		return false
	}
	defer q.m.Unlock()
	q.discard()
	return true
}

// Discard drops all queued mutations. Unlike TryDiscard it waits for
// producers, so it must not be called from the render path.
func (q *Queue) Discard() {
	q.m.Lock()
	defer q.m.Unlock()
	q.discard()
}

func (q *Queue) discard() {
	for i := range q.pending {
		q.pending[i] = Mutation{}
	}
	q.pending = q.pending[:0]
}

// Len returns number of queued mutations.
func (q *Queue) Len() int {
	q.m.Lock()
	defer q.m.Unlock()
	return len(q.pending)
}
