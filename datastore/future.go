/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"sync"

	"github.com/suparena/columnstore/storagemodels"
)

type listener struct {
	fn       func()
	executor Executor
}

// Future is a PendingOperation completed exactly once by its session.
type Future struct {
	mu        sync.Mutex
	done      chan struct{}
	completed bool
	result    *storagemodels.ResultSet
	err       error
	listeners []listener
}

// NewFuture returns an uncompleted Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// FailedFuture returns a Future already completed with err.
func FailedFuture(err error) *Future {
	f := NewFuture()
	f.Complete(nil, err)
	return f
}

// Complete records the outcome and schedules every registered listener.
// Only the first call has an effect; it reports whether it was that call.
func (f *Future) Complete(result *storagemodels.ResultSet, err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.completed = true
	f.result = result
	f.err = err
	listeners := f.listeners
	f.listeners = nil
	close(f.done)
	f.mu.Unlock()

	for _, l := range listeners {
		l.executor.Execute(l.fn)
	}
	return true
}

// AddListener schedules fn on executor after completion. A listener added to a
// completed Future is scheduled immediately, still through the executor.
func (f *Future) AddListener(fn func(), executor Executor) {
	if executor == nil {
		executor = GoExecutor
	}
	f.mu.Lock()
	if !f.completed {
		f.listeners = append(f.listeners, listener{fn: fn, executor: executor})
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	executor.Execute(fn)
}

func (f *Future) Get() (*storagemodels.ResultSet, error) {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.err
}

func (f *Future) Done() <-chan struct{} {
	return f.done
}
