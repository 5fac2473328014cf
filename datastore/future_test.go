/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/columnstore/storagemodels"
)

func TestFutureCompletesOnce(t *testing.T) {
	f := NewFuture()
	rs := &storagemodels.ResultSet{Rows: []storagemodels.Row{{Table: "users"}}}

	assert.True(t, f.Complete(rs, nil))
	assert.False(t, f.Complete(nil, errors.New("late failure")))

	got, err := f.Get()
	require.NoError(t, err)
	assert.Same(t, rs, got)
}

func TestFutureListenersRunOnExecutor(t *testing.T) {
	f := NewFuture()

	var scheduled, ran int32
	executor := ExecutorFunc(func(task func()) {
		atomic.AddInt32(&scheduled, 1)
		go task()
	})

	done := make(chan struct{})
	f.AddListener(func() {
		atomic.AddInt32(&ran, 1)
		close(done)
	}, executor)

	assert.Equal(t, int32(0), atomic.LoadInt32(&scheduled), "listener must wait for completion")

	f.Complete(nil, nil)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not run")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&scheduled))
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestFutureListenerAfterCompletion(t *testing.T) {
	f := FailedFuture(errors.New("boom"))

	var scheduled int32
	executor := ExecutorFunc(func(task func()) {
		atomic.AddInt32(&scheduled, 1)
		task()
	})
	f.AddListener(func() {}, executor)
	assert.Equal(t, int32(1), atomic.LoadInt32(&scheduled))

	_, err := f.Get()
	assert.EqualError(t, err, "boom")

	select {
	case <-f.Done():
	default:
		t.Fatal("Done should be closed")
	}
}
