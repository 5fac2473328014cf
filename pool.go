/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package columnstore

import (
	"sync"

	"go.uber.org/zap"
)

// WorkerPool is a fixed size datastore.Executor used to deliver callbacks.
type WorkerPool struct {
	tasks    chan func()
	wg       sync.WaitGroup
	mu       sync.RWMutex
	shutdown bool
}

// NewWorkerPool starts size workers. A size below one starts one worker.
func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	p := &WorkerPool{tasks: make(chan func(), size*16)}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.work()
	}
	return p
}

func (p *WorkerPool) work() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *WorkerPool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			zap.S().Errorw("Callback panicked", "panic", r)
		}
	}()
	task()
}

// Execute queues task. Tasks submitted after Shutdown are dropped.
func (p *WorkerPool) Execute(task func()) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.shutdown {
		zap.S().Warn("Worker pool is shut down, dropping task")
		return
	}
	p.tasks <- task
}

// Shutdown stops accepting tasks and waits for queued ones to finish.
func (p *WorkerPool) Shutdown() {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return
	}
	p.shutdown = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}
