/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package columnstore

import (
	stderrors "errors"
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/columnstore/errors"
)

// Managers holds one Manager per keyspace and the worker pool delivering their callbacks.
type Managers struct {
	mu       sync.RWMutex
	managers map[string]*Manager
	pool     *WorkerPool
}

// NewManagers creates an empty registry. When pool is non-nil, Close shuts it down.
func NewManagers(pool *WorkerPool) *Managers {
	return &Managers{
		managers: make(map[string]*Manager),
		pool:     pool,
	}
}

// Register adds m under its keyspace
func (ms *Managers) Register(m *Manager) error {
	if m == nil {
		return errors.NewInvalidArgumentError("manager", "manager is required")
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.managers[m.Keyspace()]; exists {
		return fmt.Errorf("manager for keyspace %q already registered", m.Keyspace())
	}

	ms.managers[m.Keyspace()] = m
	return nil
}

// Get retrieves the manager of keyspace
func (ms *Managers) Get(keyspace string) (*Manager, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	m, exists := ms.managers[keyspace]
	if !exists {
		return nil, errors.NewNotFoundError("keyspace", keyspace)
	}

	return m, nil
}

// Remove unregisters keyspace and returns its manager without closing it
func (ms *Managers) Remove(keyspace string) (*Manager, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	m, exists := ms.managers[keyspace]
	if !exists {
		return nil, errors.NewNotFoundError("keyspace", keyspace)
	}

	delete(ms.managers, keyspace)
	return m, nil
}

// List returns all registered keyspaces, sorted
func (ms *Managers) List() []string {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	keys := make([]string, 0, len(ms.managers))
	for k := range ms.managers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close closes every manager, then the worker pool. All managers are closed
// even when some fail; the failures are joined.
func (ms *Managers) Close() error {
	ms.mu.Lock()
	managers := ms.managers
	ms.managers = make(map[string]*Manager)
	ms.mu.Unlock()

	var errs []error
	for keyspace, m := range managers {
		if err := m.Close(); err != nil {
			errs = append(errs, fmt.Errorf("keyspace %s: %w", keyspace, err))
		}
	}
	if ms.pool != nil {
		ms.pool.Shutdown()
	}
	return stderrors.Join(errs...)
}
