/*
 * MIT License
 *
 * Copyright (c) 2022-2026 GoAkt Team
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package memstore is an in-memory coordination store with leases and
// failure injection. It backs the unit tests of the migration and export
// packages.
package memstore

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/infrmods/regmigrate/errors"
	"github.com/infrmods/regmigrate/migration"
)

// ErrInjected is the failure tests hand to the Fail* methods
var ErrInjected = stderrors.New("injected failure")

type entry struct {
	value   []byte
	leaseID int64
}

// Store is an in-memory migration.Store
type Store struct {
	mu sync.Mutex

	kvs       map[string]*entry
	leases    map[int64]struct{}
	refreshes map[int64]int
	puts      []string
	deletes   []string

	failGetPrefix error
	failPut       map[string]error
	failDelete    map[string]error
	failRefresh   map[int64]error
}

var _ migration.Store = (*Store)(nil)

// New creates an empty Store
func New() *Store {
	return &Store{
		kvs:         make(map[string]*entry),
		leases:      make(map[int64]struct{}),
		refreshes:   make(map[int64]int),
		failPut:     make(map[string]error),
		failDelete:  make(map[string]error),
		failRefresh: make(map[int64]error),
	}
}

// Grant registers live leases
func (s *Store) Grant(leaseIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range leaseIDs {
		s.leases[id] = struct{}{}
	}
}

// Seed writes a key without recording it as a Put call.
// A non-zero lease is granted when missing.
func (s *Store) Seed(key string, value []byte, leaseID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if leaseID != 0 {
		s.leases[leaseID] = struct{}{}
	}
	s.kvs[key] = &entry{value: bytes.Clone(value), leaseID: leaseID}
}

// Expire revokes a lease and removes every key bound to it,
// the way the store reaps keys once a TTL runs out
func (s *Store) Expire(leaseID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.leases, leaseID)
	for key, e := range s.kvs {
		if e.leaseID == leaseID {
			delete(s.kvs, key)
		}
	}
}

// Remove drops a key without recording it as a Delete call,
// the way another client would remove it concurrently
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.kvs, key)
}

// FailGetPrefix makes GetPrefix return err
func (s *Store) FailGetPrefix(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGetPrefix = err
}

// FailPut makes Put on key return err
func (s *Store) FailPut(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPut[key] = err
}

// FailDelete makes Delete on key return err
func (s *Store) FailDelete(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDelete[key] = err
}

// FailRefresh makes RefreshLease on leaseID return err
func (s *Store) FailRefresh(leaseID int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh[leaseID] = err
}

// GetPrefix implements migration.Store
func (s *Store) GetPrefix(_ context.Context, prefix string) ([]*migration.KeyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGetPrefix != nil {
		return nil, s.failGetPrefix
	}

	keys := make([]string, 0, len(s.kvs))
	for key := range s.kvs {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	kvs := make([]*migration.KeyValue, 0, len(keys))
	for _, key := range keys {
		e := s.kvs[key]
		kvs = append(kvs, &migration.KeyValue{Key: key, Value: bytes.Clone(e.value), LeaseID: e.leaseID})
	}
	return kvs, nil
}

// Put implements migration.Store
func (s *Store) Put(_ context.Context, key string, value []byte, leaseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, key)
	if err, ok := s.failPut[key]; ok {
		return err
	}
	if leaseID != 0 {
		if _, ok := s.leases[leaseID]; !ok {
			return fmt.Errorf("put %s: %w", key, errors.ErrLeaseNotFound)
		}
	}
	s.kvs[key] = &entry{value: bytes.Clone(value), leaseID: leaseID}
	return nil
}

// Delete implements migration.Store
func (s *Store) Delete(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, key)
	if err, ok := s.failDelete[key]; ok {
		return 0, err
	}
	if _, ok := s.kvs[key]; !ok {
		return 0, nil
	}
	delete(s.kvs, key)
	return 1, nil
}

// RefreshLease implements migration.Store
func (s *Store) RefreshLease(_ context.Context, leaseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes[leaseID]++
	if err, ok := s.failRefresh[leaseID]; ok {
		return err
	}
	if _, ok := s.leases[leaseID]; !ok {
		return fmt.Errorf("lease %d: %w", leaseID, errors.ErrLeaseNotFound)
	}
	return nil
}

// Get returns the value and lease stored at key
func (s *Store) Get(key string) ([]byte, int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.kvs[key]
	if !ok {
		return nil, 0, false
	}
	return bytes.Clone(e.value), e.leaseID, true
}

// Keys returns every stored key in ascending order
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.kvs))
	for key := range s.kvs {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Snapshot returns a copy of every key with its value
func (s *Store) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make(map[string]string, len(s.kvs))
	for key, e := range s.kvs {
		snapshot[key] = string(e.value)
	}
	return snapshot
}

// Refreshes returns how many times each lease was refreshed
func (s *Store) Refreshes() map[int64]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	refreshes := make(map[int64]int, len(s.refreshes))
	for id, count := range s.refreshes {
		refreshes[id] = count
	}
	return refreshes
}

// Puts returns the keys passed to Put, in call order
func (s *Store) Puts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.puts)
}

// Deletes returns the keys passed to Delete, in call order
func (s *Store) Deletes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.deletes)
}
