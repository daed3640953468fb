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

package migration

import "context"

// KeyValue is one key read from the store
type KeyValue struct {
	Key   string
	Value []byte
	// LeaseID is the lease the key is bound to. Zero means none.
	LeaseID int64
}

// Store is the coordination-store capability the migration runs against.
// Implementations own connection handling, timeouts and transport retries.
type Store interface {
	// GetPrefix returns every key under prefix in ascending key order
	GetPrefix(ctx context.Context, prefix string) ([]*KeyValue, error)
	// Put writes value at key, creating or overwriting it. A non-zero
	// leaseID binds the key to that lease.
	Put(ctx context.Context, key string, value []byte, leaseID int64) error
	// Delete removes key and returns the number of keys removed.
	// Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) (int64, error)
	// RefreshLease renews the TTL of a lease.
	// It returns errors.ErrLeaseNotFound when the lease expired or never existed.
	RefreshLease(ctx context.Context, leaseID int64) error
}
