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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKey is returned when a key under the services prefix does not
	// match the old registration layout.
	ErrUnknownKey = errors.New("unknown key")

	// ErrAlreadyMigrated is returned when a key already follows the new
	// registration layout.
	ErrAlreadyMigrated = errors.New("key already migrated")

	// ErrMissingLease is reported in the diagnostic logged for a node key that
	// carries no lease. Such a key is neither migrated nor deleted.
	ErrMissingLease = errors.New("missing lease_id")

	// ErrInvalidServiceKey is returned when a composite service key cannot be
	// split back into a name and a version.
	ErrInvalidServiceKey = errors.New("invalid service key")

	// ErrDescriptorWrite is returned when a service descriptor could not be
	// written under the new layout. It aborts the whole run.
	ErrDescriptorWrite = errors.New("descriptor write failed")

	// ErrLeaseNotFound is returned when refreshing a lease that has expired or
	// never existed.
	ErrLeaseNotFound = errors.New("lease not found")

	// ErrStoreClosed is returned when the store is used after Close.
	ErrStoreClosed = errors.New("store is closed")

	// ErrExportPut is returned when a configuration row could not be written
	// into the store.
	ErrExportPut = errors.New("config export put failed")
)

// DescriptorWriteError wraps the failure of writing a service descriptor
type DescriptorWriteError struct {
	service string
	err     error
}

// enforce compilation error
var _ error = (*DescriptorWriteError)(nil)

// NewDescriptorWriteError returns an instance of DescriptorWriteError
func NewDescriptorWriteError(service string, err error) *DescriptorWriteError {
	return &DescriptorWriteError{
		service: service,
		err:     fmt.Errorf("%w: service=%s: %w", ErrDescriptorWrite, service, err),
	}
}

// Error implements the standard error interface
func (e *DescriptorWriteError) Error() string {
	return e.err.Error()
}

// Service returns the composite key of the service whose descriptor failed
func (e *DescriptorWriteError) Service() string {
	return e.service
}

func (e *DescriptorWriteError) Unwrap() error {
	return e.err
}
