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

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Stage names the step of a run an item failed in
type Stage string

const (
	// StagePut is the write of a new-layout node key
	StagePut Stage = "put"
	// StageRefresh is the renewal of a lease
	StageRefresh Stage = "refresh"
	// StageDelete is the removal of an old-layout key
	StageDelete Stage = "delete"
)

// Failure is a recoverable per-item failure
type Failure struct {
	Stage Stage
	// Item is the key or lease id the operation was about
	Item string
	Err  error
}

var _ error = Failure{}

// Error implements the standard error interface
func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Stage, f.Item, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Report accounts for a migration run
type Report struct {
	RunID  string
	DryRun bool

	// Scanned counts the keys returned by the store
	Scanned int
	// Unknown counts keys that do not follow the old layout
	Unknown int
	// AlreadyMigrated counts keys that follow the new layout
	AlreadyMigrated int
	// MissingLease counts node keys without a lease
	MissingLease int

	Services         int
	Descriptors      int
	Endpoints        int
	EndpointsWritten int
	LeasesRefreshed  int
	KeysDeleted      int
	// KeysAbsent counts old keys that were already gone at delete time
	KeysAbsent int

	Failures []Failure
}

// Err combines every recorded failure, or returns nil when there is none
func (r *Report) Err() error {
	var err error
	for _, failure := range r.Failures {
		err = multierr.Append(err, failure)
	}
	return err
}

// FailuresAt returns the failures recorded for a stage
func (r *Report) FailuresAt(stage Stage) []Failure {
	var failures []Failure
	for _, failure := range r.Failures {
		if failure.Stage == stage {
			failures = append(failures, failure)
		}
	}
	return failures
}

// Summary renders the counters on one line
func (r *Report) Summary() string {
	var sb strings.Builder
	if r.DryRun {
		sb.WriteString("dry-run ")
	}
	fmt.Fprintf(&sb, "scanned=%d unknown=%d already_migrated=%d missing_lease=%d ",
		r.Scanned, r.Unknown, r.AlreadyMigrated, r.MissingLease)
	fmt.Fprintf(&sb, "services=%d descriptors=%d endpoints=%d endpoints_written=%d ",
		r.Services, r.Descriptors, r.Endpoints, r.EndpointsWritten)
	fmt.Fprintf(&sb, "leases_refreshed=%d keys_deleted=%d keys_absent=%d failures=%d",
		r.LeasesRefreshed, r.KeysDeleted, r.KeysAbsent, len(r.Failures))
	return sb.String()
}

func (r *Report) addFailure(stage Stage, item string, err error) {
	r.Failures = append(r.Failures, Failure{Stage: stage, Item: item, Err: err})
}
