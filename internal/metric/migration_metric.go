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

package metric

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// MigrationMetric defines the migration instrumentation
type MigrationMetric struct {
	// Specifies the total number of endpoints written under the new layout
	endpointsWritten metric.Int64Counter
	// Specifies the total number of leases refreshed
	leasesRefreshed metric.Int64Counter
	// Specifies the total number of old keys deleted
	keysDeleted metric.Int64Counter
	// Specifies the total number of recoverable failures
	failures metric.Int64Counter
	// Specifies how long a run took, in milliseconds
	runDuration metric.Int64Histogram
}

// NewMigrationMetric creates an instance of MigrationMetric
func NewMigrationMetric(meter metric.Meter) (*MigrationMetric, error) {
	migrationMetric := new(MigrationMetric)
	var err error
	if migrationMetric.endpointsWritten, err = meter.Int64Counter(
		"regmigrate_endpoints_written",
		metric.WithDescription("Total number of endpoints written under the new layout"),
	); err != nil {
		return nil, fmt.Errorf("failed to create endpointsWritten instrument, %w", err)
	}

	if migrationMetric.leasesRefreshed, err = meter.Int64Counter(
		"regmigrate_leases_refreshed",
		metric.WithDescription("Total number of leases refreshed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create leasesRefreshed instrument, %w", err)
	}

	if migrationMetric.keysDeleted, err = meter.Int64Counter(
		"regmigrate_keys_deleted",
		metric.WithDescription("Total number of old layout keys deleted"),
	); err != nil {
		return nil, fmt.Errorf("failed to create keysDeleted instrument, %w", err)
	}

	if migrationMetric.failures, err = meter.Int64Counter(
		"regmigrate_failures",
		metric.WithDescription("Total number of recoverable failures"),
	); err != nil {
		return nil, fmt.Errorf("failed to create failures instrument, %w", err)
	}

	if migrationMetric.runDuration, err = meter.Int64Histogram(
		"regmigrate_run_duration",
		metric.WithDescription("The duration of a migration run in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create runDuration instrument, %w", err)
	}

	return migrationMetric, nil
}

// EndpointsWritten returns the endpoints written counter
func (x *MigrationMetric) EndpointsWritten() metric.Int64Counter {
	return x.endpointsWritten
}

// LeasesRefreshed returns the leases refreshed counter
func (x *MigrationMetric) LeasesRefreshed() metric.Int64Counter {
	return x.leasesRefreshed
}

// KeysDeleted returns the keys deleted counter
func (x *MigrationMetric) KeysDeleted() metric.Int64Counter {
	return x.keysDeleted
}

// Failures returns the failures counter
func (x *MigrationMetric) Failures() metric.Int64Counter {
	return x.failures
}

// RunDuration returns the run duration histogram
func (x *MigrationMetric) RunDuration() metric.Int64Histogram {
	return x.runDuration
}
