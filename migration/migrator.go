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
	"context"
	"slices"
	"strconv"
	"time"

	goset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/infrmods/regmigrate/errors"
	"github.com/infrmods/regmigrate/internal/duration"
	"github.com/infrmods/regmigrate/internal/metric"
	"github.com/infrmods/regmigrate/log"
	"github.com/infrmods/regmigrate/registry"
)

// Migrator moves service registrations from the old key layout to the new one.
//
// A run scans the prefix, aggregates services, writes every descriptor and
// endpoint under the new layout, refreshes each lease touched once, then
// deletes the old keys that were written successfully. Services and
// endpoints are processed one at a time in scan order.
type Migrator struct {
	store  Store
	logger log.Logger
	prefix string
	dryRun bool
	layout *registry.Layout
	meter  otelmetric.Meter
	metric *metric.MigrationMetric
}

// NewMigrator creates a Migrator on top of store
func NewMigrator(store Store, opts ...Option) *Migrator {
	migrator := &Migrator{
		store:  store,
		logger: log.DefaultLogger,
		prefix: registry.DefaultPrefix,
	}

	for _, opt := range opts {
		opt.Apply(migrator)
	}

	migrator.layout = registry.NewLayout(migrator.prefix)
	if migrator.meter == nil {
		migrator.meter = metric.NewProvider().Meter()
	}
	migrationMetric, err := metric.NewMigrationMetric(migrator.meter)
	if err != nil {
		migrator.logger.Warnf("migration metrics disabled: %v", err)
	}
	migrator.metric = migrationMetric
	return migrator
}

// Layout returns the key layout the migrator works with
func (m *Migrator) Layout() *registry.Layout {
	return m.layout
}

// Run performs a complete migration.
//
// Recoverable per-item failures are recorded in the returned Report and do not
// make Run fail. Run returns an error when the scan fails or when a
// descriptor cannot be written; in the latter case the run stops there and no
// lease is refreshed nor any old key deleted.
func (m *Migrator) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	logger := m.logger.With("run", runID)
	start := time.Now()
	defer func() {
		if m.metric != nil {
			m.metric.RunDuration().Record(ctx, time.Since(start).Milliseconds(), m.attributes())
		}
	}()

	logger.Infof("scanning %s", m.layout.Prefix())

	records, report, err := Scan(ctx, m.store, m.layout, logger)
	report.RunID = runID
	if err != nil {
		logger.Errorf("scan failed: %v", err)
		return report, err
	}

	services := Aggregate(records)
	logger.Infof("found %d services", services.Len())
	logger.Debugf("services: %v", services.Keys())
	err = m.migrate(ctx, logger, services, report)
	logger.Infof("run took %s", duration.Format(time.Since(start)))
	return report, err
}

// Migrate runs the write, refresh and delete steps over already aggregated services.
// Counters and failures are added to report.
func (m *Migrator) Migrate(ctx context.Context, services *registry.Services, report *Report) error {
	return m.migrate(ctx, m.logger.With("run", report.RunID), services, report)
}

func (m *Migrator) migrate(ctx context.Context, logger log.Logger, services *registry.Services, report *Report) error {
	report.DryRun = m.dryRun
	defer m.record(ctx, report)

	leases := goset.NewThreadUnsafeSet[int64]()
	var drop []string

	for _, service := range services.All() {
		key := service.Key()
		report.Services++
		slogger := logger.With("service", key.String())

		if descriptor, ok := service.Descriptor(); ok {
			report.Descriptors++
			newKey := m.layout.NewDescriptorKey(key)
			if err := m.put(ctx, slogger, newKey, descriptor, 0); err != nil {
				slogger.Errorf("put desc fail: %s: %v", newKey, err)
				return errors.NewDescriptorWriteError(key.String(), err)
			}
			drop = append(drop, m.layout.OldDescriptorKey(key))
		}

		for _, endpoint := range service.Endpoints() {
			report.Endpoints++
			if !endpoint.Valid() {
				report.MissingLease++
				slogger.Warnf("%v for %s", errors.ErrMissingLease, m.layout.OldNodeKey(key, endpoint.Address))
				continue
			}

			leases.Add(endpoint.LeaseID)
			newKey := m.layout.NewNodeKey(key, endpoint.Address)
			if err := m.put(ctx, slogger, newKey, endpoint.Payload, endpoint.LeaseID); err != nil {
				// the old key stays in place so the registration is not lost
				report.addFailure(StagePut, newKey, err)
				slogger.With("address", endpoint.Address).Errorf("put node fail: %s %s: %v", key, endpoint.Address, err)
				continue
			}

			report.EndpointsWritten++
			drop = append(drop, m.layout.OldNodeKey(key, endpoint.Address))
		}
		slogger.Infof("%s finished", key)
	}

	ids := leases.ToSlice()
	slices.Sort(ids)
	for _, id := range ids {
		if err := m.refresh(ctx, logger, id); err != nil {
			report.addFailure(StageRefresh, strconv.FormatInt(id, 10), err)
			logger.With("lease", id).Warnf("refresh lease fail: %d: %v", id, err)
			continue
		}
		report.LeasesRefreshed++
	}

	for _, key := range drop {
		deleted, err := m.delete(ctx, logger, key)
		if err != nil {
			report.addFailure(StageDelete, key, err)
			logger.With("key", key).Errorf("delete node fail: %s: %v", key, err)
			continue
		}
		if deleted == 0 {
			report.KeysAbsent++
			logger.Debugf("old key %s was already gone", key)
			continue
		}
		report.KeysDeleted++
	}

	if len(report.Failures) > 0 {
		logger.Warnf("migration finished with failures: %s", report.Summary())
		return nil
	}
	logger.Infof("migration finished: %s", report.Summary())
	return nil
}

func (m *Migrator) put(ctx context.Context, logger log.Logger, key string, value []byte, leaseID int64) error {
	if m.dryRun {
		logger.Infof("plan: put %s lease=%d bytes=%d", key, leaseID, len(value))
		return nil
	}
	return m.store.Put(ctx, key, value, leaseID)
}

func (m *Migrator) refresh(ctx context.Context, logger log.Logger, leaseID int64) error {
	if m.dryRun {
		logger.Infof("plan: refresh lease %d", leaseID)
		return nil
	}
	return m.store.RefreshLease(ctx, leaseID)
}

func (m *Migrator) delete(ctx context.Context, logger log.Logger, key string) (int64, error) {
	if m.dryRun {
		logger.Infof("plan: delete %s", key)
		return 1, nil
	}
	return m.store.Delete(ctx, key)
}

func (m *Migrator) attributes() otelmetric.MeasurementOption {
	return otelmetric.WithAttributes(
		attribute.String("prefix", m.layout.Prefix()),
		attribute.Bool("dry_run", m.dryRun))
}

func (m *Migrator) record(ctx context.Context, report *Report) {
	if m.metric == nil {
		return
	}
	attrs := m.attributes()
	m.metric.EndpointsWritten().Add(ctx, int64(report.EndpointsWritten), attrs)
	m.metric.LeasesRefreshed().Add(ctx, int64(report.LeasesRefreshed), attrs)
	m.metric.KeysDeleted().Add(ctx, int64(report.KeysDeleted), attrs)
	m.metric.Failures().Add(ctx, int64(len(report.Failures)), attrs)
}
