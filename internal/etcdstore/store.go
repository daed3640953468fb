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

package etcdstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/pkg/errors"
	"go.etcd.io/etcd/api/v3/v3rpc/rpctypes"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"

	regerrors "github.com/infrmods/regmigrate/errors"
	"github.com/infrmods/regmigrate/internal/errorschain"
	"github.com/infrmods/regmigrate/log"
	"github.com/infrmods/regmigrate/migration"
)

const tracerName = "github.com/infrmods/regmigrate/internal/etcdstore"

// Store is a migration.Store backed by an etcd v3 cluster.
// Every operation is bounded by the configured request timeout.
type Store struct {
	client *clientv3.Client
	config *Config
	logger log.Logger
	tracer trace.Tracer
	closed *atomic.Bool
}

var _ migration.Store = (*Store)(nil)

// New connects to etcd and probes the first endpoint until it answers a
// status request or the configured attempts are exhausted
func New(ctx context.Context, config *Config) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid etcd store config")
	}

	logger := config.Logger
	if logger == nil {
		logger = log.DefaultLogger
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   config.Endpoints,
		DialTimeout: config.DialTimeout,
		Username:    config.Username,
		Password:    config.Password,
		Context:     ctx,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create etcd client")
	}

	retrier := retry.NewRetrier(config.ConnectAttempts, 100*time.Millisecond, time.Second)
	err = retrier.RunContext(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, config.DialTimeout)
		defer cancel()
		_, err := client.Status(ctx, config.Endpoints[0])
		if err != nil {
			logger.Warnf("etcd endpoint %s is not reachable: %v", config.Endpoints[0], err)
		}
		return err
	})
	if err != nil {
		return nil, errorschain.New(errorschain.ReturnAll()).
			AddError(fmt.Errorf("failed to connect to etcd: %w", err)).
			AddErrorFn(client.Close).
			Error()
	}

	logger.Infof("connected to etcd %v", config.Endpoints)
	return &Store{
		client: client,
		config: config,
		logger: logger,
		tracer: otel.Tracer(tracerName),
		closed: atomic.NewBool(false),
	}, nil
}

// GetPrefix implements migration.Store.
// Keys are fetched in pages pinned to the revision of the first page so the
// result is a consistent snapshot of the prefix.
func (s *Store) GetPrefix(ctx context.Context, prefix string) (kvs []*migration.KeyValue, err error) {
	if s.closed.Load() {
		return nil, regerrors.ErrStoreClosed
	}

	ctx, span := s.tracer.Start(ctx, "GetPrefix", trace.WithAttributes(attribute.String("prefix", prefix)))
	defer func() { endSpan(span, err) }()

	end := clientv3.GetPrefixRangeEnd(prefix)
	from := prefix
	var revision int64
	for {
		resp, err := s.getPage(ctx, from, end, revision)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get prefix=%s", prefix)
		}

		for _, kv := range resp.Kvs {
			kvs = append(kvs, &migration.KeyValue{
				Key:     string(kv.Key),
				Value:   kv.Value,
				LeaseID: kv.Lease,
			})
		}

		if revision == 0 {
			revision = resp.Header.GetRevision()
		}
		if !resp.More || len(resp.Kvs) == 0 {
			break
		}
		from = string(resp.Kvs[len(resp.Kvs)-1].Key) + "\x00"
	}

	span.SetAttributes(attribute.Int("count", len(kvs)))
	return kvs, nil
}

func (s *Store) getPage(ctx context.Context, from, end string, revision int64) (*clientv3.GetResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	defer cancel()

	opts := []clientv3.OpOption{
		clientv3.WithRange(end),
		clientv3.WithLimit(s.config.PageSize),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend),
	}
	if revision > 0 {
		opts = append(opts, clientv3.WithRev(revision))
	}
	return s.client.Get(ctx, from, opts...)
}

// Put implements migration.Store
func (s *Store) Put(ctx context.Context, key string, value []byte, leaseID int64) (err error) {
	if s.closed.Load() {
		return regerrors.ErrStoreClosed
	}

	ctx, span := s.tracer.Start(ctx, "Put", trace.WithAttributes(
		attribute.String("key", key),
		attribute.Int64("lease", leaseID)))
	defer func() { endSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	defer cancel()

	var opts []clientv3.OpOption
	if leaseID != 0 {
		opts = append(opts, clientv3.WithLease(clientv3.LeaseID(leaseID)))
	}

	if _, err := s.client.Put(ctx, key, string(value), opts...); err != nil {
		return errors.Wrapf(toStoreError(err), "failed to put key=%s", key)
	}
	return nil
}

// Delete implements migration.Store
func (s *Store) Delete(ctx context.Context, key string) (deleted int64, err error) {
	if s.closed.Load() {
		return 0, regerrors.ErrStoreClosed
	}

	ctx, span := s.tracer.Start(ctx, "Delete", trace.WithAttributes(attribute.String("key", key)))
	defer func() { endSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	defer cancel()

	resp, err := s.client.Delete(ctx, key)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to delete key=%s", key)
	}
	return resp.Deleted, nil
}

// RefreshLease implements migration.Store with a single keep-alive round trip
func (s *Store) RefreshLease(ctx context.Context, leaseID int64) (err error) {
	if s.closed.Load() {
		return regerrors.ErrStoreClosed
	}

	ctx, span := s.tracer.Start(ctx, "RefreshLease", trace.WithAttributes(attribute.Int64("lease", leaseID)))
	defer func() { endSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	defer cancel()

	if _, err := s.client.KeepAliveOnce(ctx, clientv3.LeaseID(leaseID)); err != nil {
		return errors.Wrapf(toStoreError(err), "failed to refresh lease=%d", leaseID)
	}
	return nil
}

// Close closes the etcd client. Calling it more than once is a no-op.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close etcd client: %w", err)
	}
	return nil
}

func toStoreError(err error) error {
	if stderrors.Is(err, rpctypes.ErrLeaseNotFound) {
		return fmt.Errorf("%w: %w", regerrors.ErrLeaseNotFound, err)
	}
	return err
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
