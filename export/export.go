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

// Package export copies the active rows of the configs table into the
// coordination store as flat key/value pairs.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	regerrors "github.com/infrmods/regmigrate/errors"
	"github.com/infrmods/regmigrate/log"
)

const (
	// DefaultKeyPrefix is where configs are written when no prefix is set
	DefaultKeyPrefix = "/configs"

	selectActiveConfigs = "select name, value from configs where status=0"
)

// Putter writes a value into the coordination store.
// A zero leaseID writes a key that never expires.
type Putter interface {
	Put(ctx context.Context, key string, value []byte, leaseID int64) error
}

// Config is a single configs row
type Config struct {
	Name  string
	Value []byte
}

// Exporter reads configuration rows from a SQL database and writes them
// into the coordination store
type Exporter struct {
	db     *sql.DB
	putter Putter
	prefix string
	logger log.Logger
}

// NewExporter creates an Exporter
func NewExporter(db *sql.DB, putter Putter, opts ...Option) *Exporter {
	exporter := &Exporter{
		db:     db,
		putter: putter,
		prefix: DefaultKeyPrefix,
		logger: log.DefaultLogger,
	}
	for _, opt := range opts {
		opt.Apply(exporter)
	}
	return exporter
}

// Key returns the store key of a config name
func (e *Exporter) Key(name string) string {
	return strings.TrimSuffix(e.prefix, "/") + "/" + name
}

// Export writes every active config and returns how many were written.
// The rows are read completely before the first write.
func (e *Exporter) Export(ctx context.Context) (int, error) {
	configs, err := e.load(ctx)
	if err != nil {
		return 0, err
	}

	for i, config := range configs {
		key := e.Key(config.Name)
		e.logger.Info(key)
		if err := e.putter.Put(ctx, key, config.Value, 0); err != nil {
			e.logger.With("key", key).Errorf("put config fail: %s: %v", key, err)
			return i, fmt.Errorf("%w: key=%s: %w", regerrors.ErrExportPut, key, err)
		}
	}

	e.logger.Infof("finished %d", len(configs))
	return len(configs), nil
}

func (e *Exporter) load(ctx context.Context) ([]*Config, error) {
	rows, err := e.db.QueryContext(ctx, selectActiveConfigs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query configs")
	}
	defer rows.Close()

	var configs []*Config
	for rows.Next() {
		config := new(Config)
		if err := rows.Scan(&config.Name, &config.Value); err != nil {
			return nil, errors.Wrap(err, "failed to scan config row")
		}
		configs = append(configs, config)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read configs")
	}
	return configs, nil
}
