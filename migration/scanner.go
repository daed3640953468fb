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
	stderrors "errors"

	"github.com/pkg/errors"

	regerrors "github.com/infrmods/regmigrate/errors"
	"github.com/infrmods/regmigrate/log"
	"github.com/infrmods/regmigrate/registry"
)

// Record is a key that matched the old layout
type Record struct {
	Key     string
	Parsed  *registry.ParsedKey
	Value   []byte
	LeaseID int64
}

// Scan reads every key under the layout prefix and keeps the ones matching
// the old layout. Unknown keys, keys already in the new layout and node keys
// without a lease are logged, counted and skipped.
// Only a failure to read the store is returned as an error.
func Scan(ctx context.Context, store Store, layout *registry.Layout, logger log.Logger) ([]*Record, *Report, error) {
	report := new(Report)
	kvs, err := store.GetPrefix(ctx, layout.Prefix())
	if err != nil {
		return nil, report, errors.Wrapf(err, "failed to scan prefix=%s", layout.Prefix())
	}

	records := make([]*Record, 0, len(kvs))
	for _, kv := range kvs {
		report.Scanned++
		parsed, err := layout.Parse(kv.Key)
		switch {
		case stderrors.Is(err, regerrors.ErrAlreadyMigrated):
			report.AlreadyMigrated++
			logger.Debugf("already migrated %s", kv.Key)
			continue
		case err != nil:
			report.Unknown++
			logger.Warnf("unknown key %s", kv.Key)
			continue
		}

		if parsed.Kind == registry.KindNode && kv.LeaseID == 0 {
			report.MissingLease++
			logger.Warnf("%v for %s", regerrors.ErrMissingLease, kv.Key)
			continue
		}

		records = append(records, &Record{
			Key:     kv.Key,
			Parsed:  parsed,
			Value:   kv.Value,
			LeaseID: kv.LeaseID,
		})
	}
	return records, report, nil
}
