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
	"go.opentelemetry.io/otel/metric"

	"github.com/infrmods/regmigrate/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(migrator *Migrator)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Migrator)

// Apply applies the Migrator's option
func (f OptionFunc) Apply(migrator *Migrator) {
	f(migrator)
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(migrator *Migrator) {
		migrator.logger = logger
	})
}

// WithPrefix sets the namespace holding the registrations. Defaults to /services/
func WithPrefix(prefix string) Option {
	return OptionFunc(func(migrator *Migrator) {
		migrator.prefix = prefix
	})
}

// WithDryRun makes the migrator log the writes, refreshes and deletes it
// would perform instead of executing them
func WithDryRun(dryRun bool) Option {
	return OptionFunc(func(migrator *Migrator) {
		migrator.dryRun = dryRun
	})
}

// WithMeter sets the meter the migration counters are recorded with.
// Defaults to the global otel meter provider.
func WithMeter(meter metric.Meter) Option {
	return OptionFunc(func(migrator *Migrator) {
		migrator.meter = meter
	})
}
