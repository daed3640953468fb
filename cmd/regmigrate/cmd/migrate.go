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

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/infrmods/regmigrate/config"
	"github.com/infrmods/regmigrate/internal/etcdstore"
	"github.com/infrmods/regmigrate/log"
	"github.com/infrmods/regmigrate/migration"
)

var (
	dryRun   bool
	logLevel string
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate [host[:port]]",
	Short: "Move every service registration to the new key layout",
	Long: `migrate copies descriptors and nodes to the new layout, refreshes each
lease once and then deletes the old keys. Keys that cannot be migrated are
left in place and reported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := migrateConfig(args)
		if err != nil {
			return err
		}

		logger := newLogger(cfg.LogLevel())
		defer func() { _ = logger.Flush() }()

		report, err := runMigrate(ctx, cfg, logger)
		reportFailures(logger, report)
		return err
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log the planned writes and deletes without executing them")
	migrateCmd.Flags().StringVar(&logLevel, "log-level", "", "log level, overrides log.level of the config file")
	rootCmd.AddCommand(migrateCmd)
}

// migrateConfig loads and validates the config with the command line overrides applied
func migrateConfig(args []string) (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		cfg.ApplyEndpoint(args[0])
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runMigrate(ctx context.Context, cfg *config.Config, logger log.Logger) (*migration.Report, error) {
	store, err := etcdstore.New(ctx, cfg.EtcdStoreConfig(logger))
	if err != nil {
		logger.Errorf("connect etcd fail: %v", err)
		return nil, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn(err)
		}
	}()

	migrator := migration.NewMigrator(store,
		migration.WithLogger(logger),
		migration.WithPrefix(cfg.Services.KeyPrefix),
		migration.WithDryRun(dryRun))
	return migrator.Run(ctx)
}

// reportFailures logs the keys and leases a run could not handle.
// They do not change the exit status.
func reportFailures(logger log.Logger, report *migration.Report) {
	if report == nil {
		return
	}
	if err := report.Err(); err != nil {
		logger.Warnf("%d items left for manual cleanup: %v", len(report.Failures), err)
	}
}
