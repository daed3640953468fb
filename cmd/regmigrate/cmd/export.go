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
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/infrmods/regmigrate/config"
	"github.com/infrmods/regmigrate/export"
	"github.com/infrmods/regmigrate/internal/errorschain"
	"github.com/infrmods/regmigrate/internal/etcdstore"
	"github.com/infrmods/regmigrate/log"
)

var exportPrefix string

// exportCmd represents the export-configs command
var exportCmd = &cobra.Command{
	Use:   "export-configs",
	Short: "Write the active rows of the configs table into etcd",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := exportConfig()
		if err != nil {
			return err
		}

		logger := newLogger(cfg.LogLevel())
		defer func() { _ = logger.Flush() }()

		_, err = runExport(ctx, cfg, logger)
		return err
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportPrefix, "prefix", "", "key prefix, overrides configs.key_prefix of the config file")
	rootCmd.AddCommand(exportCmd)
}

func exportConfig() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if exportPrefix != "" {
		cfg.Configs.KeyPrefix = exportPrefix
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ValidateDB(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runExport(ctx context.Context, cfg *config.Config, logger log.Logger) (int, error) {
	db, err := sql.Open(cfg.DB.Driver, cfg.DB.Source)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open %s database", cfg.DB.Driver)
	}

	store, err := etcdstore.New(ctx, cfg.EtcdStoreConfig(logger))
	if err != nil {
		logger.Errorf("connect etcd fail: %v", err)
		return 0, errorschain.New(errorschain.ReturnAll()).AddError(err).AddErrorFn(db.Close).Error()
	}
	defer func() {
		if err := errorschain.New(errorschain.ReturnAll()).
			AddErrorFn(store.Close).
			AddErrorFn(db.Close).
			Error(); err != nil {
			logger.Warn(err)
		}
	}()

	exporter := export.NewExporter(db, store,
		export.WithKeyPrefix(cfg.Configs.KeyPrefix),
		export.WithLogger(logger))
	return exporter.Export(ctx)
}
