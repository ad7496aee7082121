// Command fraud-import loads the two CSV exports and replaces the SQLite
// snapshot read by the sqlite backend.
package main

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"fraudbusters/internal/cli"
	"fraudbusters/internal/core"
	applog "fraudbusters/internal/log"
	"fraudbusters/internal/source/csvfile"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentImport)

	ctx, stop := cli.ShutdownContext(context.Background())
	defer stop()
	ctx = applog.WithContext(ctx, logger)

	store := csvfile.New(cfg.TransactionsPath, cfg.CustomerHistoryPath)

	var (
		recs    []core.TransactionRecord
		history []core.CustomerHistoryPoint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recs, err = store.ReadTransactions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = store.ReadCustomerHistory(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to read CSV files", applog.FieldError, err, applog.FieldOperation, applog.OpRead)
		os.Exit(1)
	}

	sl := applog.NewStructuredLogger(logger)
	sl.LogTableLoaded(ctx, "csv", "transactions", len(recs))
	sl.LogTableLoaded(ctx, "csv", "customer_history", len(history))

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	if err := repo.ReplaceTransactions(ctx, recs, cfg.TransactionsPath); err != nil {
		logger.Error("Failed to import transactions", applog.FieldError, err, applog.FieldOperation, applog.OpImport)
		repo.Close()
		os.Exit(1)
	}
	if err := repo.ReplaceCustomerHistory(ctx, history, cfg.CustomerHistoryPath); err != nil {
		logger.Error("Failed to import customer history", applog.FieldError, err, applog.FieldOperation, applog.OpImport)
		repo.Close()
		os.Exit(1)
	}

	imports, err := repo.Imports(ctx)
	if err != nil {
		logger.Warn("Could not read import status", applog.FieldError, err)
		return
	}
	for _, imp := range imports {
		logger.Info("Snapshot imported",
			applog.FieldTable, imp.Table,
			applog.FieldRows, imp.Rows,
			applog.FieldSource, imp.Source,
			"imported_at", imp.Imported,
			"path", cfg.SQLiteDBPath)
	}
}
