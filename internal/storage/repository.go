package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fraudbusters/internal/core"
	applog "fraudbusters/internal/log"
	ports "fraudbusters/internal/source"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const (
	tableTransactions = "transactions"
	tableHistory      = "customer_history"
)

// SQLiteRepository keeps an imported snapshot of both dashboard tables.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.Reader = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceTransactions swaps the stored transactions for recs in one transaction.
func (r *SQLiteRepository) ReplaceTransactions(ctx context.Context, recs []core.TransactionRecord, sourceName string) error {
	return r.replace(ctx, tableTransactions, sourceName, len(recs), func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions
			(row_index, customer_id, value, fraud_result, weekday, hour, product_category, channel_id, product_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, rec := range recs {
			if _, err := stmt.ExecContext(ctx, i, rec.CustomerID, rec.Value.String(), int(rec.FraudResult),
				rec.Weekday, rec.Hour, rec.ProductCategory, rec.ChannelID, rec.ProductID); err != nil {
				return fmt.Errorf("insert transaction row %d: %w", i, err)
			}
		}
		return nil
	})
}

// ReplaceCustomerHistory swaps the stored customer history for points in one transaction.
func (r *SQLiteRepository) ReplaceCustomerHistory(ctx context.Context, points []core.CustomerHistoryPoint, sourceName string) error {
	return r.replace(ctx, tableHistory, sourceName, len(points), func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO customer_history
			(row_index, value, fraud_total, fraud_history, customer_id, product_category, channel_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, p := range points {
			if _, err := stmt.ExecContext(ctx, i, p.Value.String(), p.FraudTotal, p.FraudHistory,
				p.CustomerID, p.ProductCategory, p.ChannelID); err != nil {
				return fmt.Errorf("insert history row %d: %w", i, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) replace(ctx context.Context, table, sourceName string, rows int, insert func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// table is one of the package constants, never user input.
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := insert(tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO imports (table_name, row_count, source, imported_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(table_name) DO UPDATE SET row_count = excluded.row_count,
			source = excluded.source, imported_at = excluded.imported_at`, table, rows, sourceName); err != nil {
		return fmt.Errorf("record import of %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}

	applog.FromContext(ctx).InfoContext(ctx, "Snapshot table replaced", "table", table, "rows", rows, "source", sourceName)
	return nil
}

// ensureImported fails with ErrDataUnavailable when table was never imported.
func (r *SQLiteRepository) ensureImported(ctx context.Context, table string) error {
	var rows int
	err := r.db.QueryRowContext(ctx, `SELECT row_count FROM imports WHERE table_name = ?`, table).Scan(&rows)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: snapshot has no %s import", core.ErrDataUnavailable, table)
	}
	if err != nil {
		return fmt.Errorf("%w: query imports: %w", core.ErrDataUnavailable, err)
	}
	return nil
}

// ReadTransactions implements source.TransactionReader
func (r *SQLiteRepository) ReadTransactions(ctx context.Context) ([]core.TransactionRecord, error) {
	if err := r.ensureImported(ctx, tableTransactions); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT customer_id, value, fraud_result, weekday, hour,
		product_category, channel_id, product_id FROM transactions ORDER BY row_index`)
	if err != nil {
		return nil, fmt.Errorf("%w: query transactions: %w", core.ErrDataUnavailable, err)
	}
	defer rows.Close()

	var out []core.TransactionRecord
	for rows.Next() {
		var (
			rec   core.TransactionRecord
			value string
			flag  int
		)
		if err := rows.Scan(&rec.CustomerID, &value, &flag, &rec.Weekday, &rec.Hour,
			&rec.ProductCategory, &rec.ChannelID, &rec.ProductID); err != nil {
			return nil, fmt.Errorf("%w: scan transaction: %w", core.ErrDataUnavailable, err)
		}
		if rec.Value, err = decimal.NewFromString(value); err != nil {
			return nil, fmt.Errorf("%w: transaction value %q: %w", core.ErrDataUnavailable, value, err)
		}
		rec.FraudResult = core.FraudFlag(flag)
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("transactions row %d: %w", len(out), err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate transactions: %w", core.ErrDataUnavailable, err)
	}
	return out, nil
}

// ReadCustomerHistory implements source.HistoryReader
func (r *SQLiteRepository) ReadCustomerHistory(ctx context.Context) ([]core.CustomerHistoryPoint, error) {
	if err := r.ensureImported(ctx, tableHistory); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT value, fraud_total, fraud_history, customer_id,
		product_category, channel_id FROM customer_history ORDER BY row_index`)
	if err != nil {
		return nil, fmt.Errorf("%w: query customer history: %w", core.ErrDataUnavailable, err)
	}
	defer rows.Close()

	var out []core.CustomerHistoryPoint
	for rows.Next() {
		var (
			p     core.CustomerHistoryPoint
			value string
		)
		if err := rows.Scan(&value, &p.FraudTotal, &p.FraudHistory, &p.CustomerID,
			&p.ProductCategory, &p.ChannelID); err != nil {
			return nil, fmt.Errorf("%w: scan customer history: %w", core.ErrDataUnavailable, err)
		}
		if p.Value, err = decimal.NewFromString(value); err != nil {
			return nil, fmt.Errorf("%w: history value %q: %w", core.ErrDataUnavailable, value, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("customer history row %d: %w", len(out), err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate customer history: %w", core.ErrDataUnavailable, err)
	}
	return out, nil
}

// ImportStatus describes the last import of one snapshot table.
type ImportStatus struct {
	Table    string
	Rows     int
	Source   string
	Imported string
}

// Imports lists the recorded imports ordered by table name.
func (r *SQLiteRepository) Imports(ctx context.Context) ([]ImportStatus, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT table_name, row_count, source, imported_at FROM imports ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	var out []ImportStatus
	for rows.Next() {
		var s ImportStatus
		if err := rows.Scan(&s.Table, &s.Rows, &s.Source, &s.Imported); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
