package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fraudbusters/internal/core"
	applog "fraudbusters/internal/log"
	ports "fraudbusters/internal/source"
)

// Store reads the two dashboard tables from local CSV exports.
type Store struct {
	transactionsPath string
	historyPath      string
}

var _ ports.Reader = (*Store)(nil)

func New(transactionsPath, historyPath string) *Store {
	return &Store{transactionsPath: transactionsPath, historyPath: historyPath}
}

// ReadTransactions implements source.TransactionReader
func (s *Store) ReadTransactions(ctx context.Context) ([]core.TransactionRecord, error) {
	header, rows, err := readFile(s.transactionsPath)
	if err != nil {
		return nil, err
	}
	recs, err := ports.DecodeTransactions(filepath.Base(s.transactionsPath), header, rows, 2)
	if err != nil {
		return nil, err
	}
	applog.FromContext(ctx).DebugContext(ctx, "Transactions read from CSV", "path", s.transactionsPath, "rows", len(recs))
	return recs, nil
}

// ReadCustomerHistory implements source.HistoryReader
func (s *Store) ReadCustomerHistory(ctx context.Context) ([]core.CustomerHistoryPoint, error) {
	header, rows, err := readFile(s.historyPath)
	if err != nil {
		return nil, err
	}
	points, err := ports.DecodeCustomerHistory(filepath.Base(s.historyPath), header, rows, 2)
	if err != nil {
		return nil, err
	}
	applog.FromContext(ctx).DebugContext(ctx, "Customer history read from CSV", "path", s.historyPath, "rows", len(points))
	return points, nil
}

func readFile(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open %s: %w", core.ErrDataUnavailable, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: %s: empty file", core.ErrDataUnavailable, path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read header %s: %w", core.ErrDataUnavailable, path, err)
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: parse %s: %w", core.ErrDataUnavailable, path, err)
	}
	return header, rows, nil
}
