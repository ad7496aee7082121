package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fraudbusters/internal/config"
	"fraudbusters/internal/core"
	"fraudbusters/internal/source/csvfile"
	"fraudbusters/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	app := &config.Config{DataBackend: "memory"}
	if _, err := FromAppConfig(app); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	app = &config.Config{
		DataBackend:         "csv",
		TransactionsPath:    "a.csv",
		CustomerHistoryPath: "b.csv",
	}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != CSVBackend || cfg.TransactionsPath != "a.csv" || cfg.CustomerHistoryPath != "b.csv" {
		t.Fatalf("unexpected backend config: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"csv ok", Config{Type: CSVBackend, TransactionsPath: "a", CustomerHistoryPath: "b"}, false},
		{"csv missing path", Config{Type: CSVBackend, TransactionsPath: "a"}, true},
		{"sqlite ok", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite missing path", Config{Type: SQLiteBackend}, true},
		{"sheets missing id", Config{Type: SheetsBackend}, true},
		{"unknown type", Config{Type: "memory"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateCSVBackend(t *testing.T) {
	dir := t.TempDir()
	tx := filepath.Join(dir, "data_eda.csv")
	hist := filepath.Join(dir, "df_plot.csv")
	writeFile(t, tx, ",CustomerId,Value,FraudResult,weekday,hour,ProductCategory,ChannelId,ProductId\n"+
		"0,C1,1000,0,0,2,airtime,ChannelId_3,ProductId_10\n")
	writeFile(t, hist, ",Value,fraud_total,fraud_history,CustomerId,ProductCategory,ChannelId\n")

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type: CSVBackend, TransactionsPath: tx, CustomerHistoryPath: hist,
	})
	if err != nil {
		t.Fatalf("create backend: %v", err)
	}
	defer res.Close()

	if _, ok := res.Reader.(*csvfile.Store); !ok {
		t.Fatalf("expected csv store, got %T", res.Reader)
	}
	recs, err := res.Reader.ReadTransactions(context.Background())
	if err != nil || len(recs) != 1 {
		t.Fatalf("read transactions: %v (%d rows)", err, len(recs))
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "fraudbusters.db"),
	})
	if err != nil {
		t.Fatalf("create backend: %v", err)
	}
	defer res.Close()

	if _, ok := res.Reader.(*storage.SQLiteRepository); !ok {
		t.Fatalf("expected sqlite repository, got %T", res.Reader)
	}
	// An empty snapshot has never been imported.
	if _, err := res.Reader.ReadTransactions(context.Background()); !errors.Is(err, core.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestCreateSheetsBackendRequiresID(t *testing.T) {
	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SheetsBackend}); err == nil {
		t.Fatal("expected error without spreadsheet id")
	}
}

func TestNilResultClose(t *testing.T) {
	var res *BackendResult
	if err := res.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
