package google

import (
	"context"
	"errors"
	"testing"

	"fraudbusters/internal/core"
	ports "fraudbusters/internal/source"
)

func TestSplitValuesPadsShortRows(t *testing.T) {
	values := [][]interface{}{
		{"", "Value", "fraud_total", "fraud_history", "CustomerId", "ProductCategory", "ChannelId"},
		{float64(0), float64(1500), float64(2), "repeat", "C9", "financial_services", "ChannelId_3"},
		{float64(1), float64(10)},
	}
	header, rows, err := splitValues("df_plot", values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(header) != 7 || len(rows) != 2 {
		t.Fatalf("unexpected shape: header=%d rows=%d", len(header), len(rows))
	}
	if len(rows[1]) != 7 || rows[1][6] != "" {
		t.Fatalf("short row not padded: %v", rows[1])
	}
	if rows[0][1] != "1500" {
		t.Fatalf("expected numeric cell rendered as 1500, got %q", rows[0][1])
	}

	points, err := ports.DecodeCustomerHistory("df_plot", header, rows[:1], 2)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if points[0].FraudTotal != 2 || points[0].Value.String() != "1500" {
		t.Fatalf("unexpected point: %+v", points[0])
	}
}

func TestSplitValuesErrors(t *testing.T) {
	if _, _, err := splitValues("empty", nil); !errors.Is(err, core.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable for empty sheet, got %v", err)
	}
	wide := [][]interface{}{{"a"}, {"1", "2"}}
	if _, _, err := splitValues("wide", wide); !errors.Is(err, core.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable for wide row, got %v", err)
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for missing spreadsheet id")
	}
}

func TestUninitializedClientIsUnavailable(t *testing.T) {
	c := &Client{transactionsSheet: "data_eda"}
	if _, err := c.ReadTransactions(context.Background()); !errors.Is(err, core.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}
