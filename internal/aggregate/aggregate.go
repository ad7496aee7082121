// Package aggregate derives the dashboard's summary tables from the loaded
// transactions and customer history. Every function is pure: inputs are never
// modified and empty inputs produce empty outputs.
package aggregate

import (
	"fmt"
	"slices"

	"fraudbusters/internal/core"

	"github.com/shopspring/decimal"
)

// DayRecord is a transaction carrying its weekday name.
type DayRecord struct {
	core.TransactionRecord
	Day string
}

// HistoryPoint is the subset of a customer history row exposed to charts.
type HistoryPoint struct {
	Value           decimal.Decimal
	FraudTotal      int
	FraudHistory    string
	CustomerID      string
	ProductCategory string
	ChannelID       string
}

// Result holds every derived table the dashboard needs.
type Result struct {
	Transactions []DayRecord
	Summary      []core.FraudSummary
	// Fraud keeps input order; the two sorted views below are stable copies.
	Fraud          []DayRecord
	FraudByWeekday []DayRecord
	FraudByHour    []DayRecord
	History        []HistoryPoint
}

// Aggregate runs the full derivation.
func Aggregate(recs []core.TransactionRecord, history []core.CustomerHistoryPoint) (Result, error) {
	named, err := WithDayNames(recs)
	if err != nil {
		return Result{}, err
	}
	fraud := FraudOnly(named)
	return Result{
		Transactions:   named,
		Summary:        GroupByFraud(recs),
		Fraud:          fraud,
		FraudByWeekday: SortByWeekday(fraud),
		FraudByHour:    SortByHour(fraud),
		History:        SelectHistory(history),
	}, nil
}

// WithDayNames attaches the weekday name to each record.
func WithDayNames(recs []core.TransactionRecord) ([]DayRecord, error) {
	out := make([]DayRecord, 0, len(recs))
	for i, r := range recs {
		day, err := core.DayName(r.Weekday)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, DayRecord{TransactionRecord: r, Day: day})
	}
	return out, nil
}

// GroupByFraud partitions records by fraud flag and reports, per partition,
// the number of customer references and the summed value. Non-empty input
// always yields both partitions, non-fraud first.
func GroupByFraud(recs []core.TransactionRecord) []core.FraudSummary {
	if len(recs) == 0 {
		return []core.FraudSummary{}
	}
	out := []core.FraudSummary{
		{Flag: core.NonFraud, Label: core.FraudLabel(core.NonFraud), Value: decimal.Zero},
		{Flag: core.Fraud, Label: core.FraudLabel(core.Fraud), Value: decimal.Zero},
	}
	for _, r := range recs {
		g := &out[0]
		if r.IsFraud() {
			g = &out[1]
		}
		if r.CustomerID != "" {
			g.Count++
		}
		g.Value = g.Value.Add(r.Value)
	}
	return out
}

// FraudOnly keeps fraud-flagged rows in their original order.
func FraudOnly[T interface{ IsFraud() bool }](rows []T) []T {
	out := make([]T, 0)
	for _, r := range rows {
		if r.IsFraud() {
			out = append(out, r)
		}
	}
	return out
}

// SortByWeekday returns a stable copy ordered by weekday index.
func SortByWeekday(rows []DayRecord) []DayRecord {
	return sortedBy(rows, func(r DayRecord) int { return r.Weekday })
}

// SortByHour returns a stable copy ordered by hour of day.
func SortByHour(rows []DayRecord) []DayRecord {
	return sortedBy(rows, func(r DayRecord) int { return r.Hour })
}

func sortedBy(rows []DayRecord, key func(DayRecord) int) []DayRecord {
	out := slices.Clone(rows)
	if out == nil {
		out = []DayRecord{}
	}
	slices.SortStableFunc(out, func(a, b DayRecord) int { return key(a) - key(b) })
	return out
}

// SelectHistory exposes the chart fields of the precomputed history table.
func SelectHistory(points []core.CustomerHistoryPoint) []HistoryPoint {
	out := make([]HistoryPoint, 0, len(points))
	for _, p := range points {
		out = append(out, HistoryPoint{
			Value:           p.Value,
			FraudTotal:      p.FraudTotal,
			FraudHistory:    p.FraudHistory,
			CustomerID:      p.CustomerID,
			ProductCategory: p.ProductCategory,
			ChannelID:       p.ChannelID,
		})
	}
	return out
}
