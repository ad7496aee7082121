// Package dashboard assembles the page's six panels once at startup. The
// result is immutable and shared by every request.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"fraudbusters/internal/aggregate"
	"fraudbusters/internal/charts"
	"fraudbusters/internal/core"
	"fraudbusters/internal/log"
	"fraudbusters/internal/metrics"
	"fraudbusters/internal/source"
)

// Panel is a slot together with its chart and the note shown under it.
type Panel struct {
	Slot
	Annotation string       `json:"annotation"`
	Computed   bool         `json:"computed"`
	Chart      charts.Chart `json:"chart"`
}

// DashboardData is everything the page server renders.
type DashboardData struct {
	BuiltAt         time.Time
	Transactions    int
	CustomerHistory int
	Summary         []core.FraudSummary
	Panels          []Panel
	index           map[SlotID]int
}

// Build loads both tables, aggregates them and builds every chart. Load
// errors are returned before any aggregation runs.
func Build(ctx context.Context, tr source.TransactionReader, hr source.HistoryReader) (*DashboardData, error) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentDashboard)
	start := time.Now()

	recs, err := tr.ReadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	history, err := hr.ReadCustomerHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customer history: %w", err)
	}

	data, err := FromTables(recs, history, start)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.BuildDuration.Observe(elapsed.Seconds())
	metrics.TableRows.WithLabelValues("transactions").Set(float64(data.Transactions))
	metrics.TableRows.WithLabelValues("customer_history").Set(float64(data.CustomerHistory))
	for _, s := range data.Summary {
		metrics.FraudTransactions.WithLabelValues(s.Label).Set(float64(s.Count))
	}

	logger.InfoContext(ctx, "Dashboard built",
		"transactions", data.Transactions,
		"customer_history", data.CustomerHistory,
		"panels", len(data.Panels),
		log.FieldDuration, elapsed.Milliseconds())
	return data, nil
}

// FromTables derives the dashboard from already loaded tables.
func FromTables(recs []core.TransactionRecord, history []core.CustomerHistoryPoint, builtAt time.Time) (*DashboardData, error) {
	agg, err := aggregate.Aggregate(recs, history)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	built := map[SlotID]charts.Chart{
		SlotFraudCount:      charts.FraudCountPie(agg.Summary),
		SlotFraudValue:      charts.FraudValuePie(agg.Summary),
		SlotFraudByProduct:  charts.ByProduct(agg.Fraud),
		SlotFraudByWeekday:  charts.ByWeekday(agg.FraudByWeekday),
		SlotFraudByHour:     charts.ByHour(agg.FraudByHour),
		SlotCustomerHistory: charts.CustomerHistory(agg.History),
	}

	data := &DashboardData{
		BuiltAt:         builtAt,
		Transactions:    len(recs),
		CustomerHistory: len(history),
		Summary:         agg.Summary,
		index:           make(map[SlotID]int, len(slots)),
	}
	for _, slot := range Slots() {
		chart := built[slot.ID]
		p := Panel{Slot: slot, Annotation: slot.Annotation, Chart: chart}
		if note, ok := annotate(slot.ID, agg.Summary, chart); ok {
			p.Annotation, p.Computed = note, true
		}
		data.index[slot.ID] = len(data.Panels)
		data.Panels = append(data.Panels, p)
	}
	return data, nil
}

// Panel looks up a panel by slot id.
func (d *DashboardData) Panel(id SlotID) (Panel, bool) {
	i, ok := d.index[id]
	if !ok {
		return Panel{}, false
	}
	return d.Panels[i], true
}

// Rows groups the panels by layout row, preserving display order.
func (d *DashboardData) Rows() [][]Panel {
	var rows [][]Panel
	for _, p := range d.Panels {
		for len(rows) <= p.Row {
			rows = append(rows, nil)
		}
		rows[p.Row] = append(rows[p.Row], p)
	}
	return rows
}

// Partition returns the summary for flag, or a zero summary when the
// dashboard was built from an empty table.
func (d *DashboardData) Partition(flag core.FraudFlag) core.FraudSummary {
	for _, s := range d.Summary {
		if s.Flag == flag {
			return s
		}
	}
	return core.FraudSummary{Flag: flag, Label: core.FraudLabel(flag)}
}
