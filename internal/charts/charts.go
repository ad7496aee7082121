// Package charts turns aggregates into rendering-independent chart
// specifications. The page renders them with Chart.js; nothing here knows
// about the renderer.
package charts

import (
	"strconv"

	"fraudbusters/internal/aggregate"
	"fraudbusters/internal/core"
)

// Kind names the chart family of a spec.
type Kind string

const (
	KindPie     Kind = "pie"
	KindBar     Kind = "bar"
	KindScatter Kind = "scatter"
)

// Palette is the fixed slice colour sequence for pie charts.
var Palette = []string{"#4F6272", "#B7C3F3", "#DD7596", "#8EB897"}

const (
	barHeight      = 400
	scatterFrameMs = 100

	LabelFraudCount   = "Count of fraud. Transactions"
	LabelProduct      = "Product Category"
	LabelWeekday      = "Weekday"
	LabelHour         = "Hour"
	LabelFraudTotal   = "Count of Fraudulence Transaction"
	LabelFraudHistory = "Fraud History"
	LabelValue        = "Value"
)

// Chart is a tagged union: exactly one of Pie, Bar or Scatter is set,
// matching Kind.
type Chart struct {
	Kind    Kind         `json:"kind"`
	Pie     *PieSpec     `json:"pie,omitempty"`
	Bar     *BarSpec     `json:"bar,omitempty"`
	Scatter *ScatterSpec `json:"scatter,omitempty"`
}

// Empty reports whether the chart has nothing to draw.
func (c Chart) Empty() bool {
	switch c.Kind {
	case KindPie:
		return c.Pie == nil || len(c.Pie.Slices) == 0
	case KindBar:
		return c.Bar == nil || len(c.Bar.Bars) == 0
	case KindScatter:
		return c.Scatter == nil || len(c.Scatter.Points) == 0
	}
	return true
}

type PieSlice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type PieSpec struct {
	Slices []PieSlice `json:"slices"`
	Colors []string   `json:"colors"`
}

// BarPoint is one fraud transaction stacked inside a bar.
type BarPoint struct {
	Value     float64 `json:"value"`
	ProductID string  `json:"product_id"`
	ChannelID string  `json:"channel_id"`
}

type Bar struct {
	Category string     `json:"category"`
	Count    int        `json:"count"`
	Points   []BarPoint `json:"points"`
}

type BarSpec struct {
	Bars        []Bar    `json:"bars"`
	XLabel      string   `json:"x_label"`
	YLabel      string   `json:"y_label"`
	ColorField  string   `json:"color_field"`
	HoverFields []string `json:"hover_fields"`
	Height      int      `json:"height"`
}

type ScatterPoint struct {
	X               float64 `json:"x"`
	Y               int     `json:"y"`
	Size            float64 `json:"size"`
	Color           string  `json:"color"`
	Group           string  `json:"group"`
	ProductCategory string  `json:"product_category"`
	ChannelID       string  `json:"channel_id"`
}

type ScatterSpec struct {
	Points       []ScatterPoint `json:"points"`
	XLabel       string         `json:"x_label"`
	YLabel       string         `json:"y_label"`
	ColorLabel   string         `json:"color_label"`
	SizeField    string         `json:"size_field"`
	GroupField   string         `json:"group_field"`
	HoverFields  []string       `json:"hover_fields"`
	TransitionMs int            `json:"transition_ms"`
}

// FraudCountPie plots the number of customer references per fraud partition.
func FraudCountPie(summary []core.FraudSummary) Chart {
	return pie(summary, func(s core.FraudSummary) float64 { return float64(s.Count) })
}

// FraudValuePie plots the summed value per fraud partition.
func FraudValuePie(summary []core.FraudSummary) Chart {
	return pie(summary, func(s core.FraudSummary) float64 { return s.Value.InexactFloat64() })
}

func pie(summary []core.FraudSummary, metric func(core.FraudSummary) float64) Chart {
	spec := &PieSpec{
		Slices: make([]PieSlice, 0, len(summary)),
		Colors: append([]string(nil), Palette...),
	}
	for _, s := range summary {
		spec.Slices = append(spec.Slices, PieSlice{Label: s.Label, Value: metric(s)})
	}
	return Chart{Kind: KindPie, Pie: spec}
}

// ByProduct counts fraud rows per product category in first-seen order.
func ByProduct(rows []aggregate.DayRecord) Chart {
	return bars(rows, LabelProduct, func(r aggregate.DayRecord) string { return r.ProductCategory })
}

// ByWeekday counts rows per weekday name. rows should already be sorted by
// weekday so categories come out Monday first.
func ByWeekday(rows []aggregate.DayRecord) Chart {
	return bars(rows, LabelWeekday, func(r aggregate.DayRecord) string { return r.Day })
}

// ByHour counts rows per hour of day. rows should already be sorted by hour.
func ByHour(rows []aggregate.DayRecord) Chart {
	return bars(rows, LabelHour, func(r aggregate.DayRecord) string { return strconv.Itoa(r.Hour) })
}

func bars(rows []aggregate.DayRecord, xLabel string, category func(aggregate.DayRecord) string) Chart {
	spec := &BarSpec{
		Bars:        []Bar{},
		XLabel:      xLabel,
		YLabel:      LabelFraudCount,
		ColorField:  LabelValue,
		HoverFields: []string{"ProductId", "ChannelId"},
		Height:      barHeight,
	}
	index := make(map[string]int)
	for _, r := range rows {
		key := category(r)
		i, ok := index[key]
		if !ok {
			i = len(spec.Bars)
			index[key] = i
			spec.Bars = append(spec.Bars, Bar{Category: key, Points: []BarPoint{}})
		}
		b := &spec.Bars[i]
		b.Count++
		b.Points = append(b.Points, BarPoint{
			Value:     r.Value.InexactFloat64(),
			ProductID: r.ProductID,
			ChannelID: r.ChannelID,
		})
	}
	return Chart{Kind: KindBar, Bar: spec}
}

// CustomerHistory plots value against the running fraud count, sized by
// value and coloured by fraud-history category.
func CustomerHistory(points []aggregate.HistoryPoint) Chart {
	spec := &ScatterSpec{
		Points:       make([]ScatterPoint, 0, len(points)),
		XLabel:       LabelValue,
		YLabel:       LabelFraudTotal,
		ColorLabel:   LabelFraudHistory,
		SizeField:    LabelValue,
		GroupField:   "CustomerId",
		HoverFields:  []string{"ProductCategory", "ChannelId"},
		TransitionMs: scatterFrameMs,
	}
	for _, p := range points {
		v := p.Value.InexactFloat64()
		spec.Points = append(spec.Points, ScatterPoint{
			X:               v,
			Y:               p.FraudTotal,
			Size:            v,
			Color:           p.FraudHistory,
			Group:           p.CustomerID,
			ProductCategory: p.ProductCategory,
			ChannelID:       p.ChannelID,
		})
	}
	return Chart{Kind: KindScatter, Scatter: spec}
}
