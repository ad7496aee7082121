package dashboard

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fraudbusters/internal/charts"
	"fraudbusters/internal/core"
	"fraudbusters/internal/source/csvfile"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	recs        []core.TransactionRecord
	history     []core.CustomerHistoryPoint
	txErr       error
	historyErr  error
	historyRead bool
}

func (f *fakeReader) ReadTransactions(context.Context) ([]core.TransactionRecord, error) {
	return f.recs, f.txErr
}

func (f *fakeReader) ReadCustomerHistory(context.Context) ([]core.CustomerHistoryPoint, error) {
	f.historyRead = true
	return f.history, f.historyErr
}

func tx(customer string, value int64, flag core.FraudFlag, weekday, hour int, category string) core.TransactionRecord {
	return core.TransactionRecord{
		CustomerID:      customer,
		Value:           decimal.NewFromInt(value),
		FraudResult:     flag,
		Weekday:         weekday,
		Hour:            hour,
		ProductCategory: category,
		ChannelID:       "ChannelId_3",
		ProductID:       "ProductId_1",
	}
}

func scenario() *fakeReader {
	return &fakeReader{
		recs: []core.TransactionRecord{
			tx("C1", 100, core.NonFraud, 0, 9, "airtime"),
			tx("C2", 50, core.NonFraud, 2, 14, "airtime"),
			tx("C3", 200, core.Fraud, 3, 0, "financial_services"),
		},
		history: []core.CustomerHistoryPoint{
			{Value: decimal.NewFromInt(200), FraudTotal: 1, FraudHistory: "first", CustomerID: "C3", ProductCategory: "financial_services", ChannelID: "ChannelId_3"},
		},
	}
}

func TestBuildScenario(t *testing.T) {
	data, err := Build(context.Background(), scenario(), scenario())
	require.NoError(t, err)

	assert.Equal(t, 3, data.Transactions)
	assert.Equal(t, 1, data.CustomerHistory)
	require.Len(t, data.Panels, 6)

	var ids []SlotID
	for _, p := range data.Panels {
		ids = append(ids, p.ID)
		assert.Equal(t, p.Kind, p.Chart.Kind, "slot %s", p.ID)
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.Annotation)
	}
	assert.Equal(t, []SlotID{SlotFraudCount, SlotFraudValue, SlotFraudByProduct, SlotFraudByWeekday, SlotFraudByHour, SlotCustomerHistory}, ids)

	count, ok := data.Panel(SlotFraudCount)
	require.True(t, ok)
	assert.Equal(t, []charts.PieSlice{{Label: "non", Value: 2}, {Label: "fraud", Value: 1}}, count.Chart.Pie.Slices)

	weekday, _ := data.Panel(SlotFraudByWeekday)
	require.Len(t, weekday.Chart.Bar.Bars, 1)
	assert.Equal(t, "Thursday", weekday.Chart.Bar.Bars[0].Category)
	assert.Equal(t, 1, weekday.Chart.Bar.Bars[0].Count)

	hour, _ := data.Panel(SlotFraudByHour)
	require.Len(t, hour.Chart.Bar.Bars, 1)
	assert.Equal(t, 1, hour.Chart.Bar.Bars[0].Count)

	fraud := data.Partition(core.Fraud)
	assert.Equal(t, 1, fraud.Count)
	assert.True(t, fraud.Value.Equal(decimal.NewFromInt(200)))
}

func TestComputedAnnotations(t *testing.T) {
	data, err := FromTables(scenario().recs, nil, time.Now())
	require.NoError(t, err)

	want := map[SlotID]string{
		SlotFraudCount:      "Only ~33.3% of all transactions are fraud.",
		SlotFraudValue:      "Fraudulent transactions account for ~57% of the overall transaction value.",
		SlotFraudByProduct:  "Most fraudulent transactions refer to Financial Services.",
		SlotFraudByWeekday:  "Weekday with highest number of fraudulent transactions: Thursday.",
		SlotFraudByHour:     "Peak of fraudulent transactions: 12:00am.",
		SlotCustomerHistory: "Larger markers are higher-value transactions; colour shows the customer's fraud history.",
	}
	for id, note := range want {
		p, ok := data.Panel(id)
		require.True(t, ok)
		assert.Equal(t, note, p.Annotation, "slot %s", id)
	}

	history, _ := data.Panel(SlotCustomerHistory)
	assert.False(t, history.Computed)
}

func TestEmptyTablesRenderEmptyPanels(t *testing.T) {
	data, err := Build(context.Background(), &fakeReader{}, &fakeReader{})
	require.NoError(t, err)

	require.Len(t, data.Panels, 6)
	for _, p := range data.Panels {
		assert.True(t, p.Chart.Empty(), "slot %s", p.ID)
		assert.False(t, p.Computed, "slot %s", p.ID)
	}
	assert.Equal(t, 0, data.Partition(core.Fraud).Count)
}

func TestBuildStopsOnLoadFailure(t *testing.T) {
	dir := t.TempDir()
	store := csvfile.New(filepath.Join(dir, "missing.csv"), filepath.Join(dir, "missing_history.csv"))

	data, err := Build(context.Background(), store, store)
	assert.Nil(t, data)
	assert.ErrorIs(t, err, core.ErrDataUnavailable)

	reader := &fakeReader{txErr: errors.New("boom")}
	_, err = Build(context.Background(), reader, reader)
	require.Error(t, err)
	assert.False(t, reader.historyRead, "history must not be read after a transactions failure")
}

func TestBuildRejectsInvalidWeekday(t *testing.T) {
	reader := &fakeReader{recs: []core.TransactionRecord{tx("C1", 1, core.Fraud, 9, 1, "airtime")}}
	_, err := Build(context.Background(), reader, reader)
	assert.ErrorIs(t, err, core.ErrInvalidRecord)
}

func TestRowsFollowLayout(t *testing.T) {
	data, err := FromTables(nil, nil, time.Now())
	require.NoError(t, err)

	rows := data.Rows()
	require.Len(t, rows, 3)
	for i, row := range rows {
		require.Len(t, row, 2, "row %d", i)
		assert.Equal(t, 12, row[0].Width+row[1].Width, "row %d", i)
	}
	assert.Equal(t, 5, rows[0][0].Width)

	_, ok := data.Panel("unknown")
	assert.False(t, ok)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "Financial Services", humanize("financial_services"))
	assert.Equal(t, "Airtime", humanize("airtime"))
	assert.Equal(t, "Épargne Retraite", humanize("épargne_retraite"))
	assert.Equal(t, "12:00am", clock(0))
	assert.Equal(t, "12:00pm", clock(12))
	assert.Equal(t, "5:00pm", clock(17))
}
