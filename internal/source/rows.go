package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fraudbusters/internal/core"

	"github.com/shopspring/decimal"
)

// Column names of the primary table.
const (
	ColCustomerID      = "CustomerId"
	ColValue           = "Value"
	ColFraudResult     = "FraudResult"
	ColWeekday         = "weekday"
	ColHour            = "hour"
	ColProductCategory = "ProductCategory"
	ColChannelID       = "ChannelId"
	ColProductID       = "ProductId"
)

// Column names of the customer history table that are not shared with the primary one.
const (
	ColFraudTotal   = "fraud_total"
	ColFraudHistory = "fraud_history"
)

var (
	TransactionColumns = []string{
		ColCustomerID, ColValue, ColFraudResult, ColWeekday,
		ColHour, ColProductCategory, ColChannelID, ColProductID,
	}
	HistoryColumns = []string{
		ColValue, ColFraudTotal, ColFraudHistory,
		ColCustomerID, ColProductCategory, ColChannelID,
	}
)

// table resolves named columns of a header row. The unnamed leading index
// column written by dataframe exports never matches a domain column, so it is
// dropped implicitly.
type table struct {
	name    string
	columns map[string]int
	width   int
}

func newTable(name string, header []string, required []string) (*table, error) {
	t := &table{name: name, columns: make(map[string]int, len(header)), width: len(header)}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" || strings.HasPrefix(h, "Unnamed:") {
			continue
		}
		if _, dup := t.columns[h]; !dup {
			t.columns[h] = i
		}
	}
	var missing []string
	for _, col := range required {
		if _, ok := t.columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: missing columns %s; got headers=%v",
			core.ErrDataUnavailable, name, strings.Join(missing, ","), header)
	}
	return t, nil
}

type rowReader struct {
	t    *table
	row  []string
	line int
	err  error
}

func (t *table) row(line int, row []string) (*rowReader, error) {
	if len(row) != t.width {
		return nil, fmt.Errorf("%w: %s row %d: expected %d fields, got %d",
			core.ErrDataUnavailable, t.name, line, t.width, len(row))
	}
	return &rowReader{t: t, row: row, line: line}, nil
}

func (r *rowReader) str(col string) string {
	return strings.TrimSpace(r.row[r.t.columns[col]])
}

func (r *rowReader) fail(col, raw string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s row %d: column %s value %q: %v",
			core.ErrDataUnavailable, r.t.name, r.line, col, raw, err)
	}
}

func (r *rowReader) decimal(col string) decimal.Decimal {
	raw := r.str(col)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		r.fail(col, raw, err)
	}
	return d
}

// integer accepts plain integers and integral floats such as "3.0".
func (r *rowReader) integer(col string) int {
	raw := r.str(col)
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.fail(col, raw, err)
		return 0
	}
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		r.fail(col, raw, fmt.Errorf("not an integer"))
		return 0
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		r.fail(col, raw, fmt.Errorf("out of range"))
		return 0
	}
	return int(f)
}

// DecodeTransactions converts a header and data rows into validated records.
// Rows keep their input order. firstLine is the 1-based line number of rows[0]
// and only shapes error messages.
func DecodeTransactions(name string, header []string, rows [][]string, firstLine int) ([]core.TransactionRecord, error) {
	t, err := newTable(name, header, TransactionColumns)
	if err != nil {
		return nil, err
	}
	out := make([]core.TransactionRecord, 0, len(rows))
	for i, raw := range rows {
		r, err := t.row(firstLine+i, raw)
		if err != nil {
			return nil, err
		}
		rec := core.TransactionRecord{
			CustomerID:      r.str(ColCustomerID),
			Value:           r.decimal(ColValue),
			FraudResult:     core.FraudFlag(r.integer(ColFraudResult)),
			Weekday:         r.integer(ColWeekday),
			Hour:            r.integer(ColHour),
			ProductCategory: r.str(ColProductCategory),
			ChannelID:       r.str(ColChannelID),
			ProductID:       r.str(ColProductID),
		}
		if r.err != nil {
			return nil, r.err
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", name, r.line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// DecodeCustomerHistory converts a header and data rows into validated history points.
func DecodeCustomerHistory(name string, header []string, rows [][]string, firstLine int) ([]core.CustomerHistoryPoint, error) {
	t, err := newTable(name, header, HistoryColumns)
	if err != nil {
		return nil, err
	}
	out := make([]core.CustomerHistoryPoint, 0, len(rows))
	for i, raw := range rows {
		r, err := t.row(firstLine+i, raw)
		if err != nil {
			return nil, err
		}
		p := core.CustomerHistoryPoint{
			Value:           r.decimal(ColValue),
			FraudTotal:      r.integer(ColFraudTotal),
			FraudHistory:    r.str(ColFraudHistory),
			CustomerID:      r.str(ColCustomerID),
			ProductCategory: r.str(ColProductCategory),
			ChannelID:       r.str(ColChannelID),
		}
		if r.err != nil {
			return nil, r.err
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", name, r.line, err)
		}
		out = append(out, p)
	}
	return out, nil
}
