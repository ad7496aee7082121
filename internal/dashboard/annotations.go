package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"fraudbusters/internal/charts"
	"fraudbusters/internal/core"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// annotate derives a note for slot from its data. ok is false when the data
// cannot support a statement, and the slot's static note is used instead.
func annotate(id SlotID, summary []core.FraudSummary, chart charts.Chart) (note string, ok bool) {
	switch id {
	case SlotFraudCount:
		fraud, non, found := partitions(summary)
		total := fraud.Count + non.Count
		if !found || total == 0 {
			return "", false
		}
		share := decimal.NewFromInt(int64(fraud.Count)).Div(decimal.NewFromInt(int64(total))).Mul(hundred)
		return fmt.Sprintf("Only ~%s%% of all transactions are fraud.", share.Round(1).String()), true

	case SlotFraudValue:
		fraud, non, found := partitions(summary)
		total := fraud.Value.Add(non.Value)
		if !found || !total.IsPositive() {
			return "", false
		}
		share := fraud.Value.Div(total).Mul(hundred)
		return fmt.Sprintf("Fraudulent transactions account for ~%s%% of the overall transaction value.", share.Round(0).String()), true

	case SlotFraudByProduct:
		top, found := topBar(chart)
		if !found {
			return "", false
		}
		return fmt.Sprintf("Most fraudulent transactions refer to %s.", humanize(top.Category)), true

	case SlotFraudByWeekday:
		top, found := topBar(chart)
		if !found {
			return "", false
		}
		return fmt.Sprintf("Weekday with highest number of fraudulent transactions: %s.", top.Category), true

	case SlotFraudByHour:
		top, found := topBar(chart)
		if !found {
			return "", false
		}
		hour, err := strconv.Atoi(top.Category)
		if err != nil {
			return "", false
		}
		return fmt.Sprintf("Peak of fraudulent transactions: %s.", clock(hour)), true
	}
	return "", false
}

func partitions(summary []core.FraudSummary) (fraud, non core.FraudSummary, ok bool) {
	var seenFraud, seenNon bool
	for _, s := range summary {
		switch s.Flag {
		case core.Fraud:
			fraud, seenFraud = s, true
		case core.NonFraud:
			non, seenNon = s, true
		}
	}
	return fraud, non, seenFraud && seenNon
}

// topBar returns the tallest bar; the earliest one wins a tie.
func topBar(chart charts.Chart) (charts.Bar, bool) {
	if chart.Bar == nil || len(chart.Bar.Bars) == 0 {
		return charts.Bar{}, false
	}
	top := chart.Bar.Bars[0]
	for _, b := range chart.Bar.Bars[1:] {
		if b.Count > top.Count {
			top = b
		}
	}
	return top, true
}

// humanize turns "financial_services" into "Financial Services".
func humanize(category string) string {
	words := strings.Fields(strings.ReplaceAll(category, "_", " "))
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + w[size:]
	}
	return strings.Join(words, " ")
}

// clock formats an hour of day as 12:00am, 1:00pm and so on.
func clock(hour int) string {
	suffix := "am"
	if hour >= 12 {
		suffix = "pm"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:00%s", h, suffix)
}
