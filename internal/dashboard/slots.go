package dashboard

import "fraudbusters/internal/charts"

// SlotID identifies one chart position on the page.
type SlotID string

const (
	SlotFraudCount      SlotID = "fraud-count"
	SlotFraudValue      SlotID = "fraud-value"
	SlotFraudByProduct  SlotID = "fraud-by-product"
	SlotFraudByWeekday  SlotID = "fraud-by-weekday"
	SlotFraudByHour     SlotID = "fraud-by-hour"
	SlotCustomerHistory SlotID = "customer-history"
)

// Slot is the static configuration of a chart position. Row and Width place
// it on a twelve-column grid.
type Slot struct {
	ID         SlotID      `json:"id"`
	Title      string      `json:"title"`
	Annotation string      `json:"-"`
	Kind       charts.Kind `json:"kind"`
	Row        int         `json:"row"`
	Width      int         `json:"width"`
}

var slots = []Slot{
	{
		ID:         SlotFraudCount,
		Title:      "Fraudulent vs. non-fraudulent transactions - count",
		Annotation: "Only ~0.2% of all transactions are fraud.",
		Kind:       charts.KindPie,
		Row:        0,
		Width:      5,
	},
	{
		ID:         SlotFraudValue,
		Title:      "Fraudulent vs. non-fraudulent transactions - value",
		Annotation: "Fraudulent transactions account for ~32% of the overall transaction value.",
		Kind:       charts.KindPie,
		Row:        0,
		Width:      7,
	},
	{
		ID:         SlotFraudByProduct,
		Title:      "Fraudulent transactions by product category",
		Annotation: "Most fraudulent transactions refer to Financial Services.",
		Kind:       charts.KindBar,
		Row:        1,
		Width:      6,
	},
	{
		ID:         SlotFraudByWeekday,
		Title:      "Fraudulent transactions by weekday (count)",
		Annotation: "Weekday with highest number of fraudulent transactions: Thursday.",
		Kind:       charts.KindBar,
		Row:        1,
		Width:      6,
	},
	{
		ID:         SlotFraudByHour,
		Title:      "Fraudulent transactions by hour (count)",
		Annotation: "Peak of fraudulent transactions: 12:00am.",
		Kind:       charts.KindBar,
		Row:        2,
		Width:      6,
	},
	{
		ID:         SlotCustomerHistory,
		Title:      "Values of transactions by customer history",
		Annotation: "Larger markers are higher-value transactions; colour shows the customer's fraud history.",
		Kind:       charts.KindScatter,
		Row:        2,
		Width:      6,
	},
}

// Slots returns the page's chart positions in display order.
func Slots() []Slot {
	out := make([]Slot, len(slots))
	copy(out, slots)
	return out
}
