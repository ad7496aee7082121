package core

import "github.com/shopspring/decimal"

// FraudSummary aggregates transactions sharing one fraud flag.
type FraudSummary struct {
	Flag  FraudFlag
	Label string
	Count int
	Value decimal.Decimal
}

// FraudLabel returns the display label for a fraud flag.
func FraudLabel(flag FraudFlag) string {
	if flag == Fraud {
		return "fraud"
	}
	return "non"
}
