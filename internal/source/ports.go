package source

import (
	"context"

	"fraudbusters/internal/core"
)

// Ports for the loader backends.
type (
	// TransactionReader loads the primary transactions table in storage order.
	TransactionReader interface {
		ReadTransactions(ctx context.Context) ([]core.TransactionRecord, error)
	}

	// HistoryReader loads the precomputed customer history table in storage order.
	HistoryReader interface {
		ReadCustomerHistory(ctx context.Context) ([]core.CustomerHistoryPoint, error)
	}

	// Reader provides both tables.
	Reader interface {
		TransactionReader
		HistoryReader
	}
)
