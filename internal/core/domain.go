package core

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	NonFraud FraudFlag = 0
	Fraud    FraudFlag = 1
)

type (
	// FraudFlag is the binary FraudResult column (1 = fraudulent).
	FraudFlag int

	// TransactionRecord is one row of the primary dataset.
	TransactionRecord struct {
		CustomerID      string          `validate:"required"`
		Value           decimal.Decimal
		FraudResult     FraudFlag       `validate:"oneof=0 1"`
		Weekday         int             `validate:"min=0,max=6"`
		Hour            int             `validate:"min=0,max=23"`
		ProductCategory string          `validate:"required"`
		ChannelID       string          `validate:"required"`
		ProductID       string          `validate:"required"`
	}

	// CustomerHistoryPoint is one row of the precomputed customer history table.
	// FraudTotal is the running count of fraudulent transactions for the customer.
	CustomerHistoryPoint struct {
		Value           decimal.Decimal
		FraudTotal      int    `validate:"min=0"`
		FraudHistory    string `validate:"required"`
		CustomerID      string `validate:"required"`
		ProductCategory string `validate:"required"`
		ChannelID       string `validate:"required"`
	}
)

var (
	// ErrDataUnavailable marks a table that is missing, unreadable or not tabular.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInvalidRecord marks a row that violates a domain invariant.
	ErrInvalidRecord = errors.New("invalid record")
)

var validate = validator.New()

// IsFraud reports whether the record is flagged as fraudulent.
func (t TransactionRecord) IsFraud() bool {
	return t.FraudResult == Fraud
}

func (t TransactionRecord) Validate() error {
	if err := validate.Struct(t); err != nil {
		return invalidRecord(err)
	}
	return nil
}

func (p CustomerHistoryPoint) Validate() error {
	if err := validate.Struct(p); err != nil {
		return invalidRecord(err)
	}
	return nil
}

// invalidRecord flattens validator output into an ErrInvalidRecord.
func invalidRecord(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: field %s failed %q (value %v)", ErrInvalidRecord, fe.Field(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
}
