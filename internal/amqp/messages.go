package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SnapshotMessage announces a freshly built dashboard. Values are decimal
// strings so consumers keep exact sums.
type SnapshotMessage struct {
	ID              string          `json:"id"`
	BuiltAt         time.Time       `json:"built_at"`
	Transactions    int             `json:"transactions"`
	CustomerHistory int             `json:"customer_history"`
	FraudCount      int             `json:"fraud_count"`
	FraudValue      decimal.Decimal `json:"fraud_value"`
	NonFraudCount   int             `json:"non_fraud_count"`
	NonFraudValue   decimal.Decimal `json:"non_fraud_value"`
}

// Snapshot carries the figures published for one dashboard build.
type Snapshot struct {
	BuiltAt         time.Time
	Transactions    int
	CustomerHistory int
	FraudCount      int
	FraudValue      decimal.Decimal
	NonFraudCount   int
	NonFraudValue   decimal.Decimal
}

// NewSnapshotMessage stamps s with a fresh message id.
func NewSnapshotMessage(s Snapshot) *SnapshotMessage {
	return &SnapshotMessage{
		ID:              uuid.NewString(),
		BuiltAt:         s.BuiltAt.UTC(),
		Transactions:    s.Transactions,
		CustomerHistory: s.CustomerHistory,
		FraudCount:      s.FraudCount,
		FraudValue:      s.FraudValue,
		NonFraudCount:   s.NonFraudCount,
		NonFraudValue:   s.NonFraudValue,
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotMessageFromJSON creates a message from JSON bytes
func SnapshotMessageFromJSON(data []byte) (*SnapshotMessage, error) {
	var msg SnapshotMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
