package amqp

import (
	"encoding/json"
	"time"

	"financeiro/internal/core"
)

// TransactionRecordedMessage announces a transaction that was durably
// appended to the ledger. Position is its zero-based index in the sequence.
type TransactionRecordedMessage struct {
	Date        string    `json:"date"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	Kind        string    `json:"kind"`
	Position    int       `json:"position"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewTransactionRecordedMessage(t core.Transaction, position int) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		Date:        t.Date.String(),
		Description: t.Description,
		AmountCents: t.Amount.Cents,
		Category:    string(t.Category),
		Kind:        string(t.Kind),
		Position:    position,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Transaction rebuilds the recorded transaction.
func (m *TransactionRecordedMessage) Transaction() (core.Transaction, error) {
	d, err := core.ParseDate(m.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	c, err := core.ParseCategory(m.Category)
	if err != nil {
		return core.Transaction{}, err
	}
	k, err := core.ParseKind(m.Kind)
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{Date: d, Description: m.Description, Amount: core.Money{Cents: m.AmountCents}, Category: c, Kind: k}
	return t, t.Validate()
}

// TransactionRecordedMessageFromJSON creates a message from JSON bytes
func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
