// Package events publishes ledger changes to an AMQP exchange and consumes
// them back. The feed is informational: nothing in the ledger depends on a
// message being delivered.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

type Type string

const (
	TransactionAdded   Type = "transaction.added"
	TransactionDeleted Type = "transaction.deleted"
	BudgetUpserted     Type = "budget.upserted"
)

// Event describes one committed ledger mutation. Amount is the transaction
// amount, or the new limit for budget events, with two decimals.
type Event struct {
	Type          Type      `json:"type"`
	IdentityID    string    `json:"identityId"`
	TransactionID string    `json:"transactionId,omitempty"`
	Category      string    `json:"category,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Kind          string    `json:"kind,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func (t Type) Valid() bool {
	switch t {
	case TransactionAdded, TransactionDeleted, BudgetUpserted:
		return true
	}
	return false
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes an event and rejects unknown types.
func FromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	if !e.Type.Valid() {
		return Event{}, fmt.Errorf("unknown event type %q", e.Type)
	}
	return e, nil
}
