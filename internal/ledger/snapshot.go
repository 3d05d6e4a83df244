package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// newLedger is the state of an identity that has never saved anything.
func newLedger() core.Ledger {
	return core.Ledger{
		Transactions: []core.Transaction{},
		Budgets:      Recompute(core.StarterBudgets(), nil),
	}
}

func encodeSnapshot(l core.Ledger) ([]byte, error) {
	if l.Transactions == nil {
		l.Transactions = []core.Transaction{}
	}
	if l.Budgets == nil {
		l.Budgets = []core.Budget{}
	}
	return json.Marshal(l)
}

// decodeSnapshot parses a stored ledger and repairs what a hand edit could
// break: missing slices, a sequence behind the highest numeric id, and
// repeated budget categories (the first wins).
func decodeSnapshot(key string, raw []byte) (core.Ledger, error) {
	var l core.Ledger
	if err := json.Unmarshal(raw, &l); err != nil {
		return core.Ledger{}, store.Wrap("decode", key, fmt.Errorf("%w: %w", store.ErrCorrupt, err))
	}
	if l.Transactions == nil {
		l.Transactions = []core.Transaction{}
	}

	for _, t := range l.Transactions {
		if n, err := strconv.ParseInt(t.ID, 10, 64); err == nil && n > l.Sequence {
			l.Sequence = n
		}
	}

	seen := make(map[string]bool, len(l.Budgets))
	budgets := make([]core.Budget, 0, len(l.Budgets))
	for _, b := range l.Budgets {
		if seen[b.Category] {
			continue
		}
		seen[b.Category] = true
		budgets = append(budgets, b)
	}
	l.Budgets = Recompute(budgets, l.Transactions)
	return l, nil
}
