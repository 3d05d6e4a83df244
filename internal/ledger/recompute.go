package ledger

import "fintrack/internal/core"

// Recompute returns budgets with every Spent rebuilt from transactions: the
// sum of Expense amounts whose category equals the budget's. Income and
// transactions in categories without a budget contribute nothing.
//
// It never reads the incoming Spent values, so calling it again on its own
// output yields the same result.
func Recompute(budgets []core.Budget, transactions []core.Transaction) []core.Budget {
	if budgets == nil {
		return nil
	}
	out := make([]core.Budget, len(budgets))
	for i, b := range budgets {
		spent := core.MoneyFromInt(0)
		for _, t := range transactions {
			if t.IsExpense() && t.Category == b.Category {
				spent = spent.Add(t.Amount)
			}
		}
		b.Spent = spent
		out[i] = b
	}
	return out
}
