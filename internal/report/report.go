// Package report projects a ledger into totals, a monthly series and budget
// views. Every function is pure and reads only its argument.
package report

import (
	"slices"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Summary holds lifetime totals.
type Summary struct {
	Income   core.Money
	Expenses core.Money
	// Net is Income minus Expenses and may be negative.
	Net core.Money
}

// MonthlyPoint is one calendar month of activity.
type MonthlyPoint struct {
	Period   core.Month
	Income   core.Money
	Expenses core.Money
}

type Overage struct {
	Category string
	Limit    core.Money
	Spent    core.Money
	Over     core.Money
}

type Usage struct {
	Budget core.Budget
	// Percent is spent/limit*100 rounded to one decimal. A zero limit
	// reports 0 with nothing spent and 100 otherwise.
	Percent   decimal.Decimal
	Remaining core.Money
	Over      bool
}

type CategoryTotal struct {
	Category string
	Total    core.Money
	Count    int
}

func zero() core.Money { return core.MoneyFromInt(0) }

// Totals sums income and expenses over the whole log.
func Totals(l core.Ledger) Summary {
	t := Summary{Income: zero(), Expenses: zero()}
	for _, tx := range l.Transactions {
		switch tx.Kind {
		case core.Income:
			t.Income = t.Income.Add(tx.Amount)
		case core.Expense:
			t.Expenses = t.Expenses.Add(tx.Amount)
		}
	}
	t.Net = t.Income.Sub(t.Expenses)
	return t
}

// MonthlySeries groups transactions by the (year, month) of their date.
// Months without transactions are absent; the rest are in calendar order.
func MonthlySeries(l core.Ledger) []MonthlyPoint {
	byMonth := make(map[core.Month]*MonthlyPoint)
	for _, tx := range l.Transactions {
		period := tx.OccurredOn.Period()
		p, ok := byMonth[period]
		if !ok {
			p = &MonthlyPoint{Period: period, Income: zero(), Expenses: zero()}
			byMonth[period] = p
		}
		switch tx.Kind {
		case core.Income:
			p.Income = p.Income.Add(tx.Amount)
		case core.Expense:
			p.Expenses = p.Expenses.Add(tx.Amount)
		}
	}

	series := make([]MonthlyPoint, 0, len(byMonth))
	for _, p := range byMonth {
		series = append(series, *p)
	}
	slices.SortFunc(series, func(a, b MonthlyPoint) int {
		switch {
		case a.Period.Before(b.Period):
			return -1
		case b.Period.Before(a.Period):
			return 1
		}
		return 0
	})
	return series
}

// OverBudget lists budgets whose spending exceeds the limit, in budget order.
func OverBudget(l core.Ledger) []Overage {
	var out []Overage
	for _, b := range l.Budgets {
		if !b.Over() {
			continue
		}
		out = append(out, Overage{
			Category: b.Category,
			Limit:    b.Limit,
			Spent:    b.Spent,
			Over:     b.Overage(),
		})
	}
	return out
}

var hundred = decimal.NewFromInt(100)

// BudgetUsage reports how much of each budget is used, in budget order.
func BudgetUsage(l core.Ledger) []Usage {
	out := make([]Usage, 0, len(l.Budgets))
	for _, b := range l.Budgets {
		u := Usage{Budget: b, Over: b.Over(), Remaining: zero()}
		switch {
		case b.Limit.IsZero() && b.Spent.IsZero():
			u.Percent = decimal.Zero
		case b.Limit.IsZero():
			u.Percent = hundred
		default:
			u.Percent = b.Spent.Decimal.Mul(hundred).DivRound(b.Limit.Decimal, 1)
		}
		if b.Limit.GreaterThan(b.Spent) {
			u.Remaining = b.Limit.Sub(b.Spent)
		}
		out = append(out, u)
	}
	return out
}

// CategoryBreakdown totals transactions of kind per category, largest
// first. Equal totals keep the order in which the category first appears.
func CategoryBreakdown(l core.Ledger, kind core.Kind) []CategoryTotal {
	var out []CategoryTotal
	index := make(map[string]int)
	for _, tx := range l.Transactions {
		if tx.Kind != kind {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, CategoryTotal{Category: tx.Category, Total: zero()})
		}
		out[i].Total = out[i].Total.Add(tx.Amount)
		out[i].Count++
	}
	slices.SortStableFunc(out, func(a, b CategoryTotal) int {
		return b.Total.Cmp(a.Total.Decimal)
	})
	return out
}
