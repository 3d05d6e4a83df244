package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

func addCommand(s *settings) *cobra.Command {
	var kind, amount, category, description, date string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := s.app
			if _, err := a.active(); err != nil {
				return err
			}

			in, err := parseInput(kind, amount, category, description, date)
			if err != nil {
				return err
			}
			t, err := a.engine.AddTransaction(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.view.success("Recorded %s #%s: %s %s", t.Kind, t.ID, t.Category, a.view.amount(t.Amount))
			if b, ok := a.engine.Ledger().Budget(t.Category); ok && t.IsExpense() && b.Over() {
				a.view.warning("%s is over budget by %s", b.Category, boldRed(a.view.amount(b.Overage())))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(core.Expense), "income or expense")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount, e.g. 12.34 or 12,34")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD (default: today)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func parseInput(kind, amount, category, description, date string) (core.TransactionInput, error) {
	k, err := core.ParseKind(kind)
	if err != nil {
		return core.TransactionInput{}, err
	}
	m, err := core.ParseMoney(amount)
	if err != nil {
		return core.TransactionInput{}, err
	}
	d := core.Today()
	if date != "" {
		if d, err = core.ParseDate(date); err != nil {
			return core.TransactionInput{}, err
		}
	}
	return core.TransactionInput{
		Kind:        k,
		Amount:      m,
		Category:    category,
		Description: description,
		OccurredOn:  d,
	}, nil
}

func deleteCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			if _, err := a.active(); err != nil {
				return err
			}
			id := strings.TrimPrefix(args[0], "#")
			if _, ok := a.engine.Ledger().Transaction(id); !ok {
				a.view.info("No transaction #%s", id)
				return nil
			}
			if err := a.engine.DeleteTransaction(cmd.Context(), id); err != nil {
				return err
			}
			a.view.success("Deleted transaction #%s", id)
			return nil
		},
	}
}

func listCommand(s *settings) *cobra.Command {
	var month, kind string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := s.app
			if _, err := a.active(); err != nil {
				return err
			}
			filter, err := newTxFilter(month, kind)
			if err != nil {
				return err
			}
			var out []core.Transaction
			for _, t := range a.engine.Transactions() {
				if filter(t) {
					out = append(out, t)
				}
			}
			if limit > 0 && len(out) > limit {
				out = out[:limit]
			}
			return a.view.transactions(out)
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "Only this month, as YYYY-MM")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Only income or expense")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most n transactions")
	return cmd
}

func newTxFilter(month, kind string) (func(core.Transaction) bool, error) {
	var (
		period   core.Month
		byPeriod bool
		k        core.Kind
		byKind   bool
	)
	if month != "" {
		p, err := core.ParseMonth(month)
		if err != nil {
			return nil, err
		}
		period, byPeriod = p, true
	}
	if kind != "" {
		parsed, err := core.ParseKind(kind)
		if err != nil {
			return nil, err
		}
		k, byKind = parsed, true
	}
	return func(t core.Transaction) bool {
		if byPeriod && t.OccurredOn.Period() != period {
			return false
		}
		if byKind && t.Kind != k {
			return false
		}
		return true
	}, nil
}

func budgetsCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "budgets",
		Short: "Show budgets and how much of each is used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := s.app
			if _, err := a.active(); err != nil {
				return err
			}
			return a.view.budgets(report.BudgetUsage(a.engine.Ledger()))
		},
	}
}

func budgetSetCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <limit>",
		Short: "Create a budget or change its limit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := s.app
			if _, err := a.active(); err != nil {
				return err
			}
			limit, err := parseLimit(args[1])
			if err != nil {
				return err
			}
			b, err := a.engine.UpsertBudget(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			a.view.success("Budget %s set to %s (spent %s)", b.Category, a.view.amount(b.Limit), a.view.amount(b.Spent))
			return nil
		},
	}
}

// parseLimit accepts zero, unlike transaction amounts.
func parseLimit(s string) (core.Money, error) {
	if strings.Trim(strings.TrimSpace(s), "0.,") == "" && strings.TrimSpace(s) != "" {
		return core.MoneyFromInt(0), nil
	}
	m, err := core.ParseMoney(s)
	if err != nil {
		return core.Money{}, fmt.Errorf("limit %q: %w", s, err)
	}
	return m, nil
}
