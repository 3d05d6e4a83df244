package cli

import (
	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

func summaryCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show lifetime totals and budgets over their limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := s.app
			if _, err := a.active(); err != nil {
				return err
			}
			l := a.engine.Ledger()
			return a.view.summary(report.Totals(l), report.OverBudget(l))
		},
	}
}

func monthlyCommand(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "monthly",
		Short: "Show income and expenses per month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := s.app
			if _, err := a.active(); err != nil {
				return err
			}
			return a.view.monthly(report.MonthlySeries(a.engine.Ledger()))
		},
	}
}

func categoriesCommand(s *settings) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Show totals per category alongside the suggested categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := s.app
			if _, err := a.active(); err != nil {
				return err
			}
			k, err := core.ParseKind(kind)
			if err != nil {
				return err
			}
			return a.view.categories(k, report.CategoryBreakdown(a.engine.Ledger(), k))
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(core.Expense), "income or expense")
	return cmd
}
