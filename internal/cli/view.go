package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/report"
)

var (
	boldRed   = color.New(color.FgRed, color.Bold).SprintFunc()
	green     = color.New(color.FgGreen).SprintFunc()
	boldGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
)

const barWidth = 20

// view renders command output. Amounts use the display currency's symbol
// and grouping; the ledger itself has no currency.
type view struct {
	out      io.Writer
	currency *money.Currency
}

func newView(out io.Writer, code string) *view {
	cur := money.GetCurrency(code)
	if cur == nil {
		cur = money.GetCurrency(money.USD)
	}
	return &view{out: out, currency: cur}
}

func (v *view) amount(m core.Money) string {
	minor := m.Decimal.Shift(int32(v.currency.Fraction)).Round(0).IntPart()
	return v.currency.Formatter().Format(minor)
}

func (v *view) signed(m core.Money) string {
	switch {
	case m.IsNegative():
		return boldRed(v.amount(m))
	case m.IsPositive():
		return boldGreen(v.amount(m))
	}
	return v.amount(m)
}

func (v *view) success(format string, a ...any) {
	fmt.Fprint(v.out, pterm.Success.Sprintfln(format, a...))
}

func (v *view) info(format string, a ...any) {
	fmt.Fprint(v.out, pterm.Info.Sprintfln(format, a...))
}

func (v *view) warning(format string, a ...any) {
	fmt.Fprint(v.out, pterm.Warning.Sprintfln(format, a...))
}

func (v *view) table(data pterm.TableData) error {
	rendered, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(data).
		Srender()
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	fmt.Fprintln(v.out, rendered)
	return nil
}

func (v *view) identity(id core.Identity) {
	fmt.Fprintf(v.out, "%s <%s>\n", id.Username, id.Email)
}

func (v *view) transactions(txs []core.Transaction) error {
	if len(txs) == 0 {
		v.info("No transactions")
		return nil
	}
	data := pterm.TableData{{"ID", "Date", "Kind", "Category", "Description", "Amount"}}
	for _, t := range txs {
		amount := v.amount(t.Amount)
		if t.IsExpense() {
			amount = "-" + amount
		}
		data = append(data, []string{
			t.ID,
			t.OccurredOn.String(),
			t.Kind.String(),
			t.Category,
			t.Description,
			amount,
		})
	}
	return v.table(data)
}

func (v *view) budgets(usage []report.Usage) error {
	if len(usage) == 0 {
		v.info("No budgets")
		return nil
	}
	data := pterm.TableData{{"Category", "Limit", "Spent", "Remaining", "Used"}}
	for _, u := range usage {
		used := u.Percent.StringFixed(1) + "%"
		switch {
		case u.Over:
			used = boldRed(used + " over")
		case u.Percent.GreaterThanOrEqual(decimal.NewFromInt(80)):
			used = yellow(used)
		default:
			used = green(used)
		}
		data = append(data, []string{
			u.Budget.Category,
			v.amount(u.Budget.Limit),
			v.amount(u.Budget.Spent),
			v.amount(u.Remaining),
			used,
		})
	}
	return v.table(data)
}

func (v *view) summary(t report.Summary, over []report.Overage) error {
	data := pterm.TableData{
		{"Income", "Expenses", "Net"},
		{v.amount(t.Income), v.amount(t.Expenses), v.signed(t.Net)},
	}
	if err := v.table(data); err != nil {
		return err
	}
	if len(over) == 0 {
		v.success("All budgets within limits")
		return nil
	}
	for _, o := range over {
		v.warning("%s is over budget by %s (spent %s of %s)",
			o.Category, boldRed(v.amount(o.Over)), v.amount(o.Spent), v.amount(o.Limit))
	}
	return nil
}

// monthly draws income and expense bars scaled to the largest value in the
// series.
func (v *view) monthly(series []report.MonthlyPoint) error {
	if len(series) == 0 {
		v.info("No transactions")
		return nil
	}
	largest := decimal.Zero
	for _, p := range series {
		largest = decimal.Max(largest, p.Income.Decimal, p.Expenses.Decimal)
	}

	data := pterm.TableData{{"Month", "Income", "Expenses", "In", "Out"}}
	for _, p := range series {
		data = append(data, []string{
			p.Period.Label(),
			v.amount(p.Income),
			v.amount(p.Expenses),
			pterm.FgGreen.Sprint(bar(p.Income.Decimal, largest)),
			pterm.FgRed.Sprint(bar(p.Expenses.Decimal, largest)),
		})
	}
	return v.table(data)
}

func bar(value, largest decimal.Decimal) string {
	if !largest.IsPositive() {
		return ""
	}
	n := value.Mul(decimal.NewFromInt(barWidth)).Div(largest).Round(0).IntPart()
	return strings.Repeat("█", int(n))
}

func (v *view) categories(kind core.Kind, totals []report.CategoryTotal) error {
	data := pterm.TableData{{"Category", "Transactions", "Total"}}
	seen := make(map[string]bool, len(totals))
	for _, c := range totals {
		seen[c.Category] = true
		data = append(data, []string{c.Category, fmt.Sprint(c.Count), v.amount(c.Total)})
	}
	for _, name := range core.Categories(kind) {
		if !seen[name] {
			data = append(data, []string{name, "0", v.amount(core.MoneyFromInt(0))})
		}
	}
	title := "Expense categories"
	if kind == core.Income {
		title = "Income categories"
	}
	fmt.Fprint(v.out, pterm.DefaultSection.Sprint(title))
	return v.table(data)
}

func (v *view) event(e events.Event) {
	line := fmt.Sprintf("%s %-20s %s", e.Timestamp.Local().Format("15:04:05"), e.Type, e.Category)
	if e.TransactionID != "" {
		line += fmt.Sprintf(" #%s", e.TransactionID)
	}
	if e.Amount != "" {
		if d, err := decimal.NewFromString(e.Amount); err == nil {
			line += " " + v.amount(core.NewMoney(d))
		}
	}
	fmt.Fprintln(v.out, line)
}
