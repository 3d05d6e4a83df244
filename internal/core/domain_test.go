package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-02-29" || d.Period() != NewMonth(2024, time.February) {
		t.Fatalf("unexpected date %s period %s", d, d.Period())
	}
	for _, bad := range []string{"", "2024-13-01", "29/02/2024", "2023-02-29"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected invalid date, got %v", bad, err)
		}
	}
}

func TestDateJSON(t *testing.T) {
	data, err := json.Marshal(NewDate(2024, 1, 5))
	if err != nil || string(data) != `"2024-01-05"` {
		t.Fatalf("unexpected marshal %s (err=%v)", data, err)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"2024-01-05"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !d.Equal(NewDate(2024, 1, 5).Time) {
		t.Fatalf("unexpected date %s", d)
	}
}

func TestTransactionInputValidate(t *testing.T) {
	good := TransactionInput{
		Kind:        Expense,
		Amount:      MoneyFromInt(120),
		Category:    "Food",
		Description: "Groceries",
		OccurredOn:  NewDate(2024, 1, 5),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		mutate func(*TransactionInput)
		want   error
	}{
		{func(in *TransactionInput) { in.Kind = "transfer" }, ErrInvalidKind},
		{func(in *TransactionInput) { in.Amount = Money{} }, ErrInvalidAmount},
		{func(in *TransactionInput) { in.Amount = MoneyFromInt(-1) }, ErrInvalidAmount},
		{func(in *TransactionInput) { in.Category = "  " }, ErrEmptyCategory},
		{func(in *TransactionInput) { in.Description = "" }, ErrEmptyDescription},
		{func(in *TransactionInput) { in.Description = strings.Repeat("x", MaxDescriptionLength+1) }, ErrDescriptionTooLong},
		{func(in *TransactionInput) { in.OccurredOn = Date{} }, ErrInvalidDate},
	}
	for i, tc := range bads {
		in := good
		tc.mutate(&in)
		err := in.Validate()
		if !errors.Is(err, tc.want) || !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind(" Income "); err != nil || k != Income {
		t.Fatalf("expected income, got %q (err=%v)", k, err)
	}
	if _, err := ParseKind("refund"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected invalid kind, got %v", err)
	}
}

func TestBudgetOverage(t *testing.T) {
	b := Budget{Category: "Food", Limit: MoneyFromInt(100), Spent: MoneyFromInt(200)}
	if !b.Over() || !b.Overage().Equal(MoneyFromInt(100)) {
		t.Fatalf("expected overage of 100, got %s", b.Overage())
	}
	b.Spent = MoneyFromInt(100)
	if b.Over() || !b.Overage().IsZero() {
		t.Fatalf("spent equal to limit must not be over budget")
	}
	if err := (Budget{Category: "Food", Limit: MoneyFromInt(-1)}).Validate(); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected invalid limit, got %v", err)
	}
}

func TestStarterBudgets(t *testing.T) {
	budgets := StarterBudgets()
	if len(budgets) != 4 {
		t.Fatalf("expected 4 starter budgets, got %d", len(budgets))
	}
	seen := map[string]bool{}
	for _, b := range budgets {
		if seen[b.Category] {
			t.Fatalf("duplicate starter category %s", b.Category)
		}
		seen[b.Category] = true
		if !b.Spent.IsZero() {
			t.Fatalf("starter budget %s has spent %s", b.Category, b.Spent)
		}
	}
}

func TestLedgerCloneIsDeep(t *testing.T) {
	l := Ledger{
		Transactions: []Transaction{{ID: "1"}},
		Budgets:      StarterBudgets(),
		Sequence:     1,
	}
	c := l.Clone()
	c.Transactions[0].ID = "changed"
	c.Budgets[0].Category = "changed"
	if l.Transactions[0].ID != "1" || l.Budgets[0].Category != "Food" {
		t.Fatalf("clone shares memory with original")
	}
}

func TestMonthOrderingAndLabels(t *testing.T) {
	jan24 := NewMonth(2024, time.January)
	dec23 := NewMonth(2023, time.December)
	jan25 := NewMonth(2025, time.January)

	if !dec23.Before(jan24) || !jan24.Before(jan25) || jan24.Before(jan24) {
		t.Fatalf("month ordering is not chronological")
	}
	if jan24.String() != "2024-01" || jan24.Label() != "Jan 2024" {
		t.Fatalf("unexpected formatting %s / %s", jan24, jan24.Label())
	}
	if jan24.Label() == jan25.Label() {
		t.Fatalf("labels of distinct years collide")
	}
	m, err := ParseMonth("2024-02")
	if err != nil || m != NewMonth(2024, time.February) {
		t.Fatalf("unexpected parse %v (err=%v)", m, err)
	}
}
