package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// MaxDescriptionLength bounds transaction descriptions.
const MaxDescriptionLength = 200

type (
	Kind string

	// Identity is a registered user's public profile. It never carries a secret.
	Identity struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}

	Transaction struct {
		ID          string `json:"id"`
		Kind        Kind   `json:"kind"`
		Amount      Money  `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
		OccurredOn  Date   `json:"occurredOn"`
	}

	// TransactionInput is what a caller supplies to record a transaction;
	// the id is assigned by the ledger.
	TransactionInput struct {
		Kind        Kind
		Amount      Money
		Category    string
		Description string
		OccurredOn  Date
	}

	// Budget is a spending ceiling for one category. Spent is derived from
	// the transaction log and is never set by hand.
	Budget struct {
		Category string `json:"category"`
		Limit    Money  `json:"limit"`
		Spent    Money  `json:"spent"`
	}

	// Ledger is one identity's transactions (newest first) and budgets.
	Ledger struct {
		Transactions []Transaction `json:"transactions"`
		Budgets      []Budget      `json:"budgets"`
		Sequence     int64         `json:"sequence"`
	}
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidKind        = errors.New("invalid transaction kind")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidLimit       = errors.New("invalid budget limit")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrEmptyCategory      = errors.New("empty category")
)

// Invalid marks err as a validation failure so callers can match either the
// specific cause or ErrValidation.
func Invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// ParseKind accepts "income" or "expense" in any letter case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return Invalid(ErrInvalidKind)
	}
}

func (k Kind) String() string {
	return string(k)
}

func (in TransactionInput) Validate() error {
	if err := in.Kind.Validate(); err != nil {
		return err
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.Category) == "" {
		return Invalid(ErrEmptyCategory)
	}
	if strings.TrimSpace(in.Description) == "" {
		return Invalid(ErrEmptyDescription)
	}
	if utf8.RuneCountInString(in.Description) > MaxDescriptionLength {
		return Invalid(ErrDescriptionTooLong)
	}
	if err := in.OccurredOn.Validate(); err != nil {
		return err
	}
	return nil
}

// IsExpense reports whether t counts against budgets.
func (t Transaction) IsExpense() bool {
	return t.Kind == Expense
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return Invalid(ErrEmptyCategory)
	}
	if b.Limit.IsNegative() {
		return Invalid(ErrInvalidLimit)
	}
	return nil
}

// Over reports whether the budget is exceeded.
func (b Budget) Over() bool {
	return b.Spent.GreaterThan(b.Limit)
}

// Overage is how far spending is above the limit, zero when within it.
func (b Budget) Overage() Money {
	if !b.Over() {
		return Money{}
	}
	return b.Spent.Sub(b.Limit)
}

// StarterBudgets is the budget set a new ledger starts with.
func StarterBudgets() []Budget {
	return []Budget{
		{Category: "Food", Limit: MoneyFromInt(500)},
		{Category: "Transport", Limit: MoneyFromInt(200)},
		{Category: "Entertainment", Limit: MoneyFromInt(150)},
		{Category: "Utilities", Limit: MoneyFromInt(300)},
	}
}

// Suggested categories offered when recording a transaction. They are
// suggestions only; transaction categories are free text.
var (
	ExpenseCategories = []string{
		"Food", "Transport", "Entertainment", "Utilities", "Shopping",
		"Healthcare", "Education", "Insurance", "Other",
	}
	IncomeCategories = []string{
		"Salary", "Freelance", "Investment", "Business", "Gift", "Other",
	}
)

// Categories returns the suggested categories for kind.
func Categories(k Kind) []string {
	var src []string
	switch k {
	case Income:
		src = IncomeCategories
	case Expense:
		src = ExpenseCategories
	}
	return append([]string(nil), src...)
}

// Clone returns a deep copy of the ledger.
func (l Ledger) Clone() Ledger {
	out := Ledger{Sequence: l.Sequence}
	if l.Transactions != nil {
		out.Transactions = append(make([]Transaction, 0, len(l.Transactions)), l.Transactions...)
	}
	if l.Budgets != nil {
		out.Budgets = append(make([]Budget, 0, len(l.Budgets)), l.Budgets...)
	}
	return out
}

// Budget returns the budget for category, if any.
func (l Ledger) Budget(category string) (Budget, bool) {
	for _, b := range l.Budgets {
		if b.Category == category {
			return b, true
		}
	}
	return Budget{}, false
}

// Transaction returns the transaction with id, if any.
func (l Ledger) Transaction(id string) (Transaction, bool) {
	for _, t := range l.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return Transaction{}, false
}

// Date is a calendar date with day granularity, kept at midnight UTC.
type Date struct {
	time.Time
}

// DateFormat is the wire and display format of a Date.
const DateFormat = "2006-01-02"

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return Date{}, Invalid(fmt.Errorf("%w %q: want format %s", ErrInvalidDate, s, DateFormat))
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return Invalid(ErrInvalidDate)
	}
	return nil
}

// Period returns the (year, month) the date falls in.
func (d Date) Period() Month {
	return Month{Year: d.Year(), Month: d.Time.Month()}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateFormat)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
