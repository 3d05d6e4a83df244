package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/session"
	"fintrack/internal/store"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	color.NoColor = true
	os.Exit(m.Run())
}

func setEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("CACHE_SIZE", "0")
	t.Setenv("AMQP_URL", "")
	t.Setenv("PBKDF2_ITERATIONS", "10000")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("CURRENCY", "USD")
	t.Setenv(EnvSecret, "")
}

type harness struct {
	t     *testing.T
	store *store.MemoryStore
}

func newHarness(t *testing.T) *harness {
	setEnv(t)
	return &harness{t: t, store: store.NewMemoryStore(nil)}
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	err := Run(context.Background(), args,
		WithStore(h.store),
		WithIO(strings.NewReader(stdin), &out, &errOut))
	return out.String(), err
}

func (h *harness) must(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	require.NoError(h.t, err, "fintrack %s", strings.Join(args, " "))
	return out
}

func (h *harness) registerAlice() {
	h.must("register", "-u", "alice", "-e", "a@x.io", "--secret", "pw1")
}

func (h *harness) addScenario() {
	h.must("add", "-k", "expense", "-a", "120", "-c", "Food", "-d", "Groceries", "--date", "2024-01-05")
	h.must("add", "-k", "expense", "-a", "80", "-c", "Food", "-d", "Dinner", "--date", "2024-02-10")
	h.must("add", "-k", "income", "-a", "1000", "-c", "Salary", "-d", "Pay", "--date", "2024-01-31")
}

func TestRegisterAndWhoami(t *testing.T) {
	h := newHarness(t)

	h.registerAlice()
	assert.Contains(t, h.must("whoami"), "alice <a@x.io>")

	_, err := h.run("", "register", "-u", "bob", "-e", "b@x.io", "--secret", "pw2")
	assert.ErrorIs(t, err, session.ErrSessionActive)
}

func TestCommandsRequireLogin(t *testing.T) {
	h := newHarness(t)

	for _, args := range [][]string{
		{"whoami"},
		{"list"},
		{"summary"},
		{"add", "-a", "1", "-c", "Food", "-d", "x"},
	} {
		_, err := h.run("", args...)
		assert.ErrorIs(t, err, ErrNotLoggedIn, "fintrack %s", strings.Join(args, " "))
	}

	assert.Contains(t, h.must("logout"), "Not logged in")
}

func TestLoginLogout(t *testing.T) {
	h := newHarness(t)
	h.registerAlice()

	assert.Contains(t, h.must("logout"), "Logged out")

	_, err := h.run("", "login", "alice", "--secret", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	out, err := h.run("pw1\n", "login", "a@x.io")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice")
}

func TestLoginSecretFromEnvironment(t *testing.T) {
	h := newHarness(t)
	h.registerAlice()
	h.must("logout")

	t.Setenv(EnvSecret, "pw1")
	assert.Contains(t, h.must("login", "alice"), "Logged in as alice")
}

func TestScenarioReports(t *testing.T) {
	h := newHarness(t)
	h.registerAlice()
	h.must("budget", "set", "Food", "100")
	h.addScenario()

	summary := h.must("summary")
	assert.Contains(t, summary, "$1,000.00")
	assert.Contains(t, summary, "$200.00")
	assert.Contains(t, summary, "$800.00")
	assert.Contains(t, summary, "Food is over budget by $100.00")

	monthly := h.must("monthly")
	jan, feb := strings.Index(monthly, "Jan 2024"), strings.Index(monthly, "Feb 2024")
	require.True(t, jan >= 0 && feb >= 0, monthly)
	assert.Less(t, jan, feb)

	budgets := h.must("budgets")
	assert.Contains(t, budgets, "200.0% over")

	h.must("delete", "1")
	assert.NotContains(t, h.must("list"), "Groceries")
	assert.Contains(t, h.must("summary"), "All budgets within limits")
}

func TestListFilters(t *testing.T) {
	h := newHarness(t)
	h.registerAlice()
	h.addScenario()

	all := h.must("list")
	pay, dinner, groceries := strings.Index(all, "Pay"), strings.Index(all, "Dinner"), strings.Index(all, "Groceries")
	require.True(t, pay >= 0 && dinner >= 0 && groceries >= 0, all)
	assert.Less(t, dinner, pay, "most recent date first")
	assert.Less(t, pay, groceries)

	jan := h.must("list", "--month", "2024-01")
	assert.NotContains(t, jan, "Dinner")
	assert.Contains(t, jan, "Groceries")

	income := h.must("list", "--kind", "income")
	assert.Contains(t, income, "Pay")
	assert.NotContains(t, income, "Groceries")

	limited := h.must("list", "-n", "1")
	assert.Contains(t, limited, "Dinner")
	assert.NotContains(t, limited, "Pay")

	_, err := h.run("", "list", "--month", "January")
	assert.Error(t, err)
}

func TestAddValidation(t *testing.T) {
	h := newHarness(t)
	h.registerAlice()

	_, err := h.run("", "add", "-a", "0", "-c", "Food", "-d", "Free lunch")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = h.run("", "add", "-a", "5", "-c", "Food", "-d", "Lunch", "-k", "gift")
	assert.ErrorIs(t, err, core.ErrInvalidKind)

	_, err = h.run("", "add", "-a", "5", "-c", "Food", "-d", "Lunch", "--date", "05/01/2024")
	assert.ErrorIs(t, err, core.ErrInvalidDate)

	assert.Contains(t, h.must("list"), "No transactions")
}

func TestAddWarnsWhenOverBudget(t *testing.T) {
	h := newHarness(t)
	h.registerAlice()

	out := h.must("add", "-a", "250,5", "-c", "Transport", "-d", "Train pass", "--date", "2024-03-01")
	assert.Contains(t, out, "Recorded expense #1")
	assert.Contains(t, out, "Transport is over budget by $50.50")
}

func TestDeleteUnknown(t *testing.T) {
	h := newHarness(t)
	h.registerAlice()
	assert.Contains(t, h.must("delete", "#99"), "No transaction #99")
}

func TestCategories(t *testing.T) {
	h := newHarness(t)
	h.registerAlice()
	h.addScenario()

	out := h.must("categories")
	assert.Contains(t, out, "Expense categories")
	assert.Contains(t, out, "$200.00")
	assert.Contains(t, out, "Healthcare")

	out = h.must("categories", "-k", "income")
	assert.Contains(t, out, "Salary")
	assert.Contains(t, out, "Freelance")
}

func TestWatchRequiresFeed(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("", "watch")
	assert.ErrorContains(t, err, "AMQP_URL")
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"0", "0.00", false},
		{"0.00", "0.00", false},
		{"12,5", "12.50", false},
		{"", "", true},
		{"abc", "", true},
		{"-3", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLimit(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Fixed())
		})
	}
}

type fakeFeed struct {
	events []events.Event
}

func (f *fakeFeed) Consume(ctx context.Context, h events.Handler) error {
	for _, e := range f.events {
		if err := h(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func TestFollowFiltersByIdentity(t *testing.T) {
	feed := &fakeFeed{events: []events.Event{
		{Type: events.TransactionAdded, IdentityID: "u1", TransactionID: "1"},
		{Type: events.TransactionAdded, IdentityID: "u2", TransactionID: "1"},
		{Type: events.BudgetUpserted, IdentityID: "u1", Category: "Food"},
	}}

	var got []events.Event
	err := follow(context.Background(), feed, "u1", func(e events.Event) { got = append(got, e) })
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, events.BudgetUpserted, got[1].Type)

	got = nil
	require.NoError(t, follow(context.Background(), feed, "", func(e events.Event) { got = append(got, e) }))
	assert.Len(t, got, 3)
}

type blockingFeed struct{}

func (blockingFeed) Consume(ctx context.Context, _ events.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestFollowStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := follow(ctx, blockingFeed{}, "", func(events.Event) {})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestViewAmount(t *testing.T) {
	var buf bytes.Buffer
	v := newView(&buf, "USD")
	assert.Equal(t, "$1,234.50", v.amount(core.MoneyFromCents(123450)))
	assert.Equal(t, "-$5.00", v.amount(core.MoneyFromInt(-5)))

	fallback := newView(&buf, "???")
	assert.Equal(t, "$1.00", fallback.amount(core.MoneyFromInt(1)))
}
