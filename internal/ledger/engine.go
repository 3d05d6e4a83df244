// Package ledger owns the active identity's transactions and budgets. Every
// mutation rebuilds all budget totals from the full transaction log and
// then saves a snapshot of the ledger.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

var (
	ErrNoLedger      = errors.New("no ledger loaded")
	ErrEmptyIdentity = errors.New("identity has no id")
)

// Publisher receives an event after each persisted mutation.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Engine holds at most one identity's ledger in memory. It is not safe for
// concurrent use.
type Engine struct {
	store     store.Store
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time

	identity core.Identity
	ledger   core.Ledger
	loaded   bool
}

type Option func(*Engine)

func WithPublisher(p Publisher) Option {
	return func(e *Engine) {
		e.publisher = p
	}
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.logger = l.WithComponent(log.ComponentLedger)
	}
}

// WithClock sets the time source for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func New(st store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  st,
		logger: log.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load reads the identity's snapshot and makes it the active ledger. An
// identity without a snapshot starts with no transactions and the starter
// budgets; that state is written on the first mutation. On error the
// previously loaded ledger, if any, stays active.
func (e *Engine) Load(ctx context.Context, identity core.Identity) (core.Ledger, error) {
	if identity.ID == "" {
		return core.Ledger{}, ErrEmptyIdentity
	}
	key := store.LedgerKey(identity.ID)

	var l core.Ledger
	raw, err := e.store.Get(ctx, key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		l = newLedger()
	case err != nil:
		e.logger.ErrorContext(ctx, "Failed to read ledger",
			log.NewFields().
				WithOperation(log.OpLoad).
				WithIdentity(identity.ID).
				WithError(err, log.ErrorTypeStorage).
				ToSlice()...)
		return core.Ledger{}, store.Wrap("read", key, err)
	default:
		if l, err = decodeSnapshot(key, raw); err != nil {
			return core.Ledger{}, err
		}
	}

	e.identity = identity
	e.ledger = l
	e.loaded = true

	e.logger.InfoContext(ctx, "Ledger loaded",
		log.NewFields().
			WithOperation(log.OpLoad).
			WithIdentity(identity.ID).
			ToSlice()...,
	)
	return l.Clone(), nil
}

// Unload discards the in-memory ledger. Nothing is written.
func (e *Engine) Unload() {
	e.identity = core.Identity{}
	e.ledger = core.Ledger{}
	e.loaded = false
}

func (e *Engine) Loaded() bool {
	return e.loaded
}

func (e *Engine) Identity() core.Identity {
	return e.identity
}

// Ledger returns a copy of the active ledger with transactions in insertion
// order, newest first.
func (e *Engine) Ledger() core.Ledger {
	return e.ledger.Clone()
}

// Transactions returns the transactions for display: most recent date
// first, and among equal dates the most recently recorded first.
func (e *Engine) Transactions() []core.Transaction {
	out := slices.Clone(e.ledger.Transactions)
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return b.OccurredOn.Compare(a.OccurredOn.Time)
	})
	return out
}

// AddTransaction validates in, records it under a fresh id and saves.
// Invalid input leaves the ledger untouched.
func (e *Engine) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if !e.loaded {
		return core.Transaction{}, ErrNoLedger
	}
	in.Amount = core.NewMoney(in.Amount.Round(2))
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	if err := in.Validate(); err != nil {
		e.logger.WarnContext(ctx, "Transaction rejected",
			log.NewFields().
				WithOperation(log.OpCreate).
				WithIdentity(e.identity.ID).
				WithError(err, log.ErrorTypeValidation).
				ToSlice()...)
		return core.Transaction{}, err
	}

	e.ledger.Sequence++
	t := core.Transaction{
		ID:          strconv.FormatInt(e.ledger.Sequence, 10),
		Kind:        in.Kind,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		OccurredOn:  in.OccurredOn,
	}
	e.ledger.Transactions = slices.Insert(e.ledger.Transactions, 0, t)

	fields := log.NewFields().WithTransaction(t.ID, t.Kind.String(), t.Amount.Cents(), t.Category)
	err := e.commit(ctx, log.OpCreate, fields, events.Event{
		Type:          events.TransactionAdded,
		TransactionID: t.ID,
		Category:      t.Category,
		Amount:        t.Amount.Fixed(),
		Kind:          t.Kind.String(),
	})
	return t, err
}

// DeleteTransaction removes the transaction with id. An unknown id is a
// no-op and writes nothing.
func (e *Engine) DeleteTransaction(ctx context.Context, id string) error {
	if !e.loaded {
		return ErrNoLedger
	}
	i := slices.IndexFunc(e.ledger.Transactions, func(t core.Transaction) bool {
		return t.ID == id
	})
	if i < 0 {
		e.logger.DebugContext(ctx, "Delete of unknown transaction ignored",
			log.FieldTransactionID, id)
		return nil
	}

	t := e.ledger.Transactions[i]
	e.ledger.Transactions = slices.Delete(e.ledger.Transactions, i, i+1)

	fields := log.NewFields().WithTransaction(t.ID, t.Kind.String(), t.Amount.Cents(), t.Category)
	return e.commit(ctx, log.OpDelete, fields, events.Event{
		Type:          events.TransactionDeleted,
		TransactionID: t.ID,
		Category:      t.Category,
		Amount:        t.Amount.Fixed(),
		Kind:          t.Kind.String(),
	})
}

// UpsertBudget sets the limit for category, creating the budget at the end
// of the set when it does not exist yet.
func (e *Engine) UpsertBudget(ctx context.Context, category string, limit core.Money) (core.Budget, error) {
	if !e.loaded {
		return core.Budget{}, ErrNoLedger
	}
	b := core.Budget{
		Category: strings.TrimSpace(category),
		Limit:    core.NewMoney(limit.Round(2)),
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	i := slices.IndexFunc(e.ledger.Budgets, func(x core.Budget) bool {
		return x.Category == b.Category
	})
	if i < 0 {
		e.ledger.Budgets = append(e.ledger.Budgets, b)
	} else {
		e.ledger.Budgets[i].Limit = b.Limit
	}

	fields := log.NewFields().WithBudget(b.Category, b.Limit.Cents())
	err := e.commit(ctx, log.OpUpsert, fields, events.Event{
		Type:     events.BudgetUpserted,
		Category: b.Category,
		Amount:   b.Limit.Fixed(),
	})
	updated, _ := e.ledger.Budget(b.Category)
	return updated, err
}

// Save writes the current snapshot again, for retrying after a failed write.
func (e *Engine) Save(ctx context.Context) error {
	if !e.loaded {
		return ErrNoLedger
	}
	if err := e.persist(ctx); err != nil {
		return err
	}
	e.logger.InfoContext(ctx, "Ledger saved",
		log.FieldOperation, log.OpSave,
		log.FieldIdentityID, e.identity.ID)
	return nil
}

// commit recomputes budgets, persists and then publishes. A failed write
// leaves the in-memory change in place and suppresses the event.
func (e *Engine) commit(ctx context.Context, op string, fields log.LogFields, ev events.Event) error {
	e.ledger.Budgets = Recompute(e.ledger.Budgets, e.ledger.Transactions)
	fields.WithOperation(op).WithIdentity(e.identity.ID)

	if err := e.persist(ctx); err != nil {
		e.logger.ErrorContext(ctx, "Ledger change not saved",
			fields.WithError(err, log.ErrorTypeStorage).ToSlice()...)
		return err
	}
	e.logger.InfoContext(ctx, "Ledger updated", fields.ToSlice()...)

	e.publish(ctx, ev)
	return nil
}

func (e *Engine) persist(ctx context.Context) error {
	key := store.LedgerKey(e.identity.ID)
	raw, err := encodeSnapshot(e.ledger)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	return store.Wrap("write", key, e.store.Set(ctx, key, raw))
}

func (e *Engine) publish(ctx context.Context, ev events.Event) {
	if e.publisher == nil {
		return
	}
	ev.IdentityID = e.identity.ID
	ev.Timestamp = e.now().UTC()
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.NewFields().
				WithOperation(log.OpPublish).
				WithIdentity(e.identity.ID).
				WithError(err, log.ErrorTypeNetwork).
				ToSlice()...)
	}
}
