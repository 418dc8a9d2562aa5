package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger is a per-user running total of signed amounts, keyed by year
// (string, e.g. "2024") then month (lowercase English name). Entries are
// created on first write and never deleted.
type Ledger map[string]map[string]decimal.Decimal

// Get returns the value at (year, month), zero if absent.
func (l Ledger) Get(year, month string) decimal.Decimal {
	if months, ok := l[year]; ok {
		if v, ok := months[month]; ok {
			return v
		}
	}
	return decimal.Zero
}

// Store is the storage primitive the aggregator is built on. Increment must
// be atomic per (user, year, month): concurrent increments may not lose
// updates. The SQL implementation uses an upsert that adds the delta in
// place; the in-memory implementation serializes per user.
type Store interface {
	Increment(ctx context.Context, userID, year, month string, delta decimal.Decimal) error
	Read(ctx context.Context, userID string) (Ledger, error)
}

// LedgerError wraps a storage failure during posting so callers can tell it
// apart from validation problems.
type LedgerError struct {
	Op  string
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s failed: %v", e.Op, e.Err)
}

func (e *LedgerError) Unwrap() error { return e.Err }

// AdvanceKind is the direction of an advance. A "given" advance subtracts
// from the owner's ledger, a "received" advance adds to it.
type AdvanceKind string

const (
	AdvanceGiven    AdvanceKind = "given"
	AdvanceReceived AdvanceKind = "received"
)

// AdvanceDelta returns the signed ledger delta for an advance.
func AdvanceDelta(kind AdvanceKind, amount decimal.Decimal) (decimal.Decimal, error) {
	switch kind {
	case AdvanceGiven:
		return amount.Neg(), nil
	case AdvanceReceived:
		return amount, nil
	default:
		return decimal.Zero, fmt.Errorf("unknown advance type %q", kind)
	}
}

// MonthKey lowercases a month for use as a ledger key.
func MonthKey(m time.Month) string {
	return strings.ToLower(m.String())
}

// Keys returns the (year, month) ledger keys for a date.
func Keys(t time.Time) (year, month string) {
	return fmt.Sprintf("%d", t.Year()), MonthKey(t.Month())
}

// Aggregator is the single entry point for ledger mutation. Advances,
// expense approvals and statement processing all post through it so the
// same atomicity discipline applies to all three flows.
type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Post adds delta (which may be negative) to (userID, year, month),
// creating the entry at zero first if absent.
func (a *Aggregator) Post(ctx context.Context, userID, year, month string, delta decimal.Decimal) error {
	if userID == "" {
		return &LedgerError{Op: "post", Err: fmt.Errorf("missing user id")}
	}
	if err := a.store.Increment(ctx, userID, year, month, delta); err != nil {
		return &LedgerError{Op: "post", Err: err}
	}
	return nil
}

// Adjust replaces a previously posted delta with a new one in a single
// increment of (new - old), so a toggle or amount edit cannot be torn in
// half by a concurrent reader.
func (a *Aggregator) Adjust(ctx context.Context, userID, year, month string, oldDelta, newDelta decimal.Decimal) error {
	diff := newDelta.Sub(oldDelta)
	if diff.IsZero() {
		return nil
	}
	return a.Post(ctx, userID, year, month, diff)
}

// Read returns the full ledger for a user.
func (a *Aggregator) Read(ctx context.Context, userID string) (Ledger, error) {
	l, err := a.store.Read(ctx, userID)
	if err != nil {
		return nil, &LedgerError{Op: "read", Err: err}
	}
	return l, nil
}
