package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"BrokerLedger/internal/ledger"
)

// LedgerStore is the SQL ledger.Store. Increments are a single upsert that
// adds the delta in place, so two concurrent posts to the same
// (user, year, month) both land — no read-modify-write window.
type LedgerStore struct {
	pool *pgxpool.Pool
}

func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

func (s *LedgerStore) Increment(ctx context.Context, userID, year, month string, delta decimal.Decimal) error {
	return incrementLedgerTx(ctx, s.pool, userID, year, month, delta)
}

func (s *LedgerStore) Read(ctx context.Context, userID string) (ledger.Ledger, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT year, month, amount FROM user_ledger WHERE user_id = $1 ORDER BY year, month`, userID)
	if err != nil {
		return nil, fmt.Errorf("ledger read: %w", err)
	}
	defer rows.Close()

	out := make(ledger.Ledger)
	for rows.Next() {
		var year, month string
		var amount decimal.Decimal
		if err := rows.Scan(&year, &month, &amount); err != nil {
			return nil, err
		}
		if out[year] == nil {
			out[year] = make(map[string]decimal.Decimal)
		}
		out[year][month] = amount
	}
	return out, rows.Err()
}

// Snapshot copies the full ledger table into ledger_snapshots with a common
// timestamp. Run by the monthly cron job.
func (s *LedgerStore) Snapshot(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO ledger_snapshots (taken_at, user_id, year, month, amount)
		 SELECT now(), user_id, year, month, amount FROM user_ledger`)
	if err != nil {
		return 0, fmt.Errorf("ledger snapshot: %w", err)
	}
	return tag.RowsAffected(), nil
}

// execer lets the ledger upsert run on the pool or inside a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// incrementLedgerTx applies the atomic ledger upsert through pool or tx.
// Advance, expense and statement writes all funnel through this one
// statement.
func incrementLedgerTx(ctx context.Context, db execer, userID, year, month string, delta decimal.Decimal) error {
	_, err := db.Exec(ctx,
		`INSERT INTO user_ledger (user_id, year, month, amount)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, year, month)
		 DO UPDATE SET amount = user_ledger.amount + EXCLUDED.amount`,
		userID, year, month, delta)
	if err != nil {
		return fmt.Errorf("ledger increment: %w", err)
	}
	return nil
}
