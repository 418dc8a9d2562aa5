package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"BrokerLedger/internal/commission"
)

// Slab owner kinds. Companies carry client schedules, brokers carry their
// own provider schedules; both live in the same table.
const (
	SlabOwnerCompany = "company"
	SlabOwnerBroker  = "broker"
)

// SlabStore replaces an owner's slab schedule as one transaction.
type SlabStore struct {
	pool *pgxpool.Pool
}

func NewSlabStore(pool *pgxpool.Pool) *SlabStore {
	return &SlabStore{pool: pool}
}

// ReplaceSchedule swaps the owner's schedule. The caller is expected to have
// run commission.ValidateSchedule already; handlers reject invalid schedules
// before touching the store.
func (s *SlabStore) ReplaceSchedule(ctx context.Context, ownerType, ownerID string, schedule commission.Schedule) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := replaceSlabsTx(ctx, tx, ownerType, ownerID, schedule); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Schedule loads and validates the owner's schedule.
func (s *SlabStore) Schedule(ctx context.Context, ownerType, ownerID string) (commission.Schedule, error) {
	slabs, err := loadSlabs(ctx, s.pool, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	return commission.ValidateSchedule(slabs)
}

func replaceSlabsTx(ctx context.Context, tx pgx.Tx, ownerType, ownerID string, schedule commission.Schedule) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM slabs WHERE owner_type = $1 AND owner_id = $2`, ownerType, ownerID); err != nil {
		return fmt.Errorf("slab delete: %w", err)
	}
	batch := &pgx.Batch{}
	for _, sl := range schedule {
		batch.Queue(
			`INSERT INTO slabs (owner_type, owner_id, min_amount, max_amount, commission_rate)
			 VALUES ($1, $2, $3, $4, $5)`,
			ownerType, ownerID, sl.MinAmount, sl.MaxAmount, sl.Rate)
	}
	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for range schedule {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("slab insert: %w", err)
		}
	}
	return nil
}
