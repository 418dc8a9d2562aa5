package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"BrokerLedger/internal/ledger"
	"BrokerLedger/internal/statement"
)

// Advance is a cash advance between the user and a counterparty. Its ledger
// effect is signed by type: given subtracts, received adds.
type Advance struct {
	ID           string             `json:"advance_id"`
	UserID       string             `json:"user_id"`
	Counterparty string             `json:"counterparty"`
	Amount       decimal.Decimal    `json:"amount"`
	Type         ledger.AdvanceKind `json:"advance_type"`
	Year         string             `json:"year"`
	Month        string             `json:"month"`
}

// AdvanceStore mutates advances and their ledger effect inside one
// transaction, so a row can never disagree with the ledger.
type AdvanceStore struct {
	pool *pgxpool.Pool
}

func NewAdvanceStore(pool *pgxpool.Pool) *AdvanceStore {
	return &AdvanceStore{pool: pool}
}

// Create inserts the advance and posts its delta.
func (s *AdvanceStore) Create(ctx context.Context, adv Advance) (string, error) {
	delta, err := ledger.AdvanceDelta(adv.Type, adv.Amount)
	if err != nil {
		return "", &statement.ValidationError{Msg: err.Error()}
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	adv.ID = uuid.New().String()
	_, err = tx.Exec(ctx,
		`INSERT INTO advances (advance_id, user_id, counterparty, amount, advance_type, year, month, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		adv.ID, adv.UserID, adv.Counterparty, adv.Amount, adv.Type, adv.Year, adv.Month)
	if err != nil {
		return "", fmt.Errorf("advance insert: %w", err)
	}
	if err := incrementLedgerTx(ctx, tx, adv.UserID, adv.Year, adv.Month, delta); err != nil {
		return "", err
	}
	return adv.ID, tx.Commit(ctx)
}

// Toggle flips an advance between given and received. The ledger receives
// the difference between the new and old deltas in a single increment.
func (s *AdvanceStore) Toggle(ctx context.Context, userID, advanceID string) (Advance, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Advance{}, err
	}
	defer tx.Rollback(ctx)

	adv, err := lockAdvanceTx(ctx, tx, userID, advanceID)
	if err != nil {
		return Advance{}, err
	}

	oldDelta, _ := ledger.AdvanceDelta(adv.Type, adv.Amount)
	if adv.Type == ledger.AdvanceGiven {
		adv.Type = ledger.AdvanceReceived
	} else {
		adv.Type = ledger.AdvanceGiven
	}
	newDelta, _ := ledger.AdvanceDelta(adv.Type, adv.Amount)

	if _, err := tx.Exec(ctx,
		`UPDATE advances SET advance_type = $1 WHERE advance_id = $2`, adv.Type, adv.ID); err != nil {
		return Advance{}, fmt.Errorf("advance update: %w", err)
	}
	if err := incrementLedgerTx(ctx, tx, adv.UserID, adv.Year, adv.Month, newDelta.Sub(oldDelta)); err != nil {
		return Advance{}, err
	}
	return adv, tx.Commit(ctx)
}

// UpdateAmount changes the amount (and optionally type), reversing the
// previous delta and applying the new one as one increment.
func (s *AdvanceStore) UpdateAmount(ctx context.Context, userID, advanceID string, amount decimal.Decimal, kind ledger.AdvanceKind) (Advance, error) {
	newDelta, err := ledger.AdvanceDelta(kind, amount)
	if err != nil {
		return Advance{}, &statement.ValidationError{Msg: err.Error()}
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Advance{}, err
	}
	defer tx.Rollback(ctx)

	adv, err := lockAdvanceTx(ctx, tx, userID, advanceID)
	if err != nil {
		return Advance{}, err
	}
	oldDelta, _ := ledger.AdvanceDelta(adv.Type, adv.Amount)

	adv.Amount = amount
	adv.Type = kind
	if _, err := tx.Exec(ctx,
		`UPDATE advances SET amount = $1, advance_type = $2 WHERE advance_id = $3`,
		adv.Amount, adv.Type, adv.ID); err != nil {
		return Advance{}, fmt.Errorf("advance update: %w", err)
	}
	if err := incrementLedgerTx(ctx, tx, adv.UserID, adv.Year, adv.Month, newDelta.Sub(oldDelta)); err != nil {
		return Advance{}, err
	}
	return adv, tx.Commit(ctx)
}

// lockAdvanceTx loads the advance FOR UPDATE so concurrent toggles of the
// same row serialize at the database.
func lockAdvanceTx(ctx context.Context, tx pgx.Tx, userID, advanceID string) (Advance, error) {
	var adv Advance
	err := tx.QueryRow(ctx,
		`SELECT advance_id, user_id, counterparty, amount, advance_type, year, month
		 FROM advances WHERE advance_id = $1 AND user_id = $2 FOR UPDATE`,
		advanceID, userID,
	).Scan(&adv.ID, &adv.UserID, &adv.Counterparty, &adv.Amount, &adv.Type, &adv.Year, &adv.Month)
	if errors.Is(err, pgx.ErrNoRows) {
		return Advance{}, &statement.NotFoundError{Kind: "advance", Name: advanceID}
	}
	if err != nil {
		return Advance{}, fmt.Errorf("advance lookup: %w", err)
	}
	return adv, nil
}
