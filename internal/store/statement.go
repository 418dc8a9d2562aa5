package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"BrokerLedger/internal/statement"
)

// StatementStore persists statement records. SaveProcessed writes the
// record and the commission ledger post in one transaction: either both
// land or neither does, so a ledger failure can never leave a record
// claiming to be processed.
type StatementStore struct {
	pool *pgxpool.Pool
}

func NewStatementStore(pool *pgxpool.Pool) *StatementStore {
	return &StatementStore{pool: pool}
}

func (s *StatementStore) SaveProcessed(ctx context.Context, rec *statement.Record, post statement.LedgerPost) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("statement tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertRecordTx(ctx, tx, rec); err != nil {
		return err
	}
	if err := incrementLedgerTx(ctx, tx, post.UserID, post.Year, post.Month, post.Delta); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *StatementStore) SaveFailed(ctx context.Context, rec *statement.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("statement tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertRecordTx(ctx, tx, rec); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertRecordTx(ctx context.Context, db execer, rec *statement.Record) error {
	txns, err := json.Marshal(rec.Transactions)
	if err != nil {
		return fmt.Errorf("marshal transactions: %w", err)
	}
	summaries, err := json.Marshal(rec.Summaries)
	if err != nil {
		return fmt.Errorf("marshal summaries: %w", err)
	}
	_, err = db.Exec(ctx,
		`INSERT INTO statements
		 (statement_id, user_id, file_name, file_type, statement_date, upload_date,
		  status, error_message, original_transactions, company_summaries,
		  total_amount, total_commission)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, rec.UserID, rec.FileName, rec.FileType, rec.StatementDate, rec.UploadDate,
		rec.Status, rec.Error, txns, summaries, rec.TotalAmount, rec.TotalCommission)
	if err != nil {
		return fmt.Errorf("statement insert: %w", err)
	}
	return nil
}

// ListByUser returns a user's statements, newest first.
func (s *StatementStore) ListByUser(ctx context.Context, userID string) ([]statement.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT statement_id, user_id, file_name, file_type, statement_date, upload_date,
		        status, error_message, original_transactions, company_summaries,
		        total_amount, total_commission
		 FROM statements WHERE user_id = $1 ORDER BY upload_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]statement.Record, 0)
	for rows.Next() {
		var rec statement.Record
		var txns, summaries []byte
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.FileName, &rec.FileType,
			&rec.StatementDate, &rec.UploadDate, &rec.Status, &rec.Error,
			&txns, &summaries, &rec.TotalAmount, &rec.TotalCommission); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(txns, &rec.Transactions); err != nil {
			return nil, fmt.Errorf("unmarshal transactions for %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal(summaries, &rec.Summaries); err != nil {
			return nil, fmt.Errorf("unmarshal summaries for %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UserIDs returns every user that owns at least one statement. The nightly
// fingerprint rebuild walks this list.
func (s *StatementStore) UserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT user_id FROM statements`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UserFingerprints flattens every transaction in a user's processed
// statements into duplicate-detection fingerprints. Failed statements never
// entered the ledger, so resubmitting their rows is legitimate.
func (s *StatementStore) UserFingerprints(ctx context.Context, userID string) ([]statement.Fingerprint, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT original_transactions FROM statements WHERE user_id = $1 AND status = $2`,
		userID, statement.StatusProcessed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fps []statement.Fingerprint
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var txns []statement.Transaction
		if err := json.Unmarshal(raw, &txns); err != nil {
			return nil, fmt.Errorf("unmarshal history for %s: %w", userID, err)
		}
		for _, t := range txns {
			fps = append(fps, statement.FingerprintOf(t))
		}
	}
	return fps, rows.Err()
}
