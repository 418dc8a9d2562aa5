package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"BrokerLedger/internal/statement"
)

// BankStatementBatch is one file-based upload, already filtered to the
// target bank account. This path is reconciliation-only: it performs no
// commission resolution and no ledger posting.
type BankStatementBatch struct {
	BatchID      string                  `json:"batch_id"`
	UserID       string                  `json:"user_id"`
	FileName     string                  `json:"file_name"`
	BankName     string                  `json:"bank_name"`
	AccountNo    string                  `json:"account_no"`
	Status       string                  `json:"status"` // pending | processed | failed
	Error        string                  `json:"error,omitempty"`
	Transactions []statement.Transaction `json:"transactions"`
	UploadedAt   time.Time               `json:"uploaded_at"`
}

type BankStatementStore struct {
	pool *pgxpool.Pool
}

func NewBankStatementStore(pool *pgxpool.Pool) *BankStatementStore {
	return &BankStatementStore{pool: pool}
}

func (s *BankStatementStore) SaveBatch(ctx context.Context, b BankStatementBatch) error {
	txns, err := json.Marshal(b.Transactions)
	if err != nil {
		return fmt.Errorf("marshal bank statement rows: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO bank_statement_uploads
		 (batch_id, user_id, file_name, bank_name, account_no, status, error_message, transactions, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		b.BatchID, b.UserID, b.FileName, b.BankName, b.AccountNo, b.Status, b.Error, txns, b.UploadedAt)
	if err != nil {
		return fmt.Errorf("bank statement insert: %w", err)
	}
	return nil
}

func (s *BankStatementStore) ListByUser(ctx context.Context, userID string) ([]BankStatementBatch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT batch_id, user_id, file_name, bank_name, account_no, status, error_message, transactions, uploaded_at
		 FROM bank_statement_uploads WHERE user_id = $1 ORDER BY uploaded_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]BankStatementBatch, 0)
	for rows.Next() {
		var b BankStatementBatch
		var txns []byte
		if err := rows.Scan(&b.BatchID, &b.UserID, &b.FileName, &b.BankName, &b.AccountNo,
			&b.Status, &b.Error, &txns, &b.UploadedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(txns, &b.Transactions); err != nil {
			return nil, fmt.Errorf("unmarshal bank statement rows for %s: %w", b.BatchID, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
