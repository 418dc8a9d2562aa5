package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"BrokerLedger/internal/statement"
)

// Expense statuses. Only crossing the approved boundary moves the ledger.
const (
	ExpensePending  = "pending"
	ExpenseApproved = "approved"
	ExpenseRejected = "rejected"
)

// Expense is a reimbursable expense owned by a user.
type Expense struct {
	ID          string          `json:"expense_id"`
	UserID      string          `json:"user_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Year        string          `json:"year"`
	Month       string          `json:"month"`
}

// ExpenseStore mutates expenses and their ledger effect transactionally.
type ExpenseStore struct {
	pool *pgxpool.Pool
}

func NewExpenseStore(pool *pgxpool.Pool) *ExpenseStore {
	return &ExpenseStore{pool: pool}
}

func (s *ExpenseStore) Create(ctx context.Context, exp Expense) (string, error) {
	exp.ID = uuid.New().String()
	if exp.Status == "" {
		exp.Status = ExpensePending
	}
	if exp.Status == ExpenseApproved {
		// Creating straight into approved posts immediately, same rule as a
		// transition below.
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return "", err
		}
		defer tx.Rollback(ctx)
		if err := insertExpenseTx(ctx, tx, exp); err != nil {
			return "", err
		}
		if err := incrementLedgerTx(ctx, tx, exp.UserID, exp.Year, exp.Month, exp.Amount); err != nil {
			return "", err
		}
		return exp.ID, tx.Commit(ctx)
	}
	if err := insertExpenseTx(ctx, s.pool, exp); err != nil {
		return "", err
	}
	return exp.ID, nil
}

func insertExpenseTx(ctx context.Context, db execer, exp Expense) error {
	_, err := db.Exec(ctx,
		`INSERT INTO expenses (expense_id, user_id, description, amount, status, year, month, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		exp.ID, exp.UserID, exp.Description, exp.Amount, exp.Status, exp.Year, exp.Month)
	if err != nil {
		return fmt.Errorf("expense insert: %w", err)
	}
	return nil
}

// SetStatus transitions an expense. Entering approved posts +amount,
// leaving approved posts -amount; any other transition leaves the ledger
// alone. Row update and ledger post are one transaction.
func (s *ExpenseStore) SetStatus(ctx context.Context, userID, expenseID, newStatus string) (Expense, error) {
	switch newStatus {
	case ExpensePending, ExpenseApproved, ExpenseRejected:
	default:
		return Expense{}, &statement.ValidationError{Msg: fmt.Sprintf("unknown expense status %q", newStatus)}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Expense{}, err
	}
	defer tx.Rollback(ctx)

	var exp Expense
	err = tx.QueryRow(ctx,
		`SELECT expense_id, user_id, description, amount, status, year, month
		 FROM expenses WHERE expense_id = $1 AND user_id = $2 FOR UPDATE`,
		expenseID, userID,
	).Scan(&exp.ID, &exp.UserID, &exp.Description, &exp.Amount, &exp.Status, &exp.Year, &exp.Month)
	if errors.Is(err, pgx.ErrNoRows) {
		return Expense{}, &statement.NotFoundError{Kind: "expense", Name: expenseID}
	}
	if err != nil {
		return Expense{}, fmt.Errorf("expense lookup: %w", err)
	}

	oldStatus := exp.Status
	if oldStatus == newStatus {
		return exp, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE expenses SET status = $1 WHERE expense_id = $2`, newStatus, exp.ID); err != nil {
		return Expense{}, fmt.Errorf("expense update: %w", err)
	}

	delta := decimal.Zero
	if newStatus == ExpenseApproved && oldStatus != ExpenseApproved {
		delta = exp.Amount
	} else if oldStatus == ExpenseApproved && newStatus != ExpenseApproved {
		delta = exp.Amount.Neg()
	}
	if !delta.IsZero() {
		if err := incrementLedgerTx(ctx, tx, exp.UserID, exp.Year, exp.Month, delta); err != nil {
			return Expense{}, err
		}
	}
	exp.Status = newStatus
	return exp, tx.Commit(ctx)
}
