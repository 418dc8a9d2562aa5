package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"BrokerLedger/internal/commission"
	"BrokerLedger/internal/statement"
)

// CompanyStore reads and writes the company master, including each
// company's slab schedule.
type CompanyStore struct {
	pool *pgxpool.Pool
}

func NewCompanyStore(pool *pgxpool.Pool) *CompanyStore {
	return &CompanyStore{pool: pool}
}

// CompanyByName resolves a counterparty by exact name and loads its slab
// schedule. The schedule is re-validated on load so a row edited behind the
// application's back cannot feed the resolver a broken partition.
func (s *CompanyStore) CompanyByName(ctx context.Context, name string) (*statement.Company, error) {
	var id, companyName string
	err := s.pool.QueryRow(ctx,
		`SELECT company_id, company_name FROM companies WHERE company_name = $1`, name,
	).Scan(&id, &companyName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &statement.NotFoundError{Kind: "company", Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("company lookup: %w", err)
	}

	slabs, err := loadSlabs(ctx, s.pool, "company", id)
	if err != nil {
		return nil, err
	}
	schedule, err := commission.ValidateSchedule(slabs)
	if err != nil {
		return nil, fmt.Errorf("company %s has an invalid slab schedule: %w", companyName, err)
	}
	return &statement.Company{ID: id, Name: companyName, Schedule: schedule}, nil
}

// CreateCompany inserts a company and its (already validated) schedule.
func (s *CompanyStore) CreateCompany(ctx context.Context, name, accountNo, bankName string, schedule commission.Schedule) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	id := uuid.New().String()
	_, err = tx.Exec(ctx,
		`INSERT INTO companies (company_id, company_name, account_no, bank_name, created_at)
		 VALUES ($1, $2, $3, $4, now())`, id, name, accountNo, bankName)
	if err != nil {
		return "", fmt.Errorf("company insert: %w", err)
	}
	if err := replaceSlabsTx(ctx, tx, "company", id, schedule); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// ListCompanies returns names and ids, engine fields only.
func (s *CompanyStore) ListCompanies(ctx context.Context) ([]statement.Company, error) {
	rows, err := s.pool.Query(ctx, `SELECT company_id, company_name FROM companies ORDER BY company_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]statement.Company, 0)
	for rows.Next() {
		var c statement.Company
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func loadSlabs(ctx context.Context, pool *pgxpool.Pool, ownerType, ownerID string) ([]commission.Slab, error) {
	rows, err := pool.Query(ctx,
		`SELECT min_amount, max_amount, commission_rate
		 FROM slabs WHERE owner_type = $1 AND owner_id = $2
		 ORDER BY min_amount`, ownerType, ownerID)
	if err != nil {
		return nil, fmt.Errorf("slab lookup: %w", err)
	}
	defer rows.Close()

	var slabs []commission.Slab
	for rows.Next() {
		var sl commission.Slab
		if err := rows.Scan(&sl.MinAmount, &sl.MaxAmount, &sl.Rate); err != nil {
			return nil, err
		}
		slabs = append(slabs, sl)
	}
	return slabs, rows.Err()
}
