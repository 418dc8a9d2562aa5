package statement

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"BrokerLedger/internal/commission"
	"BrokerLedger/internal/config"
	"BrokerLedger/internal/ledger"
)

// CompanyLookup resolves a counterparty company by name, schedule included.
// A missing company hard-fails the whole ingestion; the pipeline does not
// retry.
type CompanyLookup interface {
	CompanyByName(ctx context.Context, name string) (*Company, error)
}

// LedgerPost is the commission posting that must land together with the
// processed record.
type LedgerPost struct {
	UserID string
	Year   string
	Month  string
	Delta  decimal.Decimal
}

// Store persists statement records. SaveProcessed must write the record and
// apply the ledger post as one unit: if the ledger increment fails, the
// record must not be stored as processed. The pgx implementation runs both
// in one transaction.
type Store interface {
	SaveProcessed(ctx context.Context, rec *Record, post LedgerPost) error
	SaveFailed(ctx context.Context, rec *Record) error
}

// Pipeline is the statement ingestion orchestrator: structural checks,
// duplicate scan, per-row validation, grouping by counterparty, bracket
// commission per group, then atomic persist + ledger post.
type Pipeline struct {
	companies CompanyLookup
	history   *Index
	store     Store
	now       func() time.Time

	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

func NewPipeline(companies CompanyLookup, history *Index, store Store) *Pipeline {
	return &Pipeline{
		companies: companies,
		history:   history,
		store:     store,
		now:       time.Now,
		inflight:  make(map[string]*sync.Mutex),
	}
}

// userLock returns the ingestion mutex for one user, creating it on first
// use. Locks are never removed; the map grows with the user population.
func (p *Pipeline) userLock(userID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.inflight[userID]
	if !ok {
		l = &sync.Mutex{}
		p.inflight[userID] = l
	}
	return l
}

// SetClock overrides the pipeline's notion of now. Tests only.
func (p *Pipeline) SetClock(now func() time.Time) { p.now = now }

// Process runs one upload through the pipeline. All-or-nothing: any
// validation, duplicate or lookup failure leaves no record and no ledger
// mutation. Only a storage failure while persisting the finished run
// produces a failed record (with the error captured on it).
func (p *Pipeline) Process(ctx context.Context, userID string, in Upload) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, config.ProcessTimeout)
	defer cancel()

	now := p.now()
	if err := p.checkStructure(userID, in, now); err != nil {
		return nil, err
	}

	// Duplicate scan, persist and index update are one critical section per
	// user: without it two concurrent uploads of the same batch both clear
	// the duplicate check and the commission posts twice.
	lock := p.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if i := p.history.FirstDuplicate(userID, in.Transactions); i >= 0 {
		t := in.Transactions[i]
		return nil, &ConflictError{Msg: fmt.Sprintf(
			"duplicate batch: transaction %d (%s, %s, %s) already exists in a previous statement",
			i+1, t.Date, t.CompanyName, t.CreditAmount.String())}
	}

	if err := ValidateBatch(in.Transactions, now); err != nil {
		return nil, err
	}

	stmtDate, _ := time.Parse(DateLayout, in.StatementDate)
	rec := &Record{
		ID:            uuid.New().String(),
		UserID:        userID,
		FileName:      in.FileName,
		FileType:      in.FileType,
		StatementDate: stmtDate,
		UploadDate:    now,
		Status:        StatusPending,
		Transactions:  in.Transactions,
	}

	summaries, totalAmount, totalCommission, err := p.summarize(ctx, in.Transactions)
	if err != nil {
		return nil, err
	}
	rec.Summaries = summaries
	rec.TotalAmount = totalAmount
	rec.TotalCommission = totalCommission

	year, month := ledger.Keys(stmtDate)
	post := LedgerPost{UserID: userID, Year: year, Month: month, Delta: totalCommission}

	rec.Status = StatusProcessed
	if err := p.store.SaveProcessed(ctx, rec, post); err != nil {
		rec.Status = StatusFailed
		rec.Error = err.Error()
		if ferr := p.store.SaveFailed(ctx, rec); ferr != nil {
			return nil, fmt.Errorf("statement save failed: %v (failed-record write also failed: %v)", err, ferr)
		}
		return rec, &ledger.LedgerError{Op: "statement post", Err: err}
	}

	// Only now does the batch enter duplicate history.
	p.history.Observe(userID, in.Transactions)
	return rec, nil
}

func (p *Pipeline) checkStructure(userID string, in Upload, now time.Time) error {
	if userID == "" {
		return &ValidationError{Msg: "user id is required"}
	}
	if len(in.Transactions) == 0 {
		return &ValidationError{Msg: "statement contains no transactions"}
	}
	if len(in.Transactions) > config.MaxBatchTransactions {
		return &ValidationError{Msg: fmt.Sprintf("statement exceeds the maximum of %d transactions", config.MaxBatchTransactions)}
	}
	if in.FileName == "" {
		return &ValidationError{Msg: "fileName is required"}
	}
	if in.FileType != "csv" && in.FileType != "xml" {
		return &ValidationError{Msg: fmt.Sprintf("invalid fileType %q, expected csv or xml", in.FileType)}
	}
	stmtDate, err := time.Parse(DateLayout, in.StatementDate)
	if err != nil {
		return &ValidationError{Msg: fmt.Sprintf("invalid statementDate %q, expected DD-MM-YYYY", in.StatementDate)}
	}
	if stmtDate.After(now) {
		return &ValidationError{Msg: fmt.Sprintf("statementDate %s is in the future", in.StatementDate)}
	}
	return nil
}

// summarize groups the batch by company, resolves bracket commission per
// group against each company's schedule and returns the per-company
// summaries plus running totals. Summaries come back in first-appearance
// order of the company in the batch.
func (p *Pipeline) summarize(ctx context.Context, txns []Transaction) ([]CompanySummary, decimal.Decimal, decimal.Decimal, error) {
	groups := make(map[string]decimal.Decimal)
	order := make(map[string]int)
	for i, t := range txns {
		if _, seen := groups[t.CompanyName]; !seen {
			order[t.CompanyName] = i
		}
		groups[t.CompanyName] = groups[t.CompanyName].Add(t.CreditAmount)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return order[names[i]] < order[names[j]] })

	summaries := make([]CompanySummary, 0, len(names))
	totalAmount := decimal.Zero
	totalCommission := decimal.Zero
	for _, name := range names {
		company, err := p.companies.CompanyByName(ctx, name)
		if err != nil {
			return nil, decimal.Zero, decimal.Zero, err
		}
		total := groups[name]
		res, err := commission.Resolve(total, company.Schedule, commission.StrategyBracket)
		if err != nil {
			return nil, decimal.Zero, decimal.Zero, fmt.Errorf("company %s, amount %s: %w", name, total.String(), err)
		}
		summaries = append(summaries, CompanySummary{
			CompanyID:   company.ID,
			CompanyName: company.Name,
			TotalAmount: total,
			Commission:  res.Commission,
			AppliedSlab: res.Applied,
		})
		totalAmount = totalAmount.Add(total)
		totalCommission = totalCommission.Add(res.Commission)
	}
	return summaries, totalAmount, totalCommission, nil
}
