package statement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"BrokerLedger/internal/commission"
	"BrokerLedger/internal/config"
	"BrokerLedger/internal/ledger"
)

type fakeCompanies struct {
	companies map[string]*Company
}

func (f *fakeCompanies) CompanyByName(ctx context.Context, name string) (*Company, error) {
	c, ok := f.companies[name]
	if !ok {
		return nil, &NotFoundError{Kind: "company", Name: name}
	}
	return c, nil
}

type fakeStore struct {
	processed   []*Record
	failed      []*Record
	posts       []LedgerPost
	failPersist error
}

func (f *fakeStore) SaveProcessed(ctx context.Context, rec *Record, post LedgerPost) error {
	if f.failPersist != nil {
		return f.failPersist
	}
	f.processed = append(f.processed, rec)
	f.posts = append(f.posts, post)
	return nil
}

func (f *fakeStore) SaveFailed(ctx context.Context, rec *Record) error {
	f.failed = append(f.failed, rec)
	return nil
}

func testSchedule(t *testing.T) commission.Schedule {
	t.Helper()
	schedule, err := commission.ValidateSchedule([]commission.Slab{
		{MinAmount: 0, MaxAmount: 50000, Rate: decimal.NewFromInt(1)},
		{MinAmount: 50001, MaxAmount: 100000, Rate: decimal.NewFromInt(2)},
		{MinAmount: 100001, MaxAmount: 0, Rate: decimal.NewFromInt(3)},
	})
	if err != nil {
		t.Fatal(err)
	}
	return schedule
}

func testPipeline(t *testing.T, store Store) (*Pipeline, *Index) {
	t.Helper()
	companies := &fakeCompanies{companies: map[string]*Company{
		"Acme Traders": {ID: "c-1", Name: "Acme Traders", Schedule: testSchedule(t)},
		"Globex":       {ID: "c-2", Name: "Globex", Schedule: testSchedule(t)},
	}}
	ix := NewIndex()
	p := NewPipeline(companies, ix, store)
	p.SetClock(func() time.Time { return testNow })
	return p, ix
}

func testUpload(txns ...Transaction) Upload {
	return Upload{
		FileName:      "june.csv",
		FileType:      "csv",
		StatementDate: "10-06-2024",
		Transactions:  txns,
	}
}

func TestProcessHappyPath(t *testing.T) {
	store := &fakeStore{}
	p, ix := testPipeline(t, store)

	tx1 := validTransaction() // Acme, 25000
	tx2 := validTransaction()
	tx2.AccountNo = "ACC-002"
	tx2.CreditAmount = decimal.NewFromInt(125000)
	tx3 := validTransaction()
	tx3.CompanyName = "Globex"
	tx3.CreditAmount = decimal.NewFromInt(40000)

	rec, err := p.Process(context.Background(), "user-1", testUpload(tx1, tx2, tx3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != StatusProcessed {
		t.Errorf("status = %s, want %s", rec.Status, StatusProcessed)
	}
	if len(rec.Summaries) != 2 {
		t.Fatalf("expected 2 company summaries, got %d", len(rec.Summaries))
	}
	// Companies summarized in first-appearance order.
	if rec.Summaries[0].CompanyName != "Acme Traders" || rec.Summaries[1].CompanyName != "Globex" {
		t.Errorf("summary order wrong: %s, %s", rec.Summaries[0].CompanyName, rec.Summaries[1].CompanyName)
	}

	// Acme total 150000 hits the 3% slab: commission 4500.
	if want := decimal.NewFromInt(4500); !rec.Summaries[0].Commission.Equal(want) {
		t.Errorf("Acme commission = %s, want %s", rec.Summaries[0].Commission, want)
	}
	// Globex total 40000 hits the 1% slab: commission 400.
	if want := decimal.NewFromInt(400); !rec.Summaries[1].Commission.Equal(want) {
		t.Errorf("Globex commission = %s, want %s", rec.Summaries[1].Commission, want)
	}
	if want := decimal.NewFromInt(190000); !rec.TotalAmount.Equal(want) {
		t.Errorf("total amount = %s, want %s", rec.TotalAmount, want)
	}
	if want := decimal.NewFromInt(4900); !rec.TotalCommission.Equal(want) {
		t.Errorf("total commission = %s, want %s", rec.TotalCommission, want)
	}

	if len(store.posts) != 1 {
		t.Fatalf("expected 1 ledger post, got %d", len(store.posts))
	}
	post := store.posts[0]
	if post.Year != "2024" || post.Month != "june" {
		t.Errorf("ledger keys = %s/%s, want 2024/june", post.Year, post.Month)
	}
	if !post.Delta.Equal(rec.TotalCommission) {
		t.Errorf("posted delta = %s, want %s", post.Delta, rec.TotalCommission)
	}

	// The accepted batch is now duplicate history.
	if !ix.Contains("user-1", FingerprintOf(tx1)) {
		t.Error("accepted transaction missing from duplicate index")
	}
}

func TestProcessRejectsDuplicateBatch(t *testing.T) {
	store := &fakeStore{}
	p, _ := testPipeline(t, store)
	up := testUpload(validTransaction())

	if _, err := p.Process(context.Background(), "user-1", up); err != nil {
		t.Fatalf("first upload should succeed: %v", err)
	}
	rec, err := p.Process(context.Background(), "user-1", up)
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if rec != nil {
		t.Error("duplicate batch must not produce a record")
	}
	if len(store.processed) != 1 || len(store.posts) != 1 {
		t.Errorf("duplicate batch touched the store: %d records, %d posts", len(store.processed), len(store.posts))
	}
}

func TestProcessRejectsInvalidRowWithoutRecord(t *testing.T) {
	store := &fakeStore{}
	p, ix := testPipeline(t, store)

	bad := validTransaction()
	bad.CreditAmount = decimal.Zero

	rec, err := p.Process(context.Background(), "user-1", testUpload(validTransaction(), bad))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if rec != nil {
		t.Error("invalid batch must not produce a record")
	}
	if len(store.processed) != 0 || len(store.failed) != 0 {
		t.Error("invalid batch must not touch the store")
	}
	if ix.Contains("user-1", FingerprintOf(validTransaction())) {
		t.Error("rejected batch must not enter duplicate history")
	}
}

func TestProcessUnknownCompanyFailsWholeBatch(t *testing.T) {
	store := &fakeStore{}
	p, _ := testPipeline(t, store)

	stranger := validTransaction()
	stranger.CompanyName = "Unknown Corp"

	rec, err := p.Process(context.Background(), "user-1", testUpload(validTransaction(), stranger))
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
	if rec != nil {
		t.Error("unknown company must not produce a record")
	}
	if len(store.processed) != 0 || len(store.posts) != 0 {
		t.Error("unknown company must not touch the store or ledger")
	}
}

func TestProcessPersistFailureYieldsFailedRecord(t *testing.T) {
	store := &fakeStore{failPersist: errors.New("connection reset")}
	p, ix := testPipeline(t, store)

	rec, err := p.Process(context.Background(), "user-1", testUpload(validTransaction()))
	var le *ledger.LedgerError
	if !errors.As(err, &le) {
		t.Fatalf("expected *ledger.LedgerError, got %v", err)
	}
	if rec == nil || rec.Status != StatusFailed {
		t.Fatalf("expected a failed record, got %+v", rec)
	}
	if rec.Error == "" {
		t.Error("failed record should carry the error")
	}
	if len(store.failed) != 1 {
		t.Errorf("expected 1 failed record stored, got %d", len(store.failed))
	}
	if ix.Contains("user-1", FingerprintOf(validTransaction())) {
		t.Error("failed batch must not enter duplicate history")
	}
}

func TestProcessConcurrentIdenticalBatchesPostOnce(t *testing.T) {
	store := &fakeStore{}
	p, _ := testPipeline(t, store)
	up := testUpload(validTransaction())

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = p.Process(context.Background(), "user-1", up)
		}(i)
	}
	wg.Wait()

	var accepted, conflicts int
	for _, err := range results {
		var ce *ConflictError
		switch {
		case err == nil:
			accepted++
		case errors.As(err, &ce):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if accepted != 1 || conflicts != 1 {
		t.Fatalf("accepted=%d conflicts=%d, want exactly one of each", accepted, conflicts)
	}
	if len(store.processed) != 1 || len(store.posts) != 1 {
		t.Fatalf("store saw %d records and %d posts, want 1 and 1 (double post)", len(store.processed), len(store.posts))
	}
}

func TestProcessStructuralChecks(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		mutate func(*Upload)
	}{
		{"missing user", "", func(u *Upload) {}},
		{"empty batch", "user-1", func(u *Upload) { u.Transactions = nil }},
		{"oversized batch", "user-1", func(u *Upload) {
			txns := make([]Transaction, config.MaxBatchTransactions+1)
			for i := range txns {
				txns[i] = validTransaction()
			}
			u.Transactions = txns
		}},
		{"missing file name", "user-1", func(u *Upload) { u.FileName = "" }},
		{"bad file type", "user-1", func(u *Upload) { u.FileType = "pdf" }},
		{"bad statement date", "user-1", func(u *Upload) { u.StatementDate = "2024-06-10" }},
		{"future statement date", "user-1", func(u *Upload) { u.StatementDate = "16-06-2024" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			p, _ := testPipeline(t, store)
			up := testUpload(validTransaction())
			tt.mutate(&up)

			rec, err := p.Process(context.Background(), tt.userID, up)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if rec != nil {
				t.Error("structural failure must not produce a record")
			}
		})
	}
}
