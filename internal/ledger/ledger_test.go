package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAggregatorPostIsAdditive(t *testing.T) {
	agg := NewAggregator(NewMemoryStore())
	ctx := context.Background()

	deltas := []int64{5000, -1500, 300}
	for _, d := range deltas {
		if err := agg.Post(ctx, "user-1", "2024", "june", decimal.NewFromInt(d)); err != nil {
			t.Fatal(err)
		}
	}

	l, err := agg.Read(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if want := decimal.NewFromInt(3800); !l.Get("2024", "june").Equal(want) {
		t.Errorf("balance = %s, want %s", l.Get("2024", "june"), want)
	}
}

func TestAggregatorPostRequiresUser(t *testing.T) {
	agg := NewAggregator(NewMemoryStore())
	if err := agg.Post(context.Background(), "", "2024", "june", decimal.NewFromInt(1)); err == nil {
		t.Fatal("expected error for missing user id")
	}
}

func TestAggregatorConcurrentPostsLoseNothing(t *testing.T) {
	agg := NewAggregator(NewMemoryStore())
	ctx := context.Background()

	const workers = 50
	const postsPerWorker = 20
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < postsPerWorker; i++ {
				if err := agg.Post(ctx, "user-1", "2024", "june", decimal.NewFromInt(10)); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	l, err := agg.Read(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	want := decimal.NewFromInt(workers * postsPerWorker * 10)
	if !l.Get("2024", "june").Equal(want) {
		t.Errorf("balance = %s, want %s (lost updates)", l.Get("2024", "june"), want)
	}
}

func TestAdvanceDelta(t *testing.T) {
	amount := decimal.NewFromInt(5000)

	given, err := AdvanceDelta(AdvanceGiven, amount)
	if err != nil {
		t.Fatal(err)
	}
	if !given.Equal(decimal.NewFromInt(-5000)) {
		t.Errorf("given delta = %s, want -5000", given)
	}

	received, err := AdvanceDelta(AdvanceReceived, amount)
	if err != nil {
		t.Fatal(err)
	}
	if !received.Equal(amount) {
		t.Errorf("received delta = %s, want 5000", received)
	}

	if _, err := AdvanceDelta(AdvanceKind("loaned"), amount); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestAdjustTogglesAdvanceInOneIncrement(t *testing.T) {
	agg := NewAggregator(NewMemoryStore())
	ctx := context.Background()
	amount := decimal.NewFromInt(5000)

	// Advance given: ledger goes to -5000.
	oldDelta, _ := AdvanceDelta(AdvanceGiven, amount)
	if err := agg.Post(ctx, "user-1", "2024", "june", oldDelta); err != nil {
		t.Fatal(err)
	}

	// Toggle to received: final balance must be +5000, via one increment.
	newDelta, _ := AdvanceDelta(AdvanceReceived, amount)
	if err := agg.Adjust(ctx, "user-1", "2024", "june", oldDelta, newDelta); err != nil {
		t.Fatal(err)
	}

	l, err := agg.Read(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if !l.Get("2024", "june").Equal(amount) {
		t.Errorf("balance after toggle = %s, want 5000", l.Get("2024", "june"))
	}
}

func TestAdjustNoOpWhenUnchanged(t *testing.T) {
	agg := NewAggregator(NewMemoryStore())
	ctx := context.Background()
	d := decimal.NewFromInt(100)
	if err := agg.Adjust(ctx, "", "2024", "june", d, d); err != nil {
		t.Fatalf("equal deltas should be a no-op even without a user: %v", err)
	}
}

func TestLedgerGetAbsentIsZero(t *testing.T) {
	l := make(Ledger)
	if !l.Get("2024", "june").IsZero() {
		t.Error("absent entry should read as zero")
	}
}

func TestKeys(t *testing.T) {
	year, month := Keys(time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC))
	if year != "2024" || month != "june" {
		t.Errorf("Keys = %s/%s, want 2024/june", year, month)
	}
	if MonthKey(time.December) != "december" {
		t.Errorf("MonthKey = %s, want december", MonthKey(time.December))
	}
}
