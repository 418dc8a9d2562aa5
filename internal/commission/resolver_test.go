package commission

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func standardSchedule(t *testing.T) Schedule {
	t.Helper()
	schedule, err := ValidateSchedule([]Slab{
		{MinAmount: 0, MaxAmount: 50000, Rate: rate("1")},
		{MinAmount: 50001, MaxAmount: 100000, Rate: rate("2")},
		{MinAmount: 100001, MaxAmount: 0, Rate: rate("3")},
	})
	if err != nil {
		t.Fatal(err)
	}
	return schedule
}

func TestResolveBracket(t *testing.T) {
	schedule := standardSchedule(t)

	tests := []struct {
		name           string
		total          string
		wantCommission string
		wantSlabMin    int64
	}{
		{"first slab", "40000", "400", 0},
		{"middle slab", "75000", "1500", 50001},
		{"unbounded slab", "150000", "4500", 100001},
		{"exactly at min", "50001", "1000.02", 50001},
		{"zero amount", "0", "0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, _ := decimal.NewFromString(tt.total)
			res, err := Resolve(total, schedule, StrategyBracket)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want, _ := decimal.NewFromString(tt.wantCommission)
			if !res.Commission.Equal(want) {
				t.Errorf("commission = %s, want %s", res.Commission, want)
			}
			if res.Applied.MinAmount != tt.wantSlabMin {
				t.Errorf("applied slab min = %d, want %d", res.Applied.MinAmount, tt.wantSlabMin)
			}
		})
	}
}

func TestResolveBracketAtUpperBoundMatchesNoSlab(t *testing.T) {
	schedule := standardSchedule(t)

	// The bracket test is total < max and the next slab starts at max+1, so
	// an amount exactly equal to a slab's max sits between the two ranges.
	_, err := Resolve(decimal.NewFromInt(50000), schedule, StrategyBracket)
	if !errors.Is(err, ErrNoApplicableSlab) {
		t.Fatalf("expected ErrNoApplicableSlab at slab boundary, got %v", err)
	}
}

func TestResolveNoApplicableSlab(t *testing.T) {
	schedule, err := ValidateSchedule([]Slab{
		{MinAmount: 10000, MaxAmount: 0, Rate: rate("2")},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = Resolve(decimal.NewFromInt(500), schedule, StrategyBracket)
	if !errors.Is(err, ErrNoApplicableSlab) {
		t.Fatalf("expected ErrNoApplicableSlab, got %v", err)
	}

	_, err = Resolve(decimal.NewFromInt(500), Schedule{}, StrategyBracket)
	if !errors.Is(err, ErrNoApplicableSlab) {
		t.Fatalf("empty schedule: expected ErrNoApplicableSlab, got %v", err)
	}
}

func TestResolveUnknownStrategy(t *testing.T) {
	schedule := standardSchedule(t)
	if _, err := Resolve(decimal.NewFromInt(100), schedule, Strategy("flat")); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestResolveProgressive(t *testing.T) {
	schedule := standardSchedule(t)

	// 150000 progressive: 50000*1% + (100000-50001)*2% + (150000-100001)*3%
	// = 500 + 999.98 + 1499.97 = 2999.95
	res, err := Resolve(decimal.NewFromInt(150000), schedule, StrategyProgressive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := decimal.NewFromString("2999.95")
	if !res.Commission.Equal(want) {
		t.Errorf("commission = %s, want %s", res.Commission, want)
	}
	if res.Applied.MinAmount != 100001 {
		t.Errorf("applied slab min = %d, want 100001", res.Applied.MinAmount)
	}
}

func TestResolveProgressiveBelowFirstSlab(t *testing.T) {
	schedule, err := ValidateSchedule([]Slab{
		{MinAmount: 10000, MaxAmount: 0, Rate: rate("2")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(decimal.NewFromInt(500), schedule, StrategyProgressive); !errors.Is(err, ErrNoApplicableSlab) {
		t.Fatalf("expected ErrNoApplicableSlab, got %v", err)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	schedule := standardSchedule(t)
	total := decimal.NewFromInt(87654)

	first, err := Resolve(total, schedule, StrategyBracket)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		res, err := Resolve(total, schedule, StrategyBracket)
		if err != nil {
			t.Fatal(err)
		}
		if !res.Commission.Equal(first.Commission) || res.Applied != first.Applied {
			t.Fatalf("resolution changed between runs: %+v vs %+v", res, first)
		}
	}
}
