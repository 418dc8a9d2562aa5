package commission

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func rate(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestValidateScheduleAcceptsContiguousSlabs(t *testing.T) {
	schedule, err := ValidateSchedule([]Slab{
		{MinAmount: 0, MaxAmount: 50000, Rate: rate("1")},
		{MinAmount: 50001, MaxAmount: 100000, Rate: rate("2")},
		{MinAmount: 100001, MaxAmount: 0, Rate: rate("3")},
	})
	if err != nil {
		t.Fatalf("expected valid schedule, got %v", err)
	}
	if len(schedule) != 3 {
		t.Fatalf("expected 3 slabs, got %d", len(schedule))
	}
}

func TestValidateScheduleSortsUnorderedInput(t *testing.T) {
	schedule, err := ValidateSchedule([]Slab{
		{MinAmount: 100001, MaxAmount: 0, Rate: rate("3")},
		{MinAmount: 0, MaxAmount: 50000, Rate: rate("1")},
		{MinAmount: 50001, MaxAmount: 100000, Rate: rate("2")},
	})
	if err != nil {
		t.Fatalf("expected valid schedule, got %v", err)
	}
	for i := 1; i < len(schedule); i++ {
		if schedule[i].MinAmount <= schedule[i-1].MinAmount {
			t.Fatalf("schedule not sorted at index %d: %+v", i, schedule)
		}
	}
}

func TestValidateScheduleEmptyIsValid(t *testing.T) {
	schedule, err := ValidateSchedule(nil)
	if err != nil {
		t.Fatalf("empty schedule should validate, got %v", err)
	}
	if len(schedule) != 0 {
		t.Fatalf("expected empty schedule, got %d slabs", len(schedule))
	}
}

func TestValidateScheduleRejections(t *testing.T) {
	tests := []struct {
		name  string
		slabs []Slab
	}{
		{
			name: "gap between slabs",
			slabs: []Slab{
				{MinAmount: 0, MaxAmount: 50000, Rate: rate("1")},
				{MinAmount: 60000, MaxAmount: 0, Rate: rate("2")},
			},
		},
		{
			name: "overlapping slabs",
			slabs: []Slab{
				{MinAmount: 0, MaxAmount: 50000, Rate: rate("1")},
				{MinAmount: 40000, MaxAmount: 0, Rate: rate("2")},
			},
		},
		{
			name: "unbounded slab not last",
			slabs: []Slab{
				{MinAmount: 0, MaxAmount: 0, Rate: rate("1")},
				{MinAmount: 1, MaxAmount: 50000, Rate: rate("2")},
			},
		},
		{
			name: "max below min",
			slabs: []Slab{
				{MinAmount: 100, MaxAmount: 50, Rate: rate("1")},
			},
		},
		{
			name: "negative rate",
			slabs: []Slab{
				{MinAmount: 0, MaxAmount: 0, Rate: rate("-1")},
			},
		},
		{
			name: "rate above 100",
			slabs: []Slab{
				{MinAmount: 0, MaxAmount: 0, Rate: rate("101")},
			},
		},
		{
			name: "negative min",
			slabs: []Slab{
				{MinAmount: -10, MaxAmount: 0, Rate: rate("1")},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateSchedule(tt.slabs)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var se *SlabError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SlabError, got %T", err)
			}
		})
	}
}

func TestValidateScheduleContiguityErrorNamesBoundary(t *testing.T) {
	_, err := ValidateSchedule([]Slab{
		{MinAmount: 0, MaxAmount: 50000, Rate: rate("1")},
		{MinAmount: 60000, MaxAmount: 0, Rate: rate("2")},
	})
	var se *SlabError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SlabError, got %v", err)
	}
	if se.PrevMax != 50000 || se.NextMin != 60000 {
		t.Fatalf("expected boundary 50000/60000, got %d/%d", se.PrevMax, se.NextMin)
	}
}
