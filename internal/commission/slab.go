package commission

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Slab is a single commission bracket. MaxAmount 0 means the bracket is
// unbounded above; an unbounded slab may only appear at the top of a schedule.
type Slab struct {
	MinAmount int64           `json:"minAmount"`
	MaxAmount int64           `json:"maxAmount"` // 0 = unbounded
	Rate      decimal.Decimal `json:"commissionRate"`
}

// Unbounded reports whether the slab has no upper limit.
func (s Slab) Unbounded() bool {
	return s.MaxAmount == 0
}

// Schedule is a validated list of slabs, sorted ascending by MinAmount.
// Adjacent slabs are contiguous: prev.MaxAmount + 1 == next.MinAmount.
type Schedule []Slab

// SlabError describes a schedule that fails validation. For contiguity
// failures it names the boundary values of the offending pair.
type SlabError struct {
	Reason  string
	PrevMax int64
	NextMin int64
}

func (e *SlabError) Error() string {
	if e.PrevMax != 0 || e.NextMin != 0 {
		return fmt.Sprintf("%s: slab ending at %d is not adjacent to slab starting at %d", e.Reason, e.PrevMax, e.NextMin)
	}
	return e.Reason
}

var (
	hundred = decimal.NewFromInt(100)
)

// ValidateSchedule checks that the given slabs form a contiguous, gapless,
// non-overlapping partition of the amount axis. The input may be unordered;
// the returned Schedule is sorted by MinAmount. An empty input is a valid
// (empty) schedule — resolution against it fails with ErrNoApplicableSlab
// rather than assuming zero commission.
//
// Both company schedules and broker schedules go through this single
// implementation; it must run on every create/update of a slab list.
func ValidateSchedule(slabs []Slab) (Schedule, error) {
	out := make(Schedule, len(slabs))
	copy(out, slabs)
	sort.Slice(out, func(i, j int) bool { return out[i].MinAmount < out[j].MinAmount })

	for i, s := range out {
		if s.MinAmount < 0 || s.MaxAmount < 0 {
			return nil, &SlabError{Reason: fmt.Sprintf("slab amounts cannot be negative (min %d, max %d)", s.MinAmount, s.MaxAmount)}
		}
		if s.Rate.IsNegative() || s.Rate.GreaterThan(hundred) {
			return nil, &SlabError{Reason: fmt.Sprintf("commission rate %s out of range 0-100", s.Rate.String())}
		}
		if s.Unbounded() && i != len(out)-1 {
			return nil, &SlabError{Reason: fmt.Sprintf("unbounded slab starting at %d must be the last slab", s.MinAmount)}
		}
		if !s.Unbounded() && s.MaxAmount < s.MinAmount {
			return nil, &SlabError{Reason: fmt.Sprintf("slab max %d is below slab min %d", s.MaxAmount, s.MinAmount)}
		}
		if i > 0 {
			prev := out[i-1]
			if prev.MaxAmount+1 != s.MinAmount {
				return nil, &SlabError{
					Reason:  "schedule is not contiguous",
					PrevMax: prev.MaxAmount,
					NextMin: s.MinAmount,
				}
			}
		}
	}
	return out, nil
}
