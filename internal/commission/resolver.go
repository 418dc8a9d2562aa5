package commission

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Strategy selects how commission is computed over a schedule. There is no
// default: callers must name one explicitly.
type Strategy string

const (
	// StrategyBracket taxes the whole amount at the single slab covering it.
	// This is the semantic wired into statement processing.
	StrategyBracket Strategy = "bracket"
	// StrategyProgressive sums per-slab contributions for the portion of the
	// amount falling inside each slab, like income-tax brackets. Kept as a
	// named alternative; nothing in the upload path selects it.
	StrategyProgressive Strategy = "progressive"
)

// ErrNoApplicableSlab is returned when no slab in the schedule covers the
// amount (empty schedule, or amount below the first slab).
var ErrNoApplicableSlab = errors.New("no applicable slab for amount")

// Result is the outcome of a resolution: the commission owed and a snapshot
// of the slab that produced it. For the progressive strategy Applied is the
// highest slab the amount reached.
type Result struct {
	Commission decimal.Decimal `json:"commission"`
	Applied    Slab            `json:"appliedSlab"`
}

// Resolve computes the commission owed on total under the given schedule and
// strategy. Pure function: same inputs always yield the same Result.
func Resolve(total decimal.Decimal, schedule Schedule, strategy Strategy) (Result, error) {
	switch strategy {
	case StrategyBracket:
		return resolveBracket(total, schedule)
	case StrategyProgressive:
		return resolveProgressive(total, schedule)
	default:
		return Result{}, fmt.Errorf("unknown commission strategy %q", strategy)
	}
}

// resolveBracket finds the single slab where total >= min and
// (max == 0 or total < max) and applies its rate to the whole amount.
func resolveBracket(total decimal.Decimal, schedule Schedule) (Result, error) {
	for _, s := range schedule {
		min := decimal.NewFromInt(s.MinAmount)
		if total.LessThan(min) {
			continue
		}
		if !s.Unbounded() && !total.LessThan(decimal.NewFromInt(s.MaxAmount)) {
			continue
		}
		return Result{
			Commission: total.Mul(s.Rate).Div(hundred),
			Applied:    s,
		}, nil
	}
	return Result{}, ErrNoApplicableSlab
}

// resolveProgressive walks the schedule bottom-up, charging each slab's rate
// on the portion of total inside that slab.
func resolveProgressive(total decimal.Decimal, schedule Schedule) (Result, error) {
	sum := decimal.Zero
	var applied *Slab
	for i := range schedule {
		s := schedule[i]
		min := decimal.NewFromInt(s.MinAmount)
		if total.LessThan(min) {
			break
		}
		upper := total
		if !s.Unbounded() {
			max := decimal.NewFromInt(s.MaxAmount)
			if upper.GreaterThan(max) {
				upper = max
			}
		}
		portion := upper.Sub(min)
		if portion.IsNegative() {
			portion = decimal.Zero
		}
		sum = sum.Add(portion.Mul(s.Rate).Div(hundred))
		applied = &schedule[i]
	}
	if applied == nil {
		return Result{}, ErrNoApplicableSlab
	}
	return Result{Commission: sum, Applied: *applied}, nil
}
