package score

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AdjustmentType tells whether deviation adds to or deducts from the base score.
type AdjustmentType string

const (
	Add    AdjustmentType = "add"
	Deduct AdjustmentType = "deduct"
)

func (t AdjustmentType) valid() bool {
	return t == Add || t == Deduct
}

// CountRange is a half-open range [Min, Max) of bidder counts.
// When Unbounded is set Max is ignored.
type CountRange struct {
	Min       int
	Max       int
	Unbounded bool
}

// Contains reports whether n falls into the range.
func (r CountRange) Contains(n int) bool {
	return n >= r.Min && (r.Unbounded || n < r.Max)
}

func (r CountRange) String() string {
	if r.Unbounded {
		return fmt.Sprintf("[%d,inf)", r.Min)
	}
	return fmt.Sprintf("[%d,%d)", r.Min, r.Max)
}

// DeviationRange is a half-open range [Min, Max) of absolute deviation percentages.
type DeviationRange struct {
	Min       decimal.Decimal
	Max       decimal.Decimal
	Unbounded bool
}

// Contains reports whether the absolute deviation d falls into the range.
func (r DeviationRange) Contains(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(r.Min) && (r.Unbounded || d.LessThan(r.Max))
}

func (r DeviationRange) String() string {
	if r.Unbounded {
		return "[" + r.Min.StringFixed(6) + ",inf)"
	}
	return "[" + r.Min.StringFixed(6) + "," + r.Max.StringFixed(6) + ")"
}

// TrimRule removes the RemoveHigh highest and RemoveLow lowest prices from the
// benchmark computation when the bidder count falls into Range.
type TrimRule struct {
	Range      CountRange
	RemoveHigh int
	RemoveLow  int
}

// Adjustment is the score change per 1% of absolute deviation.
type Adjustment struct {
	Type   AdjustmentType
	Factor decimal.Decimal
}

// apply returns base ± absDev × factor.
func (a Adjustment) apply(base, absDev decimal.Decimal) decimal.Decimal {
	delta := absDev.Mul(a.Factor)
	if a.Type == Add {
		return base.Add(delta)
	}
	return base.Sub(delta)
}

func (a Adjustment) String() string {
	return string(a.Type) + ":" + a.Factor.StringFixed(6)
}

// PriceRule maps an absolute deviation on one price side to an Adjustment.
// It is either Monotonic or Stepped.
type PriceRule interface {
	adjustmentFor(absDev decimal.Decimal) Adjustment
	canonical() string
}

// Monotonic applies one adjustment to the whole deviation range.
type Monotonic struct {
	Adjustment
}

func (m Monotonic) adjustmentFor(decimal.Decimal) Adjustment {
	return m.Adjustment
}

func (m Monotonic) canonical() string {
	return "monotonic:" + m.Adjustment.String()
}

// Interval is one band of a Stepped rule.
type Interval struct {
	Range DeviationRange
	Adjustment
}

// Stepped applies the adjustment of the band containing the deviation.
// Bands are contiguous and start at 0; a deviation beyond the last band uses
// the last band's adjustment.
type Stepped struct {
	Intervals []Interval
}

func (s Stepped) adjustmentFor(absDev decimal.Decimal) Adjustment {
	for _, interval := range s.Intervals {
		if interval.Range.Contains(absDev) {
			return interval.Adjustment
		}
	}
	return s.Intervals[len(s.Intervals)-1].Adjustment
}

func (s Stepped) canonical() string {
	parts := make([]string, len(s.Intervals))
	for i, interval := range s.Intervals {
		parts[i] = interval.Range.String() + ":" + interval.Adjustment.String()
	}
	return "stepped:" + strings.Join(parts, ",")
}

// Config is a validated scoring configuration. Build it with Validate.
type Config struct {
	KFactor   decimal.Decimal
	BaseScore decimal.Decimal
	MinScore  decimal.Decimal
	MaxScore  decimal.Decimal
	TrimRules []TrimRule
	High      PriceRule
	Low       PriceRule
}
