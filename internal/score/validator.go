package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	defaultMinScore = 0.0
	defaultMaxScore = 100.0
	// openDeviation is the max_dev value that conventionally means "no upper bound".
	openDeviation = 100.0
)

// Validate checks raw and returns the normalized configuration.
// The first problem found is returned as a *ConfigError naming the field.
// min_score and max_score default to 0 and 100; every other field is required.
func Validate(raw RawConfig) (*Config, error) {
	kFactor, err := requiredInRange("k_factor", raw.KFactor, 0, 1)
	if err != nil {
		return nil, err
	}

	baseScore, err := requiredInRange("base_score", raw.BaseScore, 0, 100)
	if err != nil {
		return nil, err
	}

	minScore, err := optionalInRange("min_score", raw.MinScore, defaultMinScore, 0, 100)
	if err != nil {
		return nil, err
	}

	maxScore, err := optionalInRange("max_score", raw.MaxScore, defaultMaxScore, 0, 100)
	if err != nil {
		return nil, err
	}

	if minScore.GreaterThan(maxScore) {
		return nil, NewConfigError("min_score", "must not exceed max_score (%s > %s)", minScore, maxScore)
	}

	trimRules, err := validateOutlierRules(raw.OutlierRules)
	if err != nil {
		return nil, err
	}

	high, err := validatePriceSide(raw.highSide())
	if err != nil {
		return nil, err
	}

	low, err := validatePriceSide(raw.lowSide())
	if err != nil {
		return nil, err
	}

	return &Config{
		KFactor:   kFactor,
		BaseScore: baseScore,
		MinScore:  minScore,
		MaxScore:  maxScore,
		TrimRules: trimRules,
		High:      high,
		Low:       low,
	}, nil
}

// ValidateBidders checks that the list is non-empty, names are non-empty and
// unique, and every price is a positive finite number.
func ValidateBidders(bidders []Bidder) error {
	if len(bidders) == 0 {
		return NewInputError("bidders", "must not be empty")
	}

	seen := make(map[string]int, len(bidders))
	for i, bidder := range bidders {
		name := strings.TrimSpace(bidder.Name)
		if name == "" {
			return NewInputError(fmt.Sprintf("bidders[%d].name", i), "must not be empty")
		}
		if j, dup := seen[name]; dup {
			return NewInputError(fmt.Sprintf("bidders[%d].name", i), "duplicate name %q (also bidders[%d])", name, j)
		}
		seen[name] = i

		if !isFinite(bidder.Price) || bidder.Price <= 0 {
			return NewInputError(fmt.Sprintf("bidders[%d].price", i), "must be a positive number, got %v", bidder.Price)
		}
	}

	return nil
}

func validateOutlierRules(rules []OutlierRule) ([]TrimRule, error) {
	if rules == nil {
		return nil, NewConfigError("outlier_rules", "must be specified")
	}

	trimRules := make([]TrimRule, 0, len(rules))
	for i, rule := range rules {
		field := fmt.Sprintf("outlier_rules[%d]", i)
		if rule.MinCount < 0 {
			return nil, NewConfigError(field+".min_count", "must be >= 0, got %d", rule.MinCount)
		}
		if rule.RemoveHigh < 0 {
			return nil, NewConfigError(field+".remove_high", "must be >= 0, got %d", rule.RemoveHigh)
		}
		if rule.RemoveLow < 0 {
			return nil, NewConfigError(field+".remove_low", "must be >= 0, got %d", rule.RemoveLow)
		}
		if rule.MaxCount != nil && *rule.MaxCount <= rule.MinCount {
			return nil, NewConfigError(field+".max_count", "must be greater than min_count (%d), got %d", rule.MinCount, *rule.MaxCount)
		}

		if i > 0 {
			prev := rules[i-1]
			if prev.MaxCount == nil {
				return nil, NewConfigError(fmt.Sprintf("outlier_rules[%d].max_count", i-1), "only the last rule may be unbounded; rules match by count range, so give each earlier rule a max_count equal to the next min_count")
			}
			if rule.MinCount < *prev.MaxCount {
				return nil, NewConfigError(field+".min_count", "overlaps the previous rule ending at %d", *prev.MaxCount)
			}
		}

		countRange := CountRange{Min: rule.MinCount, Unbounded: rule.MaxCount == nil}
		if rule.MaxCount != nil {
			countRange.Max = *rule.MaxCount
		}
		trimRules = append(trimRules, TrimRule{
			Range:      countRange,
			RemoveHigh: rule.RemoveHigh,
			RemoveLow:  rule.RemoveLow,
		})
	}

	return trimRules, nil
}

func validatePriceSide(side priceSide) (PriceRule, error) {
	forms := 0
	if side.def != nil {
		forms++
	}
	if len(side.intervals) > 0 {
		forms++
	}
	if side.typ != "" || side.factor != nil {
		forms++
	}

	switch {
	case forms == 0:
		return nil, NewConfigError(side.name+"_rules", "no rule configured: set %s_rule, %s_rules or %s_type with %s_factor",
			side.name, side.name, side.name, side.name)
	case forms > 1:
		return nil, NewConfigError(side.name+"_rules", "ambiguous rule: set only one of %s_rule, %s_rules or %s_type with %s_factor",
			side.name, side.name, side.name, side.name)
	}

	if side.def != nil {
		return validatePriceRuleDef(side.name+"_rule", side.def)
	}
	if len(side.intervals) > 0 {
		return validateIntervals(side.name+"_rules", side.intervals)
	}

	if side.typ == "" {
		return nil, NewConfigError(side.name+"_type", "must be specified together with %s_factor", side.name)
	}
	if side.factor == nil {
		return nil, NewConfigError(side.name+"_factor", "must be specified together with %s_type", side.name)
	}
	adjustment, err := validateAdjustment(side.name+"_type", side.typ, side.name+"_factor", *side.factor)
	if err != nil {
		return nil, err
	}
	return Monotonic{Adjustment: adjustment}, nil
}

func validatePriceRuleDef(field string, def *PriceRuleDef) (PriceRule, error) {
	switch def.Mode {
	case ModeMonotonic:
		if len(def.Intervals) > 0 {
			return nil, NewConfigError(field+".intervals", "must be empty in %s mode", ModeMonotonic)
		}
		if def.Factor == nil {
			return nil, NewConfigError(field+".factor", "must be specified")
		}
		adjustment, err := validateAdjustment(field+".type", def.Type, field+".factor", *def.Factor)
		if err != nil {
			return nil, err
		}
		return Monotonic{Adjustment: adjustment}, nil
	case ModeStepped:
		if def.Type != "" || def.Factor != nil {
			return nil, NewConfigError(field, "type and factor belong to the intervals in %s mode", ModeStepped)
		}
		if len(def.Intervals) == 0 {
			return nil, NewConfigError(field+".intervals", "must not be empty")
		}
		return validateIntervals(field+".intervals", def.Intervals)
	default:
		return nil, NewConfigError(field+".mode", "must be %q or %q, got %q", ModeMonotonic, ModeStepped, def.Mode)
	}
}

func validateIntervals(field string, rules []IntervalRule) (PriceRule, error) {
	intervals := make([]Interval, 0, len(rules))
	for i, rule := range rules {
		ruleField := fmt.Sprintf("%s[%d]", field, i)
		last := i == len(rules)-1

		if !isFinite(rule.MinDev) || rule.MinDev < 0 {
			return nil, NewConfigError(ruleField+".min_dev", "must be a number >= 0, got %v", rule.MinDev)
		}
		if i == 0 && rule.MinDev != 0 {
			return nil, NewConfigError(ruleField+".min_dev", "first interval must start at 0, got %v", rule.MinDev)
		}
		if i > 0 && rule.MinDev != *rules[i-1].MaxDev {
			return nil, NewConfigError(ruleField+".min_dev", "must equal the previous max_dev (%v), got %v", *rules[i-1].MaxDev, rule.MinDev)
		}

		deviationRange := DeviationRange{Min: decimal.NewFromFloat(rule.MinDev)}
		switch {
		case rule.MaxDev == nil && !last:
			return nil, NewConfigError(ruleField+".max_dev", "must be specified on every interval but the last")
		case rule.MaxDev == nil:
			deviationRange.Unbounded = true
		case !isFinite(*rule.MaxDev) || *rule.MaxDev <= rule.MinDev:
			return nil, NewConfigError(ruleField+".max_dev", "must be greater than min_dev (%v), got %v", rule.MinDev, *rule.MaxDev)
		case last && *rule.MaxDev >= openDeviation:
			deviationRange.Unbounded = true
		default:
			deviationRange.Max = decimal.NewFromFloat(*rule.MaxDev)
		}

		adjustment, err := validateAdjustment(ruleField+".type", rule.Type, ruleField+".factor", rule.Factor)
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, Interval{Range: deviationRange, Adjustment: adjustment})
	}

	return Stepped{Intervals: intervals}, nil
}

func validateAdjustment(typeField, typ, factorField string, factor float64) (Adjustment, error) {
	adjustmentType := AdjustmentType(typ)
	if !adjustmentType.valid() {
		return Adjustment{}, NewConfigError(typeField, "must be %q or %q, got %q", Add, Deduct, typ)
	}
	if !isFinite(factor) || factor < 0 {
		return Adjustment{}, NewConfigError(factorField, "must be a number >= 0, got %v", factor)
	}
	return Adjustment{Type: adjustmentType, Factor: decimal.NewFromFloat(factor)}, nil
}

func requiredInRange(field string, value *float64, lo, hi float64) (decimal.Decimal, error) {
	if value == nil {
		return decimal.Decimal{}, NewConfigError(field, "must be specified")
	}
	return inRange(field, *value, lo, hi)
}

func optionalInRange(field string, value *float64, fallback, lo, hi float64) (decimal.Decimal, error) {
	if value == nil {
		return decimal.NewFromFloat(fallback), nil
	}
	return inRange(field, *value, lo, hi)
}

func inRange(field string, value, lo, hi float64) (decimal.Decimal, error) {
	if !isFinite(value) || value < lo || value > hi {
		return decimal.Decimal{}, NewConfigError(field, "must be within [%v, %v], got %v", lo, hi, value)
	}
	return decimal.NewFromFloat(value), nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
