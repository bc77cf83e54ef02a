package score

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// deviation returns the signed percentage (price - benchmark) / benchmark × 100.
func deviation(price, benchmark decimal.Decimal) decimal.Decimal {
	return price.Sub(benchmark).Mul(hundred).Div(benchmark)
}

// rawScore maps a signed deviation to an unclamped score. Positive deviations
// use the high-price rule, negative ones the low-price rule on |deviation|, and
// a zero deviation scores BaseScore.
func (c *Config) rawScore(dev decimal.Decimal) decimal.Decimal {
	var rule PriceRule
	switch dev.Sign() {
	case 0:
		return c.BaseScore
	case 1:
		rule = c.High
	default:
		rule = c.Low
	}

	absDev := dev.Abs()
	return rule.adjustmentFor(absDev).apply(c.BaseScore, absDev)
}

// clamp bounds a score to [MinScore, MaxScore].
func (c *Config) clamp(score decimal.Decimal) decimal.Decimal {
	switch {
	case score.LessThan(c.MinScore):
		return c.MinScore
	case score.GreaterThan(c.MaxScore):
		return c.MaxScore
	default:
		return score
	}
}
