package score

import "github.com/shopspring/decimal"

// benchmarkPrice returns mean(valid) × kFactor together with the mean.
// An empty valid set or a zero benchmark is a *ComputationError.
func benchmarkPrice(valid []decimal.Decimal, kFactor decimal.Decimal) (benchmark, mean decimal.Decimal, err error) {
	if len(valid) == 0 {
		return decimal.Zero, decimal.Zero, NewComputationError("no valid prices left after outlier trimming, benchmark is undefined")
	}

	mean = decimal.Sum(valid[0], valid[1:]...).Div(decimal.NewFromInt(int64(len(valid))))
	benchmark = mean.Mul(kFactor)
	if benchmark.IsZero() {
		return decimal.Zero, mean, NewComputationError("benchmark price is zero (k_factor %s), deviation is undefined", kFactor)
	}

	return benchmark, mean, nil
}
