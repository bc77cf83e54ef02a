package score

import (
	"github.com/shopspring/decimal"
)

// resultPrecision is the number of decimal places of reported prices,
// deviations and scores.
const resultPrecision int32 = 2

// Calculator scores bidder lists against one validated configuration.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	config *Config
}

// NewCalculator validates raw and returns a calculator bound to the result.
// Validation failures are returned as *ConfigError.
func NewCalculator(raw RawConfig) (*Calculator, error) {
	config, err := Validate(raw)
	if err != nil {
		return nil, err
	}
	return &Calculator{config: config}, nil
}

// Config returns the normalized configuration.
func (c *Calculator) Config() *Config {
	return c.config
}

// Calculate runs the scoring pipeline:
//  1. validate the bidder list
//  2. pick the trim rule for the bidder count and exclude outliers
//  3. compute the benchmark from the remaining prices
//  4. score every bidder, outliers included, and clamp
//  5. assign dense ranks
//
// Errors are *InputError or *ComputationError; no partial result is returned.
func (c *Calculator) Calculate(bidders []Bidder) (*CalculationResult, error) {
	if err := ValidateBidders(bidders); err != nil {
		return nil, err
	}

	prices := make([]decimal.Decimal, len(bidders))
	for i, bidder := range bidders {
		prices[i] = decimal.NewFromFloat(bidder.Price)
	}

	rule, _ := SelectTrimRule(c.config.TrimRules, len(bidders))
	valid, sides := trimOutliers(prices, rule)

	benchmark, mean, err := benchmarkPrice(valid, c.config.KFactor)
	if err != nil {
		return nil, err
	}

	results := make([]BidderResult, len(bidders))
	for i, bidder := range bidders {
		dev := deviation(prices[i], benchmark)
		score := c.config.clamp(c.config.rawScore(dev).Round(resultPrecision))
		results[i] = BidderResult{
			Name:      bidder.Name,
			Price:     bidder.Price,
			Deviation: dev.Round(resultPrecision).InexactFloat64(),
			Score:     score.InexactFloat64(),
			Index:     i,
			Outlier:   sides[i],
		}
	}
	assignRanks(results)

	return &CalculationResult{
		BenchmarkPrice: benchmark.Round(resultPrecision).InexactFloat64(),
		MeanPrice:      mean.Round(resultPrecision).InexactFloat64(),
		ValidCount:     len(valid),
		Results:        results,
	}, nil
}

// Calculate validates raw and scores bidders in one call. Configuration is
// checked before the bidder list.
func Calculate(raw RawConfig, bidders []Bidder) (*CalculationResult, error) {
	calculator, err := NewCalculator(raw)
	if err != nil {
		return nil, err
	}
	return calculator.Calculate(bidders)
}
