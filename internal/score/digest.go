package score

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Digest computes the audit fingerprint of a calculation.
//
// Formula: SHA256 over the "|"-joined canonical fields of the normalized
// config, the bidders in request order and the result. Numbers are formatted
// to exactly 6 decimal places so the digest does not depend on how a float is
// represented in memory.
func Digest(config *Config, bidders []Bidder, result *CalculationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "k=%s|base=%s|min=%s|max=%s",
		config.KFactor.StringFixed(6),
		config.BaseScore.StringFixed(6),
		config.MinScore.StringFixed(6),
		config.MaxScore.StringFixed(6),
	)
	for _, rule := range config.TrimRules {
		fmt.Fprintf(&b, "|trim=%s:%d:%d", rule.Range, rule.RemoveHigh, rule.RemoveLow)
	}
	fmt.Fprintf(&b, "|high=%s|low=%s", config.High.canonical(), config.Low.canonical())

	for _, bidder := range bidders {
		fmt.Fprintf(&b, "|bidder=%s:%.6f", bidder.Name, bidder.Price)
	}

	fmt.Fprintf(&b, "|benchmark=%.6f|mean=%.6f|valid=%d", result.BenchmarkPrice, result.MeanPrice, result.ValidCount)
	for _, r := range result.Results {
		fmt.Fprintf(&b, "|result=%d:%s:%.6f:%.6f:%d:%s", r.Index, r.Name, r.Deviation, r.Score, r.Rank, r.Outlier)
	}

	hash := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", hash)
}
