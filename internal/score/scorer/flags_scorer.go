package scorer

import (
	"log/slog"
	"slices"

	"bidscore/internal/score"
	"bidscore/internal/score/rule"
)

// FlagsScorer attaches flags to bidder results using a set of CEL rules.
// Every rule is evaluated for every bidder; a bidder gets the flags of all
// rules whose condition holds, in rule order and without duplicates.
type FlagsScorer struct {
	rules []rule.Rule
}

// Flags evaluates all rules against the calculation. The returned slice is
// parallel to calculation.Results; entries without flags are nil.
//
// If a rule evaluation fails, the error is logged and the rule is skipped.
func (fs *FlagsScorer) Flags(calculation *score.CalculationResult) [][]string {
	flags := make([][]string, len(calculation.Results))
	if len(fs.rules) == 0 {
		return flags
	}

	for i, result := range calculation.Results {
		vars := rule.Vars(result, calculation)
		for _, r := range fs.rules {
			flag, err := r.Eval(vars)
			if err != nil {
				slog.Error("rule eval", "error", err, "rule", r.When, "bidder", result.Name)
				continue
			}
			if flag != "" && !slices.Contains(flags[i], flag) {
				flags[i] = append(flags[i], flag)
			}
		}
	}

	return flags
}

// NewFlagsScorer creates a FlagsScorer over compiled rules. A nil or empty
// rule set raises no flags.
func NewFlagsScorer(rules []rule.Rule) *FlagsScorer {
	return &FlagsScorer{rules: rules}
}
