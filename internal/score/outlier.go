package score

import (
	"slices"

	"github.com/shopspring/decimal"
)

// SelectTrimRule returns the first rule whose count range contains n.
// When no rule matches, the zero TrimRule (remove nothing) and false are returned.
func SelectTrimRule(rules []TrimRule, n int) (TrimRule, bool) {
	for _, rule := range rules {
		if rule.Range.Contains(n) {
			return rule, true
		}
	}
	return TrimRule{}, false
}

// trimOutliers sorts prices ascending, with request order as the secondary
// key, and drops the rule's highest and lowest entries. It returns the
// remaining prices in ascending order and the outlier side of every input
// position. When RemoveHigh+RemoveLow >= len(prices) no price remains.
func trimOutliers(prices []decimal.Decimal, rule TrimRule) ([]decimal.Decimal, []string) {
	n := len(prices)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := prices[a].Cmp(prices[b]); c != 0 {
			return c
		}
		return a - b
	})

	high := min(rule.RemoveHigh, n)
	low := min(rule.RemoveLow, n-high)

	sides := make([]string, n)
	for _, i := range order[n-high:] {
		sides[i] = OutlierHigh
	}
	for _, i := range order[:low] {
		sides[i] = OutlierLow
	}

	valid := make([]decimal.Decimal, 0, n-high-low)
	for _, i := range order[low : n-high] {
		valid = append(valid, prices[i])
	}

	return valid, sides
}
