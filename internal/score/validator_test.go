package score

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_DefaultsScoreBounds(t *testing.T) {
	config, err := Validate(monotonicConfig(0.95, 40, "deduct", 0.3, "add", 0.3))
	require.NoError(t, err)

	assert.Equal(t, "0", config.MinScore.String())
	assert.Equal(t, "100", config.MaxScore.String())
	assert.IsType(t, Monotonic{}, config.High)
	assert.IsType(t, Monotonic{}, config.Low)
}

func TestValidate_BaseScoreMayLieOutsideClampBounds(t *testing.T) {
	raw := monotonicConfig(1, 90, "deduct", 1, "deduct", 1)
	raw.MinScore = ptr(10.0)
	raw.MaxScore = ptr(50.0)

	_, err := Validate(raw)
	assert.NoError(t, err)
}

func TestValidate_NormalizesOpenLastInterval(t *testing.T) {
	raw := monotonicConfig(1, 50, "deduct", 1, "deduct", 1)
	raw.HighPriceType, raw.HighPriceFactor = "", nil
	raw.HighPriceRules = []IntervalRule{
		{MinDev: 0, MaxDev: ptr(3.0), Type: "deduct", Factor: 1},
		{MinDev: 3, MaxDev: ptr(100.0), Type: "deduct", Factor: 2},
	}

	config, err := Validate(raw)
	require.NoError(t, err)

	stepped, ok := config.High.(Stepped)
	require.True(t, ok)
	require.Len(t, stepped.Intervals, 2)
	assert.False(t, stepped.Intervals[0].Range.Unbounded)
	assert.True(t, stepped.Intervals[1].Range.Unbounded)
}

func TestValidate_UnboundedLastOutlierRule(t *testing.T) {
	raw := monotonicConfig(1, 50, "deduct", 1, "deduct", 1)
	raw.OutlierRules = []OutlierRule{
		{MinCount: 0, MaxCount: ptr(5)},
		{MinCount: 5, RemoveHigh: 1, RemoveLow: 1},
	}

	config, err := Validate(raw)
	require.NoError(t, err)

	require.Len(t, config.TrimRules, 2)
	assert.Equal(t, CountRange{Min: 0, Max: 5}, config.TrimRules[0].Range)
	assert.Equal(t, CountRange{Min: 5, Unbounded: true}, config.TrimRules[1].Range)
}

func TestValidate_OpenEndedOutlierRulesNeedMaxCount(t *testing.T) {
	raw := monotonicConfig(1, 50, "deduct", 1, "deduct", 1)
	raw.OutlierRules = []OutlierRule{
		{MinCount: 3, RemoveHigh: 1, RemoveLow: 1},
		{MinCount: 7, RemoveHigh: 2, RemoveLow: 2},
	}

	_, err := Validate(raw)

	var configErr *ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "outlier_rules[0].max_count", configErr.Field)
	assert.Contains(t, configErr.Message, "max_count equal to the next min_count")
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*RawConfig)
		field  string
	}{
		{
			name:   "missing k_factor",
			modify: func(c *RawConfig) { c.KFactor = nil },
			field:  "k_factor",
		},
		{
			name:   "k_factor above one",
			modify: func(c *RawConfig) { c.KFactor = ptr(1.2) },
			field:  "k_factor",
		},
		{
			name:   "k_factor NaN",
			modify: func(c *RawConfig) { c.KFactor = ptr(math.NaN()) },
			field:  "k_factor",
		},
		{
			name:   "missing base_score",
			modify: func(c *RawConfig) { c.BaseScore = nil },
			field:  "base_score",
		},
		{
			name:   "base_score above 100",
			modify: func(c *RawConfig) { c.BaseScore = ptr(101.0) },
			field:  "base_score",
		},
		{
			name:   "negative min_score",
			modify: func(c *RawConfig) { c.MinScore = ptr(-1.0) },
			field:  "min_score",
		},
		{
			name:   "max_score infinite",
			modify: func(c *RawConfig) { c.MaxScore = ptr(math.Inf(1)) },
			field:  "max_score",
		},
		{
			name: "min_score above max_score",
			modify: func(c *RawConfig) {
				c.MinScore = ptr(60.0)
				c.MaxScore = ptr(50.0)
			},
			field: "min_score",
		},
		{
			name:   "missing outlier_rules",
			modify: func(c *RawConfig) { c.OutlierRules = nil },
			field:  "outlier_rules",
		},
		{
			name:   "negative remove_high",
			modify: func(c *RawConfig) { c.OutlierRules = []OutlierRule{{RemoveHigh: -1}} },
			field:  "outlier_rules[0].remove_high",
		},
		{
			name:   "negative remove_low",
			modify: func(c *RawConfig) { c.OutlierRules = []OutlierRule{{RemoveLow: -1}} },
			field:  "outlier_rules[0].remove_low",
		},
		{
			name:   "negative min_count",
			modify: func(c *RawConfig) { c.OutlierRules = []OutlierRule{{MinCount: -2}} },
			field:  "outlier_rules[0].min_count",
		},
		{
			name:   "inverted count range",
			modify: func(c *RawConfig) { c.OutlierRules = []OutlierRule{{MinCount: 5, MaxCount: ptr(5)}} },
			field:  "outlier_rules[0].max_count",
		},
		{
			name: "unbounded rule before the last",
			modify: func(c *RawConfig) {
				c.OutlierRules = []OutlierRule{{MinCount: 0}, {MinCount: 5, MaxCount: ptr(10)}}
			},
			field: "outlier_rules[0].max_count",
		},
		{
			name: "overlapping count ranges",
			modify: func(c *RawConfig) {
				c.OutlierRules = []OutlierRule{{MinCount: 0, MaxCount: ptr(6)}, {MinCount: 5}}
			},
			field: "outlier_rules[1].min_count",
		},
		{
			name: "no high price rule",
			modify: func(c *RawConfig) {
				c.HighPriceType = ""
				c.HighPriceFactor = nil
			},
			field: "high_price_rules",
		},
		{
			name: "both monotonic and interval forms",
			modify: func(c *RawConfig) {
				c.LowPriceRules = []IntervalRule{{MinDev: 0, Type: "add", Factor: 1}}
			},
			field: "low_price_rules",
		},
		{
			name:   "monotonic factor without type",
			modify: func(c *RawConfig) { c.HighPriceType = "" },
			field:  "high_price_type",
		},
		{
			name:   "monotonic type without factor",
			modify: func(c *RawConfig) { c.LowPriceFactor = nil },
			field:  "low_price_factor",
		},
		{
			name:   "unknown adjustment type",
			modify: func(c *RawConfig) { c.HighPriceType = "subtract" },
			field:  "high_price_type",
		},
		{
			name:   "negative factor",
			modify: func(c *RawConfig) { c.LowPriceFactor = ptr(-0.1) },
			field:  "low_price_factor",
		},
		{
			name: "first interval not at zero",
			modify: func(c *RawConfig) {
				c.HighPriceType, c.HighPriceFactor = "", nil
				c.HighPriceRules = []IntervalRule{{MinDev: 1, Type: "deduct", Factor: 1}}
			},
			field: "high_price_rules[0].min_dev",
		},
		{
			name: "gap between intervals",
			modify: func(c *RawConfig) {
				c.HighPriceType, c.HighPriceFactor = "", nil
				c.HighPriceRules = []IntervalRule{
					{MinDev: 0, MaxDev: ptr(2.0), Type: "deduct", Factor: 1},
					{MinDev: 3, Type: "deduct", Factor: 1},
				}
			},
			field: "high_price_rules[1].min_dev",
		},
		{
			name: "inverted interval",
			modify: func(c *RawConfig) {
				c.HighPriceType, c.HighPriceFactor = "", nil
				c.HighPriceRules = []IntervalRule{{MinDev: 0, MaxDev: ptr(0.0), Type: "deduct", Factor: 1}}
			},
			field: "high_price_rules[0].max_dev",
		},
		{
			name: "open interval before the last",
			modify: func(c *RawConfig) {
				c.HighPriceType, c.HighPriceFactor = "", nil
				c.HighPriceRules = []IntervalRule{
					{MinDev: 0, Type: "deduct", Factor: 1},
					{MinDev: 5, Type: "deduct", Factor: 1},
				}
			},
			field: "high_price_rules[0].max_dev",
		},
		{
			name: "interval with bad type",
			modify: func(c *RawConfig) {
				c.LowPriceType, c.LowPriceFactor = "", nil
				c.LowPriceRules = []IntervalRule{{MinDev: 0, Type: "bonus", Factor: 1}}
			},
			field: "low_price_rules[0].type",
		},
		{
			name: "unknown rule mode",
			modify: func(c *RawConfig) {
				c.HighPriceType, c.HighPriceFactor = "", nil
				c.HighPriceRule = &PriceRuleDef{Mode: "linear"}
			},
			field: "high_price_rule.mode",
		},
		{
			name: "stepped rule without intervals",
			modify: func(c *RawConfig) {
				c.HighPriceType, c.HighPriceFactor = "", nil
				c.HighPriceRule = &PriceRuleDef{Mode: ModeStepped}
			},
			field: "high_price_rule.intervals",
		},
		{
			name: "monotonic rule with intervals",
			modify: func(c *RawConfig) {
				c.HighPriceType, c.HighPriceFactor = "", nil
				c.HighPriceRule = &PriceRuleDef{
					Mode:      ModeMonotonic,
					Type:      "deduct",
					Factor:    ptr(1.0),
					Intervals: []IntervalRule{{MinDev: 0, Type: "deduct", Factor: 1}},
				}
			},
			field: "high_price_rule.intervals",
		},
		{
			name: "stepped rule interval gap",
			modify: func(c *RawConfig) {
				c.LowPriceType, c.LowPriceFactor = "", nil
				c.LowPriceRule = &PriceRuleDef{
					Mode: ModeStepped,
					Intervals: []IntervalRule{
						{MinDev: 0, MaxDev: ptr(5.0), Type: "add", Factor: 1},
						{MinDev: 6, Type: "deduct", Factor: 1},
					},
				}
			},
			field: "low_price_rule.intervals[1].min_dev",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := monotonicConfig(0.95, 50, "deduct", 0.5, "add", 0.3)
			tt.modify(&raw)

			config, err := Validate(raw)
			assert.Nil(t, config)

			var configErr *ConfigError
			require.ErrorAs(t, err, &configErr)
			assert.Equal(t, tt.field, configErr.Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidateBidders(t *testing.T) {
	tests := []struct {
		name    string
		bidders []Bidder
		field   string
	}{
		{name: "empty list", bidders: nil, field: "bidders"},
		{name: "blank name", bidders: []Bidder{{Name: "  ", Price: 1}}, field: "bidders[0].name"},
		{name: "duplicate name", bidders: []Bidder{{Name: "A", Price: 1}, {Name: " A ", Price: 2}}, field: "bidders[1].name"},
		{name: "zero price", bidders: []Bidder{{Name: "A", Price: 0}}, field: "bidders[0].price"},
		{name: "negative price", bidders: []Bidder{{Name: "A", Price: 1}, {Name: "B", Price: -5}}, field: "bidders[1].price"},
		{name: "NaN price", bidders: []Bidder{{Name: "A", Price: math.NaN()}}, field: "bidders[0].price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBidders(tt.bidders)

			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, tt.field, inputErr.Field)

			kind, ok := KindOf(err)
			assert.True(t, ok)
			assert.Equal(t, KindInput, kind)
		})
	}

	assert.NoError(t, ValidateBidders([]Bidder{{Name: "A", Price: 0.01}, {Name: "B", Price: 1e7}}))
}
