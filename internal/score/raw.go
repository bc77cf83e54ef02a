package score

// OutlierRule is the wire form of a trim rule. MaxCount is exclusive; nil
// means unbounded and is only allowed on the last rule.
type OutlierRule struct {
	MinCount   int  `json:"min_count" yaml:"min_count"`
	MaxCount   *int `json:"max_count,omitempty" yaml:"max_count,omitempty"`
	RemoveHigh int  `json:"remove_high" yaml:"remove_high"`
	RemoveLow  int  `json:"remove_low" yaml:"remove_low"`
}

// IntervalRule is the wire form of a deviation band. A nil MaxDev on the last
// band, or a MaxDev of 100 or more, means the band is unbounded.
type IntervalRule struct {
	MinDev float64  `json:"min_dev" yaml:"min_dev"`
	MaxDev *float64 `json:"max_dev,omitempty" yaml:"max_dev,omitempty"`
	Type   string   `json:"type" yaml:"type"`
	Factor float64  `json:"factor" yaml:"factor"`
}

// Price rule modes of PriceRuleDef.
const (
	ModeMonotonic = "monotonic"
	ModeStepped   = "stepped"
)

// PriceRuleDef is the explicit tagged form of a price-side rule.
type PriceRuleDef struct {
	Mode      string         `json:"mode" yaml:"mode"`
	Type      string         `json:"type,omitempty" yaml:"type,omitempty"`
	Factor    *float64       `json:"factor,omitempty" yaml:"factor,omitempty"`
	Intervals []IntervalRule `json:"intervals,omitempty" yaml:"intervals,omitempty"`
}

// RawConfig is a scoring configuration as received from a client or read from
// a template file. Each price side must be given in exactly one of three
// forms: the PriceRuleDef, a non-empty interval list, or the type/factor pair
// of monotonic mode.
//
// A nil OutlierRules slice is reported as missing; pass an empty slice to
// disable trimming.
type RawConfig struct {
	KFactor   *float64 `json:"k_factor" yaml:"k_factor"`
	BaseScore *float64 `json:"base_score" yaml:"base_score"`
	MinScore  *float64 `json:"min_score,omitempty" yaml:"min_score,omitempty"`
	MaxScore  *float64 `json:"max_score,omitempty" yaml:"max_score,omitempty"`

	OutlierRules []OutlierRule `json:"outlier_rules" yaml:"outlier_rules"`

	HighPriceRule   *PriceRuleDef  `json:"high_price_rule,omitempty" yaml:"high_price_rule,omitempty"`
	HighPriceRules  []IntervalRule `json:"high_price_rules,omitempty" yaml:"high_price_rules,omitempty"`
	HighPriceType   string         `json:"high_price_type,omitempty" yaml:"high_price_type,omitempty"`
	HighPriceFactor *float64       `json:"high_price_factor,omitempty" yaml:"high_price_factor,omitempty"`

	LowPriceRule   *PriceRuleDef  `json:"low_price_rule,omitempty" yaml:"low_price_rule,omitempty"`
	LowPriceRules  []IntervalRule `json:"low_price_rules,omitempty" yaml:"low_price_rules,omitempty"`
	LowPriceType   string         `json:"low_price_type,omitempty" yaml:"low_price_type,omitempty"`
	LowPriceFactor *float64       `json:"low_price_factor,omitempty" yaml:"low_price_factor,omitempty"`
}

// priceSide groups the three wire forms of one price side.
type priceSide struct {
	name      string
	def       *PriceRuleDef
	intervals []IntervalRule
	typ       string
	factor    *float64
}

func (c *RawConfig) highSide() priceSide {
	return priceSide{
		name:      "high_price",
		def:       c.HighPriceRule,
		intervals: c.HighPriceRules,
		typ:       c.HighPriceType,
		factor:    c.HighPriceFactor,
	}
}

func (c *RawConfig) lowSide() priceSide {
	return priceSide{
		name:      "low_price",
		def:       c.LowPriceRule,
		intervals: c.LowPriceRules,
		typ:       c.LowPriceType,
		factor:    c.LowPriceFactor,
	}
}
