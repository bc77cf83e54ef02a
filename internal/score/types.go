package score

// Bidder is a single bid submitted for evaluation.
type Bidder struct {
	Name  string  `json:"name" yaml:"name"`
	Price float64 `json:"price" yaml:"price"`
}

// Outlier side of a bidder whose price was trimmed from the benchmark computation.
const (
	OutlierNone = ""
	OutlierHigh = "high"
	OutlierLow  = "low"
)

// BidderResult is the evaluation of one bidder. Deviation and Score are rounded
// to resultPrecision decimal places.
type BidderResult struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Deviation float64 `json:"deviation"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank"`
	// Index is the bidder's position in the request.
	Index int `json:"index"`
	// Outlier is "high" or "low" when the price was excluded from the benchmark.
	Outlier string `json:"outlier,omitempty"`
}

// CalculationResult is the outcome of one calculation.
// Results are always in request order; rank is carried per result.
type CalculationResult struct {
	BenchmarkPrice float64        `json:"benchmark_price"`
	MeanPrice      float64        `json:"mean_price"`
	ValidCount     int            `json:"valid_count"`
	Results        []BidderResult `json:"results"`
}

// Ranked returns a copy of the results ordered by rank, keeping request order
// within equal ranks.
func (r *CalculationResult) Ranked() []BidderResult {
	ranked := make([]BidderResult, len(r.Results))
	copy(ranked, r.Results)
	sortByRank(ranked)
	return ranked
}
