package scorer

import (
	"time"

	"bidscore/internal/score"
)

// Request is one calculation request. Exactly one of Template and Config
// selects the rule set.
type Request struct {
	Template string           `json:"template,omitempty"`
	Config   *score.RawConfig `json:"config,omitempty"`
	Bidders  []score.Bidder   `json:"bidders"`
}

// Result is a bidder result with the flags raised by flag rules.
type Result struct {
	score.BidderResult
	Flags []string `json:"flags,omitempty"`
}

// Report is the stored outcome of a calculation.
type Report struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Digest         string    `json:"digest"`
	Template       string    `json:"template,omitempty"`
	BenchmarkPrice float64   `json:"benchmark_price"`
	MeanPrice      float64   `json:"mean_price"`
	ValidCount     int       `json:"valid_count"`
	Results        []Result  `json:"results"`
}

// Summary is the short listing form of a Report.
type Summary struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Template       string    `json:"template,omitempty"`
	Bidders        int       `json:"bidders"`
	BenchmarkPrice float64   `json:"benchmark_price"`
	Digest         string    `json:"digest"`
}

func (r *Report) Summary() Summary {
	return Summary{
		ID:             r.ID,
		CreatedAt:      r.CreatedAt,
		Template:       r.Template,
		Bidders:        len(r.Results),
		BenchmarkPrice: r.BenchmarkPrice,
		Digest:         r.Digest,
	}
}

// Winner returns the first result with rank 1 in request order.
func (r *Report) Winner() (Result, bool) {
	for _, result := range r.Results {
		if result.Rank == 1 {
			return result, true
		}
	}
	return Result{}, false
}
