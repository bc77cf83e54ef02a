package scorer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bidscore/internal/score"
	"bidscore/internal/template"

	"github.com/google/uuid"
)

// History keeps calculation reports for later retrieval.
type History interface {
	Append(report *Report)
}

// Journal records every accepted calculation together with its request.
type Journal interface {
	Append(request Request, report *Report)
	Close()
}

// Templates resolves preset rule sets by id.
type Templates interface {
	Get(id string) (template.Template, error)
}

// TenderScorer runs one calculation request end to end:
//  1. resolves the rule set from the request's template or inline config
//  2. runs the scoring engine
//  3. raises flags on bidder results
//  4. assigns an id and the audit digest
//  5. stores the report in the history and the journal
//
// TenderScorer is safe for concurrent use if its history and journal are.
type TenderScorer struct {
	templates Templates
	flags     *FlagsScorer
	history   History
	journal   Journal
	now       func() time.Time
}

// Score evaluates the request. Engine errors are returned unchanged so callers
// can classify them with score.KindOf; no report is stored on error.
func (ts *TenderScorer) Score(ctx context.Context, request Request) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := ts.resolve(request)
	if err != nil {
		return nil, err
	}

	calculator, err := score.NewCalculator(raw)
	if err != nil {
		return nil, err
	}

	calculation, err := calculator.Calculate(request.Bidders)
	if err != nil {
		return nil, err
	}

	flags := ts.flags.Flags(calculation)
	results := make([]Result, len(calculation.Results))
	for i, result := range calculation.Results {
		results[i] = Result{BidderResult: result, Flags: flags[i]}
	}

	report := &Report{
		ID:             uuid.NewString(),
		CreatedAt:      ts.now().UTC(),
		Digest:         score.Digest(calculator.Config(), request.Bidders, calculation),
		Template:       request.Template,
		BenchmarkPrice: calculation.BenchmarkPrice,
		MeanPrice:      calculation.MeanPrice,
		ValidCount:     calculation.ValidCount,
		Results:        results,
	}

	ts.history.Append(report)
	ts.journal.Append(request, report)
	slog.Debug("Calculation completed", "id", report.ID, "template", report.Template, "bidders", len(results))

	return report, nil
}

func (ts *TenderScorer) resolve(request Request) (score.RawConfig, error) {
	switch {
	case request.Template != "" && request.Config != nil:
		return score.RawConfig{}, score.NewConfigError("template", "set either template or config, not both")
	case request.Config != nil:
		return *request.Config, nil
	case request.Template == "":
		return score.RawConfig{}, score.NewConfigError("config", "must be specified when no template is given")
	}

	t, err := ts.templates.Get(request.Template)
	var notFound *template.NotFoundError
	if errors.As(err, &notFound) {
		return score.RawConfig{}, score.NewConfigError("template", "unknown template %q", request.Template)
	}
	if err != nil {
		return score.RawConfig{}, err
	}
	return t.Config, nil
}

type nopHistory struct{}

func (nopHistory) Append(*Report) {}

type nopJournal struct{}

func (nopJournal) Append(Request, *Report) {}
func (nopJournal) Close()                  {}

// NewTenderScorer creates a TenderScorer.
// Nil history or journal disables storing reports there; nil flags raise none.
func NewTenderScorer(templates Templates, flags *FlagsScorer, history History, journal Journal) *TenderScorer {
	if flags == nil {
		flags = NewFlagsScorer(nil)
	}
	if history == nil {
		history = nopHistory{}
	}
	if journal == nil {
		journal = nopJournal{}
	}
	return &TenderScorer{
		templates: templates,
		flags:     flags,
		history:   history,
		journal:   journal,
		now:       time.Now,
	}
}
