package scorer

import (
	"context"
	"sync"
	"testing"
	"time"

	"bidscore/internal/score"
	"bidscore/internal/score/rule"
	"bidscore/internal/template"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHistory struct {
	mu      sync.Mutex
	reports []*Report
}

func (h *recordingHistory) Append(report *Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reports = append(h.reports, report)
}

type recordingJournal struct {
	requests []Request
	reports  []*Report
	closed   bool
}

func (j *recordingJournal) Append(request Request, report *Report) {
	j.requests = append(j.requests, request)
	j.reports = append(j.reports, report)
}

func (j *recordingJournal) Close() { j.closed = true }

func ptr[T any](v T) *T {
	return &v
}

func inlineConfig() *score.RawConfig {
	return &score.RawConfig{
		KFactor:         ptr(1.0),
		BaseScore:       ptr(50.0),
		OutlierRules:    []score.OutlierRule{},
		HighPriceType:   "deduct",
		HighPriceFactor: ptr(1.0),
		LowPriceType:    "deduct",
		LowPriceFactor:  ptr(0.5),
	}
}

func newTestScorer(t *testing.T, flagRules string) (*TenderScorer, *recordingHistory, *recordingJournal) {
	t.Helper()

	templates, err := template.Default()
	require.NoError(t, err)

	var flags *FlagsScorer
	if flagRules != "" {
		rules, err := rule.Load([]byte(flagRules), rule.NewEnv)
		require.NoError(t, err)
		flags = NewFlagsScorer(rules)
	}

	history := &recordingHistory{}
	journal := &recordingJournal{}
	ts := NewTenderScorer(templates, flags, history, journal)
	ts.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("MSK", 3*3600)) }

	return ts, history, journal
}

func TestTenderScorer_InlineConfig(t *testing.T) {
	ts, history, journal := newTestScorer(t, "")

	request := Request{
		Config:  inlineConfig(),
		Bidders: []score.Bidder{{Name: "A", Price: 110}, {Name: "B", Price: 90}, {Name: "C", Price: 100}},
	}
	report, err := ts.Score(context.Background(), request)
	require.NoError(t, err)

	_, err = uuid.Parse(report.ID)
	assert.NoError(t, err)
	assert.True(t, report.CreatedAt.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, report.CreatedAt.Location())
	assert.Len(t, report.Digest, 64)
	assert.Empty(t, report.Template)
	assert.Equal(t, 100.0, report.BenchmarkPrice)
	assert.Equal(t, 3, report.ValidCount)

	require.Len(t, report.Results, 3)
	assert.Equal(t, 40.0, report.Results[0].Score)
	assert.Equal(t, 45.0, report.Results[1].Score)
	assert.Equal(t, 50.0, report.Results[2].Score)

	winner, ok := report.Winner()
	assert.True(t, ok)
	assert.Equal(t, "C", winner.Name)

	require.Len(t, history.reports, 1)
	assert.Same(t, report, history.reports[0])
	require.Len(t, journal.reports, 1)
	assert.Equal(t, request, journal.requests[0])
}

func TestTenderScorer_Template(t *testing.T) {
	ts, _, _ := newTestScorer(t, "")

	report, err := ts.Score(context.Background(), Request{
		Template: "gold",
		Bidders:  []score.Bidder{{Name: "A", Price: 100}, {Name: "B", Price: 100}},
	})
	require.NoError(t, err)

	assert.Equal(t, "gold", report.Template)
	assert.Equal(t, 95.0, report.BenchmarkPrice)
	// deviation 5.26% above the benchmark, deducted at 0.5 per percent
	assert.Equal(t, 5.26, report.Results[0].Deviation)
	assert.Equal(t, 42.37, report.Results[0].Score)
	assert.Equal(t, 1, report.Results[1].Rank)
}

func TestTenderScorer_Flags(t *testing.T) {
	ts, _, _ := newTestScorer(t, `
- when: "deviation <= -10.0"
  then: abnormally_low
- when: "rank == 1"
  then: winner
- when: "score < 50.0 && deviation < 0.0"
  then: abnormally_low
`)

	report, err := ts.Score(context.Background(), Request{
		Config:  inlineConfig(),
		Bidders: []score.Bidder{{Name: "A", Price: 120}, {Name: "B", Price: 80}, {Name: "C", Price: 100}},
	})
	require.NoError(t, err)

	assert.Nil(t, report.Results[0].Flags)
	assert.Equal(t, []string{"abnormally_low"}, report.Results[1].Flags)
	assert.Equal(t, []string{"winner"}, report.Results[2].Flags)
}

func TestTenderScorer_Errors(t *testing.T) {
	bidders := []score.Bidder{{Name: "A", Price: 100}}

	tests := []struct {
		name    string
		request Request
		kind    score.Kind
		field   string
	}{
		{name: "no rule set", request: Request{Bidders: bidders}, kind: score.KindConfig, field: "config"},
		{name: "template and config", request: Request{Template: "gold", Config: inlineConfig(), Bidders: bidders}, kind: score.KindConfig, field: "template"},
		{name: "unknown template", request: Request{Template: "silver", Bidders: bidders}, kind: score.KindConfig, field: "template"},
		{
			name: "invalid config",
			request: func() Request {
				config := inlineConfig()
				config.KFactor = ptr(-1.0)
				return Request{Config: config, Bidders: bidders}
			}(),
			kind:  score.KindConfig,
			field: "k_factor",
		},
		{name: "invalid bidders", request: Request{Template: "gold"}, kind: score.KindInput, field: "bidders"},
		{
			name: "zero benchmark",
			request: func() Request {
				config := inlineConfig()
				config.KFactor = ptr(0.0)
				return Request{Config: config, Bidders: bidders}
			}(),
			kind: score.KindComputation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, history, journal := newTestScorer(t, "")

			report, err := ts.Score(context.Background(), tt.request)
			assert.Nil(t, report)

			kind, ok := score.KindOf(err)
			require.True(t, ok, "unexpected error %v", err)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.field, score.FieldOf(err))

			assert.Empty(t, history.reports)
			assert.Empty(t, journal.reports)
		})
	}
}

func TestTenderScorer_CanceledContext(t *testing.T) {
	ts, history, _ := newTestScorer(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ts.Score(ctx, Request{Template: "gold", Bidders: []score.Bidder{{Name: "A", Price: 1}}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, history.reports)
}

func TestTenderScorer_NilCollaborators(t *testing.T) {
	templates, err := template.Default()
	require.NoError(t, err)
	ts := NewTenderScorer(templates, nil, nil, nil)

	report, err := ts.Score(context.Background(), Request{Template: "platinum", Bidders: []score.Bidder{{Name: "A", Price: 10}}})
	require.NoError(t, err)
	assert.Equal(t, 50.0, report.Results[0].Score)
}

func TestTenderScorer_DigestIsReproducible(t *testing.T) {
	ts, _, _ := newTestScorer(t, "")
	request := Request{Template: "platinum", Bidders: []score.Bidder{{Name: "A", Price: 10}, {Name: "B", Price: 12.5}}}

	first, err := ts.Score(context.Background(), request)
	require.NoError(t, err)
	second, err := ts.Score(context.Background(), request)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Digest, second.Digest)
}

func TestReport_Summary(t *testing.T) {
	report := Report{
		ID:             "id-1",
		Template:       "gold",
		BenchmarkPrice: 95,
		Digest:         "abc",
		Results:        make([]Result, 3),
	}

	summary := report.Summary()

	assert.Equal(t, "id-1", summary.ID)
	assert.Equal(t, "gold", summary.Template)
	assert.Equal(t, 3, summary.Bidders)
	assert.Equal(t, 95.0, summary.BenchmarkPrice)
	assert.Equal(t, "abc", summary.Digest)
}
