package history

import (
	"sync"
	"time"

	"bidscore/internal/score/scorer"
	"bidscore/internal/utils"
)

// cleanInterval is how often Serve looks for expired reports.
const cleanInterval = time.Minute

type entry struct {
	report  *scorer.Report
	created time.Time
}

// ReportsRepository is a thread-safe in-memory store of recent calculation
// reports. It keeps at most length reports; the oldest is dropped when a new
// one arrives. Reports older than ttl are removed by a background process.
//
//	repo := history.NewReportsRepository(100, time.Hour)
//	go repo.Serve()
//	defer repo.Stop()
type ReportsRepository struct {
	ttl time.Duration

	reports map[string]entry
	order   *utils.RingBuffer[string]
	mu      sync.RWMutex

	done     chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// Append stores report under its id.
func (rr *ReportsRepository) Append(report *scorer.Report) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if old, evicted := rr.order.Push(report.ID); evicted {
		delete(rr.reports, old)
	}
	rr.reports[report.ID] = entry{report: report, created: rr.now()}
}

// Get returns the report with the given id.
func (rr *ReportsRepository) Get(id string) (*scorer.Report, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	e, found := rr.reports[id]
	if !found {
		return nil, false
	}
	return e.report, true
}

// List returns summaries of the stored reports, newest first.
func (rr *ReportsRepository) List() []scorer.Summary {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	ids := rr.order.ToSlice()
	summaries := make([]scorer.Summary, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if e, found := rr.reports[ids[i]]; found {
			summaries = append(summaries, e.report.Summary())
		}
	}
	return summaries
}

// Serve removes expired reports once a minute until Stop is called.
// It blocks and should be started in its own goroutine.
func (rr *ReportsRepository) Serve() {
	ticker := time.NewTicker(cleanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rr.done:
			return
		case <-ticker.C:
			rr.clean()
		}
	}
}

// clean deletes the reports stored longer than ttl ago.
func (rr *ReportsRepository) clean() int {
	var outdated []string

	rr.mu.RLock()
	now := rr.now()
	for id, e := range rr.reports {
		if now.Sub(e.created) > rr.ttl {
			outdated = append(outdated, id)
		}
	}
	rr.mu.RUnlock()

	if len(outdated) > 0 {
		rr.mu.Lock()
		for _, id := range outdated {
			delete(rr.reports, id)
		}
		rr.mu.Unlock()
	}
	return len(outdated)
}

// Stop terminates Serve. It is safe to call more than once, and before Serve.
func (rr *ReportsRepository) Stop() {
	rr.stopOnce.Do(func() {
		close(rr.done)
	})
}

// NewReportsRepository creates a store holding up to length reports for ttl.
// Call Serve in a separate goroutine to start expiring reports.
func NewReportsRepository(length int, ttl time.Duration) *ReportsRepository {
	return &ReportsRepository{
		ttl:     ttl,
		reports: make(map[string]entry, length),
		order:   utils.NewRingBuffer[string](length),
		done:    make(chan struct{}),
		now:     time.Now,
	}
}
