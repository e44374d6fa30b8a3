package batch

import (
	"time"

	"marquee/internal/library"
	"marquee/internal/services"
)

// Entry is one successfully processed batch item.
type Entry struct {
	Title  string          `json:"title"`
	Record *library.Record `json:"record"`
}

// Failure records one failed batch item with its terminal reason.
type Failure struct {
	Title  string          `json:"title"`
	Reason services.Reason `json:"reason"`
	Detail string          `json:"detail,omitempty"`
}

// Result is the outcome of one pipeline run. Succeeded and Failed preserve
// input order, and their lengths always sum to TotalRequested. When a run
// aborts early (storage unavailable, context canceled) TotalRequested
// counts only the items actually attempted; the accompanying error reports
// the abort.
type Result struct {
	RunID          string        `json:"run_id"`
	TotalRequested int           `json:"total_requested"`
	Succeeded      []Entry       `json:"succeeded"`
	Failed         []Failure     `json:"failed"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
}

// SuccessRate returns the fraction of items stored, in percent.
func (r *Result) SuccessRate() float64 {
	if r.TotalRequested == 0 {
		return 0
	}
	return float64(len(r.Succeeded)) / float64(r.TotalRequested) * 100
}
