package report

import (
	"time"

	"github.com/crawlpage/crawlpage/internal/engine"
)

// Run summarizes one origin's crawl run.
type Run struct {
	// Origin is the crawled site's base URL.
	Origin string `json:"origin"`

	// StartPage is the page index the run resumed from.
	StartPage int `json:"start_page"`

	// PagesCompleted and RecordsAdded cover this run only.
	PagesCompleted int `json:"pages_completed"`
	RecordsAdded   int `json:"records_added"`

	// TotalPages and TotalRecords cover all runs against this origin.
	TotalPages   int `json:"total_pages"`
	TotalRecords int `json:"total_records"`

	// Cooldowns counts fatal-error recoveries during this run.
	Cooldowns int `json:"cooldowns"`

	// Blocked reports whether the run ended on a block signal.
	Blocked bool `json:"blocked"`

	// Error holds the run-ending error message, empty on clean completion.
	Error string `json:"error,omitempty"`

	// Elapsed is the run's wall-clock duration.
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Status returns a short human-readable status for the run.
func (r Run) Status() string {
	switch {
	case r.Blocked:
		return "BLOCKED"
	case r.Error != "":
		return "ERROR"
	default:
		return "Complete"
	}
}

// Summary aggregates the runs of one crawl invocation.
type Summary struct {
	// GeneratedAt is when the summary was produced.
	GeneratedAt time.Time `json:"generated_at"`

	// Runs holds one entry per origin, in invocation order.
	Runs []Run `json:"runs"`
}

// NewSummary builds a Summary from engine results. Nil results (an origin
// whose engine never started) become empty runs so the slice keeps the
// invocation order.
func NewSummary(results []*engine.Result) *Summary {
	s := &Summary{
		GeneratedAt: time.Now(),
		Runs:        make([]Run, 0, len(results)),
	}
	for _, res := range results {
		if res == nil {
			s.Runs = append(s.Runs, Run{})
			continue
		}
		s.Runs = append(s.Runs, Run{
			Origin:         res.Origin,
			StartPage:      res.StartPage,
			PagesCompleted: res.PagesCompleted,
			RecordsAdded:   res.RecordsAdded,
			TotalPages:     res.TotalPages,
			TotalRecords:   res.TotalRecords,
			Cooldowns:      res.Cooldowns,
			Blocked:        res.Blocked,
			Error:          res.Failure,
			Elapsed:        res.Elapsed,
		})
	}
	return s
}

// SetError records the run-ending error message for the origin's run.
func (s *Summary) SetError(origin string, err error) {
	if err == nil {
		return
	}
	for i := range s.Runs {
		if s.Runs[i].Origin == origin {
			s.Runs[i].Error = err.Error()
			return
		}
	}
}

// TotalRecords returns the record count across all runs.
func (s *Summary) TotalRecords() int {
	total := 0
	for _, r := range s.Runs {
		total += r.TotalRecords
	}
	return total
}

// AnyBlocked reports whether any run ended on a block signal.
func (s *Summary) AnyBlocked() bool {
	for _, r := range s.Runs {
		if r.Blocked {
			return true
		}
	}
	return false
}
