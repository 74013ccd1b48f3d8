package timer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hammamikhairi/pomato/internal/domain"
	"github.com/hammamikhairi/pomato/internal/engine"
)

// Summary aggregates the journal of one run.
type Summary struct {
	Completed int
	Skipped   int
	Quit      int
	// Seconds of completed phases, by phase name.
	Timed map[string]int
	// Wall-clock time between the first start and the last end.
	Span time.Duration
}

// Summarize builds a Summary from journal records.
func Summarize(records []domain.PhaseRecord) Summary {
	s := Summary{Timed: make(map[string]int)}
	var first, last time.Time
	for _, r := range records {
		switch r.Outcome {
		case domain.OutcomeCompleted:
			s.Completed++
			s.Timed[r.Phase] += r.Planned
		case domain.OutcomeSkipped:
			s.Skipped++
		case domain.OutcomeQuit:
			s.Quit++
		}
		if first.IsZero() || r.StartedAt.Before(first) {
			first = r.StartedAt
		}
		if r.EndedAt.After(last) {
			last = r.EndedAt
		}
	}
	if !first.IsZero() && last.After(first) {
		s.Span = last.Sub(first)
	}
	return s
}

// String renders a one-line report, e.g.
// "3 completed, 1 skipped, 1 quit; working 40:00, resting 05:00; over 1h5m0s".
func (s Summary) String() string {
	head := fmt.Sprintf("%d completed, %d skipped", s.Completed, s.Skipped)
	if s.Quit > 0 {
		head += fmt.Sprintf(", %d quit", s.Quit)
	}
	sections := []string{head}

	if len(s.Timed) > 0 {
		names := make([]string, 0, len(s.Timed))
		for name := range s.Timed {
			names = append(names, name)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+" "+engine.FormatClock(s.Timed[name]))
		}
		sections = append(sections, strings.Join(parts, ", "))
	}

	if s.Span >= time.Second {
		sections = append(sections, "over "+s.Span.Round(time.Second).String())
	}
	return strings.Join(sections, "; ")
}
