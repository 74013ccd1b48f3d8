package timer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/pomato/internal/domain"
	"github.com/hammamikhairi/pomato/internal/logger"
	"github.com/hammamikhairi/pomato/internal/storage"
)

// recordingSurface returns scripted keys by bounded-wait index and records
// an ordered event log of every call.
type recordingSurface struct {
	keyAt    map[int]string
	bounded  int
	blocking int
	events   []string
}

func (s *recordingSurface) ShowPhase(text string) { s.events = append(s.events, "phase:"+text) }
func (s *recordingSurface) ShowTime(text string)  { s.events = append(s.events, "time:"+text) }

func (s *recordingSurface) WaitKey(_ context.Context, timeout time.Duration) (string, error) {
	if timeout < 0 {
		s.blocking++
		s.events = append(s.events, "block")
		return "enter", nil
	}
	i := s.bounded
	s.bounded++
	s.events = append(s.events, "tick")
	return s.keyAt[i], nil
}

func (s *recordingSurface) count(prefix string) int {
	n := 0
	for _, e := range s.events {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

// mockChime counts dings.
type mockChime struct {
	mu    sync.Mutex
	dings int
}

func (c *mockChime) Ding(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dings++
}

func (c *mockChime) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dings
}

func setupTimer(t *testing.T, keyAt map[int]string) (*Timer, *recordingSurface, *mockChime, *storage.MemoryJournal) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	surface := &recordingSurface{keyAt: keyAt}
	chime := &mockChime{}
	journal := storage.NewMemoryJournal(log)
	tm := New(surface, log, WithChime(chime), WithJournal(journal, "test-run"))
	tm.AddPhase("working", 3)
	tm.AddPhase("resting", 2)
	return tm, surface, chime, journal
}

func TestRunSingleCycle(t *testing.T) {
	tm, surface, chime, journal := setupTimer(t, nil)
	ctx := context.Background()

	out, err := tm.Run(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != domain.OutcomeCompleted {
		t.Fatalf("expected completed, got %s", out)
	}

	want := []string{
		"phase:You should currently be working",
		"time:Time remaining: 00:03", "tick",
		"time:Time remaining: 00:02", "tick",
		"time:Time remaining: 00:01", "tick",
		"phase:End of working phase",
		"time:Press any key to begin next phase.",
		"block",
		"phase:You should currently be resting",
		"time:Time remaining: 00:02", "tick",
		"time:Time remaining: 00:01", "tick",
		"phase:End of resting phase",
		"time:Press any key to begin next phase.",
		"block",
	}
	if strings.Join(surface.events, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected events:\n got %q\nwant %q", surface.events, want)
	}
	if chime.count() != 2 {
		t.Fatalf("expected 2 dings, got %d", chime.count())
	}

	recs, err := journal.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 || recs[0].Phase != "working" || recs[1].Phase != "resting" {
		t.Fatalf("unexpected journal: %+v", recs)
	}
	for _, r := range recs {
		if r.Outcome != domain.OutcomeCompleted || r.Cycle != 1 || r.RunID != "test-run" {
			t.Fatalf("unexpected record %+v", r)
		}
	}
}

func TestRunQuitInSecondCycle(t *testing.T) {
	// Bounded waits: cycle 1 working 0-2, resting 3-4; cycle 2 working 5-6.
	tm, surface, chime, journal := setupTimer(t, map[int]string{6: "q"})

	out, err := tm.Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != domain.OutcomeQuit {
		t.Fatalf("expected quit, got %s", out)
	}

	if surface.bounded != 7 {
		t.Fatalf("expected 7 ticks, got %d", surface.bounded)
	}
	if last := surface.events[len(surface.events)-1]; last != "tick" {
		t.Fatalf("expected run to stop right after the quit tick, last event %q", last)
	}
	if surface.blocking != 2 || chime.count() != 2 {
		t.Fatalf("expected only cycle 1 acknowledgements, got %d waits and %d dings", surface.blocking, chime.count())
	}
	if n := surface.count("phase:You should currently be resting"); n != 1 {
		t.Fatalf("resting should run only in cycle 1, ran %d times", n)
	}

	recs, _ := journal.List(context.Background())
	if len(recs) != 3 {
		t.Fatalf("expected 3 journal records, got %d", len(recs))
	}
	last := recs[2]
	if last.Outcome != domain.OutcomeQuit || last.Cycle != 2 || last.Phase != "working" {
		t.Fatalf("unexpected last record %+v", last)
	}
}

func TestRunSkipHasNoEndPhase(t *testing.T) {
	// Skip working on its second tick.
	tm, surface, chime, _ := setupTimer(t, map[int]string{1: "s"})

	out, err := tm.Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != domain.OutcomeCompleted {
		t.Fatalf("expected completed, got %s", out)
	}
	if surface.count("phase:End of working phase") != 0 {
		t.Fatal("skipped phase must not announce its end")
	}
	if chime.count() != 1 || surface.blocking != 1 {
		t.Fatalf("expected one ding and one wait for resting, got %d and %d", chime.count(), surface.blocking)
	}
	// Two ticks for working (the skip tick included), two for resting.
	if surface.bounded != 4 {
		t.Fatalf("expected 4 ticks, got %d", surface.bounded)
	}
}

func TestRunNoOp(t *testing.T) {
	tests := []struct {
		name   string
		phases bool
		cycles int
	}{
		{"zero cycles", true, 0},
		{"negative cycles", true, -2},
		{"empty sequence", false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.New(logger.LevelOff, nil)
			surface := &recordingSurface{}
			tm := New(surface, log)
			if tt.phases {
				tm.AddPhase("working", 3)
			}
			out, err := tm.Run(context.Background(), tt.cycles)
			if err != nil || out != domain.OutcomeCompleted {
				t.Fatalf("expected completed no-op, got %s, %v", out, err)
			}
			if len(surface.events) != 0 {
				t.Fatalf("expected no surface calls, got %q", surface.events)
			}
		})
	}
}

func TestRunInvalidDurationAborts(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	surface := &recordingSurface{}
	chime := &mockChime{}
	tm := New(surface, log, WithChime(chime))
	tm.AddPhase("working", 1)
	tm.AddPhase("broken", -1)
	tm.AddPhase("resting", 1)

	if got := len(tm.Phases()); got != 3 {
		t.Fatalf("AddPhase must not validate, got %d phases", got)
	}

	_, err := tm.Run(context.Background(), 2)
	if !errors.Is(err, domain.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if !strings.Contains(err.Error(), `"broken"`) {
		t.Fatalf("expected error to name the phase, got %v", err)
	}
	if surface.count("phase:You should currently be resting") != 0 {
		t.Fatal("run must stop at the invalid phase")
	}
	if surface.count("phase:You should currently be broken") != 1 {
		t.Fatal("expected the invalid phase to be announced once")
	}
}

func TestPeriodZeroDurationEndsImmediately(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	surface := &recordingSurface{}
	chime := &mockChime{}
	tm := New(surface, log, WithChime(chime))

	out, err := tm.Period(context.Background(), domain.Phase{Name: "stretch", Duration: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != domain.OutcomeCompleted {
		t.Fatalf("expected completed, got %s", out)
	}
	if surface.bounded != 0 || surface.blocking != 1 || chime.count() != 1 {
		t.Fatalf("expected no ticks and one acknowledgement, got %d ticks, %d waits, %d dings",
			surface.bounded, surface.blocking, chime.count())
	}
}

// failingSurface returns err from every wait.
type failingSurface struct {
	recordingSurface
	err error
}

func (s *failingSurface) WaitKey(context.Context, time.Duration) (string, error) {
	return domain.NoKey, s.err
}

func TestRunPropagatesInterrupt(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	tm := New(&failingSurface{err: domain.ErrInterrupted}, log)
	tm.AddPhase("working", 5)

	_, err := tm.Run(context.Background(), 4)
	if !errors.Is(err, domain.ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
}
