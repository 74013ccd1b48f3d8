package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hammamikhairi/pomato/internal/domain"
	"github.com/hammamikhairi/pomato/internal/input"
	"github.com/hammamikhairi/pomato/internal/logger"
)

// scriptedSurface plays back keys by bounded-wait index and records every
// call made against it.
type scriptedSurface struct {
	keyAt    map[int]string // bounded wait index -> key
	errAt    map[int]error  // bounded wait index -> error
	resume   []string       // keys returned by unbounded waits, in order
	bounded  int            // bounded waits so far
	blocking int            // unbounded waits so far
	times    []string
	phases   []string
	timeouts []time.Duration
}

func (s *scriptedSurface) ShowPhase(text string) { s.phases = append(s.phases, text) }
func (s *scriptedSurface) ShowTime(text string)  { s.times = append(s.times, text) }

func (s *scriptedSurface) WaitKey(_ context.Context, timeout time.Duration) (string, error) {
	s.timeouts = append(s.timeouts, timeout)
	if timeout < 0 {
		s.blocking++
		if len(s.resume) > 0 {
			k := s.resume[0]
			s.resume = s.resume[1:]
			return k, nil
		}
		return "enter", nil
	}
	i := s.bounded
	s.bounded++
	if err, ok := s.errAt[i]; ok {
		return domain.NoKey, err
	}
	return s.keyAt[i], nil
}

func newTestEngine(opts ...Option) *Engine {
	return New(logger.New(logger.LevelOff, nil), opts...)
}

func TestRunCompletesWithoutInput(t *testing.T) {
	for _, total := range []int{1, 2, 5, 61} {
		t.Run(FormatClock(total), func(t *testing.T) {
			s := &scriptedSurface{}
			out, err := newTestEngine().Run(context.Background(), s, "working", total)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != domain.OutcomeCompleted {
				t.Fatalf("expected completed, got %s", out)
			}
			if s.bounded != total {
				t.Fatalf("expected %d ticks, got %d", total, s.bounded)
			}
			if len(s.times) != total {
				t.Fatalf("expected %d renders, got %d", total, len(s.times))
			}
			if s.times[0] != "Time remaining: "+FormatClock(total) {
				t.Fatalf("unexpected first render %q", s.times[0])
			}
			if s.times[total-1] != "Time remaining: 00:01" {
				t.Fatalf("unexpected last render %q", s.times[total-1])
			}
			for _, d := range s.timeouts {
				if d != time.Second {
					t.Fatalf("expected one-second waits, got %s", d)
				}
			}
		})
	}
}

func TestRunZeroDuration(t *testing.T) {
	s := &scriptedSurface{}
	out, err := newTestEngine().Run(context.Background(), s, "resting", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != domain.OutcomeCompleted {
		t.Fatalf("expected completed, got %s", out)
	}
	if s.bounded != 0 || len(s.times) != 0 {
		t.Fatalf("expected no ticks and no renders, got %d ticks, %d renders", s.bounded, len(s.times))
	}
}

func TestRunNegativeDuration(t *testing.T) {
	s := &scriptedSurface{}
	_, err := newTestEngine().Run(context.Background(), s, "working", -1)
	if !errors.Is(err, domain.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if len(s.times) != 0 || len(s.phases) != 0 || len(s.timeouts) != 0 {
		t.Fatalf("expected no surface calls, got times=%v phases=%v waits=%d", s.times, s.phases, len(s.timeouts))
	}
}

func TestRunInterruptingKeys(t *testing.T) {
	const total = 5

	tests := []struct {
		name string
		key  string
		want domain.Outcome
	}{
		{"quit", "q", domain.OutcomeQuit},
		{"quit upper-case", "Q", domain.OutcomeQuit},
		{"skip", "s", domain.OutcomeSkipped},
	}

	for _, tt := range tests {
		for k := 0; k < total; k++ {
			t.Run(tt.name+"/tick "+FormatClock(k), func(t *testing.T) {
				s := &scriptedSurface{keyAt: map[int]string{k: tt.key}}
				out, err := newTestEngine().Run(context.Background(), s, "working", total)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if out != tt.want {
					t.Fatalf("expected %s, got %s", tt.want, out)
				}
				// k decrements happened before the key; no render after it.
				if len(s.times) != k+1 {
					t.Fatalf("expected %d renders, got %d", k+1, len(s.times))
				}
				want := "Time remaining: " + FormatClock(total-k)
				if last := s.times[len(s.times)-1]; last != want {
					t.Fatalf("expected last render %q, got %q", want, last)
				}
				if s.blocking != 0 {
					t.Fatalf("expected no blocking waits, got %d", s.blocking)
				}
			})
		}
	}
}

func TestRunPauseKeepsRemaining(t *testing.T) {
	// Pause on the third tick, resume with the pause key itself.
	s := &scriptedSurface{
		keyAt:  map[int]string{2: " "},
		resume: []string{" "},
	}
	out, err := newTestEngine().Run(context.Background(), s, "working", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != domain.OutcomeCompleted {
		t.Fatalf("expected completed, got %s", out)
	}
	if s.blocking != 1 {
		t.Fatalf("expected exactly one blocking wait, got %d", s.blocking)
	}

	want := []string{
		"Time remaining: 00:04",
		"Time remaining: 00:03",
		"Time remaining: 00:02",
		pausedMessage,
		"Time remaining: 00:02",
		"Time remaining: 00:01",
	}
	if strings.Join(s.times, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected renders:\n got %q\nwant %q", s.times, want)
	}
	// Four decrementing waits plus the one that read the pause key.
	if s.bounded != 5 {
		t.Fatalf("expected 5 bounded waits, got %d", s.bounded)
	}
}

func TestRunQuitAfterResume(t *testing.T) {
	// A quit key used to resume is not interpreted.
	s := &scriptedSurface{
		keyAt:  map[int]string{0: " "},
		resume: []string{"q"},
	}
	out, err := newTestEngine().Run(context.Background(), s, "working", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != domain.OutcomeCompleted {
		t.Fatalf("expected completed, got %s", out)
	}
}

func TestRunUnknownKeyTicks(t *testing.T) {
	s := &scriptedSurface{keyAt: map[int]string{0: "x", 1: "enter"}}
	out, err := newTestEngine().Run(context.Background(), s, "working", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != domain.OutcomeCompleted || s.bounded != 3 {
		t.Fatalf("expected completion after 3 ticks, got %s after %d", out, s.bounded)
	}
}

func TestRunCustomKeymap(t *testing.T) {
	km, err := input.ParseKeymap(map[string][]string{"quit": {"x"}})
	if err != nil {
		t.Fatalf("keymap: %v", err)
	}
	s := &scriptedSurface{keyAt: map[int]string{0: "q", 1: "x"}}
	out, err := newTestEngine(WithKeymap(km)).Run(context.Background(), s, "working", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != domain.OutcomeQuit || s.bounded != 2 {
		t.Fatalf("expected quit on second tick, got %s after %d", out, s.bounded)
	}
}

func TestRunPropagatesSurfaceError(t *testing.T) {
	s := &scriptedSurface{errAt: map[int]error{1: domain.ErrInterrupted}}
	_, err := newTestEngine().Run(context.Background(), s, "working", 5)
	if !errors.Is(err, domain.ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
}

func TestRunObserver(t *testing.T) {
	var seen []domain.CountdownState
	e := newTestEngine(WithObserver(func(st domain.CountdownState) {
		seen = append(seen, st)
	}))
	s := &scriptedSurface{keyAt: map[int]string{1: " "}}
	if _, err := e.Run(context.Background(), s, "resting", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 4 {
		t.Fatalf("expected 4 observations, got %d: %+v", len(seen), seen)
	}
	if !seen[2].Paused || seen[2].Remaining != 1 || seen[2].Elapsed() != 1 {
		t.Fatalf("unexpected paused observation %+v", seen[2])
	}
	if seen[3].Paused || seen[3].PhaseName != "resting" {
		t.Fatalf("unexpected resumed observation %+v", seen[3])
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "00:00"},
		{9, "00:09"},
		{61, "01:01"},
		{1200, "20:00"},
		{4500, "75:00"},
		{-3, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.in); got != tt.want {
			t.Errorf("FormatClock(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
