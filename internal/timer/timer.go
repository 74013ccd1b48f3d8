// Package timer drives the countdown engine across a sequence of phases,
// repeated for a number of cycles, and handles the end-of-phase chime and
// acknowledgement.
package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/hammamikhairi/pomato/internal/domain"
	"github.com/hammamikhairi/pomato/internal/engine"
	"github.com/hammamikhairi/pomato/internal/logger"
)

// Messages shown at phase boundaries.
const (
	currentPhaseFormat = "You should currently be %s"
	endPhaseFormat     = "End of %s phase"
	continueMessage    = "Press any key to begin next phase."
)

// Countdown times a single phase. *engine.Engine satisfies it.
type Countdown interface {
	Run(ctx context.Context, surface domain.Surface, phaseName string, totalSeconds int) (domain.Outcome, error)
}

// Compile-time interface check.
var _ Countdown = (*engine.Engine)(nil)

// Option configures the timer.
type Option func(*Timer)

// WithCountdown replaces the default countdown engine.
func WithCountdown(c Countdown) Option {
	return func(t *Timer) {
		t.countdown = c
	}
}

// WithChime sets the end-of-phase notification.
func WithChime(c domain.Chime) Option {
	return func(t *Timer) {
		t.chime = c
	}
}

// WithJournal records every finished phase to j.
func WithJournal(j domain.Journal, runID string) Option {
	return func(t *Timer) {
		t.journal = j
		t.runID = runID
	}
}

// WithClock sets the clock used for journal timestamps.
func WithClock(c engine.Clock) Option {
	return func(t *Timer) {
		t.clock = c
	}
}

// Timer owns the phase sequence and runs it against a display surface.
// It is not safe for concurrent use; a run is a single thread of control.
type Timer struct {
	surface   domain.Surface
	countdown Countdown
	chime     domain.Chime
	journal   domain.Journal
	clock     engine.Clock
	log       *logger.Logger

	runID   string
	phases  domain.Sequence
	current string
	cycle   int
}

// New creates a timer that draws on surface. The surface is borrowed; the
// caller keeps ownership and is responsible for closing it.
func New(surface domain.Surface, log *logger.Logger, opts ...Option) *Timer {
	t := &Timer{
		surface: surface,
		chime:   silentChime{},
		clock:   engine.SystemClock,
		log:     log,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.countdown == nil {
		t.countdown = engine.New(log)
	}
	return t
}

// AddPhase appends a phase to the sequence. Durations are not checked here;
// a negative duration fails when its phase is reached.
func (t *Timer) AddPhase(name string, duration int) {
	t.phases.Append(domain.Phase{Name: name, Duration: duration})
	t.log.Debug("added phase %q (%ds)", name, duration)
}

// Phases returns a copy of the configured sequence.
func (t *Timer) Phases() []domain.Phase {
	return t.phases.Phases()
}

// Run times every phase in order, cycles times over. It returns
// OutcomeQuit as soon as a phase is quit, without touching the remaining
// phases or cycles, and OutcomeCompleted otherwise. Zero or negative
// cycles, or an empty sequence, do nothing.
func (t *Timer) Run(ctx context.Context, cycles int) (domain.Outcome, error) {
	if cycles <= 0 || t.phases.Len() == 0 {
		t.log.Info("nothing to run (cycles=%d, phases=%d)", cycles, t.phases.Len())
		return domain.OutcomeCompleted, nil
	}

	t.log.Info("run started: %d cycle(s) of %d phase(s), %s per cycle",
		cycles, t.phases.Len(), engine.FormatClock(t.phases.Total()))

	for c := 1; c <= cycles; c++ {
		t.cycle = c
		for i := 0; i < t.phases.Len(); i++ {
			phase := t.phases.At(i)
			out, err := t.Period(ctx, phase)
			if err != nil {
				return domain.OutcomeQuit, err
			}
			if out == domain.OutcomeQuit {
				t.log.Info("run quit during %q (cycle %d/%d)", phase.Name, c, cycles)
				return domain.OutcomeQuit, nil
			}
		}
		t.log.Debug("cycle %d/%d finished", c, cycles)
	}

	t.log.Info("run completed")
	return domain.OutcomeCompleted, nil
}

// Period times one phase. A completed phase is followed by EndPhase; a
// skipped phase returns straight away; a quit is passed up unchanged.
func (t *Timer) Period(ctx context.Context, phase domain.Phase) (domain.Outcome, error) {
	t.current = phase.Name
	t.surface.ShowPhase(fmt.Sprintf(currentPhaseFormat, phase.Name))

	started := t.clock.Now()
	out, err := t.countdown.Run(ctx, t.surface, phase.Name, phase.Duration)
	if err != nil {
		return domain.OutcomeQuit, fmt.Errorf("timing phase %q: %w", phase.Name, err)
	}
	t.record(ctx, phase, out, started)

	switch out {
	case domain.OutcomeCompleted:
		t.log.Info("phase %q completed", phase.Name)
		if err := t.EndPhase(ctx); err != nil {
			return domain.OutcomeQuit, err
		}
	case domain.OutcomeSkipped:
		t.log.Info("phase %q skipped", phase.Name)
	}
	return out, nil
}

// EndPhase rings the chime, announces the end of the current phase and
// blocks until any key is pressed. The key is not interpreted.
func (t *Timer) EndPhase(ctx context.Context) error {
	t.chime.Ding(ctx)
	t.surface.ShowPhase(fmt.Sprintf(endPhaseFormat, t.current))
	t.surface.ShowTime(continueMessage)

	if _, err := t.surface.WaitKey(ctx, domain.NoTimeout); err != nil {
		return fmt.Errorf("waiting for acknowledgement: %w", err)
	}
	return nil
}

func (t *Timer) record(ctx context.Context, phase domain.Phase, out domain.Outcome, started time.Time) {
	if t.journal == nil {
		return
	}
	rec := domain.PhaseRecord{
		RunID:     t.runID,
		Cycle:     t.cycle,
		Phase:     phase.Name,
		Outcome:   out,
		Planned:   phase.Duration,
		StartedAt: started,
		EndedAt:   t.clock.Now(),
	}
	if err := t.journal.Record(ctx, rec); err != nil {
		t.log.Error("recording phase %q: %v", phase.Name, err)
	}
}

// silentChime is used when no chime is configured.
type silentChime struct{}

func (silentChime) Ding(context.Context) {}
