// Package engine implements the countdown state machine for a single phase.
//
// A countdown renders the remaining time, waits for one key with a bounded
// timeout, and interprets the key as a control signal. Time only advances
// as a side effect of that wait; see TickSource.
package engine

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/pomato/internal/domain"
	"github.com/hammamikhairi/pomato/internal/input"
	"github.com/hammamikhairi/pomato/internal/logger"
)

// Messages shown on the time line.
const (
	remainingFormat = "Time remaining: %s"
	pausedMessage   = "Timer paused, press any key to resume."
)

// Option configures the engine.
type Option func(*Engine)

// WithKeymap sets the key bindings used to classify input.
func WithKeymap(km input.Keymap) Option {
	return func(e *Engine) {
		e.keymap = km
	}
}

// WithTickSource replaces the default one-second poll tick.
func WithTickSource(ts TickSource) Option {
	return func(e *Engine) {
		e.tick = ts
	}
}

// WithObserver registers a callback that receives the countdown state
// every time it is rendered. The callback runs on the engine's goroutine
// and must not block.
func WithObserver(fn func(domain.CountdownState)) Option {
	return func(e *Engine) {
		e.observe = fn
	}
}

// Engine runs countdowns. It holds no per-phase state between calls and
// depends only on the Surface it is handed.
type Engine struct {
	keymap  input.Keymap
	tick    TickSource
	observe func(domain.CountdownState)
	log     *logger.Logger
}

// New creates a countdown engine with the given logger and options.
func New(log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		keymap: input.DefaultKeymap(),
		tick:   NewPollTick(),
		log:    log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run counts down totalSeconds for the named phase on the given surface.
//
// The returned outcome is OutcomeCompleted when the count reaches zero,
// OutcomeSkipped or OutcomeQuit when the matching key was read. Skip and
// quit take effect on the tick during which the key arrived; that second
// is not counted. A negative duration fails with domain.ErrInvalidDuration
// before anything is displayed. Surface errors are returned unchanged.
func (e *Engine) Run(ctx context.Context, surface domain.Surface, phaseName string, totalSeconds int) (domain.Outcome, error) {
	if err := (domain.Phase{Name: phaseName, Duration: totalSeconds}).Validate(); err != nil {
		return domain.OutcomeQuit, err
	}

	state := domain.CountdownState{
		PhaseName: phaseName,
		Remaining: totalSeconds,
		Total:     totalSeconds,
	}
	e.tick.Start()
	e.log.Debug("countdown %q started (%ds)", phaseName, totalSeconds)

	for state.Remaining > 0 {
		surface.ShowTime(fmt.Sprintf(remainingFormat, FormatClock(state.Remaining)))
		e.emit(state)

		key, err := surface.WaitKey(ctx, e.tick.Interval())
		if err != nil {
			return domain.OutcomeQuit, fmt.Errorf("waiting for key: %w", err)
		}

		switch signal := e.keymap.Classify(key); signal {
		case domain.SignalQuit:
			e.log.Debug("countdown %q quit with %ds remaining", phaseName, state.Remaining)
			return domain.OutcomeQuit, nil

		case domain.SignalSkip:
			e.log.Debug("countdown %q skipped with %ds remaining", phaseName, state.Remaining)
			return domain.OutcomeSkipped, nil

		case domain.SignalPause:
			if err := e.pause(ctx, surface, &state); err != nil {
				return domain.OutcomeQuit, err
			}

		default:
			n := e.tick.Elapsed()
			if n > state.Remaining {
				n = state.Remaining
			}
			state.Remaining -= n
		}
	}

	e.log.Debug("countdown %q completed", phaseName)
	return domain.OutcomeCompleted, nil
}

// pause blocks until any key is pressed. The remaining time is left as it
// was and the tick source is re-armed so the paused interval is not counted.
func (e *Engine) pause(ctx context.Context, surface domain.Surface, state *domain.CountdownState) error {
	state.Paused = true
	surface.ShowTime(pausedMessage)
	e.emit(*state)
	e.log.Debug("countdown %q paused at %ds", state.PhaseName, state.Remaining)

	// Any key resumes, including the pause key itself.
	if _, err := surface.WaitKey(ctx, domain.NoTimeout); err != nil {
		return fmt.Errorf("waiting for resume: %w", err)
	}

	state.Paused = false
	e.tick.Start()
	e.log.Debug("countdown %q resumed", state.PhaseName)
	return nil
}

func (e *Engine) emit(state domain.CountdownState) {
	if e.observe != nil {
		e.observe(state)
	}
}

// FormatClock renders seconds as MM:SS. Minutes are not wrapped at an
// hour, so 75 minutes is "75:00".
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
