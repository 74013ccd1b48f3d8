package domain

import "time"

// CountdownState is the transient state of one phase while it is being
// timed. It exists from the start of a phase until it completes, is skipped,
// or the run is quit.
type CountdownState struct {
	PhaseName string
	Remaining int // seconds, never negative
	Total     int
	Paused    bool
}

// Elapsed returns how many seconds of the phase have been counted down.
func (c CountdownState) Elapsed() int { return c.Total - c.Remaining }

// Outcome is the terminal state of a single countdown.
type Outcome int

const (
	// OutcomeCompleted means the countdown reached zero.
	OutcomeCompleted Outcome = iota
	// OutcomeSkipped means the user ended the phase early.
	OutcomeSkipped
	// OutcomeQuit means the user asked to abort the whole run.
	OutcomeQuit
)

// String returns a human-readable outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// PhaseRecord is the journal entry written when a phase finishes.
type PhaseRecord struct {
	RunID     string
	Cycle     int // 1-based
	Phase     string
	Outcome   Outcome
	Planned   int // seconds
	StartedAt time.Time
	EndedAt   time.Time
}

// ExitSignal is the process-level reason for termination.
type ExitSignal int

const (
	// ExitNormalCompletion means every cycle ran to the end.
	ExitNormalCompletion ExitSignal = iota
	// ExitUserQuit means the quit key was pressed.
	ExitUserQuit
	// ExitInterrupted means an external interrupt (Ctrl-C, SIGTERM) arrived.
	ExitInterrupted
	// ExitFault means an internal error stopped the run.
	ExitFault
)

// String returns a human-readable exit signal.
func (e ExitSignal) String() string {
	switch e {
	case ExitNormalCompletion:
		return "normal completion"
	case ExitUserQuit:
		return "user quit"
	case ExitInterrupted:
		return "interrupted"
	case ExitFault:
		return "fault"
	default:
		return "unknown"
	}
}

// Code returns the process exit status for the signal. Quitting and
// interrupting are clean exits.
func (e ExitSignal) Code() int {
	if e == ExitFault {
		return 1
	}
	return 0
}
