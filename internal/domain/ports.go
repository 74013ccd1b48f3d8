package domain

import (
	"context"
	"time"
)

// NoKey is returned by Surface.WaitKey when the timeout elapses without
// input.
const NoKey = ""

// NoTimeout makes Surface.WaitKey block until a key arrives.
const NoTimeout time.Duration = -1

// Surface is the display capability consumed by the countdown engine and
// the timer: a phase line, a time line, and a bounded key read.
// Implementations can be a full-screen terminal UI or a scripted fake.
type Surface interface {
	// ShowPhase replaces the phase line. It must not block.
	ShowPhase(text string)
	// ShowTime replaces the time/message line. It must not block.
	ShowTime(text string)
	// WaitKey waits up to timeout for one key and returns it lower-cased.
	// It returns NoKey, nil when the timeout elapses. Errors are reserved
	// for cancellation, interrupts and a closed surface.
	WaitKey(ctx context.Context, timeout time.Duration) (string, error)
}

// Chime plays the end-of-phase notification. Ding must return immediately;
// playback failures are the implementation's to log, never the caller's.
type Chime interface {
	Ding(ctx context.Context)
}

// Journal records finished phases for the current run. Implementations
// are in-memory; nothing survives the process.
type Journal interface {
	Record(ctx context.Context, rec PhaseRecord) error
	List(ctx context.Context) ([]PhaseRecord, error)
}
