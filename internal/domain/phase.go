// Package domain defines the core types and interfaces for the interval timer.
// All other packages depend on domain; domain depends on nothing.
package domain

import "fmt"

// Phase is one named interval of the timer, e.g. "working" for 1200 seconds.
// Phases are values: they are created once at configuration time and never
// mutated afterwards.
type Phase struct {
	Name     string
	Duration int // seconds
}

// Validate reports ErrInvalidDuration for a negative duration. It is called
// when the phase is about to be timed, not when it is configured.
func (p Phase) Validate() error {
	if p.Duration < 0 {
		return fmt.Errorf("phase %q: length of phase must be positive, got %d: %w", p.Name, p.Duration, ErrInvalidDuration)
	}
	return nil
}

// Sequence is an ordered list of phases. Insertion order is preserved and
// the zero value is an empty, usable sequence.
type Sequence struct {
	phases []Phase
}

// Append adds a phase to the end of the sequence.
func (s *Sequence) Append(p Phase) {
	s.phases = append(s.phases, p)
}

// Len returns the number of phases.
func (s Sequence) Len() int { return len(s.phases) }

// At returns the i-th phase. It panics if i is out of range, like a slice.
func (s Sequence) At(i int) Phase { return s.phases[i] }

// Phases returns a copy of the phases so callers cannot mutate the sequence.
func (s Sequence) Phases() []Phase {
	out := make([]Phase, len(s.phases))
	copy(out, s.phases)
	return out
}

// Total returns the summed duration of one cycle, in seconds. Negative
// durations are counted as zero.
func (s Sequence) Total() int {
	total := 0
	for _, p := range s.phases {
		if p.Duration > 0 {
			total += p.Duration
		}
	}
	return total
}
