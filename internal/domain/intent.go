package domain

// Signal classifies what a single key press asks the countdown to do.
type Signal int

const (
	SignalNone Signal = iota
	SignalPause
	SignalSkip
	SignalQuit
)

// String returns a human-readable signal name.
func (s Signal) String() string {
	switch s {
	case SignalNone:
		return "none"
	case SignalPause:
		return "pause"
	case SignalSkip:
		return "skip"
	case SignalQuit:
		return "quit"
	default:
		return "unknown"
	}
}
