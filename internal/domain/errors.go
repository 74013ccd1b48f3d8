package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrInvalidDuration     = errors.New("invalid phase duration")
	ErrTerminalUnavailable = errors.New("terminal unavailable")
	ErrInterrupted         = errors.New("interrupted")
	ErrSurfaceClosed       = errors.New("display surface closed")
	ErrNotFound            = errors.New("not found")
)
