package engine

import "time"

// TickSource decides how long one key wait lasts and how many seconds of
// countdown it accounts for. It is the only place that knows what a tick
// means in wall-clock terms.
type TickSource interface {
	// Interval is the timeout for the next key wait.
	Interval() time.Duration
	// Start is called when a countdown begins and when it resumes from
	// pause. Time before Start is never counted.
	Start()
	// Elapsed returns the whole seconds to subtract after a wait that
	// returned no key or an unbound key.
	Elapsed() int
}

// PollTick counts every wait as exactly one second, even when a key cut
// the wait short. Countdown accuracy drifts under heavy key input; this
// matches the classic curses timer.
type PollTick struct {
	interval time.Duration
}

// NewPollTick returns a one-second poll tick.
func NewPollTick() *PollTick {
	return &PollTick{interval: time.Second}
}

// Interval returns the fixed wait timeout.
func (p *PollTick) Interval() time.Duration { return p.interval }

// Start is a no-op; poll ticks carry no state.
func (p *PollTick) Start() {}

// Elapsed always reports one second.
func (p *PollTick) Elapsed() int { return 1 }

// Clock provides the current time. It allows tests to drive ClockTick.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock backed by time.Now, which carries a monotonic
// reading.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ClockTick measures real elapsed time between waits and reports whole
// seconds, carrying the remainder forward so early key presses do not
// speed the countdown up.
type ClockTick struct {
	clock Clock
	mark  time.Time
	carry time.Duration
}

// NewClockTick returns a monotonic tick source. A nil clock uses SystemClock.
func NewClockTick(clock Clock) *ClockTick {
	if clock == nil {
		clock = SystemClock
	}
	return &ClockTick{clock: clock}
}

// Interval waits until the next whole second is due.
func (c *ClockTick) Interval() time.Duration {
	d := time.Second - c.carry
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}

// Start re-arms the mark and drops any partial second.
func (c *ClockTick) Start() {
	c.mark = c.clock.Now()
	c.carry = 0
}

// Elapsed returns the whole seconds since the last call or Start.
func (c *ClockTick) Elapsed() int {
	now := c.clock.Now()
	c.carry += now.Sub(c.mark)
	c.mark = now

	n := int(c.carry / time.Second)
	c.carry -= time.Duration(n) * time.Second
	return n
}
