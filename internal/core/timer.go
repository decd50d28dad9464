package core

import "time"

// maxBacklog bounds how many ticks a stalled frame loop may owe.
const maxBacklog = 4

// FixedStep paces simulation updates at a steady rate independent of the
// frame rate. The viewer uses it to advance a fixed number of years per
// second.
type FixedStep struct {
	rate        int
	step        time.Duration
	accumulator time.Duration
	last        time.Time
}

// NewFixedStep constructs a FixedStep targeting rate ticks per second. The
// first call to ShouldStep always fires.
func NewFixedStep(rate int) *FixedStep {
	fs := &FixedStep{}
	fs.SetRate(rate)
	fs.accumulator = fs.step
	return fs
}

// SetRate changes the tick rate; non-positive rates fall back to 60.
func (f *FixedStep) SetRate(rate int) {
	if rate <= 0 {
		rate = 60
	}
	f.rate = rate
	f.step = time.Second / time.Duration(rate)
}

// Rate returns the configured ticks per second.
func (f *FixedStep) Rate() int { return f.rate }

// Reset drops any accumulated time, e.g. after a pause.
func (f *FixedStep) Reset() {
	f.accumulator = 0
	f.last = time.Time{}
}

// ShouldStep reports whether the simulation should advance by one tick.
func (f *FixedStep) ShouldStep() bool {
	now := time.Now()
	if f.last.IsZero() {
		f.last = now
	}
	f.accumulator += now.Sub(f.last)
	f.last = now
	if limit := maxBacklog * f.step; f.accumulator > limit {
		f.accumulator = limit
	}
	if f.accumulator >= f.step {
		f.accumulator -= f.step
		return true
	}
	return false
}
