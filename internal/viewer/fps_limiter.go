package viewer

import (
	"time"

	"voxelview/internal/config"
)

// spinSlack is how close to the deadline Wait stops sleeping and starts polling.
const spinSlack = 200 * time.Microsecond

// FPSLimiter paces the window loop to config.GetFPSLimit. Deadlines advance
// by whole periods so short overruns are absorbed by the following frames.
type FPSLimiter struct {
	deadline time.Time
	resyncs  int

	slack time.Duration
	now   func() time.Time
	sleep func(time.Duration)
}

// NewFPSLimiter creates a limiter on the wall clock.
func NewFPSLimiter() *FPSLimiter {
	return &FPSLimiter{slack: spinSlack, now: time.Now, sleep: time.Sleep}
}

// Resyncs returns how many times a frame arrived more than a period late and
// restarted the schedule.
func (f *FPSLimiter) Resyncs() int { return f.resyncs }

// Wait blocks until the next frame is due. With no limit it returns at once
// and forgets the schedule.
func (f *FPSLimiter) Wait() {
	limit := config.GetFPSLimit()
	if limit <= 0 {
		f.deadline = time.Time{}
		return
	}
	period := time.Second / time.Duration(limit)

	now := f.now()
	next := f.deadline.Add(period)
	switch {
	case f.deadline.IsZero():
		f.deadline = now.Add(period)
	case now.Sub(next) > period:
		// a hitch; catching up would run a burst of unpaced frames
		f.resyncs++
		f.deadline = now.Add(period)
	default:
		f.deadline = next
	}

	for {
		left := f.deadline.Sub(f.now())
		if left <= 0 {
			return
		}
		if left > f.slack {
			f.sleep(left - f.slack)
		}
	}
}
