package clock

import (
	"context"
	"time"
)

// SleepResult reports how a Sleep call finished
type SleepResult int

const (
	// SleepExpired means the full duration elapsed
	SleepExpired SleepResult = iota
	// SleepCancelled means the context was cancelled before expiry
	SleepCancelled
)

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time

	// Sleep blocks for d or until ctx is cancelled, whichever comes first.
	// Cancellation is the normal path for timer replacement, not an error.
	Sleep(ctx context.Context, d time.Duration) SleepResult
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// Sleep waits out d unless ctx is cancelled first
func (c *RealClock) Sleep(ctx context.Context, d time.Duration) SleepResult {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return SleepExpired
	case <-ctx.Done():
		return SleepCancelled
	}
}
