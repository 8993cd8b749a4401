package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/madkingbot/officialgames/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing. Sleep calls
// block until fired or cancelled, so tests drive timer expiry explicitly.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
	pending     []*pendingSleep
}

type pendingSleep struct {
	d     time.Duration
	fired chan struct{}
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Sleep blocks until FireSleep releases it or ctx is cancelled
func (c *MockClock) Sleep(ctx context.Context, d time.Duration) clock.SleepResult {
	p := &pendingSleep{d: d, fired: make(chan struct{})}

	c.mu.Lock()
	c.pending = append(c.pending, p)
	c.mu.Unlock()

	select {
	case <-p.fired:
		return clock.SleepExpired
	case <-ctx.Done():
		c.remove(p)
		return clock.SleepCancelled
	}
}

func (c *MockClock) remove(p *pendingSleep) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, candidate := range c.pending {
		if candidate == p {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

// FireSleep expires the oldest pending sleep, returning false if none is
// pending
func (c *MockClock) FireSleep() bool {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return false
	}
	p := c.pending[0]
	c.pending = c.pending[1:]
	c.mu.Unlock()

	close(p.fired)
	return true
}

// PendingSleeps returns the durations of sleeps not yet fired or cancelled
func (c *MockClock) PendingSleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.pending))
	for i, p := range c.pending {
		out[i] = p.d
	}
	return out
}

// WaitForSleep polls until at least n sleeps are pending or the timeout
// elapses, returning whether the condition was met. Tests use it to wait
// for a timer goroutine to arrive at its suspension point.
func (c *MockClock) WaitForSleep(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		count := len(c.pending)
		c.mu.Unlock()
		if count >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}
