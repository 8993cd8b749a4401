package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ClockSuite struct {
	suite.Suite
}

func TestClockSuite(t *testing.T) {
	suite.Run(t, new(ClockSuite))
}

func (s *ClockSuite) TestRealClockNow() {
	before := time.Now()
	now := New().Now()
	after := time.Now()

	s.False(now.Before(before))
	s.False(now.After(after))
}

func (s *ClockSuite) TestSleepExpires() {
	result := New().Sleep(context.Background(), time.Millisecond)
	s.Equal(SleepExpired, result)
}

func (s *ClockSuite) TestSleepCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New().Sleep(ctx, time.Hour)
	s.Equal(SleepCancelled, result)
}
