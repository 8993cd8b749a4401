package games

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TaskSuite struct {
	suite.Suite
}

func TestTaskSuite(t *testing.T) {
	suite.Run(t, new(TaskSuite))
}

func (s *TaskSuite) TestGoRunsTheFunction() {
	var ran atomic.Bool
	t := Go(func(ctx context.Context) {
		ran.Store(true)
	})
	t.Wait()
	s.True(ran.Load())
}

func (s *TaskSuite) TestStopCancelsAndWaits() {
	started := make(chan struct{})
	var observedCancel atomic.Bool

	t := Go(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		observedCancel.Store(true)
	})

	<-started
	t.Stop()
	// Stop returns only after the goroutine has fully finished
	s.True(observedCancel.Load())
}

func (s *TaskSuite) TestStopOnNilTaskIsSafe() {
	var t *Task
	t.Stop()
	t.Wait()
}

func (s *TaskSuite) TestStopAfterCompletionReturnsImmediately() {
	t := Go(func(ctx context.Context) {})
	t.Wait()
	t.Stop()
}

func (s *TaskSuite) TestGoCtxDescendsFromParent() {
	parent, cancel := context.WithCancel(context.Background())

	t := GoCtx(parent, func(ctx context.Context) {
		<-ctx.Done()
	})

	cancel()
	select {
	case <-t.Done():
	case <-time.After(time.Second):
		s.Fail("task did not observe parent cancellation")
	}
}

func (s *TaskSuite) TestGoCtxWithCancelledParentStartsCancelled() {
	parent, cancel := context.WithCancel(context.Background())
	cancel()

	t := GoCtx(parent, func(ctx context.Context) {
		<-ctx.Done()
	})

	select {
	case <-t.Done():
	case <-time.After(time.Second):
		s.Fail("task started under a cancelled parent did not finish")
	}
}
