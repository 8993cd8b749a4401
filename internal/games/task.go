package games

import "context"

// Task is a cancellable, awaitable background unit of work. Games use it
// for expiry timers and the post-reveal reaction sweep. Replacing a timer
// follows a strict protocol: Stop the old task and observe its completion
// before starting the new one, so two timers never race to declare
// game-end.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Go runs fn on its own goroutine and returns a handle to it. The fn must
// observe ctx cancellation at its suspension points and return without
// side effects when cancelled.
func Go(fn func(ctx context.Context)) *Task {
	return GoCtx(context.Background(), fn)
}

// GoCtx is Go with the task's context descending from parent, so
// cancelling parent cancels the task as well as any later task started
// under it
func GoCtx(parent context.Context, fn func(ctx context.Context)) *Task {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		fn(ctx)
	}()

	return t
}

// Stop cancels the task and blocks until it has fully finished.
// Safe to call on a nil or already-finished task.
func (t *Task) Stop() {
	if t == nil {
		return
	}
	t.cancel()
	<-t.done
}

// Wait blocks until the task finishes without cancelling it.
// Safe to call on a nil task.
func (t *Task) Wait() {
	if t == nil {
		return
	}
	<-t.done
}

// Done exposes the completion channel for select-based waits
func (t *Task) Done() <-chan struct{} {
	return t.done
}
