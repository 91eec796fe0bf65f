// Package shutdownqueue collects cleanup tasks during startup and drains
// them in reverse registration order when the process stops.
//
// Register tasks anywhere via Add and drain them once at the end of main:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//	defer shutdownqueue.Shutdown(ctx)
//
// Shutdown is idempotent; task panics are recovered and task errors are
// aggregated with errors.Join.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it cannot finish before ctx is done.
type Task func(ctx context.Context) error

// Queue is a LIFO list of shutdown tasks.
type Queue struct {
	mu      sync.Mutex
	tasks   []Task
	drained bool
}

var defaultQueue = &Queue{}

// Add registers a task on the process-wide queue.
func Add(t Task) { defaultQueue.Add(t) }

// Shutdown drains the process-wide queue.
func Shutdown(ctx context.Context) error { return defaultQueue.Shutdown(ctx) }

// Add registers a task to run on Shutdown. Nil tasks and tasks added
// after draining started are ignored.
func (q *Queue) Add(t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.drained {
		return
	}

	q.tasks = append(q.tasks, t)
}

// Shutdown runs all registered tasks in LIFO order. If ctx ends mid-drain
// the remaining tasks are skipped and the context error is included in
// the joined result. Subsequent calls are no-ops.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.drained {
		q.mu.Unlock()
		return nil
	}
	q.drained = true
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	var errs []error

	for i := len(tasks) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", ctx.Err()))
			return errors.Join(errs...)
		default:
		}

		err := runTask(ctx, tasks[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task: %v", r)
		}
	}()

	return t(ctx)
}
