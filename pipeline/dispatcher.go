package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultWorkers bounds concurrent summarization tasks so slow
	// provider calls never stall event intake.
	DefaultWorkers = 3

	// DefaultQueueSize bounds the backlog; past it, Submit rejects.
	DefaultQueueSize = 16
)

// Dispatcher runs tasks on a fixed-size worker pool fed by a bounded
// queue. It is the only shared mutable resource in the pipeline.
type Dispatcher struct {
	logger *slog.Logger
	run    func(ctx context.Context, t Task)
	tasks  chan Task
	group  *errgroup.Group
	cancel context.CancelFunc
}

// NewDispatcher starts workers goroutines draining a queue of
// queueSize. run is invoked once per task; it must not panic through
// (the orchestrator recovers at the task boundary).
func NewDispatcher(logger *slog.Logger, workers, queueSize int, run func(ctx context.Context, t Task)) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	d := &Dispatcher{
		logger: logger,
		run:    run,
		tasks:  make(chan Task, queueSize),
		group:  g,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case t, ok := <-d.tasks:
					if !ok {
						return nil
					}
					d.run(ctx, t)
				case <-ctx.Done():
					return nil
				}
			}
		})
	}
	return d
}

// Submit enqueues a task without blocking intake. It reports false
// when the queue is full; the caller tells the user to retry later.
func (d *Dispatcher) Submit(t Task) bool {
	select {
	case d.tasks <- t:
		d.logger.Info("task_enqueued", "task_id", t.ID.String(), "chat_id", t.ChatID, "file_name", t.FileName)
		return true
	default:
		d.logger.Warn("task_rejected_queue_full", "chat_id", t.ChatID, "file_name", t.FileName)
		return false
	}
}

// Close stops accepting tasks, drains the queue, and waits for
// in-flight tasks to finish.
func (d *Dispatcher) Close() {
	close(d.tasks)
	_ = d.group.Wait()
	d.cancel()
}
