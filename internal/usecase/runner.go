package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"KeywordWatcher/internal/ports"
)

const defaultMaxConcurrent = 4

// Runner executes one cycle at a time: every WatchTask fans out over a
// bounded pool, and the cycle ends only when all of them have returned. Task
// failures are reported through the notifier's error channel; they never
// cancel sibling tasks or the cycle.
type Runner struct {
	tasks         []*WatchTask
	notifier      ports.Notifier
	maxConcurrent int
	logger        *slog.Logger
	cycles        atomic.Uint64
}

// NewRunner builds a cycle runner over the given tasks.
func NewRunner(tasks []*WatchTask, notifier ports.Notifier, maxConcurrent int, log *slog.Logger) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		tasks:         tasks,
		notifier:      notifier,
		maxConcurrent: maxConcurrent,
		logger:        log,
	}
}

// RunCycle executes every task once and returns when all have finished.
func (r *Runner) RunCycle(ctx context.Context) {
	cycle := r.cycles.Add(1)
	start := time.Now()
	r.logger.Info("cycle started", "cycle", cycle, "watches", len(r.tasks))

	var g errgroup.Group
	g.SetLimit(r.maxConcurrent)

	for _, task := range r.tasks {
		g.Go(func() error {
			// Failures after ctx cancellation are shutdown fallout,
			// not source problems.
			if err := r.runTask(ctx, task); err != nil && ctx.Err() == nil {
				r.reportFailure(ctx, task.Source(), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	r.logger.Info("cycle finished", "cycle", cycle, "took", time.Since(start))
}

// runTask converts a panic inside a task into an error so one misbehaving
// watch degrades only its own pass.
func (r *Runner) runTask(ctx context.Context, task *WatchTask) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("watch task panicked",
				"source", task.Source(), "panic", rec, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return task.Run(ctx)
}

func (r *Runner) reportFailure(ctx context.Context, source string, err error) {
	r.logger.Error("watch task failed", "source", source, "error", err)

	message := fmt.Sprintf("Error during watch of '%s': %v", source, err)
	if notifyErr := r.notifier.NotifyError(ctx, message); notifyErr != nil {
		r.logger.Error("report task failure", "source", source, "error", notifyErr)
	}
}
