package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"KeywordWatcher/internal/ports"
)

// Cron schedules runs by a standard 5-field cron expression. A run that
// outlasts the schedule causes the next firing to be skipped, never
// overlapped.
type Cron struct {
	spec   string
	logger *slog.Logger
	runner *cron.Cron
}

var _ ports.Scheduler = (*Cron)(nil)

// NewCron builds a scheduler from a cron expression string.
func NewCron(spec string, log *slog.Logger) *Cron {
	return &Cron{spec: spec, logger: log}
}

// Start validates the expression and begins scheduling. Unlike the interval
// scheduler there is no immediate first run; the job fires on the expression
// only.
func (c *Cron) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if c.runner != nil {
		return nil
	}

	log := cronLogger{logger: c.logger}
	runner := cron.New(
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)),
		cron.WithChain(cron.SkipIfStillRunning(log), cron.Recover(log)),
	)

	if _, err := runner.AddFunc(c.spec, func() { job(time.Now()) }); err != nil {
		return fmt.Errorf("parse cron expression %q: %w", c.spec, err)
	}

	runner.Start()
	c.runner = runner

	go func() {
		<-ctx.Done()
		runner.Stop()
	}()

	return nil
}

// Stop halts scheduling and waits for an in-flight run to return.
func (c *Cron) Stop(ctx context.Context) error {
	if c.runner == nil {
		return nil
	}
	stopCtx := c.runner.Stop()
	c.runner = nil

	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to the cron.Logger interface. Scheduling chatter
// goes to debug; only real errors surface at error level.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if l.logger != nil {
		l.logger.Debug(msg, keysAndValues...)
	}
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	if l.logger != nil {
		l.logger.Error(msg, append(keysAndValues, "error", err)...)
	}
}
