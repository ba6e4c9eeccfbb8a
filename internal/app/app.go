package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"KeywordWatcher/internal/config"
	"KeywordWatcher/internal/domain"
	"KeywordWatcher/internal/infrastructure/hackernews"
	"KeywordWatcher/internal/infrastructure/pushover"
	"KeywordWatcher/internal/infrastructure/reddit"
	"KeywordWatcher/internal/infrastructure/scheduler"
	"KeywordWatcher/internal/infrastructure/storage"
	"KeywordWatcher/internal/infrastructure/telegram"
	"KeywordWatcher/internal/logging"
	"KeywordWatcher/internal/ports"
	"KeywordWatcher/internal/source"
	"KeywordWatcher/internal/usecase"
)

// Application wires configuration to adapters, the cycle runner, and the
// scheduler lifecycle.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	store     storage.Store
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Storage, baseLogger.With("component", "storage"))
	if err != nil {
		return nil, fmt.Errorf("open seen store: %w", err)
	}

	registry := source.NewRegistry()
	registry.Register(reddit.NewClient(cfg.Reddit))
	registry.Register(hackernews.NewScanner(nil))

	routes := make(map[string]string, len(cfg.Watches))
	for _, watch := range cfg.Watches {
		routes[watch.Source] = watch.Client
	}
	router := source.NewRouter(registry, routes, baseLogger.With("component", "source"))

	notifier := buildNotifier(cfg.Notifications)

	tasks := make([]*usecase.WatchTask, 0, len(cfg.Watches))
	for _, watch := range cfg.Watches {
		spec := domain.WatchSpec{
			Source:   watch.Source,
			Keywords: watch.Keywords,
			MinScore: watch.MinScore,
		}
		tasks = append(tasks, usecase.NewWatchTask(spec, router, store, notifier,
			baseLogger.With("component", "watch", "source", watch.Source)))
	}

	runner := usecase.NewRunner(tasks, notifier, cfg.Scheduler.MaxConcurrent,
		baseLogger.With("component", "runner"))

	driver := buildDriver(cfg.Scheduler, baseLogger)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		store:     store,
		scheduler: usecase.NewScheduler(driver, runner),
	}, nil
}

// Run starts the watch cycles and blocks until ctx is canceled, then stops
// the scheduler, waits for the in-flight cycle, and releases the store.
func (a *Application) Run(ctx context.Context) error {
	a.logger.Info("starting watcher",
		"watches", len(a.cfg.Watches),
		"storage", a.cfg.Storage.Driver,
		"interval", a.cfg.Scheduler.Interval(),
		"cron", a.cfg.Scheduler.CronExpression)

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.scheduler.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler stop", "error", err)
	}

	if err := a.store.Close(); err != nil {
		a.logger.Warn("close seen store", "error", err)
	}

	a.logger.Info("watcher stopped")
	return nil
}

func buildDriver(cfg config.SchedulerConfig, log *slog.Logger) ports.Scheduler {
	if cfg.CronExpression != "" {
		return scheduler.NewCron(cfg.CronExpression, log.With("component", "scheduler"))
	}
	return scheduler.NewInterval(cfg.Interval())
}

// buildNotifier assembles the configured channels; with more than one, every
// message goes to each.
func buildNotifier(cfg config.NotificationConfig) ports.Notifier {
	var channels []ports.Notifier
	if cfg.Pushover.Configured() {
		channels = append(channels, pushover.NewNotifier(cfg.Pushover.AppToken, cfg.Pushover.UserKey))
	}
	if cfg.Telegram.Configured() {
		channels = append(channels, telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID))
	}
	if len(channels) == 1 {
		return channels[0]
	}
	return fanoutNotifier(channels)
}
