package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/tvan04/workflow-management-system-sub001/internal/config"
	"github.com/tvan04/workflow-management-system-sub001/internal/database"
	"github.com/tvan04/workflow-management-system-sub001/internal/files"
	"github.com/tvan04/workflow-management-system-sub001/internal/metrics"
	"github.com/tvan04/workflow-management-system-sub001/internal/notify"
	"github.com/tvan04/workflow-management-system-sub001/internal/reminder"
	"github.com/tvan04/workflow-management-system-sub001/internal/token"
	"github.com/tvan04/workflow-management-system-sub001/internal/workflow"
)

// App is the wired service shared by the commands.
type App struct {
	Config   *config.Config
	Logger   *log.Logger
	Store    database.Store
	Files    *files.Storage
	Metrics  *metrics.Collectors
	Notifier *notify.Async
	Tokens   *token.Issuer
	Engine   *workflow.Engine
	Reminder *reminder.Reminder
}

func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	store, err := database.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	storage, err := files.NewStorage(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	if err != nil {
		store.Close()
		return nil, err
	}

	collectors := metrics.New()

	dispatcher, err := newDispatcher(cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	async := notify.NewAsync(dispatcher, notify.AsyncOptions{
		Workers:     cfg.Notification.Workers,
		MaxAttempts: cfg.Notification.MaxAttempts,
		Backoff:     cfg.Notification.Backoff,
		Logger:      logger,
		OnFailure: func(kind string, _ error) {
			collectors.NotificationFailed(kind)
		},
	})

	tokens := token.NewIssuer(cfg.Tokens.Secret, cfg.Tokens.TTL)
	engine := workflow.NewEngine(workflow.Options{
		Store:        store,
		Files:        storage,
		Notifier:     async,
		Tokens:       tokens,
		RequireToken: cfg.Tokens.Required,
		Logger:       logger,
		Observer:     collectors,
	})

	rem := reminder.New(engine, reminder.Options{
		Schedule: cfg.Reminder.Schedule,
		After:    cfg.Reminder.After,
		Logger:   logger,
		OnSent:   collectors.RemindersSent,
	})

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Files:    storage,
		Metrics:  collectors,
		Notifier: async,
		Tokens:   tokens,
		Engine:   engine,
		Reminder: rem,
	}, nil
}

// newDispatcher picks SMTP when a host is configured, the log otherwise, and
// mirrors everything to Telegram when a bot is configured.
func newDispatcher(cfg *config.Config, logger *log.Logger) (notify.Dispatcher, error) {
	var primary notify.Dispatcher
	if cfg.SMTP.Host != "" {
		primary = notify.NewMailer(cfg.SMTP, cfg.Server.BaseURL)
		logger.Infof("📧 mail via %s:%d", cfg.SMTP.Host, cfg.SMTP.Port)
	} else {
		primary = &notify.LogNotifier{Logger: logger, BaseURL: cfg.Server.BaseURL}
		logger.Warn("⚠️ SMTP_HOST not set, notices are only logged")
	}

	if cfg.Telegram.Token == "" {
		return primary, nil
	}
	tg, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Server.BaseURL)
	if err != nil {
		return nil, err
	}
	return notify.Multi{primary, tg}, nil
}

// Close flushes queued notices, then releases the store.
func (a *App) Close() {
	a.Notifier.Close()
	a.Store.Close()
}
