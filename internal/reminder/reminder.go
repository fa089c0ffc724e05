package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/tvan04/workflow-management-system-sub001/internal/models"
)

// Source is the slice of the workflow engine the reminder needs.
type Source interface {
	PendingOlderThan(ctx context.Context, age time.Duration) ([]models.Application, error)
	Remind(ctx context.Context, app models.Application) bool
}

type Options struct {
	//cron spec, e.g. "@daily" or "0 8 * * 1-5"
	Schedule string
	After    time.Duration
	Logger   log.FieldLogger
	//called after each sweep with the number of reminders sent
	OnSent func(n int)
}

// Reminder re-sends approval requests that have waited longer than After.
type Reminder struct {
	src  Source
	opts Options
	cron *cron.Cron
}

func New(src Source, opts Options) *Reminder {
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	return &Reminder{
		src:  src,
		opts: opts,
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Sweep sends one reminder per stale application and reports how many went out.
func (r *Reminder) Sweep(ctx context.Context) (int, error) {
	stale, err := r.src.PendingOlderThan(ctx, r.opts.After)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending applications: %w", err)
	}

	sent := 0
	for _, app := range stale {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		approver, _ := app.PendingApprover()
		if r.src.Remind(ctx, app) {
			sent++
			r.opts.Logger.WithFields(log.Fields{
				"application_id": app.ID,
				"approver":       approver.Email,
				"waiting":        time.Since(app.UpdatedAt).Round(time.Hour).String(),
			}).Info("⏰ reminder sent")
		}
	}

	if r.opts.OnSent != nil {
		r.opts.OnSent(sent)
	}
	return sent, nil
}

// Start schedules Sweep on the configured cron spec.
func (r *Reminder) Start() error {
	_, err := r.cron.AddFunc(r.opts.Schedule, func() {
		n, err := r.Sweep(context.Background())
		if err != nil {
			r.opts.Logger.WithError(err).Error("❌ reminder sweep failed")
			return
		}
		r.opts.Logger.Infof("⏰ reminder sweep done, %d sent", n)
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", r.opts.Schedule, err)
	}
	r.cron.Start()
	r.opts.Logger.Infof("⏰ reminders scheduled (%s, after %s)", r.opts.Schedule, r.opts.After)
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (r *Reminder) Stop() {
	<-r.cron.Stop().Done()
}
