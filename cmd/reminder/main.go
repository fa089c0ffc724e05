package main

import (
	"context"
	"log"
	"time"

	"github.com/tvan04/workflow-management-system-sub001/internal/app"
	"github.com/tvan04/workflow-management-system-sub001/internal/config"
)

// One reminder sweep, for hosts that schedule jobs outside the server.
func main() {
	//load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	logger := cfg.NewLogger()
	logger.Infof("🔧 Config loaded. Reminding approvers idle for more than %s", cfg.Reminder.After)

	//setup context with timeout = 10 mins
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	svc, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("❌ Failed to start: %v", err)
	}
	//close flushes the notification queue before exit
	defer svc.Close()

	sent, err := svc.Reminder.Sweep(ctx)
	if err != nil {
		logger.Errorf("❌ Reminder sweep failed after %d reminders: %v", sent, err)
		return
	}
	logger.Infof("✅ Done. %d reminders queued.", sent)
}
