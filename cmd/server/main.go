package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tvan04/workflow-management-system-sub001/internal/app"
	"github.com/tvan04/workflow-management-system-sub001/internal/config"
	"github.com/tvan04/workflow-management-system-sub001/internal/httpapi"
)

func main() {
	//load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	logger := cfg.NewLogger()
	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	//stop on ctrl+c or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("❌ Failed to start: %v", err)
	}
	defer svc.Close()
	logger.Infof("🗄 Store: %s", cfg.Store.Driver)

	if cfg.Reminder.Enabled {
		if err := svc.Reminder.Start(); err != nil {
			logger.Fatalf("❌ %v", err)
		}
		defer svc.Reminder.Stop()
	}

	limiter := httpapi.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
	limiter.StartCleanup(time.Minute, ctx.Done())

	handler := httpapi.NewHandler(svc.Engine, svc.Files, cfg.Uploads.MaxBytes, logger)
	router := httpapi.NewRouter(handler, httpapi.RouterOptions{
		Metrics: svc.Metrics,
		Limiter: limiter,
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("🚀 Server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("❌ Graceful shutdown failed")
	}
}
