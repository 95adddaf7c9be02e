package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/catelog/catetube-backend/internal/clock"
	"github.com/catelog/catetube-backend/internal/config"
	"github.com/catelog/catetube-backend/internal/db"
	"github.com/catelog/catetube-backend/internal/logging"
	"github.com/catelog/catetube-backend/internal/model"
	"github.com/catelog/catetube-backend/internal/scheduler"
	"github.com/catelog/catetube-backend/internal/server"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := conn.AutoMigrate(
		&model.User{},
		&model.DailyFeedingTracker{},
		&model.FeedingLog{},
		&model.MedicationLog{},
	); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	logger := logging.NewDefault()
	clk := clock.New()
	srv := server.New(conn, cfg, clk, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv.Reports.Start(ctx)

	if cfg.StartScheduler {
		sched := scheduler.New(clk, logger, cfg.SchedulerInterval, cfg.RetentionDays, srv.Tracker, srv.Sweeper)
		go sched.Run(ctx)
	}

	go func() {
		if err := srv.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server stopped", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Echo().Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "shutdown error", "error", err.Error())
	}
	srv.Reports.Wait()
}
