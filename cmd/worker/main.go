// The worker binary runs the asynq consumer that expires quotes. It is
// deployed separately from the API so queue processing survives API
// restarts.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"stockquote_backend/internal/email"
	"stockquote_backend/internal/inventory"
	"stockquote_backend/internal/notification"
	"stockquote_backend/internal/quotes/repository"
	quoteservice "stockquote_backend/internal/quotes/service"
	"stockquote_backend/internal/scheduler"
	"stockquote_backend/platform/config"
	"stockquote_backend/platform/db"
	"stockquote_backend/platform/events"
	"stockquote_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = db.NewPool(ctx, cfg)
		if err == nil {
			break
		}
		log.Warn("database connection failed", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt*attempt) * 2 * time.Second):
		}
	}
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	var sender email.Sender
	if cfg.GetEmailEnabled() {
		sender = email.NewSMTPSender(cfg)
	} else {
		sender = email.NewNoopSender(log)
	}
	notificationModule := notification.New(pool, sender, cfg, log)
	notificationModule.Subscribe(eventBus)

	repo := repository.New(pool, inventory.NewCoordinator())
	quotesService := quoteservice.New(repo, cfg, eventBus, nil, log)

	worker, err := scheduler.NewWorker(cfg, quotesService, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
	log.Info("worker stopped")
}
