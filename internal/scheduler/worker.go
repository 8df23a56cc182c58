package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"stockquote_backend/platform/config"
	"stockquote_backend/platform/logger"
)

// QuoteExpirer is implemented by the quotes service.
type QuoteExpirer interface {
	Expire(ctx context.Context, quoteID, orgID uuid.UUID) error
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	quotes QuoteExpirer
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, quotes QuoteExpirer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		quotes: quotes,
		log:    log,
	}

	mux.HandleFunc(TaskQuoteExpire, w.handleQuoteExpire)

	return w, nil
}

func (w *Worker) handleQuoteExpire(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseQuoteExpirePayload(task)
	if err != nil {
		return err
	}

	quoteID, err := uuid.Parse(payload.QuoteID)
	if err != nil {
		return err
	}
	orgID, err := uuid.Parse(payload.OrganizationID)
	if err != nil {
		return err
	}

	w.log.Info("expiring quote", "quote_id", quoteID, "organization_id", orgID)
	return w.quotes.Expire(ctx, quoteID, orgID)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
