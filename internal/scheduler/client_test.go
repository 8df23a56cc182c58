package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
	queue    string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected an error when no redis url is configured")
	}
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Client
	if err := c.ScheduleExpiry(context.Background(), uuid.New(), uuid.New(), time.Now()); err != nil {
		t.Fatalf("nil client must be a no-op, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("nil client close must be a no-op, got %v", err)
	}
}

func TestScheduleExpiryEnqueuesTask(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + s.Addr(), queue: "quotes"})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	quoteID := uuid.New()
	orgID := uuid.New()
	at := time.Now().Add(24 * time.Hour)

	if err := client.ScheduleExpiry(context.Background(), quoteID, orgID, at); err != nil {
		t.Fatalf("schedule expiry failed: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: s.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListScheduledTasks("quotes")
	if err != nil {
		t.Fatalf("failed to list scheduled tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 scheduled task, got %d", len(tasks))
	}
	if tasks[0].Type != TaskQuoteExpire {
		t.Fatalf("expected task type %q, got %q", TaskQuoteExpire, tasks[0].Type)
	}

	payload, err := ParseQuoteExpirePayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	if err != nil {
		t.Fatalf("failed to parse payload: %v", err)
	}
	if payload.QuoteID != quoteID.String() || payload.OrganizationID != orgID.String() {
		t.Fatalf("payload does not round-trip: %+v", payload)
	}
}
