// Package scheduler runs delayed background jobs over asynq. Its one
// job today is expiring quotes whose validity window closed.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskQuoteExpire = "quotes.expire"

type QuoteExpirePayload struct {
	QuoteID        string `json:"quoteId"`
	OrganizationID string `json:"organizationId"`
}

func NewQuoteExpireTask(payload QuoteExpirePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuoteExpire, data), nil
}

func ParseQuoteExpirePayload(task *asynq.Task) (QuoteExpirePayload, error) {
	var payload QuoteExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return QuoteExpirePayload{}, err
	}
	return payload, nil
}
