package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"stockquote_backend/internal/email"
	"stockquote_backend/internal/events"
	"stockquote_backend/platform/logger"
)

type testNotificationConfig struct{}

func (testNotificationConfig) GetAppBaseURL() string { return "https://app.example.com" }

type testSender struct {
	linkCalls     int
	decisionCalls int
	commentCalls  int
}

func (s *testSender) SendQuoteLink(context.Context, string, email.QuoteLinkData) error {
	s.linkCalls++
	return nil
}

func (s *testSender) SendQuoteDecision(context.Context, string, email.QuoteDecisionData) error {
	s.decisionCalls++
	return nil
}

func (s *testSender) SendQuoteComment(context.Context, string, email.QuoteCommentData) error {
	s.commentCalls++
	return nil
}

func newTestModule(sender *testSender) *Module {
	return New(nil, sender, testNotificationConfig{}, logger.New("test"))
}

func TestTeamCommentsSendNoMail(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(sender)

	m.Handle(context.Background(), events.QuoteCommented{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     uuid.New(),
		QuoteNumber: "Q-2026-0001",
		OwnerID:     uuid.New(),
		AuthorName:  "rep@example.com",
		FromClient:  false,
		Body:        "internal note",
	})

	if sender.commentCalls != 0 {
		t.Fatalf("expected no mail for a team comment, got %d", sender.commentCalls)
	}
}

func TestDecisionWithoutOwnerSendsNoMail(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(sender)

	m.Handle(context.Background(), events.QuoteApproved{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     uuid.New(),
		QuoteNumber: "Q-2026-0001",
		ClientName:  "Acme BV",
	})

	if sender.decisionCalls != 0 {
		t.Fatalf("expected no mail without a resolvable owner, got %d", sender.decisionCalls)
	}
}

func TestUnknownEventIsIgnored(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(sender)

	m.Handle(context.Background(), events.UserRegistered{
		BaseEvent: events.NewBaseEvent(),
		UserID:    uuid.New(),
	})

	if sender.linkCalls+sender.decisionCalls+sender.commentCalls != 0 {
		t.Fatal("unrelated events must not trigger mail")
	}
}
