// Package email delivers transactional mail for the quote lifecycle.
package email

import (
	"context"

	"stockquote_backend/platform/logger"
)

// Sender delivers quote lifecycle mail. Implementations must be safe
// for concurrent use.
type Sender interface {
	// SendQuoteLink mails the client their public quote link.
	SendQuoteLink(ctx context.Context, toEmail string, data QuoteLinkData) error
	// SendQuoteDecision notifies the owning team member of a client
	// approval or decline.
	SendQuoteDecision(ctx context.Context, toEmail string, data QuoteDecisionData) error
	// SendQuoteComment notifies the owning team member of a new client
	// comment.
	SendQuoteComment(ctx context.Context, toEmail string, data QuoteCommentData) error
}

// QuoteLinkData fills the client-facing quote mail.
type QuoteLinkData struct {
	ClientName       string
	OrganizationName string
	QuoteNumber      string
	Total            string
	ValidUntil       string
	PublicURL        string
}

// QuoteDecisionData fills the team-facing decision mail.
type QuoteDecisionData struct {
	ClientName  string
	QuoteNumber string
	Total       string
	Approved    bool
	Reason      string
	QuoteURL    string
}

// QuoteCommentData fills the team-facing comment mail.
type QuoteCommentData struct {
	AuthorName  string
	QuoteNumber string
	Body        string
	QuoteURL    string
}

// NoopSender is used when no SMTP server is configured. It logs what
// would have been sent so development environments stay observable.
type NoopSender struct {
	log *logger.Logger
}

func NewNoopSender(log *logger.Logger) *NoopSender {
	return &NoopSender{log: log}
}

func (s *NoopSender) SendQuoteLink(_ context.Context, toEmail string, data QuoteLinkData) error {
	s.log.Info("email disabled, skipping quote link mail", "to", toEmail, "quote_number", data.QuoteNumber)
	return nil
}

func (s *NoopSender) SendQuoteDecision(_ context.Context, toEmail string, data QuoteDecisionData) error {
	s.log.Info("email disabled, skipping quote decision mail", "to", toEmail, "quote_number", data.QuoteNumber)
	return nil
}

func (s *NoopSender) SendQuoteComment(_ context.Context, toEmail string, data QuoteCommentData) error {
	s.log.Info("email disabled, skipping quote comment mail", "to", toEmail, "quote_number", data.QuoteNumber)
	return nil
}
