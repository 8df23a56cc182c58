// Package notification sends mail in response to quote domain events.
// It subscribes to the event bus so the quotes module never needs to
// know about email providers or templates. Delivery is best effort: a
// failed mail is logged and never fails the operation that emitted the
// event.
package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockquote_backend/internal/email"
	"stockquote_backend/internal/events"
	"stockquote_backend/platform/config"
	"stockquote_backend/platform/logger"
)

// Module handles notification event subscriptions.
type Module struct {
	pool   *pgxpool.Pool
	sender email.Sender
	cfg    config.NotificationConfig
	log    *logger.Logger
}

// New creates the notification module.
func New(pool *pgxpool.Pool, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{pool: pool, sender: sender, cfg: cfg, log: log}
}

// Subscribe registers the module for the events it reacts to.
func (m *Module) Subscribe(bus events.Bus) {
	bus.Subscribe(events.QuoteSent{}.EventName(), m)
	bus.Subscribe(events.QuoteApproved{}.EventName(), m)
	bus.Subscribe(events.QuoteDeclined{}.EventName(), m)
	bus.Subscribe(events.QuoteCommented{}.EventName(), m)
	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) {
	switch e := event.(type) {
	case events.QuoteSent:
		m.handleQuoteSent(ctx, e)
	case events.QuoteApproved:
		m.handleQuoteApproved(ctx, e)
	case events.QuoteDeclined:
		m.handleQuoteDeclined(ctx, e)
	case events.QuoteCommented:
		m.handleQuoteCommented(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
	}
}

func (m *Module) handleQuoteSent(ctx context.Context, e events.QuoteSent) {
	data := email.QuoteLinkData{
		ClientName:       e.ClientName,
		OrganizationName: m.organizationName(ctx, e.TenantID),
		QuoteNumber:      e.QuoteNumber,
		Total:            e.Total,
		PublicURL:        fmt.Sprintf("%s/quote/%s", m.cfg.GetAppBaseURL(), e.PublicToken),
	}
	if e.ValidUntil != nil {
		data.ValidUntil = e.ValidUntil.Format("January 2, 2006")
	}
	if err := m.sender.SendQuoteLink(ctx, e.ClientEmail, data); err != nil {
		m.log.Error("failed to send quote link mail", "quote_id", e.QuoteID, "error", err)
	}
}

func (m *Module) handleQuoteApproved(ctx context.Context, e events.QuoteApproved) {
	toEmail, ok := m.memberEmail(ctx, e.OwnerID)
	if !ok {
		return
	}
	err := m.sender.SendQuoteDecision(ctx, toEmail, email.QuoteDecisionData{
		ClientName:  e.ClientName,
		QuoteNumber: e.QuoteNumber,
		Total:       e.Total,
		Approved:    true,
		QuoteURL:    m.quoteURL(e.QuoteID),
	})
	if err != nil {
		m.log.Error("failed to send quote approved mail", "quote_id", e.QuoteID, "error", err)
	}
}

func (m *Module) handleQuoteDeclined(ctx context.Context, e events.QuoteDeclined) {
	toEmail, ok := m.memberEmail(ctx, e.OwnerID)
	if !ok {
		return
	}
	err := m.sender.SendQuoteDecision(ctx, toEmail, email.QuoteDecisionData{
		ClientName:  e.ClientName,
		QuoteNumber: e.QuoteNumber,
		Approved:    false,
		Reason:      e.Reason,
		QuoteURL:    m.quoteURL(e.QuoteID),
	})
	if err != nil {
		m.log.Error("failed to send quote declined mail", "quote_id", e.QuoteID, "error", err)
	}
}

func (m *Module) handleQuoteCommented(ctx context.Context, e events.QuoteCommented) {
	// Team comments already show up in the app; only client comments
	// warrant a mail.
	if !e.FromClient {
		return
	}
	toEmail, ok := m.memberEmail(ctx, e.OwnerID)
	if !ok {
		return
	}
	err := m.sender.SendQuoteComment(ctx, toEmail, email.QuoteCommentData{
		AuthorName:  e.AuthorName,
		QuoteNumber: e.QuoteNumber,
		Body:        e.Body,
		QuoteURL:    m.quoteURL(e.QuoteID),
	})
	if err != nil {
		m.log.Error("failed to send quote comment mail", "quote_id", e.QuoteID, "error", err)
	}
}

func (m *Module) memberEmail(ctx context.Context, userID uuid.UUID) (string, bool) {
	if userID == uuid.Nil {
		return "", false
	}
	var addr string
	if err := m.pool.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&addr); err != nil {
		m.log.Error("failed to resolve notification recipient", "user_id", userID, "error", err)
		return "", false
	}
	return addr, true
}

func (m *Module) organizationName(ctx context.Context, orgID uuid.UUID) string {
	var name string
	if err := m.pool.QueryRow(ctx, `SELECT name FROM organizations WHERE id = $1`, orgID).Scan(&name); err != nil {
		return ""
	}
	return name
}

func (m *Module) quoteURL(quoteID uuid.UUID) string {
	return fmt.Sprintf("%s/quotes/%s", m.cfg.GetAppBaseURL(), quoteID)
}

var _ events.Handler = (*Module)(nil)
