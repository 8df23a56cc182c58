package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stockquote_backend/internal/events"
	"stockquote_backend/internal/quotes/domain"
	"stockquote_backend/internal/quotes/repository"
	"stockquote_backend/internal/quotes/transport"
	"stockquote_backend/platform/apperr"
)

// The public surface is keyed by access token alone; no authentication
// and no tenant scoping. An unknown token and an expired token both
// come back 404, with distinct messages so a client with a stale link
// knows to ask for a new one.

func (s *Service) resolveToken(ctx context.Context, token string) (*repository.Quote, error) {
	t, err := s.repo.GetToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if time.Now().UTC().After(t.ExpiresAt) {
		return nil, apperr.NotFound("This link has expired")
	}
	return s.repo.GetQuoteByToken(ctx, token)
}

// GetPublicQuote renders the client view. The first open of a sent
// quote flips it to viewed; repeat opens only bump the token counters.
func (s *Service) GetPublicQuote(ctx context.Context, token string) (*transport.PublicQuoteResponse, error) {
	q, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.TouchToken(ctx, token, now); err != nil {
		s.log.Error("failed to record token access", "quote_id", q.ID, "error", err)
	}

	if q.Status == string(domain.StatusSent) {
		event := s.newEvent(q, "viewed", nil, "client", "Client", nil)
		transitioned, err := s.repo.MarkViewed(ctx, q.ID, now, event)
		if err != nil {
			return nil, err
		}
		if transitioned {
			q.Status = string(domain.StatusViewed)
			q.ViewedAt = &now
			s.bus.Publish(ctx, events.QuoteViewed{
				BaseEvent:   events.NewBaseEvent(),
				QuoteID:     q.ID,
				TenantID:    q.OrganizationID,
				QuoteNumber: q.QuoteNumber,
				OwnerID:     ownerOf(q),
			})
		}
	}

	return s.buildPublicView(ctx, q)
}

// ApproveByToken records the client's acceptance.
func (s *Service) ApproveByToken(ctx context.Context, token string, req transport.PublicApproveRequest) (*transport.PublicQuoteResponse, error) {
	q, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !domain.Status(q.Status).ClientActionable() {
		return nil, apperr.BadRequest("This quote cannot be approved in its current state")
	}

	now := time.Now().UTC()
	name := clientDisplayName(req.Name)
	p := repository.DecisionParams{
		QuoteID: q.ID,
		At:      now,
		Event:   s.newEvent(q, "approved", nil, "client", name, nil),
	}
	if req.Comment != "" {
		p.Comment = &repository.QuoteComment{
			ID:             uuid.New(),
			QuoteID:        q.ID,
			OrganizationID: q.OrganizationID,
			AuthorName:     name,
			UserType:       "client",
			Body:           req.Comment,
			CreatedAt:      now,
		}
	}
	if err := s.repo.Approve(ctx, p); err != nil {
		return nil, err
	}

	q.Status = string(domain.StatusApproved)
	q.ApprovedAt = &now

	s.bus.Publish(ctx, events.QuoteApproved{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     q.ID,
		TenantID:    q.OrganizationID,
		QuoteNumber: q.QuoteNumber,
		OwnerID:     ownerOf(q),
		ClientName:  name,
		Total:       q.Total.StringFixed(2),
	})

	return s.buildPublicView(ctx, q)
}

// DeclineByToken records the client's refusal with a mandatory reason
// and gives reserved stock back immediately.
func (s *Service) DeclineByToken(ctx context.Context, token string, req transport.PublicDeclineRequest) (*transport.PublicQuoteResponse, error) {
	q, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !domain.Status(q.Status).ClientActionable() {
		return nil, apperr.BadRequest("This quote cannot be declined in its current state")
	}

	now := time.Now().UTC()
	name := clientDisplayName(req.Name)
	p := repository.DecisionParams{
		QuoteID: q.ID,
		At:      now,
		Event: s.newEvent(q, "declined", nil, "client", name, map[string]any{
			"reason": req.Reason,
		}),
		Comment: &repository.QuoteComment{
			ID:             uuid.New(),
			QuoteID:        q.ID,
			OrganizationID: q.OrganizationID,
			AuthorName:     name,
			UserType:       "client",
			Body:           fmt.Sprintf("Declined: %s", req.Reason),
			CreatedAt:      now,
		},
	}
	if err := s.repo.Decline(ctx, p, "Quote declined by client"); err != nil {
		return nil, err
	}

	q.Status = string(domain.StatusDeclined)
	q.DeclinedAt = &now

	s.bus.Publish(ctx, events.InventoryReleased{
		BaseEvent: events.NewBaseEvent(),
		QuoteID:   q.ID,
		TenantID:  q.OrganizationID,
		Reason:    "Quote declined by client",
	})
	s.bus.Publish(ctx, events.QuoteDeclined{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     q.ID,
		TenantID:    q.OrganizationID,
		QuoteNumber: q.QuoteNumber,
		OwnerID:     ownerOf(q),
		ClientName:  name,
		Reason:      req.Reason,
	})

	return s.buildPublicView(ctx, q)
}

// CommentByToken lets the client ask a question on the quote.
func (s *Service) CommentByToken(ctx context.Context, token string, req transport.PublicCommentRequest) (*transport.CommentResponse, error) {
	q, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	name := clientDisplayName(req.Name)
	comment := &repository.QuoteComment{
		ID:             uuid.New(),
		QuoteID:        q.ID,
		OrganizationID: q.OrganizationID,
		AuthorName:     name,
		UserType:       "client",
		Body:           req.Body,
		CreatedAt:      now,
	}
	event := s.newEvent(q, "commented", nil, "client", name, nil)
	if err := s.repo.CreateCommentWithEvent(ctx, comment, &event); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.QuoteCommented{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     q.ID,
		TenantID:    q.OrganizationID,
		QuoteNumber: q.QuoteNumber,
		OwnerID:     ownerOf(q),
		AuthorName:  name,
		FromClient:  true,
		Body:        req.Body,
	})

	resp := toCommentResponse(comment)
	return &resp, nil
}

func (s *Service) buildPublicView(ctx context.Context, q *repository.Quote) (*transport.PublicQuoteResponse, error) {
	items, err := s.repo.ListItems(ctx, q.ID, q.OrganizationID)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, q.ID, q.OrganizationID)
	if err != nil {
		return nil, err
	}
	orgName, err := s.repo.GetOrganizationName(ctx, q.OrganizationID)
	if err != nil {
		return nil, err
	}
	contact, err := s.repo.GetClientContact(ctx, q.ClientID, q.OrganizationID)
	if err != nil {
		return nil, err
	}

	resp := &transport.PublicQuoteResponse{
		QuoteNumber:      q.QuoteNumber,
		Status:           q.Status,
		OrganizationName: orgName,
		ClientName:       contact.Name,
		ValidUntil:       q.ValidUntil,
		Subtotal:         q.Subtotal.StringFixed(2),
		DiscountAmount:   q.DiscountAmount.StringFixed(2),
		TaxRate:          q.TaxRate.StringFixed(2),
		TaxAmount:        q.TaxAmount.StringFixed(2),
		Total:            q.Total.StringFixed(2),
		Terms:            q.Terms,
		Notes:            q.Notes,
		Items:            make([]transport.ItemResponse, 0, len(items)),
		Comments:         make([]transport.CommentResponse, 0),
	}
	for i := range items {
		resp.Items = append(resp.Items, toItemResponse(&items[i]))
	}
	for i := range comments {
		if comments[i].IsInternal {
			continue
		}
		resp.Comments = append(resp.Comments, toCommentResponse(&comments[i]))
	}
	return resp, nil
}

func clientDisplayName(name string) string {
	if name == "" {
		return "Client"
	}
	return name
}
