// Package service implements the quote lifecycle: drafting, totals,
// sending with stock reservation, client decisions, and expiry.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"stockquote_backend/internal/events"
	"stockquote_backend/internal/inventory"
	"stockquote_backend/internal/quotes/domain"
	"stockquote_backend/internal/quotes/repository"
	"stockquote_backend/internal/quotes/transport"
	"stockquote_backend/platform/apperr"
	"stockquote_backend/platform/config"
	"stockquote_backend/platform/logger"
)

// Actor identifies the authenticated team member performing an action.
type Actor struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Email          string
	Roles          []string
}

func (a Actor) IsAdmin() bool {
	for _, r := range a.Roles {
		if r == "admin" {
			return true
		}
	}
	return false
}

// ExpiryScheduler enqueues the background job that expires a quote
// once its validity window closes.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, quoteID, orgID uuid.UUID, at time.Time) error
}

type Service struct {
	repo  repository.Store
	cfg   config.QuoteConfig
	bus   events.Bus
	sched ExpiryScheduler
	log   *logger.Logger
}

func New(repo repository.Store, cfg config.QuoteConfig, bus events.Bus, sched ExpiryScheduler, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, bus: bus, sched: sched, log: log}
}

func (s *Service) Create(ctx context.Context, actor Actor, req transport.CreateQuoteRequest) (*transport.QuoteResponse, error) {
	if _, err := s.repo.GetClientContact(ctx, req.ClientID, actor.OrganizationID); err != nil {
		return nil, err
	}

	taxRate, err := parseAmount("taxRate", req.TaxRate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	number, err := s.repo.NextQuoteNumber(ctx, actor.OrganizationID, now.Year())
	if err != nil {
		return nil, err
	}

	q := &repository.Quote{
		ID:             uuid.New(),
		OrganizationID: actor.OrganizationID,
		ClientID:       req.ClientID,
		QuoteNumber:    number,
		Status:         string(domain.StatusDraft),
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
		Subtotal:       decimal.Zero,
		DiscountValue:  decimal.Zero,
		DiscountAmount: decimal.Zero,
		TaxRate:        taxRate,
		TaxAmount:      decimal.Zero,
		Total:          decimal.Zero,
		Terms:          req.Terms,
		Notes:          req.Notes,
		CreatedBy:      actor.ID,
		AssignedTo:     req.AssignedTo,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateQuote(ctx, q); err != nil {
		return nil, err
	}

	_ = s.recordEvent(ctx, q, "created", &actor.ID, "team", actor.Email, nil)

	resp := toQuoteResponse(q, nil, nil, nil)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*transport.QuoteResponse, error) {
	q, err := s.repo.GetQuote(ctx, id, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	var (
		items    []repository.QuoteItem
		evts     []repository.QuoteEvent
		comments []repository.QuoteComment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.ListItems(gctx, id, actor.OrganizationID)
		return err
	})
	g.Go(func() error {
		var err error
		evts, err = s.repo.ListEvents(gctx, id, actor.OrganizationID)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.repo.ListComments(gctx, id, actor.OrganizationID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := toQuoteResponse(q, items, evts, comments)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, actor Actor, req transport.ListQuotesRequest) (*transport.QuoteListResponse, error) {
	p := repository.ListParams{
		OrganizationID: actor.OrganizationID,
		Search:         req.Search,
		Page:           req.Page,
		PageSize:       req.PageSize,
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}
	if req.Status != "" {
		if !domain.Status(req.Status).Valid() {
			return nil, apperr.Validation("unknown status filter")
		}
		p.Status = &req.Status
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			return nil, apperr.Validation("invalid clientId filter")
		}
		p.ClientID = &clientID
	}

	result, err := s.repo.ListQuotes(ctx, p)
	if err != nil {
		return nil, err
	}

	items := make([]transport.QuoteResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toQuoteResponse(&result.Items[i], nil, nil, nil))
	}
	return &transport.QuoteListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

func (s *Service) ListItems(ctx context.Context, actor Actor, id uuid.UUID) ([]transport.ItemResponse, error) {
	if _, err := s.repo.GetQuote(ctx, id, actor.OrganizationID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, id, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, toItemResponse(&items[i]))
	}
	return out, nil
}

func (s *Service) ListEvents(ctx context.Context, actor Actor, id uuid.UUID) ([]transport.EventResponse, error) {
	if _, err := s.repo.GetQuote(ctx, id, actor.OrganizationID); err != nil {
		return nil, err
	}
	evts, err := s.repo.ListEvents(ctx, id, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.EventResponse, 0, len(evts))
	for i := range evts {
		out = append(out, toEventResponse(&evts[i]))
	}
	return out, nil
}

func (s *Service) ListComments(ctx context.Context, actor Actor, id uuid.UUID) ([]transport.CommentResponse, error) {
	if _, err := s.repo.GetQuote(ctx, id, actor.OrganizationID); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, id, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentResponse(&comments[i]))
	}
	return out, nil
}

// Update applies a whitelist partial update and recomputes totals.
// Status is managed by the lifecycle endpoints, never by this call.
func (s *Service) Update(ctx context.Context, actor Actor, id uuid.UUID, req transport.UpdateQuoteRequest) (*transport.QuoteResponse, error) {
	q, err := s.repo.GetQuote(ctx, id, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEditable(actor, q, "updated"); err != nil {
		return nil, err
	}
	if req.Status != nil && *req.Status != q.Status {
		return nil, apperr.BadRequest("status is managed by the lifecycle endpoints")
	}

	if req.ValidFrom != nil {
		q.ValidFrom = req.ValidFrom
	}
	if req.ValidUntil != nil {
		q.ValidUntil = req.ValidUntil
	}
	if req.DiscountType != nil {
		q.DiscountType = req.DiscountType
	}
	if req.DiscountValue != nil {
		v, err := parseAmount("discountValue", req.DiscountValue)
		if err != nil {
			return nil, err
		}
		q.DiscountValue = v
	}
	if req.TaxRate != nil {
		v, err := parseAmount("taxRate", req.TaxRate)
		if err != nil {
			return nil, err
		}
		q.TaxRate = v
	}
	if req.Terms != nil {
		q.Terms = req.Terms
	}
	if req.Notes != nil {
		q.Notes = req.Notes
	}
	if req.InternalNotes != nil {
		q.InternalNotes = req.InternalNotes
	}
	if req.AssignedTo != nil {
		q.AssignedTo = req.AssignedTo
	}

	items, err := s.repo.ListItems(ctx, id, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	totals := CalculateTotals(lineInputs(items), q.DiscountType, q.DiscountValue, q.TaxRate)
	q.Subtotal = totals.Subtotal
	q.DiscountAmount = totals.DiscountAmount
	q.TaxAmount = totals.TaxAmount
	q.Total = totals.Total
	q.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateQuote(ctx, q); err != nil {
		return nil, err
	}
	_ = s.recordEvent(ctx, q, "updated", &actor.ID, "team", actor.Email, nil)

	resp := toQuoteResponse(q, items, nil, nil)
	return &resp, nil
}

// Delete removes a quote and releases any stock it holds. Only
// administrators may delete.
func (s *Service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("Only administrators can delete quotes")
	}
	if _, err := s.repo.GetQuote(ctx, id, actor.OrganizationID); err != nil {
		return err
	}
	return s.repo.DeleteQuote(ctx, id, actor.OrganizationID)
}

// Send moves a draft to sent: reserves stock for every product line,
// mints the public access token, emails the client via the event bus,
// and schedules the expiry job.
func (s *Service) Send(ctx context.Context, actor Actor, id uuid.UUID) (*transport.SendResponse, error) {
	q, err := s.repo.GetQuote(ctx, id, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(actor, q); err != nil {
		return nil, err
	}
	if q.Status != string(domain.StatusDraft) {
		return nil, apperr.BadRequest("This quote cannot be sent in its current state")
	}

	items, err := s.repo.ListItems(ctx, id, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.BadRequest("A quote needs at least one item before it can be sent")
	}

	contact, err := s.repo.GetClientContact(ctx, q.ClientID, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if contact.Email == nil || *contact.Email == "" {
		return nil, apperr.BadRequest("Client must have an email address")
	}

	now := time.Now().UTC()
	token, err := newAccessToken()
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(s.cfg.GetQuoteTokenTTL())

	p := repository.SendParams{
		QuoteID:        q.ID,
		OrganizationID: q.OrganizationID,
		SentAt:         now,
		Token: repository.AccessToken{
			Token:     token,
			QuoteID:   q.ID,
			ExpiresAt: expiresAt,
			CreatedAt: now,
		},
		Reservations: reservationItems(items),
		ActorName:    actor.Email,
		Event: s.newEvent(q, "sent", &actor.ID, "team", actor.Email, map[string]any{
			"recipient": *contact.Email,
		}),
	}
	if err := s.repo.Send(ctx, p); err != nil {
		return nil, err
	}

	q.Status = string(domain.StatusSent)
	q.SentAt = &now
	q.UpdatedAt = now

	expireAt := expiresAt
	if q.ValidUntil != nil && q.ValidUntil.Before(expireAt) {
		expireAt = *q.ValidUntil
	}
	if s.sched != nil {
		if err := s.sched.ScheduleExpiry(ctx, q.ID, q.OrganizationID, expireAt); err != nil {
			s.log.Error("failed to schedule quote expiry", "quote_id", q.ID, "error", err)
		}
	}

	s.bus.Publish(ctx, events.QuoteSent{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     q.ID,
		TenantID:    q.OrganizationID,
		QuoteNumber: q.QuoteNumber,
		ClientID:    q.ClientID,
		ClientEmail: *contact.Email,
		ClientName:  contact.Name,
		PublicToken: token,
		ValidUntil:  q.ValidUntil,
		Total:       q.Total.StringFixed(2),
	})
	for _, res := range p.Reservations {
		s.bus.Publish(ctx, events.InventoryReserved{
			BaseEvent:   events.NewBaseEvent(),
			QuoteID:     q.ID,
			TenantID:    q.OrganizationID,
			ProductID:   res.ProductID,
			WarehouseID: res.WarehouseID,
			Quantity:    res.Quantity,
		})
	}

	return &transport.SendResponse{
		Quote:     toQuoteResponse(q, items, nil, nil),
		PublicURL: s.publicURL(token),
	}, nil
}

// Resend issues a fresh access token for a quote already out with the
// client. Earlier links keep working until they expire.
func (s *Service) Resend(ctx context.Context, actor Actor, id uuid.UUID) (*transport.SendResponse, error) {
	q, err := s.repo.GetQuote(ctx, id, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(actor, q); err != nil {
		return nil, err
	}
	if !domain.Status(q.Status).ClientActionable() {
		return nil, apperr.BadRequest("This quote cannot be resent in its current state")
	}

	contact, err := s.repo.GetClientContact(ctx, q.ClientID, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if contact.Email == nil || *contact.Email == "" {
		return nil, apperr.BadRequest("Client must have an email address")
	}

	now := time.Now().UTC()
	token, err := newAccessToken()
	if err != nil {
		return nil, err
	}

	p := repository.ResendParams{
		QuoteID:        q.ID,
		OrganizationID: q.OrganizationID,
		Token: repository.AccessToken{
			Token:     token,
			QuoteID:   q.ID,
			ExpiresAt: now.Add(s.cfg.GetQuoteTokenTTL()),
			CreatedAt: now,
		},
		Event: s.newEvent(q, "resent", &actor.ID, "team", actor.Email, map[string]any{
			"recipient": *contact.Email,
		}),
	}
	if err := s.repo.Resend(ctx, p); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.QuoteSent{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     q.ID,
		TenantID:    q.OrganizationID,
		QuoteNumber: q.QuoteNumber,
		ClientID:    q.ClientID,
		ClientEmail: *contact.Email,
		ClientName:  contact.Name,
		PublicToken: token,
		ValidUntil:  q.ValidUntil,
		Total:       q.Total.StringFixed(2),
	})

	return &transport.SendResponse{
		Quote:     toQuoteResponse(q, nil, nil, nil),
		PublicURL: s.publicURL(token),
	}, nil
}

// Convert marks an approved quote as converted into an order.
func (s *Service) Convert(ctx context.Context, actor Actor, id uuid.UUID) (*transport.QuoteResponse, error) {
	q, err := s.repo.GetQuote(ctx, id, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(actor, q); err != nil {
		return nil, err
	}
	if q.Status != string(domain.StatusApproved) {
		return nil, apperr.BadRequest("This quote cannot be converted in its current state")
	}

	now := time.Now().UTC()
	event := s.newEvent(q, "converted", &actor.ID, "team", actor.Email, nil)
	if err := s.repo.Convert(ctx, q.ID, q.OrganizationID, now, event); err != nil {
		return nil, err
	}

	q.Status = string(domain.StatusConverted)
	q.UpdatedAt = now

	s.bus.Publish(ctx, events.QuoteConverted{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     q.ID,
		TenantID:    q.OrganizationID,
		QuoteNumber: q.QuoteNumber,
		ConvertedBy: actor.ID,
	})

	resp := toQuoteResponse(q, nil, nil, nil)
	return &resp, nil
}

// AddComment records a team comment; internal comments never reach the
// client view.
func (s *Service) AddComment(ctx context.Context, actor Actor, id uuid.UUID, req transport.AddCommentRequest) (*transport.CommentResponse, error) {
	q, err := s.repo.GetQuote(ctx, id, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment := &repository.QuoteComment{
		ID:             uuid.New(),
		QuoteID:        q.ID,
		OrganizationID: q.OrganizationID,
		AuthorID:       &actor.ID,
		AuthorName:     actor.Email,
		UserType:       "team",
		IsInternal:     req.IsInternal,
		Body:           req.Body,
		CreatedAt:      now,
	}
	event := s.newEvent(q, "commented", &actor.ID, "team", actor.Email, map[string]any{
		"internal": req.IsInternal,
	})
	if err := s.repo.CreateCommentWithEvent(ctx, comment, &event); err != nil {
		return nil, err
	}

	if !req.IsInternal {
		s.bus.Publish(ctx, events.QuoteCommented{
			BaseEvent:   events.NewBaseEvent(),
			QuoteID:     q.ID,
			TenantID:    q.OrganizationID,
			QuoteNumber: q.QuoteNumber,
			OwnerID:     ownerOf(q),
			AuthorName:  actor.Email,
			FromClient:  false,
			Body:        req.Body,
		})
	}

	resp := toCommentResponse(comment)
	return &resp, nil
}

// Expire is called by the background worker when a quote's validity
// window closes. Quotes the client already decided are left untouched.
func (s *Service) Expire(ctx context.Context, quoteID, orgID uuid.UUID) error {
	q, err := s.repo.GetQuote(ctx, quoteID, orgID)
	if err != nil {
		return err
	}
	if !domain.Status(q.Status).ClientActionable() {
		return nil
	}

	now := time.Now().UTC()
	event := s.newEvent(q, "expired", nil, "system", "system", nil)
	transitioned, err := s.repo.Expire(ctx, quoteID, orgID, now, event)
	if err != nil {
		return err
	}
	if !transitioned {
		return nil
	}

	s.bus.Publish(ctx, events.QuoteExpired{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     q.ID,
		TenantID:    q.OrganizationID,
		QuoteNumber: q.QuoteNumber,
		OwnerID:     ownerOf(q),
	})
	s.bus.Publish(ctx, events.InventoryReleased{
		BaseEvent: events.NewBaseEvent(),
		QuoteID:   q.ID,
		TenantID:  q.OrganizationID,
		Reason:    "Quote expired",
	})
	return nil
}

func (s *Service) requirePermission(actor Actor, q *repository.Quote) error {
	if actor.IsAdmin() || q.CreatedBy == actor.ID {
		return nil
	}
	if q.AssignedTo != nil && *q.AssignedTo == actor.ID {
		return nil
	}
	return apperr.Forbidden("you do not have permission to modify this quote")
}

func (s *Service) requireEditable(actor Actor, q *repository.Quote, action string) error {
	if err := s.requirePermission(actor, q); err != nil {
		return err
	}
	switch domain.Status(q.Status) {
	case domain.StatusDraft, domain.StatusSent, domain.StatusViewed:
		return nil
	default:
		return apperr.BadRequest(fmt.Sprintf("This quote cannot be %s in its current state", action))
	}
}

func (s *Service) newEvent(q *repository.Quote, eventType string, actorID *uuid.UUID, userType, userName string, metadata map[string]any) repository.QuoteEvent {
	return repository.QuoteEvent{
		ID:             uuid.New(),
		QuoteID:        q.ID,
		OrganizationID: q.OrganizationID,
		EventType:      eventType,
		ActorID:        actorID,
		UserType:       userType,
		UserName:       userName,
		Metadata:       metadata,
		CreatedAt:      time.Now().UTC(),
	}
}

func (s *Service) recordEvent(ctx context.Context, q *repository.Quote, eventType string, actorID *uuid.UUID, userType, userName string, metadata map[string]any) error {
	event := s.newEvent(q, eventType, actorID, userType, userName, metadata)
	if err := s.repo.CreateEvent(ctx, &event); err != nil {
		s.log.Error("failed to record quote event", "quote_id", q.ID, "event_type", eventType, "error", err)
		return err
	}
	return nil
}

func (s *Service) publicURL(token string) string {
	return fmt.Sprintf("%s/quote/%s", s.cfg.GetAppBaseURL(), token)
}

func ownerOf(q *repository.Quote) uuid.UUID {
	if q.AssignedTo != nil {
		return *q.AssignedTo
	}
	return q.CreatedBy
}

func newAccessToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func parseAmount(field string, raw *string) (decimal.Decimal, error) {
	if raw == nil || *raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil {
		return decimal.Zero, apperr.Validation(fmt.Sprintf("invalid %s", field))
	}
	if d.IsNegative() {
		return decimal.Zero, apperr.Validation(fmt.Sprintf("%s cannot be negative", field))
	}
	return d, nil
}

func lineInputs(items []repository.QuoteItem) []LineInput {
	lines := make([]LineInput, len(items))
	for i, it := range items {
		lines[i] = LineInput{UnitPrice: it.UnitPrice, Quantity: it.Quantity, DiscountPercent: it.DiscountPercent}
	}
	return lines
}

func reservationItems(items []repository.QuoteItem) []inventory.ReservationItem {
	out := make([]inventory.ReservationItem, 0)
	for _, it := range items {
		if it.ItemType != "product" || it.ProductID == nil || it.WarehouseID == nil {
			continue
		}
		out = append(out, inventory.ReservationItem{
			QuoteItemID: it.ID,
			QuoteID:     it.QuoteID,
			ProductID:   *it.ProductID,
			WarehouseID: *it.WarehouseID,
			ProductName: it.Name,
			Quantity:    it.Quantity,
		})
	}
	return out
}
