package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockquote_backend/internal/events"
	"stockquote_backend/internal/inventory"
	"stockquote_backend/internal/quotes/repository"
	"stockquote_backend/internal/quotes/transport"
	"stockquote_backend/platform/apperr"
	"stockquote_backend/platform/logger"
)

type testQuoteConfig struct{}

func (testQuoteConfig) GetAppBaseURL() string            { return "https://app.example.com" }
func (testQuoteConfig) GetQuoteTokenTTL() time.Duration  { return 90 * 24 * time.Hour }

type testBus struct {
	published []events.Event
}

func (b *testBus) Publish(_ context.Context, e events.Event)     { b.published = append(b.published, e) }
func (b *testBus) PublishSync(_ context.Context, e events.Event) { b.published = append(b.published, e) }
func (b *testBus) Subscribe(string, events.Handler)              {}

func (b *testBus) names() []string {
	out := make([]string, len(b.published))
	for i, e := range b.published {
		out[i] = e.EventName()
	}
	return out
}

func (b *testBus) has(name string) bool {
	for _, e := range b.published {
		if e.EventName() == name {
			return true
		}
	}
	return false
}

// testStore is an in-memory double for the repository.Store interface.
type testStore struct {
	quote       *repository.Quote
	items       []repository.QuoteItem
	contact     *repository.ClientContact
	token       *repository.AccessToken
	orgName     string
	productSnap *repository.CatalogSnapshot
	serviceSnap *repository.CatalogSnapshot
	warehouseOK bool

	viewedResult bool
	expireResult bool

	sendParams        *repository.SendParams
	resendParams      *repository.ResendParams
	approveParams     *repository.DecisionParams
	declineParams     *repository.DecisionParams
	declineRelease    string
	viewedCalled      bool
	expireCalled      bool
	quoteDeleted      bool
	updatedQuote      *repository.Quote
	addedItem         *repository.QuoteItem
	addedReserve      *inventory.ReservationItem
	updatedItem       *repository.QuoteItem
	itemDeleted       bool
	itemReleaseReason string
	events            []repository.QuoteEvent
	comments          []repository.QuoteComment
}

func (s *testStore) NextQuoteNumber(context.Context, uuid.UUID, int) (string, error) {
	return "Q-2026-0001", nil
}

func (s *testStore) CreateQuote(_ context.Context, q *repository.Quote) error {
	s.quote = q
	return nil
}

func (s *testStore) GetQuote(_ context.Context, id, orgID uuid.UUID) (*repository.Quote, error) {
	if s.quote == nil || s.quote.ID != id || s.quote.OrganizationID != orgID {
		return nil, apperr.NotFound("quote not found")
	}
	return s.quote, nil
}

func (s *testStore) ListQuotes(_ context.Context, p repository.ListParams) (*repository.ListResult, error) {
	return &repository.ListResult{Page: p.Page, PageSize: p.PageSize}, nil
}

func (s *testStore) UpdateQuote(_ context.Context, q *repository.Quote) error {
	s.updatedQuote = q
	return nil
}

func (s *testStore) DeleteQuote(context.Context, uuid.UUID, uuid.UUID) error {
	s.quoteDeleted = true
	return nil
}

func (s *testStore) ListItems(context.Context, uuid.UUID, uuid.UUID) ([]repository.QuoteItem, error) {
	return s.items, nil
}

func (s *testStore) GetItem(_ context.Context, itemID, _, _ uuid.UUID) (*repository.QuoteItem, error) {
	for i := range s.items {
		if s.items[i].ID == itemID {
			return &s.items[i], nil
		}
	}
	return nil, apperr.NotFound("quote item not found")
}

func (s *testStore) AddItem(_ context.Context, item *repository.QuoteItem, _ repository.Totals, _ time.Time, reserve *inventory.ReservationItem, _ string) error {
	s.addedItem = item
	s.addedReserve = reserve
	return nil
}

func (s *testStore) UpdateItem(_ context.Context, item *repository.QuoteItem, _ repository.Totals, _ time.Time) error {
	s.updatedItem = item
	return nil
}

func (s *testStore) DeleteItem(_ context.Context, _, _, _ uuid.UUID, _ repository.Totals, _ time.Time, releaseReason string) error {
	s.itemDeleted = true
	s.itemReleaseReason = releaseReason
	return nil
}

func (s *testStore) Send(_ context.Context, p repository.SendParams) error {
	s.sendParams = &p
	return nil
}

func (s *testStore) Resend(_ context.Context, p repository.ResendParams) error {
	s.resendParams = &p
	return nil
}

func (s *testStore) MarkViewed(_ context.Context, _ uuid.UUID, _ time.Time, _ repository.QuoteEvent) (bool, error) {
	s.viewedCalled = true
	return s.viewedResult, nil
}

func (s *testStore) Approve(_ context.Context, p repository.DecisionParams) error {
	s.approveParams = &p
	return nil
}

func (s *testStore) Decline(_ context.Context, p repository.DecisionParams, releaseReason string) error {
	s.declineParams = &p
	s.declineRelease = releaseReason
	return nil
}

func (s *testStore) Convert(context.Context, uuid.UUID, uuid.UUID, time.Time, repository.QuoteEvent) error {
	return nil
}

func (s *testStore) Expire(context.Context, uuid.UUID, uuid.UUID, time.Time, repository.QuoteEvent) (bool, error) {
	s.expireCalled = true
	return s.expireResult, nil
}

func (s *testStore) ListEvents(context.Context, uuid.UUID, uuid.UUID) ([]repository.QuoteEvent, error) {
	return s.events, nil
}

func (s *testStore) CreateEvent(_ context.Context, e *repository.QuoteEvent) error {
	s.events = append(s.events, *e)
	return nil
}

func (s *testStore) ListComments(context.Context, uuid.UUID, uuid.UUID) ([]repository.QuoteComment, error) {
	return s.comments, nil
}

func (s *testStore) CreateCommentWithEvent(_ context.Context, c *repository.QuoteComment, e *repository.QuoteEvent) error {
	if c != nil {
		s.comments = append(s.comments, *c)
	}
	s.events = append(s.events, *e)
	return nil
}

func (s *testStore) GetClientContact(context.Context, uuid.UUID, uuid.UUID) (*repository.ClientContact, error) {
	if s.contact == nil {
		return nil, apperr.NotFound("client not found")
	}
	return s.contact, nil
}

func (s *testStore) GetProductSnapshot(context.Context, uuid.UUID, uuid.UUID) (*repository.CatalogSnapshot, error) {
	if s.productSnap == nil {
		return nil, apperr.NotFound("product not found")
	}
	return s.productSnap, nil
}

func (s *testStore) GetServiceSnapshot(context.Context, uuid.UUID, uuid.UUID) (*repository.CatalogSnapshot, error) {
	if s.serviceSnap == nil {
		return nil, apperr.NotFound("service not found")
	}
	return s.serviceSnap, nil
}

func (s *testStore) WarehouseExists(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return s.warehouseOK, nil
}

func (s *testStore) GetOrganizationName(context.Context, uuid.UUID) (string, error) {
	return s.orgName, nil
}

func (s *testStore) GetToken(_ context.Context, token string) (*repository.AccessToken, error) {
	if s.token == nil || s.token.Token != token {
		return nil, apperr.NotFound("Invalid or expired link")
	}
	return s.token, nil
}

func (s *testStore) GetQuoteByToken(context.Context, string) (*repository.Quote, error) {
	if s.quote == nil {
		return nil, apperr.NotFound("Invalid or expired link")
	}
	return s.quote, nil
}

func (s *testStore) TouchToken(context.Context, string, time.Time) error { return nil }

var _ repository.Store = (*testStore)(nil)

func newTestService(store *testStore) (*Service, *testBus) {
	bus := &testBus{}
	svc := New(store, testQuoteConfig{}, bus, nil, logger.New("test"))
	return svc, bus
}

func teamActor(orgID uuid.UUID) Actor {
	return Actor{ID: uuid.New(), OrganizationID: orgID, Email: "rep@example.com"}
}

func adminActor(orgID uuid.UUID) Actor {
	return Actor{ID: uuid.New(), OrganizationID: orgID, Email: "admin@example.com", Roles: []string{"admin"}}
}

func testQuote(orgID uuid.UUID, createdBy uuid.UUID, status string) *repository.Quote {
	now := time.Now().UTC()
	return &repository.Quote{
		ID:             uuid.New(),
		OrganizationID: orgID,
		ClientID:       uuid.New(),
		QuoteNumber:    "Q-2026-0042",
		Status:         status,
		Subtotal:       decimal.Zero,
		DiscountValue:  decimal.Zero,
		DiscountAmount: decimal.Zero,
		TaxRate:        decimal.Zero,
		TaxAmount:      decimal.Zero,
		Total:          decimal.Zero,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func productLine(quoteID uuid.UUID, qty int) repository.QuoteItem {
	productID := uuid.New()
	warehouseID := uuid.New()
	return repository.QuoteItem{
		ID:              uuid.New(),
		QuoteID:         quoteID,
		ItemType:        "product",
		ProductID:       &productID,
		WarehouseID:     &warehouseID,
		Name:            "Pallet Rack",
		UnitPrice:       decimal.NewFromInt(100),
		Quantity:        qty,
		DiscountPercent: decimal.Zero,
		Subtotal:        decimal.NewFromInt(int64(qty * 100)),
	}
}

func customLine(quoteID uuid.UUID) repository.QuoteItem {
	return repository.QuoteItem{
		ID:              uuid.New(),
		QuoteID:         quoteID,
		ItemType:        "custom",
		Name:            "Delivery",
		UnitPrice:       decimal.NewFromInt(50),
		Quantity:        1,
		DiscountPercent: decimal.Zero,
		Subtotal:        decimal.NewFromInt(50),
	}
}

func strPtr(s string) *string { return &s }

func assertBadRequest(t *testing.T, err error, message string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request kind, got %v", apperr.GetKind(err))
	}
	if err.Error() != message {
		t.Fatalf("expected %q, got %q", message, err.Error())
	}
}

func TestSendRejectsNonDraft(t *testing.T) {
	orgID := uuid.New()
	actor := adminActor(orgID)
	store := &testStore{quote: testQuote(orgID, actor.ID, "sent")}
	svc, _ := newTestService(store)

	_, err := svc.Send(context.Background(), actor, store.quote.ID)
	assertBadRequest(t, err, "This quote cannot be sent in its current state")
}

func TestSendRequiresItems(t *testing.T) {
	orgID := uuid.New()
	actor := adminActor(orgID)
	store := &testStore{quote: testQuote(orgID, actor.ID, "draft")}
	svc, _ := newTestService(store)

	_, err := svc.Send(context.Background(), actor, store.quote.ID)
	assertBadRequest(t, err, "A quote needs at least one item before it can be sent")
}

func TestSendRequiresClientEmail(t *testing.T) {
	orgID := uuid.New()
	actor := adminActor(orgID)
	q := testQuote(orgID, actor.ID, "draft")
	store := &testStore{
		quote:   q,
		items:   []repository.QuoteItem{customLine(q.ID)},
		contact: &repository.ClientContact{ID: q.ClientID, Name: "Acme BV"},
	}
	svc, _ := newTestService(store)

	_, err := svc.Send(context.Background(), actor, q.ID)
	assertBadRequest(t, err, "Client must have an email address")
}

func TestSendReservesProductLines(t *testing.T) {
	orgID := uuid.New()
	actor := adminActor(orgID)
	q := testQuote(orgID, actor.ID, "draft")
	store := &testStore{
		quote:   q,
		items:   []repository.QuoteItem{productLine(q.ID, 3), customLine(q.ID)},
		contact: &repository.ClientContact{ID: q.ClientID, Name: "Acme BV", Email: strPtr("buyer@acme.example")},
	}
	svc, bus := newTestService(store)

	resp, err := svc.Send(context.Background(), actor, q.ID)
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if store.sendParams == nil {
		t.Fatal("expected the repository send to be called")
	}
	if len(store.sendParams.Reservations) != 1 {
		t.Fatalf("expected 1 reservation for the product line, got %d", len(store.sendParams.Reservations))
	}
	if store.sendParams.Reservations[0].Quantity != 3 {
		t.Fatalf("expected reservation quantity 3, got %d", store.sendParams.Reservations[0].Quantity)
	}
	if len(store.sendParams.Token.Token) != 64 {
		t.Fatalf("expected a 64 char hex token, got %d chars", len(store.sendParams.Token.Token))
	}
	if !strings.HasPrefix(resp.PublicURL, "https://app.example.com/quote/") {
		t.Fatalf("unexpected public url %q", resp.PublicURL)
	}
	if resp.Quote.Status != "sent" {
		t.Fatalf("expected status sent, got %q", resp.Quote.Status)
	}
	if !bus.has("quotes.quote.sent") || !bus.has("inventory.stock.reserved") {
		t.Fatalf("expected sent and reserved events, got %v", bus.names())
	}
}

func TestResendRejectsDraft(t *testing.T) {
	orgID := uuid.New()
	actor := adminActor(orgID)
	store := &testStore{quote: testQuote(orgID, actor.ID, "draft")}
	svc, _ := newTestService(store)

	_, err := svc.Resend(context.Background(), actor, store.quote.ID)
	assertBadRequest(t, err, "This quote cannot be resent in its current state")
}

func TestDeleteRequiresAdmin(t *testing.T) {
	orgID := uuid.New()
	actor := teamActor(orgID)
	store := &testStore{quote: testQuote(orgID, actor.ID, "draft")}
	svc, _ := newTestService(store)

	err := svc.Delete(context.Background(), actor, store.quote.ID)
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err.Error() != "Only administrators can delete quotes" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if store.quoteDeleted {
		t.Fatal("quote must not be deleted by a non-admin")
	}

	if err := svc.Delete(context.Background(), adminActor(orgID), store.quote.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if !store.quoteDeleted {
		t.Fatal("expected the quote to be deleted")
	}
}

func TestUpdateRejectsStatusChange(t *testing.T) {
	orgID := uuid.New()
	actor := adminActor(orgID)
	store := &testStore{quote: testQuote(orgID, actor.ID, "draft")}
	svc, _ := newTestService(store)

	_, err := svc.Update(context.Background(), actor, store.quote.ID, transport.UpdateQuoteRequest{
		Status: strPtr("approved"),
	})
	assertBadRequest(t, err, "status is managed by the lifecycle endpoints")
}

func TestUpdateForbiddenForUnrelatedMember(t *testing.T) {
	orgID := uuid.New()
	store := &testStore{quote: testQuote(orgID, uuid.New(), "draft")}
	svc, _ := newTestService(store)

	_, err := svc.Update(context.Background(), teamActor(orgID), store.quote.ID, transport.UpdateQuoteRequest{
		Notes: strPtr("updated notes"),
	})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateAllowedForAssignee(t *testing.T) {
	orgID := uuid.New()
	actor := teamActor(orgID)
	q := testQuote(orgID, uuid.New(), "draft")
	q.AssignedTo = &actor.ID
	store := &testStore{quote: q}
	svc, _ := newTestService(store)

	if _, err := svc.Update(context.Background(), actor, q.ID, transport.UpdateQuoteRequest{
		Notes: strPtr("updated notes"),
	}); err != nil {
		t.Fatalf("assignee update failed: %v", err)
	}
	if store.updatedQuote == nil {
		t.Fatal("expected the quote to be persisted")
	}
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	svc, _ := newTestService(&testStore{})

	_, err := svc.List(context.Background(), teamActor(uuid.New()), transport.ListQuotesRequest{Status: "pending"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExpireSkipsDecidedQuotes(t *testing.T) {
	orgID := uuid.New()
	q := testQuote(orgID, uuid.New(), "approved")
	store := &testStore{quote: q}
	svc, bus := newTestService(store)

	if err := svc.Expire(context.Background(), q.ID, orgID); err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if store.expireCalled {
		t.Fatal("expire must not touch a quote the client already decided")
	}
	if len(bus.published) != 0 {
		t.Fatalf("expected no events, got %v", bus.names())
	}
}

func TestExpireReleasesStock(t *testing.T) {
	orgID := uuid.New()
	q := testQuote(orgID, uuid.New(), "sent")
	store := &testStore{quote: q, expireResult: true}
	svc, bus := newTestService(store)

	if err := svc.Expire(context.Background(), q.ID, orgID); err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if !store.expireCalled {
		t.Fatal("expected the repository expire to be called")
	}
	if !bus.has("quotes.quote.expired") || !bus.has("inventory.stock.released") {
		t.Fatalf("expected expired and released events, got %v", bus.names())
	}
}
