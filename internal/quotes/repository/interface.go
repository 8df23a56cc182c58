package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stockquote_backend/internal/inventory"
)

// Store is the persistence surface the quote service depends on. The
// concrete *Repository satisfies it; tests swap in a fake.
type Store interface {
	NextQuoteNumber(ctx context.Context, orgID uuid.UUID, year int) (string, error)
	CreateQuote(ctx context.Context, q *Quote) error
	GetQuote(ctx context.Context, id, orgID uuid.UUID) (*Quote, error)
	ListQuotes(ctx context.Context, p ListParams) (*ListResult, error)
	UpdateQuote(ctx context.Context, q *Quote) error
	DeleteQuote(ctx context.Context, quoteID, orgID uuid.UUID) error

	ListItems(ctx context.Context, quoteID, orgID uuid.UUID) ([]QuoteItem, error)
	GetItem(ctx context.Context, itemID, quoteID, orgID uuid.UUID) (*QuoteItem, error)
	AddItem(ctx context.Context, item *QuoteItem, totals Totals, updatedAt time.Time, reserve *inventory.ReservationItem, actorName string) error
	UpdateItem(ctx context.Context, item *QuoteItem, totals Totals, updatedAt time.Time) error
	DeleteItem(ctx context.Context, itemID, quoteID, orgID uuid.UUID, totals Totals, updatedAt time.Time, releaseReason string) error

	Send(ctx context.Context, p SendParams) error
	Resend(ctx context.Context, p ResendParams) error
	MarkViewed(ctx context.Context, quoteID uuid.UUID, at time.Time, event QuoteEvent) (bool, error)
	Approve(ctx context.Context, p DecisionParams) error
	Decline(ctx context.Context, p DecisionParams, releaseReason string) error
	Convert(ctx context.Context, quoteID, orgID uuid.UUID, at time.Time, event QuoteEvent) error
	Expire(ctx context.Context, quoteID, orgID uuid.UUID, at time.Time, event QuoteEvent) (bool, error)

	ListEvents(ctx context.Context, quoteID, orgID uuid.UUID) ([]QuoteEvent, error)
	CreateEvent(ctx context.Context, e *QuoteEvent) error
	ListComments(ctx context.Context, quoteID, orgID uuid.UUID) ([]QuoteComment, error)
	CreateCommentWithEvent(ctx context.Context, c *QuoteComment, e *QuoteEvent) error

	GetClientContact(ctx context.Context, clientID, orgID uuid.UUID) (*ClientContact, error)
	GetProductSnapshot(ctx context.Context, productID, orgID uuid.UUID) (*CatalogSnapshot, error)
	GetServiceSnapshot(ctx context.Context, serviceID, orgID uuid.UUID) (*CatalogSnapshot, error)
	WarehouseExists(ctx context.Context, warehouseID, orgID uuid.UUID) (bool, error)
	GetOrganizationName(ctx context.Context, orgID uuid.UUID) (string, error)
	GetToken(ctx context.Context, token string) (*AccessToken, error)
	GetQuoteByToken(ctx context.Context, token string) (*Quote, error)
	TouchToken(ctx context.Context, token string, at time.Time) error
}

var _ Store = (*Repository)(nil)
