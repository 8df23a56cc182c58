package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quote is the database model for a quote header. All monetary fields
// are derived server-side; they are never written from client input.
type Quote struct {
	ID             uuid.UUID       `db:"id"`
	OrganizationID uuid.UUID       `db:"organization_id"`
	ClientID       uuid.UUID       `db:"client_id"`
	QuoteNumber    string          `db:"quote_number"`
	Status         string          `db:"status"`
	ValidFrom      *time.Time      `db:"valid_from"`
	ValidUntil     *time.Time      `db:"valid_until"`
	Subtotal       decimal.Decimal `db:"subtotal"`
	DiscountType   *string         `db:"discount_type"`
	DiscountValue  decimal.Decimal `db:"discount_value"`
	DiscountAmount decimal.Decimal `db:"discount_amount"`
	TaxRate        decimal.Decimal `db:"tax_rate"`
	TaxAmount      decimal.Decimal `db:"tax_amount"`
	Total          decimal.Decimal `db:"total"`
	Terms          *string         `db:"terms"`
	Notes          *string         `db:"notes"`
	InternalNotes  *string         `db:"internal_notes"`
	CreatedBy      uuid.UUID       `db:"created_by"`
	AssignedTo     *uuid.UUID      `db:"assigned_to"`
	SentAt         *time.Time      `db:"sent_at"`
	ViewedAt       *time.Time      `db:"viewed_at"`
	ApprovedAt     *time.Time      `db:"approved_at"`
	DeclinedAt     *time.Time      `db:"declined_at"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// QuoteItem is the database model for a quote line item. Name, sku,
// description, and unit price are snapshots taken from the catalog at
// add time so historical quotes stay stable.
type QuoteItem struct {
	ID              uuid.UUID       `db:"id"`
	QuoteID         uuid.UUID       `db:"quote_id"`
	OrganizationID  uuid.UUID       `db:"organization_id"`
	ItemType        string          `db:"item_type"`
	ProductID       *uuid.UUID      `db:"product_id"`
	ServiceID       *uuid.UUID      `db:"service_id"`
	WarehouseID     *uuid.UUID      `db:"warehouse_id"`
	Name            string          `db:"name"`
	Description     *string         `db:"description"`
	SKU             *string         `db:"sku"`
	UnitPrice       decimal.Decimal `db:"unit_price"`
	Quantity        int             `db:"quantity"`
	DiscountPercent decimal.Decimal `db:"discount_percent"`
	Subtotal        decimal.Decimal `db:"subtotal"`
	SortOrder       int             `db:"sort_order"`
	CreatedAt       time.Time       `db:"created_at"`
}

// QuoteEvent is an append-only audit record. Rows are never updated or
// deleted.
type QuoteEvent struct {
	ID             uuid.UUID      `db:"id"`
	QuoteID        uuid.UUID      `db:"quote_id"`
	OrganizationID uuid.UUID      `db:"organization_id"`
	EventType      string         `db:"event_type"`
	ActorID        *uuid.UUID     `db:"actor_id"`
	UserType       string         `db:"user_type"`
	UserName       string         `db:"user_name"`
	Metadata       map[string]any `db:"metadata"`
	CreatedAt      time.Time      `db:"created_at"`
}

// QuoteComment is a comment on a quote; internal comments are hidden
// from the client-facing token view.
type QuoteComment struct {
	ID             uuid.UUID  `db:"id"`
	QuoteID        uuid.UUID  `db:"quote_id"`
	OrganizationID uuid.UUID  `db:"organization_id"`
	AuthorID       *uuid.UUID `db:"author_id"`
	AuthorName     string     `db:"author_name"`
	UserType       string     `db:"user_type"`
	IsInternal     bool       `db:"is_internal"`
	Body           string     `db:"body"`
	CreatedAt      time.Time  `db:"created_at"`
}

// AccessToken grants time-limited unauthenticated access to one quote.
type AccessToken struct {
	Token          string     `db:"token"`
	QuoteID        uuid.UUID  `db:"quote_id"`
	ExpiresAt      time.Time  `db:"expires_at"`
	AccessCount    int        `db:"access_count"`
	LastAccessedAt *time.Time `db:"last_accessed_at"`
	CreatedAt      time.Time  `db:"created_at"`
}

// Totals carries recomputed monetary fields for a quote update.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// CatalogSnapshot is the catalog projection copied onto a quote item.
type CatalogSnapshot struct {
	ID          uuid.UUID
	Name        string
	SKU         *string
	Description *string
	UnitPrice   decimal.Decimal
	IsActive    bool
}

// ClientContact is the client projection needed for send and the
// public view.
type ClientContact struct {
	ID    uuid.UUID
	Name  string
	Email *string
}

// ListParams filters the tenant quote listing.
type ListParams struct {
	OrganizationID uuid.UUID
	Status         *string
	ClientID       *uuid.UUID
	Search         string
	Page           int
	PageSize       int
}

// ListResult is a page of quotes.
type ListResult struct {
	Items      []Quote
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}
