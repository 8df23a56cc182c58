// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"stockquote_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Quote Domain Events
// =============================================================================

// QuoteSent is published when a quote is sent to a client.
type QuoteSent struct {
	BaseEvent
	QuoteID     uuid.UUID  `json:"quoteId"`
	TenantID    uuid.UUID  `json:"tenantId"`
	QuoteNumber string     `json:"quoteNumber"`
	ClientID    uuid.UUID  `json:"clientId"`
	ClientEmail string     `json:"clientEmail"`
	ClientName  string     `json:"clientName"`
	PublicToken string     `json:"publicToken"`
	ValidUntil  *time.Time `json:"validUntil,omitempty"`
	Total       string     `json:"total"`
}

func (e QuoteSent) EventName() string { return "quotes.quote.sent" }

// QuoteViewed is published the first time a client opens a quote link.
type QuoteViewed struct {
	BaseEvent
	QuoteID     uuid.UUID `json:"quoteId"`
	TenantID    uuid.UUID `json:"tenantId"`
	QuoteNumber string    `json:"quoteNumber"`
	OwnerID     uuid.UUID `json:"ownerId"`
}

func (e QuoteViewed) EventName() string { return "quotes.quote.viewed" }

// QuoteApproved is published when a client approves a quote.
type QuoteApproved struct {
	BaseEvent
	QuoteID     uuid.UUID `json:"quoteId"`
	TenantID    uuid.UUID `json:"tenantId"`
	QuoteNumber string    `json:"quoteNumber"`
	OwnerID     uuid.UUID `json:"ownerId"`
	ClientName  string    `json:"clientName"`
	Total       string    `json:"total"`
}

func (e QuoteApproved) EventName() string { return "quotes.quote.approved" }

// QuoteDeclined is published when a client declines a quote.
type QuoteDeclined struct {
	BaseEvent
	QuoteID     uuid.UUID `json:"quoteId"`
	TenantID    uuid.UUID `json:"tenantId"`
	QuoteNumber string    `json:"quoteNumber"`
	OwnerID     uuid.UUID `json:"ownerId"`
	ClientName  string    `json:"clientName"`
	Reason      string    `json:"reason,omitempty"`
}

func (e QuoteDeclined) EventName() string { return "quotes.quote.declined" }

// QuoteCommented is published when a comment is added to a quote,
// either by the client through the public link or by a team member.
type QuoteCommented struct {
	BaseEvent
	QuoteID     uuid.UUID `json:"quoteId"`
	TenantID    uuid.UUID `json:"tenantId"`
	QuoteNumber string    `json:"quoteNumber"`
	OwnerID     uuid.UUID `json:"ownerId"`
	AuthorName  string    `json:"authorName"`
	FromClient  bool      `json:"fromClient"`
	Body        string    `json:"body"`
}

func (e QuoteCommented) EventName() string { return "quotes.quote.commented" }

// QuoteExpired is published when the expiry worker moves a quote past
// its valid-until date.
type QuoteExpired struct {
	BaseEvent
	QuoteID     uuid.UUID `json:"quoteId"`
	TenantID    uuid.UUID `json:"tenantId"`
	QuoteNumber string    `json:"quoteNumber"`
	OwnerID     uuid.UUID `json:"ownerId"`
}

func (e QuoteExpired) EventName() string { return "quotes.quote.expired" }

// QuoteConverted is published when an approved quote is converted.
type QuoteConverted struct {
	BaseEvent
	QuoteID     uuid.UUID `json:"quoteId"`
	TenantID    uuid.UUID `json:"tenantId"`
	QuoteNumber string    `json:"quoteNumber"`
	ConvertedBy uuid.UUID `json:"convertedBy"`
}

func (e QuoteConverted) EventName() string { return "quotes.quote.converted" }

// =============================================================================
// Inventory Domain Events
// =============================================================================

// InventoryReserved is published when stock is reserved for a quote.
type InventoryReserved struct {
	BaseEvent
	QuoteID     uuid.UUID `json:"quoteId"`
	TenantID    uuid.UUID `json:"tenantId"`
	ProductID   uuid.UUID `json:"productId"`
	WarehouseID uuid.UUID `json:"warehouseId"`
	Quantity    int       `json:"quantity"`
}

func (e InventoryReserved) EventName() string { return "inventory.stock.reserved" }

// InventoryReleased is published when reservations for a quote are
// released back to available stock.
type InventoryReleased struct {
	BaseEvent
	QuoteID  uuid.UUID `json:"quoteId"`
	TenantID uuid.UUID `json:"tenantId"`
	Reason   string    `json:"reason"`
}

func (e InventoryReleased) EventName() string { return "inventory.stock.released" }

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserRegistered is published when a new user and organization are created.
type UserRegistered struct {
	BaseEvent
	UserID         uuid.UUID `json:"userId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Email          string    `json:"email"`
}

func (e UserRegistered) EventName() string { return "auth.user.registered" }
