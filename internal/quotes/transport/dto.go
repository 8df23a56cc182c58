package transport

import (
	"time"

	"github.com/google/uuid"
)

// ── Requests ─────────────────────────────────────────────────────────────────

type CreateQuoteRequest struct {
	ClientID   uuid.UUID  `json:"clientId" validate:"required"`
	ValidFrom  *time.Time `json:"validFrom"`
	ValidUntil *time.Time `json:"validUntil"`
	TaxRate    *string    `json:"taxRate"`
	Terms      *string    `json:"terms"`
	Notes      *string    `json:"notes"`
	AssignedTo *uuid.UUID `json:"assignedTo"`
}

// UpdateQuoteRequest is a whitelist partial update. Monetary totals,
// ids, tenant, and audit columns are never writable.
type UpdateQuoteRequest struct {
	Status        *string    `json:"status"`
	ValidFrom     *time.Time `json:"validFrom"`
	ValidUntil    *time.Time `json:"validUntil"`
	DiscountType  *string    `json:"discountType" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue *string    `json:"discountValue"`
	TaxRate       *string    `json:"taxRate"`
	Terms         *string    `json:"terms"`
	Notes         *string    `json:"notes"`
	InternalNotes *string    `json:"internalNotes"`
	AssignedTo    *uuid.UUID `json:"assignedTo"`
}

type AddItemRequest struct {
	ItemType        string     `json:"itemType" validate:"required,oneof=product service custom"`
	ProductID       *uuid.UUID `json:"productId"`
	ServiceID       *uuid.UUID `json:"serviceId"`
	WarehouseID     *uuid.UUID `json:"warehouseId"`
	Name            *string    `json:"name" validate:"omitempty,max=200"`
	Description     *string    `json:"description"`
	UnitPrice       *string    `json:"unitPrice"`
	Quantity        int        `json:"quantity" validate:"required,min=1"`
	DiscountPercent *string    `json:"discountPercent"`
}

type UpdateItemRequest struct {
	Quantity        *int    `json:"quantity" validate:"omitempty,min=1"`
	DiscountPercent *string `json:"discountPercent"`
	Description     *string `json:"description"`
}

type ListQuotesRequest struct {
	Status   string `form:"status"`
	ClientID string `form:"clientId"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

type AddCommentRequest struct {
	Body       string `json:"body" validate:"required,max=4000"`
	IsInternal bool   `json:"isInternal"`
}

type PublicApproveRequest struct {
	Name    string `json:"name" validate:"omitempty,max=200"`
	Comment string `json:"comment" validate:"omitempty,max=4000"`
}

type PublicDeclineRequest struct {
	Name   string `json:"name" validate:"omitempty,max=200"`
	Reason string `json:"reason" validate:"required,max=4000"`
}

type PublicCommentRequest struct {
	Name string `json:"name" validate:"omitempty,max=200"`
	Body string `json:"body" validate:"required,max=4000"`
}

// ── Responses ────────────────────────────────────────────────────────────────

type QuoteResponse struct {
	ID             uuid.UUID  `json:"id"`
	QuoteNumber    string     `json:"quoteNumber"`
	Status         string     `json:"status"`
	ClientID       uuid.UUID  `json:"clientId"`
	ValidFrom      *time.Time `json:"validFrom,omitempty"`
	ValidUntil     *time.Time `json:"validUntil,omitempty"`
	Subtotal       string     `json:"subtotal"`
	DiscountType   *string    `json:"discountType,omitempty"`
	DiscountValue  string     `json:"discountValue"`
	DiscountAmount string     `json:"discountAmount"`
	TaxRate        string     `json:"taxRate"`
	TaxAmount      string     `json:"taxAmount"`
	Total          string     `json:"total"`
	Terms          *string    `json:"terms,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	InternalNotes  *string    `json:"internalNotes,omitempty"`
	CreatedBy      uuid.UUID  `json:"createdBy"`
	AssignedTo     *uuid.UUID `json:"assignedTo,omitempty"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
	ViewedAt       *time.Time `json:"viewedAt,omitempty"`
	ApprovedAt     *time.Time `json:"approvedAt,omitempty"`
	DeclinedAt     *time.Time `json:"declinedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	Items    []ItemResponse    `json:"items,omitempty"`
	Events   []EventResponse   `json:"events,omitempty"`
	Comments []CommentResponse `json:"comments,omitempty"`
}

type ItemResponse struct {
	ID              uuid.UUID  `json:"id"`
	ItemType        string     `json:"itemType"`
	ProductID       *uuid.UUID `json:"productId,omitempty"`
	ServiceID       *uuid.UUID `json:"serviceId,omitempty"`
	WarehouseID     *uuid.UUID `json:"warehouseId,omitempty"`
	Name            string     `json:"name"`
	Description     *string    `json:"description,omitempty"`
	SKU             *string    `json:"sku,omitempty"`
	UnitPrice       string     `json:"unitPrice"`
	Quantity        int        `json:"quantity"`
	DiscountPercent string     `json:"discountPercent"`
	Subtotal        string     `json:"subtotal"`
	SortOrder       int        `json:"sortOrder"`
}

type EventResponse struct {
	ID        uuid.UUID      `json:"id"`
	EventType string         `json:"eventType"`
	UserType  string         `json:"userType"`
	UserName  string         `json:"userName"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

type CommentResponse struct {
	ID         uuid.UUID `json:"id"`
	AuthorName string    `json:"authorName"`
	UserType   string    `json:"userType"`
	IsInternal bool      `json:"isInternal"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

type QuoteListResponse struct {
	Items      []QuoteResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

type SendResponse struct {
	Quote     QuoteResponse `json:"quote"`
	PublicURL string        `json:"publicUrl"`
}

// PublicQuoteResponse is the client-facing view behind an access token.
// Internal notes and internal comments are never included.
type PublicQuoteResponse struct {
	QuoteNumber      string            `json:"quoteNumber"`
	Status           string            `json:"status"`
	OrganizationName string            `json:"organizationName"`
	ClientName       string            `json:"clientName"`
	ValidUntil       *time.Time        `json:"validUntil,omitempty"`
	Subtotal         string            `json:"subtotal"`
	DiscountAmount   string            `json:"discountAmount"`
	TaxRate          string            `json:"taxRate"`
	TaxAmount        string            `json:"taxAmount"`
	Total            string            `json:"total"`
	Terms            *string           `json:"terms,omitempty"`
	Notes            *string           `json:"notes,omitempty"`
	Items            []ItemResponse    `json:"items"`
	Comments         []CommentResponse `json:"comments"`
}
