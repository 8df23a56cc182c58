package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"stockquote_backend/internal/inventory"
	"stockquote_backend/platform/apperr"
)

const quoteColumns = `id, organization_id, client_id, quote_number, status,
		valid_from, valid_until,
		subtotal::text, discount_type, discount_value::text, discount_amount::text,
		tax_rate::text, tax_amount::text, total::text,
		terms, notes, internal_notes, created_by, assigned_to,
		sent_at, viewed_at, approved_at, declined_at, created_at, updated_at`

const itemColumns = `id, quote_id, organization_id, item_type, product_id, service_id, warehouse_id,
		name, description, sku, unit_price::text, quantity, discount_percent::text, subtotal::text,
		sort_order, created_at`

// Query constants used by the repository.
const (
	GetQuoteQuery = `SELECT ` + quoteColumns + `
		FROM quotes WHERE id = $1 AND organization_id = $2`

	ListQuotesQuery = `SELECT ` + quoteColumns + `
		FROM quotes
		WHERE organization_id = $1
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::uuid IS NULL OR client_id = $3)
		  AND ($4::text IS NULL OR quote_number ILIKE $4)
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6`

	CountQuotesQuery = `SELECT COUNT(*)
		FROM quotes
		WHERE organization_id = $1
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::uuid IS NULL OR client_id = $3)
		  AND ($4::text IS NULL OR quote_number ILIKE $4)`

	ListItemsQuery = `SELECT ` + itemColumns + `
		FROM quote_items WHERE quote_id = $1 AND organization_id = $2
		ORDER BY sort_order ASC, created_at ASC`

	GetItemQuery = `SELECT ` + itemColumns + `
		FROM quote_items WHERE id = $1 AND quote_id = $2 AND organization_id = $3`

	ListEventsQuery = `SELECT id, quote_id, organization_id, event_type, actor_id, user_type, user_name, metadata, created_at
		FROM quote_events WHERE quote_id = $1 AND organization_id = $2
		ORDER BY created_at ASC`

	ListCommentsQuery = `SELECT id, quote_id, organization_id, author_id, author_name, user_type, is_internal, body, created_at
		FROM quote_comments WHERE quote_id = $1 AND organization_id = $2
		ORDER BY created_at ASC`

	nextQuoteNumberQuery = `INSERT INTO quote_counters (organization_id, year, counter)
		VALUES ($1, $2, 1)
		ON CONFLICT (organization_id, year)
		DO UPDATE SET counter = quote_counters.counter + 1
		RETURNING counter`

	getClientContactQuery = `SELECT id, name, email
		FROM clients WHERE id = $1 AND organization_id = $2`

	getOrganizationNameQuery = `SELECT name FROM organizations WHERE id = $1`

	getProductSnapshotQuery = `SELECT id, name, sku, description, unit_price::text, is_active
		FROM products WHERE id = $1 AND organization_id = $2`

	getServiceSnapshotQuery = `SELECT id, name, description, unit_price::text, is_active
		FROM services WHERE id = $1 AND organization_id = $2`

	warehouseExistsQuery = `SELECT EXISTS (
		SELECT 1 FROM warehouses WHERE id = $1 AND organization_id = $2)`

	getQuoteByTokenQuery = `SELECT ` + quoteColumns + `
		FROM quotes WHERE id = (SELECT quote_id FROM quote_access_tokens WHERE token = $1)`

	getTokenQuery = `SELECT token, quote_id, expires_at, access_count, last_accessed_at, created_at
		FROM quote_access_tokens WHERE token = $1`

	touchTokenQuery = `UPDATE quote_access_tokens
		SET access_count = access_count + 1, last_accessed_at = $2
		WHERE token = $1`
)

type Repository struct {
	pool *pgxpool.Pool
	inv  *inventory.Coordinator
}

func New(pool *pgxpool.Pool, inv *inventory.Coordinator) *Repository {
	return &Repository{pool: pool, inv: inv}
}

// NextQuoteNumber bumps the per-organization yearly counter and formats
// the human-readable quote number.
func (r *Repository) NextQuoteNumber(ctx context.Context, orgID uuid.UUID, year int) (string, error) {
	var counter int
	if err := r.pool.QueryRow(ctx, nextQuoteNumberQuery, orgID, year).Scan(&counter); err != nil {
		return "", fmt.Errorf("next quote number: %w", err)
	}
	return fmt.Sprintf("Q-%d-%04d", year, counter), nil
}

func (r *Repository) CreateQuote(ctx context.Context, q *Quote) error {
	const query = `INSERT INTO quotes (
			id, organization_id, client_id, quote_number, status,
			valid_from, valid_until,
			subtotal, discount_value, discount_amount, tax_rate, tax_amount, total,
			terms, notes, internal_notes, created_by, assigned_to, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err := r.pool.Exec(ctx, query,
		q.ID, q.OrganizationID, q.ClientID, q.QuoteNumber, q.Status,
		q.ValidFrom, q.ValidUntil,
		q.Subtotal.String(), q.DiscountValue.String(), q.DiscountAmount.String(),
		q.TaxRate.String(), q.TaxAmount.String(), q.Total.String(),
		q.Terms, q.Notes, q.InternalNotes, q.CreatedBy, q.AssignedTo, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create quote: %w", err)
	}
	return nil
}

func (r *Repository) GetQuote(ctx context.Context, id, orgID uuid.UUID) (*Quote, error) {
	q, err := scanQuote(r.pool.QueryRow(ctx, GetQuoteQuery, id, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("quote not found")
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return q, nil
}

func (r *Repository) ListQuotes(ctx context.Context, p ListParams) (*ListResult, error) {
	var search *string
	if p.Search != "" {
		s := "%" + p.Search + "%"
		search = &s
	}

	var total int
	if err := r.pool.QueryRow(ctx, CountQuotesQuery, p.OrganizationID, p.Status, p.ClientID, search).Scan(&total); err != nil {
		return nil, fmt.Errorf("count quotes: %w", err)
	}

	offset := (p.Page - 1) * p.PageSize
	rows, err := r.pool.Query(ctx, ListQuotesQuery, p.OrganizationID, p.Status, p.ClientID, search, p.PageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	items := make([]Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		items = append(items, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}

	totalPages := (total + p.PageSize - 1) / p.PageSize
	return &ListResult{Items: items, Total: total, Page: p.Page, PageSize: p.PageSize, TotalPages: totalPages}, nil
}

// UpdateQuote persists header fields and recomputed totals. Status is
// deliberately not written here; lifecycle transitions go through the
// compare-and-set operations in lifecycle.go.
func (r *Repository) UpdateQuote(ctx context.Context, q *Quote) error {
	const query = `UPDATE quotes SET
			valid_from = $3, valid_until = $4,
			discount_type = $5, discount_value = $6, discount_amount = $7,
			tax_rate = $8, tax_amount = $9, subtotal = $10, total = $11,
			terms = $12, notes = $13, internal_notes = $14, assigned_to = $15,
			updated_at = $16
		WHERE id = $1 AND organization_id = $2`

	res, err := r.pool.Exec(ctx, query, q.ID, q.OrganizationID,
		q.ValidFrom, q.ValidUntil,
		q.DiscountType, q.DiscountValue.String(), q.DiscountAmount.String(),
		q.TaxRate.String(), q.TaxAmount.String(), q.Subtotal.String(), q.Total.String(),
		q.Terms, q.Notes, q.InternalNotes, q.AssignedTo, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("quote not found")
	}
	return nil
}

func (r *Repository) ListItems(ctx context.Context, quoteID, orgID uuid.UUID) ([]QuoteItem, error) {
	rows, err := r.pool.Query(ctx, ListItemsQuery, quoteID, orgID)
	if err != nil {
		return nil, fmt.Errorf("list quote items: %w", err)
	}
	defer rows.Close()

	items := make([]QuoteItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *Repository) GetItem(ctx context.Context, itemID, quoteID, orgID uuid.UUID) (*QuoteItem, error) {
	it, err := scanItem(r.pool.QueryRow(ctx, GetItemQuery, itemID, quoteID, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("quote item not found")
		}
		return nil, fmt.Errorf("get quote item: %w", err)
	}
	return it, nil
}

func (r *Repository) ListEvents(ctx context.Context, quoteID, orgID uuid.UUID) ([]QuoteEvent, error) {
	rows, err := r.pool.Query(ctx, ListEventsQuery, quoteID, orgID)
	if err != nil {
		return nil, fmt.Errorf("list quote events: %w", err)
	}
	defer rows.Close()

	events := make([]QuoteEvent, 0)
	for rows.Next() {
		var e QuoteEvent
		if err := rows.Scan(&e.ID, &e.QuoteID, &e.OrganizationID, &e.EventType,
			&e.ActorID, &e.UserType, &e.UserName, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quote event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *Repository) ListComments(ctx context.Context, quoteID, orgID uuid.UUID) ([]QuoteComment, error) {
	rows, err := r.pool.Query(ctx, ListCommentsQuery, quoteID, orgID)
	if err != nil {
		return nil, fmt.Errorf("list quote comments: %w", err)
	}
	defer rows.Close()

	comments := make([]QuoteComment, 0)
	for rows.Next() {
		var c QuoteComment
		if err := rows.Scan(&c.ID, &c.QuoteID, &c.OrganizationID, &c.AuthorID,
			&c.AuthorName, &c.UserType, &c.IsInternal, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quote comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *Repository) CreateComment(ctx context.Context, c *QuoteComment) error {
	if err := insertComment(ctx, r.pool, c); err != nil {
		return err
	}
	return nil
}

func (r *Repository) CreateEvent(ctx context.Context, e *QuoteEvent) error {
	return insertEvent(ctx, r.pool, e)
}

func (r *Repository) GetClientContact(ctx context.Context, clientID, orgID uuid.UUID) (*ClientContact, error) {
	var c ClientContact
	err := r.pool.QueryRow(ctx, getClientContactQuery, clientID, orgID).Scan(&c.ID, &c.Name, &c.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("client not found")
		}
		return nil, fmt.Errorf("get client contact: %w", err)
	}
	return &c, nil
}

// GetProductSnapshot reads the catalog fields a quote item copies at
// add time.
func (r *Repository) GetProductSnapshot(ctx context.Context, productID, orgID uuid.UUID) (*CatalogSnapshot, error) {
	return r.catalogSnapshot(ctx, getProductSnapshotQuery, productID, orgID, true, "product not found")
}

func (r *Repository) GetServiceSnapshot(ctx context.Context, serviceID, orgID uuid.UUID) (*CatalogSnapshot, error) {
	return r.catalogSnapshot(ctx, getServiceSnapshotQuery, serviceID, orgID, false, "service not found")
}

func (r *Repository) catalogSnapshot(ctx context.Context, query string, id, orgID uuid.UUID, hasSKU bool, notFound string) (*CatalogSnapshot, error) {
	var s CatalogSnapshot
	var price string
	var err error
	if hasSKU {
		err = r.pool.QueryRow(ctx, query, id, orgID).Scan(&s.ID, &s.Name, &s.SKU, &s.Description, &price, &s.IsActive)
	} else {
		err = r.pool.QueryRow(ctx, query, id, orgID).Scan(&s.ID, &s.Name, &s.Description, &price, &s.IsActive)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(notFound)
		}
		return nil, fmt.Errorf("get catalog snapshot: %w", err)
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse catalog price %q: %w", price, err)
	}
	s.UnitPrice = d
	return &s, nil
}

func (r *Repository) WarehouseExists(ctx context.Context, warehouseID, orgID uuid.UUID) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, warehouseExistsQuery, warehouseID, orgID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check warehouse: %w", err)
	}
	return exists, nil
}

func (r *Repository) GetOrganizationName(ctx context.Context, orgID uuid.UUID) (string, error) {
	var name string
	if err := r.pool.QueryRow(ctx, getOrganizationNameQuery, orgID).Scan(&name); err != nil {
		return "", fmt.Errorf("get organization name: %w", err)
	}
	return name, nil
}

// GetToken looks up an access token. The caller decides whether an
// expired token is still acceptable.
func (r *Repository) GetToken(ctx context.Context, token string) (*AccessToken, error) {
	var t AccessToken
	err := r.pool.QueryRow(ctx, getTokenQuery, token).Scan(
		&t.Token, &t.QuoteID, &t.ExpiresAt, &t.AccessCount, &t.LastAccessedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Invalid or expired link")
		}
		return nil, fmt.Errorf("get access token: %w", err)
	}
	return &t, nil
}

// GetQuoteByToken fetches the quote an access token points at without
// tenant scoping; the token itself is the capability.
func (r *Repository) GetQuoteByToken(ctx context.Context, token string) (*Quote, error) {
	q, err := scanQuote(r.pool.QueryRow(ctx, getQuoteByTokenQuery, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Invalid or expired link")
		}
		return nil, fmt.Errorf("get quote by token: %w", err)
	}
	return q, nil
}

func (r *Repository) TouchToken(ctx context.Context, token string, at time.Time) error {
	if _, err := r.pool.Exec(ctx, touchTokenQuery, token, at); err != nil {
		return fmt.Errorf("touch access token: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (*Quote, error) {
	var q Quote
	var subtotal, discountValue, discountAmount, taxRate, taxAmount, total string
	err := row.Scan(
		&q.ID, &q.OrganizationID, &q.ClientID, &q.QuoteNumber, &q.Status,
		&q.ValidFrom, &q.ValidUntil,
		&subtotal, &q.DiscountType, &discountValue, &discountAmount,
		&taxRate, &taxAmount, &total,
		&q.Terms, &q.Notes, &q.InternalNotes, &q.CreatedBy, &q.AssignedTo,
		&q.SentAt, &q.ViewedAt, &q.ApprovedAt, &q.DeclinedAt, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	for _, pair := range []struct {
		src string
		dst *decimal.Decimal
	}{
		{subtotal, &q.Subtotal},
		{discountValue, &q.DiscountValue},
		{discountAmount, &q.DiscountAmount},
		{taxRate, &q.TaxRate},
		{taxAmount, &q.TaxAmount},
		{total, &q.Total},
	} {
		d, err := decimal.NewFromString(pair.src)
		if err != nil {
			return nil, fmt.Errorf("parse quote amount %q: %w", pair.src, err)
		}
		*pair.dst = d
	}
	return &q, nil
}

func scanItem(row rowScanner) (*QuoteItem, error) {
	var it QuoteItem
	var unitPrice, discountPercent, subtotal string
	err := row.Scan(
		&it.ID, &it.QuoteID, &it.OrganizationID, &it.ItemType,
		&it.ProductID, &it.ServiceID, &it.WarehouseID,
		&it.Name, &it.Description, &it.SKU, &unitPrice, &it.Quantity,
		&discountPercent, &subtotal, &it.SortOrder, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	for _, pair := range []struct {
		src string
		dst *decimal.Decimal
	}{
		{unitPrice, &it.UnitPrice},
		{discountPercent, &it.DiscountPercent},
		{subtotal, &it.Subtotal},
	} {
		d, err := decimal.NewFromString(pair.src)
		if err != nil {
			return nil, fmt.Errorf("parse item amount %q: %w", pair.src, err)
		}
		*pair.dst = d
	}
	return &it, nil
}
