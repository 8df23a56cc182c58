package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"stockquote_backend/internal/inventory"
	"stockquote_backend/platform/apperr"
)

// Lifecycle transitions run as compare-and-set updates inside a single
// transaction together with their side effects (tokens, reservations,
// audit events). A transition that loses a race fails atomically.

const (
	markSentQuery = `UPDATE quotes
		SET status = 'sent', sent_at = $3, updated_at = $3
		WHERE id = $1 AND organization_id = $2 AND status = 'draft'`

	markViewedQuery = `UPDATE quotes
		SET status = 'viewed', viewed_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'sent'`

	markApprovedQuery = `UPDATE quotes
		SET status = 'approved', approved_at = $2, updated_at = $2
		WHERE id = $1 AND status IN ('sent', 'viewed')`

	markDeclinedQuery = `UPDATE quotes
		SET status = 'declined', declined_at = $2, updated_at = $2
		WHERE id = $1 AND status IN ('sent', 'viewed')`

	markConvertedQuery = `UPDATE quotes
		SET status = 'converted', updated_at = $3
		WHERE id = $1 AND organization_id = $2 AND status = 'approved'`

	markExpiredQuery = `UPDATE quotes
		SET status = 'expired', updated_at = $3
		WHERE id = $1 AND organization_id = $2 AND status IN ('sent', 'viewed')`

	insertTokenQuery = `INSERT INTO quote_access_tokens (token, quote_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`

	insertEventQuery = `INSERT INTO quote_events (id, quote_id, organization_id, event_type, actor_id, user_type, user_name, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	insertCommentQuery = `INSERT INTO quote_comments (id, quote_id, organization_id, author_id, author_name, user_type, is_internal, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	insertItemQuery = `INSERT INTO quote_items (id, quote_id, organization_id, item_type, product_id, service_id, warehouse_id,
			name, description, sku, unit_price, quantity, discount_percent, subtotal, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	updateItemQuery = `UPDATE quote_items
		SET name = $4, description = $5, unit_price = $6, quantity = $7, discount_percent = $8, subtotal = $9
		WHERE id = $1 AND quote_id = $2 AND organization_id = $3`

	deleteItemQuery = `DELETE FROM quote_items
		WHERE id = $1 AND quote_id = $2 AND organization_id = $3`

	updateTotalsQuery = `UPDATE quotes
		SET subtotal = $3, discount_amount = $4, tax_amount = $5, total = $6, updated_at = $7
		WHERE id = $1 AND organization_id = $2`

	deleteQuoteQuery = `DELETE FROM quotes WHERE id = $1 AND organization_id = $2`

	lockStatusQuery = `SELECT status FROM quotes
		WHERE id = $1 AND organization_id = $2 FOR UPDATE`
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SendParams carries everything the send transition writes atomically.
type SendParams struct {
	QuoteID        uuid.UUID
	OrganizationID uuid.UUID
	SentAt         time.Time
	Token          AccessToken
	Reservations   []inventory.ReservationItem
	ActorName      string
	Event          QuoteEvent
}

// Send flips draft to sent, stores the access token, reserves stock for
// every product line, and records the audit event. Any failed
// reservation rolls back the whole transition.
func (r *Repository) Send(ctx context.Context, p SendParams) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin send: %w", err)
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, markSentQuery, p.QuoteID, p.OrganizationID, p.SentAt)
	if err != nil {
		return fmt.Errorf("mark quote sent: %w", err)
	}
	if res.RowsAffected() == 0 {
		return r.staleStatusError(ctx, p.QuoteID, p.OrganizationID, "sent")
	}

	if _, err := tx.Exec(ctx, insertTokenQuery, p.Token.Token, p.Token.QuoteID, p.Token.ExpiresAt, p.Token.CreatedAt); err != nil {
		return fmt.Errorf("insert access token: %w", err)
	}

	for _, item := range p.Reservations {
		if err := r.inv.ReserveItem(ctx, tx, item, p.ActorName); err != nil {
			return err
		}
	}

	if err := insertEvent(ctx, tx, &p.Event); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ResendParams issues an additional access token for an already sent
// quote. Earlier tokens stay valid until they expire.
type ResendParams struct {
	QuoteID        uuid.UUID
	OrganizationID uuid.UUID
	Token          AccessToken
	Event          QuoteEvent
}

func (r *Repository) Resend(ctx context.Context, p ResendParams) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin resend: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx, lockStatusQuery, p.QuoteID, p.OrganizationID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("quote not found")
		}
		return fmt.Errorf("lock quote: %w", err)
	}
	if status != "sent" && status != "viewed" {
		return apperr.BadRequest("This quote cannot be resent in its current state")
	}

	if _, err := tx.Exec(ctx, insertTokenQuery, p.Token.Token, p.Token.QuoteID, p.Token.ExpiresAt, p.Token.CreatedAt); err != nil {
		return fmt.Errorf("insert access token: %w", err)
	}
	if err := insertEvent(ctx, tx, &p.Event); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// MarkViewed records the first client view. It reports whether the
// status actually transitioned; repeat views are not an error.
func (r *Repository) MarkViewed(ctx context.Context, quoteID uuid.UUID, at time.Time, event QuoteEvent) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin mark viewed: %w", err)
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, markViewedQuery, quoteID, at)
	if err != nil {
		return false, fmt.Errorf("mark quote viewed: %w", err)
	}
	if res.RowsAffected() == 0 {
		return false, tx.Commit(ctx)
	}
	if err := insertEvent(ctx, tx, &event); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// DecisionParams carries the client approval or decline written through
// the public token surface.
type DecisionParams struct {
	QuoteID uuid.UUID
	At      time.Time
	Event   QuoteEvent
	Comment *QuoteComment
}

func (r *Repository) Approve(ctx context.Context, p DecisionParams) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin approve: %w", err)
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, markApprovedQuery, p.QuoteID, p.At)
	if err != nil {
		return fmt.Errorf("mark quote approved: %w", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.BadRequest("This quote cannot be approved in its current state")
	}
	if err := insertEvent(ctx, tx, &p.Event); err != nil {
		return err
	}
	if p.Comment != nil {
		if err := insertComment(ctx, tx, p.Comment); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Decline also releases every active reservation held by the quote.
func (r *Repository) Decline(ctx context.Context, p DecisionParams, releaseReason string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin decline: %w", err)
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, markDeclinedQuery, p.QuoteID, p.At)
	if err != nil {
		return fmt.Errorf("mark quote declined: %w", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.BadRequest("This quote cannot be declined in its current state")
	}
	if err := r.inv.ReleaseQuote(ctx, tx, p.QuoteID, releaseReason); err != nil {
		return err
	}
	if err := insertEvent(ctx, tx, &p.Event); err != nil {
		return err
	}
	if p.Comment != nil {
		if err := insertComment(ctx, tx, p.Comment); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repository) Convert(ctx context.Context, quoteID, orgID uuid.UUID, at time.Time, event QuoteEvent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin convert: %w", err)
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, markConvertedQuery, quoteID, orgID, at)
	if err != nil {
		return fmt.Errorf("mark quote converted: %w", err)
	}
	if res.RowsAffected() == 0 {
		return r.staleStatusError(ctx, quoteID, orgID, "converted")
	}
	if err := insertEvent(ctx, tx, &event); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Expire moves a sent or viewed quote past its validity window and
// gives its stock back. It reports whether a transition happened;
// quotes already decided by the client are left alone.
func (r *Repository) Expire(ctx context.Context, quoteID, orgID uuid.UUID, at time.Time, event QuoteEvent) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin expire: %w", err)
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, markExpiredQuery, quoteID, orgID, at)
	if err != nil {
		return false, fmt.Errorf("mark quote expired: %w", err)
	}
	if res.RowsAffected() == 0 {
		return false, tx.Commit(ctx)
	}
	if err := r.inv.ReleaseQuote(ctx, tx, quoteID, "Quote expired"); err != nil {
		return false, err
	}
	if err := insertEvent(ctx, tx, &event); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// DeleteQuote releases any active reservations and removes the quote;
// items, events, comments, and tokens go with it via cascade.
func (r *Repository) DeleteQuote(ctx context.Context, quoteID, orgID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete quote: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.inv.ReleaseQuote(ctx, tx, quoteID, "Quote deleted"); err != nil {
		return err
	}
	res, err := tx.Exec(ctx, deleteQuoteQuery, quoteID, orgID)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("quote not found")
	}
	return tx.Commit(ctx)
}

// AddItem inserts a line, rewrites the quote totals, and when the quote
// is already out with the client, reserves stock for the new line in
// the same transaction.
func (r *Repository) AddItem(ctx context.Context, item *QuoteItem, totals Totals, updatedAt time.Time, reserve *inventory.ReservationItem, actorName string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin add item: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, insertItemQuery,
		item.ID, item.QuoteID, item.OrganizationID, item.ItemType,
		item.ProductID, item.ServiceID, item.WarehouseID,
		item.Name, item.Description, item.SKU,
		item.UnitPrice.String(), item.Quantity, item.DiscountPercent.String(), item.Subtotal.String(),
		item.SortOrder, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quote item: %w", err)
	}
	if err := applyTotals(ctx, tx, item.QuoteID, item.OrganizationID, totals, updatedAt); err != nil {
		return err
	}
	if reserve != nil {
		if err := r.inv.ReserveItem(ctx, tx, *reserve, actorName); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repository) UpdateItem(ctx context.Context, item *QuoteItem, totals Totals, updatedAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update item: %w", err)
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, updateItemQuery,
		item.ID, item.QuoteID, item.OrganizationID,
		item.Name, item.Description,
		item.UnitPrice.String(), item.Quantity, item.DiscountPercent.String(), item.Subtotal.String())
	if err != nil {
		return fmt.Errorf("update quote item: %w", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("quote item not found")
	}
	if err := applyTotals(ctx, tx, item.QuoteID, item.OrganizationID, totals, updatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteItem removes a line and, when the line held a reservation,
// releases just that hold.
func (r *Repository) DeleteItem(ctx context.Context, itemID, quoteID, orgID uuid.UUID, totals Totals, updatedAt time.Time, releaseReason string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete item: %w", err)
	}
	defer tx.Rollback(ctx)

	if releaseReason != "" {
		if err := r.inv.ReleaseItem(ctx, tx, itemID, releaseReason); err != nil {
			return err
		}
	}
	res, err := tx.Exec(ctx, deleteItemQuery, itemID, quoteID, orgID)
	if err != nil {
		return fmt.Errorf("delete quote item: %w", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("quote item not found")
	}
	if err := applyTotals(ctx, tx, quoteID, orgID, totals, updatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) CreateCommentWithEvent(ctx context.Context, c *QuoteComment, e *QuoteEvent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin comment: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertComment(ctx, tx, c); err != nil {
		return err
	}
	if err := insertEvent(ctx, tx, e); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) staleStatusError(ctx context.Context, quoteID, orgID uuid.UUID, action string) error {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM quotes WHERE id = $1 AND organization_id = $2`, quoteID, orgID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("quote not found")
	}
	return apperr.BadRequest(fmt.Sprintf("This quote cannot be %s in its current state", action))
}

func applyTotals(ctx context.Context, db execer, quoteID, orgID uuid.UUID, t Totals, updatedAt time.Time) error {
	_, err := db.Exec(ctx, updateTotalsQuery, quoteID, orgID,
		t.Subtotal.String(), t.DiscountAmount.String(), t.TaxAmount.String(), t.Total.String(), updatedAt)
	if err != nil {
		return fmt.Errorf("update quote totals: %w", err)
	}
	return nil
}

func insertEvent(ctx context.Context, db execer, e *QuoteEvent) error {
	_, err := db.Exec(ctx, insertEventQuery,
		e.ID, e.QuoteID, e.OrganizationID, e.EventType,
		e.ActorID, e.UserType, e.UserName, e.Metadata, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quote event: %w", err)
	}
	return nil
}

func insertComment(ctx context.Context, db execer, c *QuoteComment) error {
	_, err := db.Exec(ctx, insertCommentQuery,
		c.ID, c.QuoteID, c.OrganizationID, c.AuthorID,
		c.AuthorName, c.UserType, c.IsInternal, c.Body, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quote comment: %w", err)
	}
	return nil
}
