// Package inventory implements warehouse stock reservations for quote
// line items. Reserve and release always run inside the caller's
// transaction so a quote transition and its stock effects commit or
// roll back together.
package inventory

import (
	"context"
	"fmt"
	"time"

	"stockquote_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReservationItem describes one quote item that needs stock held.
type ReservationItem struct {
	QuoteItemID uuid.UUID
	QuoteID     uuid.UUID
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	ProductName string
	Quantity    int
}

const insertReservationQuery = `
	INSERT INTO inventory_reservations
		(id, quote_item_id, quote_id, product_id, warehouse_id, quantity, status, reserved_by, reserved_at)
	VALUES ($1, $2, $3, $4, $5, $6, 'active', $7, $8)
	ON CONFLICT (quote_item_id) WHERE status = 'active' DO NOTHING`

// The conditional UPDATE is the concurrency control: two transactions
// racing for the same stock cannot both pass the on_hand - reserved
// check, so available quantity never goes negative.
const decrementAvailableQuery = `
	UPDATE inventory_levels
	SET reserved = reserved + $3, updated_at = $4
	WHERE product_id = $1 AND warehouse_id = $2
		AND on_hand - reserved >= $3`

// A quote may hold several active reservations for the same
// (product, warehouse) pair, so the per-pair quantities are summed
// before joining. UPDATE ... FROM applies only one joining row per
// target row, which would drop all but one reservation otherwise.
const releaseLevelsQuery = `
	UPDATE inventory_levels il
	SET reserved = il.reserved - agg.quantity, updated_at = $2
	FROM (
		SELECT product_id, warehouse_id, SUM(quantity) AS quantity
		FROM inventory_reservations
		WHERE quote_id = $1 AND status = 'active'
		GROUP BY product_id, warehouse_id
	) agg
	WHERE il.product_id = agg.product_id AND il.warehouse_id = agg.warehouse_id`

const releaseReservationsQuery = `
	UPDATE inventory_reservations
	SET status = 'released', released_at = $2, release_reason = $3
	WHERE quote_id = $1 AND status = 'active'`

// Coordinator performs reservation bookkeeping against inventory_levels
// and inventory_reservations.
type Coordinator struct{}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// ReserveItem holds the item's quantity at its (product, warehouse)
// pair. Calling it twice for the same quote item is a no-op: the first
// active reservation wins and no additional stock is held. Insufficient
// stock fails loudly with a conflict, never a silent clamp.
func (c *Coordinator) ReserveItem(ctx context.Context, tx pgx.Tx, item ReservationItem, actorName string) error {
	if item.Quantity <= 0 {
		return apperr.Validation("reservation quantity must be positive")
	}

	now := time.Now()
	result, err := tx.Exec(ctx, insertReservationQuery,
		uuid.New(), item.QuoteItemID, item.QuoteID, item.ProductID, item.WarehouseID,
		item.Quantity, actorName, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Already reserved for this quote item.
		return nil
	}

	result, err = tx.Exec(ctx, decrementAvailableQuery, item.ProductID, item.WarehouseID, item.Quantity, now)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.Conflict(fmt.Sprintf("Insufficient inventory for %s", item.ProductName))
	}
	return nil
}

const releaseItemLevelQuery = `
	UPDATE inventory_levels il
	SET reserved = il.reserved - r.quantity, updated_at = $2
	FROM inventory_reservations r
	WHERE r.quote_item_id = $1 AND r.status = 'active'
		AND il.product_id = r.product_id AND il.warehouse_id = r.warehouse_id`

const releaseItemReservationQuery = `
	UPDATE inventory_reservations
	SET status = 'released', released_at = $2, release_reason = $3
	WHERE quote_item_id = $1 AND status = 'active'`

// ReleaseItem releases the active reservation for a single quote item,
// if any. Used when an item is removed from an already-sent quote.
func (c *Coordinator) ReleaseItem(ctx context.Context, tx pgx.Tx, quoteItemID uuid.UUID, reason string) error {
	now := time.Now()
	if _, err := tx.Exec(ctx, releaseItemLevelQuery, quoteItemID, now); err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
	}
	if _, err := tx.Exec(ctx, releaseItemReservationQuery, quoteItemID, now, reason); err != nil {
		return fmt.Errorf("failed to close reservation: %w", err)
	}
	return nil
}

// ReleaseQuote releases every active reservation held by the quote and
// returns the quantities to available stock. A quote with no active
// reservations is a no-op, not an error.
func (c *Coordinator) ReleaseQuote(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, reason string) error {
	now := time.Now()
	if _, err := tx.Exec(ctx, releaseLevelsQuery, quoteID, now); err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
	}
	if _, err := tx.Exec(ctx, releaseReservationsQuery, quoteID, now, reason); err != nil {
		return fmt.Errorf("failed to close reservations: %w", err)
	}
	return nil
}
