package inventory

import (
	"strings"
	"testing"
)

func TestInsertReservationIsIdempotentPerItem(t *testing.T) {
	query := strings.ToLower(insertReservationQuery)

	if !strings.Contains(query, "on conflict (quote_item_id) where status = 'active' do nothing") {
		t.Fatal("expected the insert to no-op on an existing active reservation")
	}
}

func TestDecrementGuardsAvailableStock(t *testing.T) {
	query := strings.ToLower(decrementAvailableQuery)

	if !strings.Contains(query, "on_hand - reserved >= $3") {
		t.Fatal("expected the reserve update to check available stock in its where clause")
	}
}

func TestReleaseOnlyTouchesActiveReservations(t *testing.T) {
	for _, query := range []string{releaseLevelsQuery, releaseReservationsQuery, releaseItemLevelQuery, releaseItemReservationQuery} {
		if !strings.Contains(strings.ToLower(query), "status = 'active'") {
			t.Fatalf("expected release query to filter on active reservations: %s", query)
		}
	}
}

func TestReleaseQuoteSumsReservationsPerLevel(t *testing.T) {
	query := strings.ToLower(releaseLevelsQuery)

	// Two quote items can reserve the same (product, warehouse) pair.
	// UPDATE ... FROM uses at most one joining row per target row, so
	// the quantities must be aggregated before the join or all but one
	// reservation would leak into reserved forever.
	if !strings.Contains(query, "sum(quantity)") {
		t.Fatal("expected the release update to sum reservation quantities per level")
	}
	if !strings.Contains(query, "group by product_id, warehouse_id") {
		t.Fatal("expected the release update to group reservations by product and warehouse")
	}
	if !strings.Contains(query, "reserved = il.reserved - agg.quantity") {
		t.Fatal("expected the release update to subtract the aggregated quantity")
	}
}

func TestReleaseRecordsReason(t *testing.T) {
	for _, query := range []string{releaseReservationsQuery, releaseItemReservationQuery} {
		if !strings.Contains(strings.ToLower(query), "release_reason = $3") {
			t.Fatalf("expected release query to record the reason: %s", query)
		}
	}
}
