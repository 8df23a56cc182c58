package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockquote_backend/internal/quotes/repository"
	"stockquote_backend/internal/quotes/transport"
	"stockquote_backend/platform/apperr"
)

func TestAddItemProductRequiresWarehouse(t *testing.T) {
	orgID := uuid.New()
	actor := adminActor(orgID)
	store := &testStore{quote: testQuote(orgID, actor.ID, "draft")}
	svc, _ := newTestService(store)

	productID := uuid.New()
	_, err := svc.AddItem(context.Background(), actor, store.quote.ID, transport.AddItemRequest{
		ItemType:  "product",
		ProductID: &productID,
		Quantity:  1,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddItemUnknownWarehouse(t *testing.T) {
	orgID := uuid.New()
	actor := adminActor(orgID)
	store := &testStore{quote: testQuote(orgID, actor.ID, "draft")}
	svc, _ := newTestService(store)

	productID := uuid.New()
	warehouseID := uuid.New()
	_, err := svc.AddItem(context.Background(), actor, store.quote.ID, transport.AddItemRequest{
		ItemType:    "product",
		ProductID:   &productID,
		WarehouseID: &warehouseID,
		Quantity:    1,
	})
	assertNotFound(t, err, "warehouse not found")
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	orgID := uuid.New()
	actor := adminActor(orgID)
	store := &testStore{
		quote:       testQuote(orgID, actor.ID, "draft"),
		warehouseOK: true,
		productSnap: &repository.CatalogSnapshot{ID: uuid.New(), Name: "Pallet Rack", UnitPrice: decimal.NewFromInt(100)},
	}
	svc, _ := newTestService(store)

	productID := uuid.New()
	warehouseID := uuid.New()
	_, err := svc.AddItem(context.Background(), actor, store.quote.ID, transport.AddItemRequest{
		ItemType:    "product",
		ProductID:   &productID,
		WarehouseID: &warehouseID,
		Quantity:    1,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != "product is no longer active" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestAddItemSnapshotsCatalogFields(t *testing.T) {
	orgID := uuid.New()
	actor := adminActor(orgID)
	sku := "RACK-01"
	store := &testStore{
		quote:       testQuote(orgID, actor.ID, "draft"),
		warehouseOK: true,
		productSnap: &repository.CatalogSnapshot{
			ID:        uuid.New(),
			Name:      "Pallet Rack",
			SKU:       &sku,
			UnitPrice: decimal.NewFromInt(100),
			IsActive:  true,
		},
	}
	svc, _ := newTestService(store)

	productID := uuid.New()
	warehouseID := uuid.New()
	resp, err := svc.AddItem(context.Background(), actor, store.quote.ID, transport.AddItemRequest{
		ItemType:    "product",
		ProductID:   &productID,
		WarehouseID: &warehouseID,
		Quantity:    2,
	})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if resp.Name != "Pallet Rack" || resp.SKU == nil || *resp.SKU != sku {
		t.Fatalf("expected catalog snapshot on the line, got %+v", resp)
	}
	if resp.Subtotal != "200.00" {
		t.Fatalf("expected line subtotal 200.00, got %q", resp.Subtotal)
	}
	if store.addedReserve != nil {
		t.Fatal("a draft quote must not reserve stock")
	}
}

func TestAddItemReservesWhenQuoteIsOut(t *testing.T) {
	orgID := uuid.New()
	actor := adminActor(orgID)
	store := &testStore{
		quote:       testQuote(orgID, actor.ID, "sent"),
		warehouseOK: true,
		productSnap: &repository.CatalogSnapshot{
			ID:        uuid.New(),
			Name:      "Pallet Rack",
			UnitPrice: decimal.NewFromInt(100),
			IsActive:  true,
		},
	}
	svc, _ := newTestService(store)

	productID := uuid.New()
	warehouseID := uuid.New()
	if _, err := svc.AddItem(context.Background(), actor, store.quote.ID, transport.AddItemRequest{
		ItemType:    "product",
		ProductID:   &productID,
		WarehouseID: &warehouseID,
		Quantity:    4,
	}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if store.addedReserve == nil {
		t.Fatal("expected a reservation for a product line on a sent quote")
	}
	if store.addedReserve.Quantity != 4 {
		t.Fatalf("expected reservation quantity 4, got %d", store.addedReserve.Quantity)
	}
}

func TestAddItemCustomRequiresName(t *testing.T) {
	orgID := uuid.New()
	actor := adminActor(orgID)
	store := &testStore{quote: testQuote(orgID, actor.ID, "draft")}
	svc, _ := newTestService(store)

	_, err := svc.AddItem(context.Background(), actor, store.quote.ID, transport.AddItemRequest{
		ItemType: "custom",
		Quantity: 1,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateItemDraftOnly(t *testing.T) {
	orgID := uuid.New()
	actor := adminActor(orgID)
	q := testQuote(orgID, actor.ID, "sent")
	line := productLine(q.ID, 2)
	store := &testStore{quote: q, items: []repository.QuoteItem{line}}
	svc, _ := newTestService(store)

	qty := 5
	_, err := svc.UpdateItem(context.Background(), actor, q.ID, line.ID, transport.UpdateItemRequest{Quantity: &qty})
	assertBadRequest(t, err, "This quote cannot be updated in its current state")
}

func TestUpdateItemRecomputesLine(t *testing.T) {
	orgID := uuid.New()
	actor := adminActor(orgID)
	q := testQuote(orgID, actor.ID, "draft")
	line := productLine(q.ID, 2)
	store := &testStore{quote: q, items: []repository.QuoteItem{line}}
	svc, _ := newTestService(store)

	qty := 5
	resp, err := svc.UpdateItem(context.Background(), actor, q.ID, line.ID, transport.UpdateItemRequest{Quantity: &qty})
	if err != nil {
		t.Fatalf("update item failed: %v", err)
	}
	if resp.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", resp.Quantity)
	}
	if resp.Subtotal != "500.00" {
		t.Fatalf("expected recomputed subtotal 500.00, got %q", resp.Subtotal)
	}
}

func TestDeleteItemReleasesReservationWhenQuoteIsOut(t *testing.T) {
	orgID := uuid.New()
	actor := adminActor(orgID)
	q := testQuote(orgID, actor.ID, "viewed")
	line := productLine(q.ID, 2)
	store := &testStore{quote: q, items: []repository.QuoteItem{line}}
	svc, _ := newTestService(store)

	if err := svc.DeleteItem(context.Background(), actor, q.ID, line.ID); err != nil {
		t.Fatalf("delete item failed: %v", err)
	}
	if !store.itemDeleted {
		t.Fatal("expected the item to be deleted")
	}
	if store.itemReleaseReason != "Item removed from quote" {
		t.Fatalf("expected the reservation release reason, got %q", store.itemReleaseReason)
	}
}

func TestDeleteItemOnDraftDoesNotRelease(t *testing.T) {
	orgID := uuid.New()
	actor := adminActor(orgID)
	q := testQuote(orgID, actor.ID, "draft")
	line := productLine(q.ID, 2)
	store := &testStore{quote: q, items: []repository.QuoteItem{line}}
	svc, _ := newTestService(store)

	if err := svc.DeleteItem(context.Background(), actor, q.ID, line.ID); err != nil {
		t.Fatalf("delete item failed: %v", err)
	}
	if store.itemReleaseReason != "" {
		t.Fatalf("a draft line holds no reservation, got release reason %q", store.itemReleaseReason)
	}
}
