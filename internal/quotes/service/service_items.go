package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockquote_backend/internal/inventory"
	"stockquote_backend/internal/quotes/domain"
	"stockquote_backend/internal/quotes/repository"
	"stockquote_backend/internal/quotes/transport"
	"stockquote_backend/platform/apperr"
)

// AddItem appends a line to a quote. Product and service lines snapshot
// the catalog name, sku, and price at add time. Adding a product line
// to a quote that is already with the client reserves its stock in the
// same transaction.
func (s *Service) AddItem(ctx context.Context, actor Actor, quoteID uuid.UUID, req transport.AddItemRequest) (*transport.ItemResponse, error) {
	q, err := s.repo.GetQuote(ctx, quoteID, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEditable(actor, q, "updated"); err != nil {
		return nil, err
	}

	items, err := s.repo.ListItems(ctx, quoteID, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &repository.QuoteItem{
		ID:              uuid.New(),
		QuoteID:         q.ID,
		OrganizationID:  q.OrganizationID,
		ItemType:        req.ItemType,
		Description:     req.Description,
		Quantity:        req.Quantity,
		DiscountPercent: decimal.Zero,
		SortOrder:       len(items),
		CreatedAt:       now,
	}
	if req.DiscountPercent != nil {
		d, err := parseAmount("discountPercent", req.DiscountPercent)
		if err != nil {
			return nil, err
		}
		item.DiscountPercent = d
	}

	switch req.ItemType {
	case "product":
		if req.ProductID == nil {
			return nil, apperr.Validation("productId is required for product items")
		}
		if req.WarehouseID == nil {
			return nil, apperr.Validation("warehouseId is required for product items")
		}
		ok, err := s.repo.WarehouseExists(ctx, *req.WarehouseID, actor.OrganizationID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.NotFound("warehouse not found")
		}
		snap, err := s.repo.GetProductSnapshot(ctx, *req.ProductID, actor.OrganizationID)
		if err != nil {
			return nil, err
		}
		if !snap.IsActive {
			return nil, apperr.Validation("product is no longer active")
		}
		item.ProductID = req.ProductID
		item.WarehouseID = req.WarehouseID
		item.Name = snap.Name
		item.SKU = snap.SKU
		item.UnitPrice = snap.UnitPrice
		if item.Description == nil {
			item.Description = snap.Description
		}
	case "service":
		if req.ServiceID == nil {
			return nil, apperr.Validation("serviceId is required for service items")
		}
		snap, err := s.repo.GetServiceSnapshot(ctx, *req.ServiceID, actor.OrganizationID)
		if err != nil {
			return nil, err
		}
		if !snap.IsActive {
			return nil, apperr.Validation("service is no longer active")
		}
		item.ServiceID = req.ServiceID
		item.Name = snap.Name
		item.UnitPrice = snap.UnitPrice
		if item.Description == nil {
			item.Description = snap.Description
		}
	case "custom":
		if req.Name == nil || *req.Name == "" {
			return nil, apperr.Validation("name is required for custom items")
		}
		price, err := parseAmount("unitPrice", req.UnitPrice)
		if err != nil {
			return nil, err
		}
		item.Name = *req.Name
		item.UnitPrice = price
	}

	// Custom lines may override the snapshot price.
	if req.ItemType != "custom" && req.UnitPrice != nil {
		price, err := parseAmount("unitPrice", req.UnitPrice)
		if err != nil {
			return nil, err
		}
		item.UnitPrice = price
	}
	item.Subtotal = LineSubtotal(LineInput{UnitPrice: item.UnitPrice, Quantity: item.Quantity, DiscountPercent: item.DiscountPercent})

	all := append(items, *item)
	totals := CalculateTotals(lineInputs(all), q.DiscountType, q.DiscountValue, q.TaxRate)

	var reserve *inventory.ReservationItem
	if item.ItemType == "product" && domain.Status(q.Status).ClientActionable() {
		reserve = &inventory.ReservationItem{
			QuoteItemID: item.ID,
			QuoteID:     q.ID,
			ProductID:   *item.ProductID,
			WarehouseID: *item.WarehouseID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
		}
	}

	if err := s.repo.AddItem(ctx, item, toRepoTotals(totals), now, reserve, actor.Email); err != nil {
		return nil, err
	}
	_ = s.recordEvent(ctx, q, "item_added", &actor.ID, "team", actor.Email, map[string]any{
		"itemId": item.ID.String(),
		"name":   item.Name,
	})

	resp := toItemResponse(item)
	return &resp, nil
}

// UpdateItem edits quantity, per-line discount, or description. Lines
// on a quote already sent to the client hold reservations sized at send
// time, so quantity edits are draft-only.
func (s *Service) UpdateItem(ctx context.Context, actor Actor, quoteID, itemID uuid.UUID, req transport.UpdateItemRequest) (*transport.ItemResponse, error) {
	q, err := s.repo.GetQuote(ctx, quoteID, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(actor, q); err != nil {
		return nil, err
	}
	if q.Status != string(domain.StatusDraft) {
		return nil, apperr.BadRequest("This quote cannot be updated in its current state")
	}

	item, err := s.repo.GetItem(ctx, itemID, quoteID, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.DiscountPercent != nil {
		d, err := parseAmount("discountPercent", req.DiscountPercent)
		if err != nil {
			return nil, err
		}
		item.DiscountPercent = d
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	item.Subtotal = LineSubtotal(LineInput{UnitPrice: item.UnitPrice, Quantity: item.Quantity, DiscountPercent: item.DiscountPercent})

	items, err := s.repo.ListItems(ctx, quoteID, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = *item
		}
	}
	totals := CalculateTotals(lineInputs(items), q.DiscountType, q.DiscountValue, q.TaxRate)

	now := time.Now().UTC()
	if err := s.repo.UpdateItem(ctx, item, toRepoTotals(totals), now); err != nil {
		return nil, err
	}
	_ = s.recordEvent(ctx, q, "item_updated", &actor.ID, "team", actor.Email, map[string]any{
		"itemId": item.ID.String(),
		"name":   item.Name,
	})

	resp := toItemResponse(item)
	return &resp, nil
}

// DeleteItem removes a line. When the line held an active reservation
// its stock goes back in the same transaction.
func (s *Service) DeleteItem(ctx context.Context, actor Actor, quoteID, itemID uuid.UUID) error {
	q, err := s.repo.GetQuote(ctx, quoteID, actor.OrganizationID)
	if err != nil {
		return err
	}
	if err := s.requireEditable(actor, q, "updated"); err != nil {
		return err
	}

	item, err := s.repo.GetItem(ctx, itemID, quoteID, actor.OrganizationID)
	if err != nil {
		return err
	}

	items, err := s.repo.ListItems(ctx, quoteID, actor.OrganizationID)
	if err != nil {
		return err
	}
	remaining := make([]repository.QuoteItem, 0, len(items))
	for _, it := range items {
		if it.ID != itemID {
			remaining = append(remaining, it)
		}
	}
	totals := CalculateTotals(lineInputs(remaining), q.DiscountType, q.DiscountValue, q.TaxRate)

	releaseReason := ""
	if item.ItemType == "product" && domain.Status(q.Status).ClientActionable() {
		releaseReason = "Item removed from quote"
	}

	now := time.Now().UTC()
	if err := s.repo.DeleteItem(ctx, itemID, quoteID, actor.OrganizationID, toRepoTotals(totals), now, releaseReason); err != nil {
		return err
	}
	_ = s.recordEvent(ctx, q, "item_removed", &actor.ID, "team", actor.Email, map[string]any{
		"itemId": itemID.String(),
		"name":   item.Name,
	})
	return nil
}

func toRepoTotals(t Totals) repository.Totals {
	return repository.Totals{
		Subtotal:       t.Subtotal,
		DiscountAmount: t.DiscountAmount,
		TaxAmount:      t.TaxAmount,
		Total:          t.Total,
	}
}
