// Package service implements catalog management: products, services,
// warehouses, and inventory levels.
package service

import (
	"context"
	"strings"
	"time"

	"stockquote_backend/internal/catalog/repository"
	"stockquote_backend/internal/catalog/transport"
	"stockquote_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	msgProductReferenced  = "Cannot delete product with existing quote items. Remove them first."
	msgProductReserved    = "Cannot delete product with active inventory reservations."
	msgServiceReferenced  = "Cannot delete service with existing quote items. Remove them first."
	msgWarehouseHasLevels = "Cannot delete warehouse with stocked inventory."
	msgInvalidUnitPrice   = "invalid unit price"
	msgNegativeUnitPrice  = "unit price cannot be negative"
)

type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, apperr.Validation(msgInvalidUnitPrice)
	}
	if price.IsNegative() {
		return decimal.Zero, apperr.Validation(msgNegativeUnitPrice)
	}
	return price, nil
}

// ── Products ──────────────────────────────────────────────────────────────────

func (s *Service) CreateProduct(ctx context.Context, tenantID uuid.UUID, req transport.CreateProductRequest) (*transport.ProductResponse, error) {
	price, err := parsePrice(req.UnitPrice)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	product := repository.Product{
		ID:             uuid.New(),
		OrganizationID: tenantID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		SKU:            strings.TrimSpace(req.SKU),
		UnitPrice:      price,
		IsActive:       active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateProduct(ctx, &product); err != nil {
		return nil, err
	}
	return productResponse(&product), nil
}

func (s *Service) GetProduct(ctx context.Context, id, tenantID uuid.UUID) (*transport.ProductResponse, error) {
	product, err := s.repo.GetProduct(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	return productResponse(product), nil
}

func (s *Service) ListProducts(ctx context.Context, tenantID uuid.UUID, search string) ([]transport.ProductResponse, error) {
	products, err := s.repo.ListProducts(ctx, tenantID, search)
	if err != nil {
		return nil, err
	}
	out := make([]transport.ProductResponse, len(products))
	for i := range products {
		out[i] = *productResponse(&products[i])
	}
	return out, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id, tenantID uuid.UUID, req transport.UpdateProductRequest) (*transport.ProductResponse, error) {
	product, err := s.repo.GetProduct(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.SKU != nil {
		product.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.UnitPrice != nil {
		price, err := parsePrice(*req.UnitPrice)
		if err != nil {
			return nil, err
		}
		product.UnitPrice = price
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.UpdatedAt = time.Now()

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return productResponse(product), nil
}

func (s *Service) DeleteProduct(ctx context.Context, id, tenantID uuid.UUID) error {
	if _, err := s.repo.GetProduct(ctx, id, tenantID); err != nil {
		return err
	}
	refs, err := s.repo.CountProductQuoteItems(ctx, id, tenantID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return apperr.Conflict(msgProductReferenced)
	}
	reserved, err := s.repo.SumProductReservations(ctx, id)
	if err != nil {
		return err
	}
	if reserved > 0 {
		return apperr.Conflict(msgProductReserved)
	}
	return s.repo.DeleteProduct(ctx, id, tenantID)
}

// ── Services ──────────────────────────────────────────────────────────────────

func (s *Service) CreateService(ctx context.Context, tenantID uuid.UUID, req transport.CreateServiceRequest) (*transport.ServiceResponse, error) {
	price, err := parsePrice(req.UnitPrice)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	svc := repository.ServiceItem{
		ID:             uuid.New(),
		OrganizationID: tenantID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		UnitPrice:      price,
		IsActive:       active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateService(ctx, &svc); err != nil {
		return nil, err
	}
	return serviceResponse(&svc), nil
}

func (s *Service) GetService(ctx context.Context, id, tenantID uuid.UUID) (*transport.ServiceResponse, error) {
	svc, err := s.repo.GetService(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	return serviceResponse(svc), nil
}

func (s *Service) ListServices(ctx context.Context, tenantID uuid.UUID) ([]transport.ServiceResponse, error) {
	services, err := s.repo.ListServices(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.ServiceResponse, len(services))
	for i := range services {
		out[i] = *serviceResponse(&services[i])
	}
	return out, nil
}

func (s *Service) UpdateService(ctx context.Context, id, tenantID uuid.UUID, req transport.UpdateServiceRequest) (*transport.ServiceResponse, error) {
	svc, err := s.repo.GetService(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		svc.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		svc.Description = req.Description
	}
	if req.UnitPrice != nil {
		price, err := parsePrice(*req.UnitPrice)
		if err != nil {
			return nil, err
		}
		svc.UnitPrice = price
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	svc.UpdatedAt = time.Now()

	if err := s.repo.UpdateService(ctx, svc); err != nil {
		return nil, err
	}
	return serviceResponse(svc), nil
}

func (s *Service) DeleteService(ctx context.Context, id, tenantID uuid.UUID) error {
	if _, err := s.repo.GetService(ctx, id, tenantID); err != nil {
		return err
	}
	refs, err := s.repo.CountServiceQuoteItems(ctx, id, tenantID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return apperr.Conflict(msgServiceReferenced)
	}
	return s.repo.DeleteService(ctx, id, tenantID)
}

// ── Warehouses & inventory ────────────────────────────────────────────────────

func (s *Service) CreateWarehouse(ctx context.Context, tenantID uuid.UUID, req transport.CreateWarehouseRequest) (*transport.WarehouseResponse, error) {
	wh := repository.Warehouse{
		ID:             uuid.New(),
		OrganizationID: tenantID,
		Name:           strings.TrimSpace(req.Name),
		Code:           strings.ToUpper(strings.TrimSpace(req.Code)),
		CreatedAt:      time.Now(),
	}
	if err := s.repo.CreateWarehouse(ctx, &wh); err != nil {
		return nil, err
	}
	return warehouseResponse(&wh), nil
}

func (s *Service) ListWarehouses(ctx context.Context, tenantID uuid.UUID) ([]transport.WarehouseResponse, error) {
	warehouses, err := s.repo.ListWarehouses(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.WarehouseResponse, len(warehouses))
	for i := range warehouses {
		out[i] = *warehouseResponse(&warehouses[i])
	}
	return out, nil
}

func (s *Service) DeleteWarehouse(ctx context.Context, id, tenantID uuid.UUID) error {
	levels, err := s.repo.ListLevelsByWarehouse(ctx, id, tenantID)
	if err != nil {
		return err
	}
	for _, l := range levels {
		if l.OnHand > 0 || l.Reserved > 0 {
			return apperr.Conflict(msgWarehouseHasLevels)
		}
	}
	return s.repo.DeleteWarehouse(ctx, id, tenantID)
}

func (s *Service) ListInventory(ctx context.Context, warehouseID, tenantID uuid.UUID) ([]transport.InventoryLevelResponse, error) {
	if _, err := s.repo.GetWarehouse(ctx, warehouseID, tenantID); err != nil {
		return nil, err
	}
	levels, err := s.repo.ListLevelsByWarehouse(ctx, warehouseID, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.InventoryLevelResponse, len(levels))
	for i, l := range levels {
		out[i] = transport.InventoryLevelResponse{
			ProductID:   l.ProductID,
			WarehouseID: l.WarehouseID,
			OnHand:      l.OnHand,
			Reserved:    l.Reserved,
			Available:   l.OnHand - l.Reserved,
			UpdatedAt:   l.UpdatedAt,
		}
	}
	return out, nil
}

// SetLevel initializes the stock level for a product at a warehouse.
func (s *Service) SetLevel(ctx context.Context, tenantID uuid.UUID, req transport.SetLevelRequest) error {
	if _, err := s.repo.GetProduct(ctx, req.ProductID, tenantID); err != nil {
		return err
	}
	if _, err := s.repo.GetWarehouse(ctx, req.WarehouseID, tenantID); err != nil {
		return err
	}
	return s.repo.UpsertLevel(ctx, req.ProductID, req.WarehouseID, req.OnHand)
}

// Adjust changes on-hand stock by a delta, never below reserved.
func (s *Service) Adjust(ctx context.Context, tenantID uuid.UUID, req transport.AdjustInventoryRequest) error {
	if _, err := s.repo.GetWarehouse(ctx, req.WarehouseID, tenantID); err != nil {
		return err
	}
	return s.repo.AdjustOnHand(ctx, req.ProductID, req.WarehouseID, tenantID, req.Delta)
}

func productResponse(p *repository.Product) *transport.ProductResponse {
	return &transport.ProductResponse{
		ID: p.ID, Name: p.Name, Description: p.Description, SKU: p.SKU,
		UnitPrice: p.UnitPrice.StringFixed(2), IsActive: p.IsActive,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func serviceResponse(s *repository.ServiceItem) *transport.ServiceResponse {
	return &transport.ServiceResponse{
		ID: s.ID, Name: s.Name, Description: s.Description,
		UnitPrice: s.UnitPrice.StringFixed(2), IsActive: s.IsActive,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

func warehouseResponse(w *repository.Warehouse) *transport.WarehouseResponse {
	return &transport.WarehouseResponse{ID: w.ID, Name: w.Name, Code: w.Code, CreatedAt: w.CreatedAt}
}
