// Package catalog provides product, service, warehouse, and inventory
// level management.
package catalog

import (
	"stockquote_backend/internal/catalog/handler"
	"stockquote_backend/internal/catalog/repository"
	"stockquote_backend/internal/catalog/service"
	apphttp "stockquote_backend/internal/http"
	"stockquote_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new catalog module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the catalog routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterProductRoutes(ctx.Protected.Group("/products"))
	m.handler.RegisterServiceRoutes(ctx.Protected.Group("/services"))
	m.handler.RegisterWarehouseRoutes(ctx.Protected.Group("/warehouses"))
	m.handler.RegisterInventoryRoutes(ctx.Protected.Group("/inventory"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
