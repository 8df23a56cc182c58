// Package crm provides company and client management.
package crm

import (
	"stockquote_backend/internal/crm/handler"
	"stockquote_backend/internal/crm/repository"
	"stockquote_backend/internal/crm/service"
	apphttp "stockquote_backend/internal/http"
	"stockquote_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the crm bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new crm module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "crm"
}

// Service returns the service layer for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the crm routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterCompanyRoutes(ctx.Protected.Group("/companies"))
	m.handler.RegisterClientRoutes(ctx.Protected.Group("/clients"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
