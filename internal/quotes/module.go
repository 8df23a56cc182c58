// Package quotes provides the quote lifecycle bounded context: drafts,
// items, sending with stock reservation, the public client surface, and
// expiry.
package quotes

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"stockquote_backend/internal/events"
	apphttp "stockquote_backend/internal/http"
	"stockquote_backend/internal/inventory"
	"stockquote_backend/internal/quotes/handler"
	"stockquote_backend/internal/quotes/repository"
	"stockquote_backend/internal/quotes/service"
	"stockquote_backend/platform/config"
	"stockquote_backend/platform/logger"
	"stockquote_backend/platform/validator"
)

// Module is the quotes bounded context module implementing http.Module.
type Module struct {
	handler       *handler.Handler
	publicHandler *handler.PublicHandler
	service       *service.Service
}

// NewModule creates the quotes module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, cfg config.QuoteConfig, bus events.Bus, sched service.ExpiryScheduler, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool, inventory.NewCoordinator())
	svc := service.New(repo, cfg, bus, sched, log)

	return &Module{
		handler:       handler.New(svc, val),
		publicHandler: handler.NewPublic(svc, val),
		service:       svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer for the expiry worker.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the authenticated and public quote routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/quotes"))
	m.publicHandler.RegisterRoutes(ctx.Public)
}

var _ apphttp.Module = (*Module)(nil)
