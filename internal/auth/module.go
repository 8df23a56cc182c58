// Package auth provides the authentication bounded context module.
package auth

import (
	"stockquote_backend/internal/auth/handler"
	"stockquote_backend/internal/auth/repository"
	"stockquote_backend/internal/auth/service"
	"stockquote_backend/internal/events"
	apphttp "stockquote_backend/internal/http"
	"stockquote_backend/platform/config"
	"stockquote_backend/platform/logger"
	"stockquote_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, eventBus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, eventBus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter)
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.GET("/auth/me", m.handler.GetMe)
	ctx.Protected.GET("/members", m.handler.ListMembers)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
