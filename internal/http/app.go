// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"stockquote_backend/internal/events"
	"stockquote_backend/platform/config"
	"stockquote_backend/platform/logger"
)

// RouterConfig is the slice of configuration the router needs: the HTTP
// settings plus the JWT settings for the auth middleware.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker is what the readiness endpoint pings, in practice the
// database pool.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App carries the fully initialized dependencies from the composition
// root in main.go into the router.
type App struct {
	Config RouterConfig
	Logger *logger.Logger
	// Health backs the readiness check.
	Health HealthChecker
	// EventBus is the in-process bus modules publish domain events on.
	EventBus events.Bus
	// Modules are the HTTP-facing feature modules, mounted in order.
	Modules []Module
}
