package webhook

import (
	"showings_backend/internal/events"
	apphttp "showings_backend/internal/http"
	"showings_backend/platform/logger"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule wires the reconciler. store may be nil when no database is
// configured; events are then acknowledged and dropped.
func NewModule(store Store, bus events.Bus, log *logger.Logger) *Module {
	svc := NewService(store, bus, log)
	return &Module{handler: NewHandler(svc, log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the webhook endpoint.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.POST("/webhook", m.handler.Receive)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
