// Package leads provides the lead management bounded context module.
package leads

import (
	"showings_backend/internal/events"
	apphttp "showings_backend/internal/http"
	"showings_backend/internal/leads/handler"
	"showings_backend/internal/leads/repository"
	"showings_backend/internal/leads/service"
	"showings_backend/platform/logger"
	"showings_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
	svc     *service.Service
}

// NewModule creates and initializes the leads module with all its
// dependencies. pool may be nil when no database is configured; the routes
// stay mounted and answer 503 so the absence is never a silent 404.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	var repo *repository.Repository
	var store service.Store
	if pool != nil {
		repo = repository.New(pool)
		store = repo
	}

	svc := service.New(store, eventBus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		repo:    repo,
		svc:     svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Repository exposes the leads repository for modules that reconcile or
// dispatch against stored leads. It is nil when no database is configured.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leadsGroup := ctx.API.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
