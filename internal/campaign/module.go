// Package campaign provides the call campaign bounded context module.
package campaign

import (
	"showings_backend/internal/campaign/handler"
	"showings_backend/internal/campaign/service"
	"showings_backend/internal/events"
	apphttp "showings_backend/internal/http"
	"showings_backend/internal/vapi"
	"showings_backend/platform/config"
	"showings_backend/platform/logger"
	"showings_backend/platform/validator"
)

// Config is the configuration surface the campaign module needs.
type Config interface {
	config.VapiConfig
	config.CampaignConfig
}

// Module is the campaign bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule wires the orchestrator. store may be nil when no database is
// configured; the gateway client is only built when credentials are present.
// Either absence turns the affected endpoints into 503s, not startup errors.
func NewModule(store service.LeadStore, bus events.Bus, cfg Config, val *validator.Validator, log *logger.Logger) *Module {
	var gateway service.Gateway
	if cfg.IsVapiEnabled() {
		gateway = vapi.NewClient(cfg, log)
	}

	svc := service.New(gateway, store, bus, cfg.GetMaxDispatchAttempts(), log)
	h := handler.New(svc, cfg, val)

	return &Module{handler: h, svc: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "campaign"
}

// RegisterRoutes mounts campaign routes. Call dispatch shares the stricter
// per-IP call limiter; the config lookup only needs the general limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	callGroup := ctx.API.Group("/call")
	callGroup.Use(ctx.CallRateLimiter.RateLimit())
	callGroup.POST("/phone", m.handler.CallPhone)
	callGroup.POST("/bulk", m.handler.CallBulk)

	ctx.API.GET("/vapi/config", m.handler.VapiPublicConfig)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
