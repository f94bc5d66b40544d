// Package router assembles the Gin engine from the application's modules.
package router

import (
	"context"
	"time"

	apphttp "showings_backend/internal/http"
	"showings_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// New builds the HTTP engine: shared middleware, the health endpoint, and
// every module's routes under /api.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(corsMiddleware(app))

	// General limiter mirrors the upstream dashboard's 1000 requests
	// per 15 minutes; call routes get their own stricter limiter.
	generalLimiter := httpkit.NewIPRateLimiter(rate.Limit(1000.0/900.0), 100, app.Logger)
	callLimiter := httpkit.NewCallRateLimiter(app.Logger)

	api := engine.Group("/api")
	api.Use(generalLimiter.RateLimit())

	api.GET("/health", healthHandler(app))

	ctx := &apphttp.RouterContext{
		Engine:          engine,
		API:             api,
		CallRateLimiter: callLimiter,
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(ctx)
		app.Logger.Info("module routes registered", "module", module.Name())
	}

	return engine
}

func corsMiddleware(app *apphttp.App) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: app.Config.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if app.Config.GetCORSAllowAll() {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = app.Config.GetCORSOrigins()
	}
	return cors.New(corsConfig)
}

// healthHandler reports per-service availability the way the dashboard
// expects: the endpoint itself always answers 200, services degrade
// individually.
func healthHandler(app *apphttp.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		database := "unavailable"
		if app.Health != nil {
			pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := app.Health.Ping(pingCtx); err == nil {
				database = "available"
			}
		}

		vapi := "unavailable"
		if app.Config.IsVapiEnabled() {
			vapi = "available"
		}

		httpkit.OK(c, gin.H{
			"services": gin.H{
				"vapi":     vapi,
				"database": database,
			},
		})
	}
}
