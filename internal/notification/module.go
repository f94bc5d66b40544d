// Package notification relays pipeline events to connected dashboards.
package notification

import (
	"context"

	"showings_backend/internal/events"
	apphttp "showings_backend/internal/http"
	"showings_backend/internal/notification/sse"
	"showings_backend/platform/logger"
)

// Module is the notification bounded context module implementing http.Module.
type Module struct {
	feed *sse.Service
}

// NewModule builds the SSE feed and subscribes it to the domain events the
// dashboard renders live.
func NewModule(bus events.Bus, log *logger.Logger) *Module {
	feed := sse.New(log)

	relay := func(eventType sse.EventType) events.Handler {
		return events.HandlerFunc(func(_ context.Context, event events.Event) error {
			feed.Broadcast(sse.Event{Type: eventType, Data: event})
			return nil
		})
	}

	bus.Subscribe(events.LeadsImported{}.EventName(), relay(sse.EventLeadsImported))
	bus.Subscribe(events.LeadUpdated{}.EventName(), relay(sse.EventLeadUpdated))
	bus.Subscribe(events.CallDispatched{}.EventName(), relay(sse.EventCallDispatched))
	bus.Subscribe(events.CallCompleted{}.EventName(), relay(sse.EventCallCompleted))

	return &Module{feed: feed}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// Close disconnects all feed clients.
func (m *Module) Close() {
	m.feed.Close()
}

// RegisterRoutes mounts the live event stream.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.GET("/events", m.feed.Handler())
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
