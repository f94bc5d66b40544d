// Package service implements lead import and listing.
package service

import (
	"context"
	"fmt"

	"showings_backend/internal/events"
	"showings_backend/internal/leads/repository"
	"showings_backend/platform/apperr"
	"showings_backend/platform/logger"
)

// Store is the subset of the leads repository this service needs.
type Store interface {
	InsertBatch(ctx context.Context, params []repository.CreateLeadParams) ([]repository.Lead, error)
	List(ctx context.Context) ([]repository.Lead, error)
}

type Service struct {
	store Store
	bus   events.Bus
	log   *logger.Logger
}

// New builds the service. store is nil when no database is configured; the
// endpoints then stay mounted and report unavailable instead of vanishing.
func New(store Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log}
}

// Import inserts a batch of leads atomically. Rows were validated by the
// transport layer, so a failure here means the whole batch is rolled back.
func (s *Service) Import(ctx context.Context, params []repository.CreateLeadParams) ([]repository.Lead, error) {
	if s.store == nil {
		return nil, apperr.Unavailable("Database unavailable")
	}

	leads, err := s.store.InsertBatch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("import leads: %w", err)
	}

	s.log.Info("leads imported", "count", len(leads))
	s.bus.Publish(ctx, events.LeadsImported{BaseEvent: events.NewBaseEvent(), Count: len(leads)})

	return leads, nil
}

// List returns every stored lead.
func (s *Service) List(ctx context.Context) ([]repository.Lead, error) {
	if s.store == nil {
		return nil, apperr.Unavailable("Database unavailable")
	}
	return s.store.List(ctx)
}
