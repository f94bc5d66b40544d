// Package webhook reconciles asynchronous call outcomes back onto leads.
package webhook

import (
	"context"
	"errors"
	"fmt"

	"showings_backend/internal/events"
	"showings_backend/internal/leads/domain"
	"showings_backend/internal/leads/repository"
	"showings_backend/platform/logger"
	"showings_backend/platform/phone"

	"github.com/google/uuid"
)

const eventCallEnded = "call-ended"

const (
	reasonCompleted = "Call completed"
	reasonFailed    = "Call failed"
)

// Event is the call outcome payload delivered by the voice gateway.
type Event struct {
	Type           string
	CallID         string
	Confirmed      *bool
	Status         string
	Date           string
	CustomerNumber string
	Error          string
}

// Store is the subset of the leads repository the reconciler needs.
type Store interface {
	GetByCallID(ctx context.Context, callID string) (repository.Lead, error)
	GetByPhoneDigits(ctx context.Context, digits string) (repository.Lead, error)
	ApplyOutcome(ctx context.Context, id uuid.UUID, outcome repository.Outcome) error
}

type Service struct {
	store Store
	bus   events.Bus
	log   *logger.Logger
}

func NewService(store Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log}
}

// Reconcile applies a gateway event to the matching lead. It only mutates
// on call-ended events and treats an unmatched event as a logged no-op so
// the endpoint can always acknowledge the gateway. The update is a full
// overwrite, which keeps redeliveries idempotent.
func (s *Service) Reconcile(ctx context.Context, event Event) error {
	if event.Type != eventCallEnded {
		s.log.WebhookEvent(event.Type, event.CallID, false)
		return nil
	}
	if s.store == nil {
		return errors.New("no lead store configured")
	}

	lead, found, err := s.findLead(ctx, event)
	if err != nil {
		return err
	}
	if !found {
		s.log.WebhookEvent(event.Type, event.CallID, false)
		return nil
	}

	next := resolveStatus(event)
	if !domain.CanTransition(lead.Status, next) {
		s.log.Warn("webhook outcome ignored, illegal status transition",
			"leadId", lead.ID, "from", lead.Status, "to", next, "callId", event.CallID)
		return nil
	}

	outcome := repository.Outcome{
		Status:      next,
		ShowingDate: optional(event.Date),
		Reason:      optional(resolveReason(event, next)),
	}
	if err := s.store.ApplyOutcome(ctx, lead.ID, outcome); err != nil {
		return fmt.Errorf("apply call outcome: %w", err)
	}

	s.log.WebhookEvent(event.Type, event.CallID, true)
	s.publish(ctx, lead, event, outcome)
	return nil
}

// findLead resolves the event's target. The call id recorded at dispatch
// time is the primary key; the destination phone number is the fallback for
// events that predate the recorded id or omit it.
func (s *Service) findLead(ctx context.Context, event Event) (repository.Lead, bool, error) {
	if event.CallID != "" {
		lead, err := s.store.GetByCallID(ctx, event.CallID)
		if err == nil {
			return lead, true, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, false, fmt.Errorf("lookup lead by call id: %w", err)
		}
	}

	digits := phone.Digits(event.CustomerNumber)
	if digits == "" {
		return repository.Lead{}, false, nil
	}
	lead, err := s.store.GetByPhoneDigits(ctx, digits)
	if errors.Is(err, repository.ErrNotFound) {
		// leads imported with a leading country code match bare digits too
		if len(digits) == 11 && digits[0] == '1' {
			lead, err = s.store.GetByPhoneDigits(ctx, digits[1:])
		}
	}
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, false, nil
	}
	if err != nil {
		return repository.Lead{}, false, fmt.Errorf("lookup lead by phone: %w", err)
	}
	return lead, true, nil
}

// resolveStatus picks the new status: an explicit status field wins, then
// the confirmed flag decides between confirmed and failed.
func resolveStatus(event Event) domain.Status {
	if event.Status != "" && domain.Status(event.Status).Valid() {
		return domain.Status(event.Status)
	}
	if event.Confirmed != nil && *event.Confirmed {
		return domain.StatusConfirmed
	}
	return domain.StatusFailed
}

func resolveReason(event Event, status domain.Status) string {
	if event.Error != "" {
		return event.Error
	}
	if status == domain.StatusConfirmed {
		return reasonCompleted
	}
	return reasonFailed
}

func (s *Service) publish(ctx context.Context, lead repository.Lead, event Event, outcome repository.Outcome) {
	reason := ""
	if outcome.Reason != nil {
		reason = *outcome.Reason
	}

	s.bus.Publish(ctx, events.CallCompleted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Phone:     lead.Phone,
		CallID:    event.CallID,
		Status:    string(outcome.Status),
		Confirmed: outcome.Status == domain.StatusConfirmed,
	})
	s.bus.Publish(ctx, events.LeadUpdated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Phone:     lead.Phone,
		Status:    string(outcome.Status),
		Reason:    reason,
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
