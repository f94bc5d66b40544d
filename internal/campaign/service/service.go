// Package service implements the campaign orchestrator: turning a dispatch
// request into gateway calls and immediate lead status updates.
package service

import (
	"context"
	"fmt"

	"showings_backend/internal/events"
	"showings_backend/internal/leads/domain"
	"showings_backend/internal/leads/repository"
	"showings_backend/internal/vapi"
	"showings_backend/platform/apperr"
	"showings_backend/platform/logger"
	"showings_backend/platform/phone"

	"github.com/google/uuid"
)

const defaultPersona = "Sarah from Horizon Realty"

// Gateway places outbound calls. A nil error means accepted for dialing.
type Gateway interface {
	PlaceCall(ctx context.Context, params vapi.PlaceCallParams) (*vapi.Call, error)
}

// LeadStore is the subset of the leads repository the orchestrator needs.
type LeadStore interface {
	List(ctx context.Context) ([]repository.Lead, error)
	GetByPhoneDigits(ctx context.Context, digits string) (repository.Lead, error)
	MarkDispatched(ctx context.Context, id uuid.UUID, callID string) error
	RecordDispatchFailure(ctx context.Context, id uuid.UUID, reason string) error
}

// Candidate is one lead considered for dispatch. ID is uuid.Nil when the
// caller supplied the lead inline and it could not be matched to the store.
type Candidate struct {
	ID             uuid.UUID
	Name           string
	Phone          string
	PreferredTime  string
	ShowingAddress string
	Status         domain.Status
	Attempts       int
}

// Settings are campaign options forwarded to the assistant configuration.
// They do not change how dispatch itself runs.
type Settings struct {
	AgentPersonality   string
	CallDelay          int
	MaxConcurrentCalls int
}

// Result is the per-lead outcome of a dispatch run.
type Result struct {
	Phone   string `json:"phone"`
	Success bool   `json:"success"`
	CallID  string `json:"callId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ShowingDetails describe the appointment a single call is about.
type ShowingDetails struct {
	Name    string
	Address string
	Date    string
	Time    string
}

// SingleDispatch is the input to a one-off call.
type SingleDispatch struct {
	PhoneNumber string
	AssistantID string
	Details     ShowingDetails
}

type Service struct {
	gateway     Gateway
	store       LeadStore
	bus         events.Bus
	log         *logger.Logger
	maxAttempts int
}

// New builds the orchestrator. gateway is nil when the voice service is not
// configured and store is nil when no database is configured; operations
// report those as unavailable instead of failing at startup.
func New(gateway Gateway, store LeadStore, bus events.Bus, maxAttempts int, log *logger.Logger) *Service {
	return &Service{
		gateway:     gateway,
		store:       store,
		bus:         bus,
		log:         log,
		maxAttempts: maxAttempts,
	}
}

// DispatchBulk runs a campaign over the given candidates, or over every
// stored lead when candidates is empty. Dispatch is sequential and
// best-effort: one lead's failure never aborts the rest.
func (s *Service) DispatchBulk(ctx context.Context, candidates []Candidate, settings Settings) ([]Result, error) {
	if s.gateway == nil {
		return nil, apperr.Unavailable("Vapi service unavailable")
	}

	if len(candidates) == 0 {
		loaded, err := s.loadCandidates(ctx)
		if err != nil {
			return nil, err
		}
		candidates = loaded
	}

	selected := s.selectDispatchable(candidates)
	if len(selected) == 0 {
		s.log.Info("bulk dispatch found nothing to do", "considered", len(candidates))
		return []Result{}, nil
	}

	results := make([]Result, 0, len(selected))
	for _, candidate := range selected {
		results = append(results, s.dispatchOne(ctx, candidate, settings))
	}

	return results, nil
}

// DispatchSingle places one call for a phone number. When a stored lead
// matches the number, its status gates the call and is updated on success.
func (s *Service) DispatchSingle(ctx context.Context, input SingleDispatch) (Result, error) {
	if s.gateway == nil {
		return Result{}, apperr.Unavailable("Vapi service unavailable")
	}

	normalized := phone.NormalizeDial(input.PhoneNumber)

	lead, found, err := s.matchLead(ctx, normalized)
	if err != nil {
		return Result{}, err
	}
	if found {
		if lead.Status == domain.StatusConfirmed {
			return Result{}, apperr.Conflict("lead already confirmed a showing")
		}
		if s.capReached(lead.DispatchAttempts) {
			return Result{}, apperr.BadRequest("dispatch attempt limit reached for this lead")
		}
	}

	call, err := s.gateway.PlaceCall(ctx, vapi.PlaceCallParams{
		Number:       normalized,
		AssistantID:  input.AssistantID,
		FirstMessage: singleOpeningMessage(input.Details),
	})
	if err != nil {
		if found {
			s.recordFailure(ctx, lead.ID, err.Error())
		}
		return Result{}, apperr.Wrap(apperr.KindUnavailable, err.Error(), err)
	}

	if found {
		s.markDispatched(ctx, lead, call.ID)
	}

	return Result{Phone: normalized, Success: true, CallID: call.ID}, nil
}

// loadCandidates pulls every stored lead into candidate form.
func (s *Service) loadCandidates(ctx context.Context) ([]Candidate, error) {
	if s.store == nil {
		return nil, apperr.Unavailable("Database unavailable")
	}
	leads, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load leads for dispatch: %w", err)
	}

	candidates := make([]Candidate, 0, len(leads))
	for _, lead := range leads {
		candidates = append(candidates, Candidate{
			ID:             lead.ID,
			Name:           lead.Name,
			Phone:          lead.Phone,
			PreferredTime:  lead.PreferredTime,
			ShowingAddress: lead.ShowingAddress,
			Status:         lead.Status,
			Attempts:       lead.DispatchAttempts,
		})
	}
	return candidates, nil
}

// selectDispatchable drops confirmed leads and leads past the attempt cap.
// Inline candidates with no status default to pending and always qualify.
func (s *Service) selectDispatchable(candidates []Candidate) []Candidate {
	selected := make([]Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Status != "" && !candidate.Status.Dispatchable() {
			continue
		}
		if s.capReached(candidate.Attempts) {
			s.log.Info("lead skipped, dispatch attempt limit reached",
				"leadId", candidate.ID, "attempts", candidate.Attempts)
			continue
		}
		selected = append(selected, candidate)
	}
	return selected
}

// dispatchOne validates, normalizes, and calls the gateway for one lead.
// Every outcome becomes a result; nothing here aborts the batch.
func (s *Service) dispatchOne(ctx context.Context, candidate Candidate, settings Settings) Result {
	if candidate.Phone == "" || candidate.Name == "" || candidate.PreferredTime == "" || candidate.ShowingAddress == "" {
		s.recordFailure(ctx, candidate.ID, "Missing required fields")
		return Result{Phone: candidate.Phone, Error: "Missing required fields"}
	}

	normalized := phone.NormalizeDial(candidate.Phone)

	call, err := s.gateway.PlaceCall(ctx, vapi.PlaceCallParams{
		Number:       normalized,
		FirstMessage: bulkOpeningMessage(candidate, settings),
	})
	if err != nil {
		s.log.CallEvent(normalized, false, "", err.Error())
		s.recordFailure(ctx, candidate.ID, err.Error())
		return Result{Phone: normalized, Error: err.Error()}
	}

	s.markDispatched(ctx, repository.Lead{ID: candidate.ID, Phone: normalized}, call.ID)
	return Result{Phone: normalized, Success: true, CallID: call.ID}
}

// matchLead finds the stored lead behind a dial string, if any. A missing
// store or an unmatched number is not an error for single dispatch.
func (s *Service) matchLead(ctx context.Context, normalized string) (repository.Lead, bool, error) {
	if s.store == nil {
		return repository.Lead{}, false, nil
	}
	digits := phone.Digits(normalized)
	lead, err := s.store.GetByPhoneDigits(ctx, digits)
	if err == repository.ErrNotFound && len(digits) == 11 && digits[0] == '1' {
		// leads imported without a country code match their bare digits
		lead, err = s.store.GetByPhoneDigits(ctx, digits[1:])
	}
	if err == repository.ErrNotFound {
		return repository.Lead{}, false, nil
	}
	if err != nil {
		return repository.Lead{}, false, fmt.Errorf("match lead by phone: %w", err)
	}
	return lead, true, nil
}

func (s *Service) capReached(attempts int) bool {
	return s.maxAttempts > 0 && attempts >= s.maxAttempts
}

// markDispatched persists the accepted call and announces it. Persistence
// problems are logged, not surfaced: the call is already in flight.
func (s *Service) markDispatched(ctx context.Context, lead repository.Lead, callID string) {
	if s.store != nil && lead.ID != uuid.Nil {
		if err := s.store.MarkDispatched(ctx, lead.ID, callID); err != nil {
			s.log.DatabaseError("mark dispatched", err)
		}
	}

	s.bus.Publish(ctx, events.CallDispatched{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Phone:     lead.Phone,
		CallID:    callID,
	})
	s.bus.Publish(ctx, events.LeadUpdated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Phone:     lead.Phone,
		Status:    string(domain.StatusInProgress),
	})
}

func (s *Service) recordFailure(ctx context.Context, id uuid.UUID, reason string) {
	if s.store == nil || id == uuid.Nil {
		return
	}
	if err := s.store.RecordDispatchFailure(ctx, id, reason); err != nil {
		s.log.DatabaseError("record dispatch failure", err)
	}
}

// bulkOpeningMessage builds the assistant's first line from the lead's own
// details so the call opens with context instead of a cold greeting.
func bulkOpeningMessage(candidate Candidate, settings Settings) string {
	persona := settings.AgentPersonality
	if persona == "" {
		persona = defaultPersona
	}
	return fmt.Sprintf(
		"Hello, this is %s, calling for %s. I'm excited to help you explore %s. Are you available for a private showing %s? If that doesn't work, I can find another time that suits you.",
		persona, candidate.Name, candidate.ShowingAddress, candidate.PreferredTime,
	)
}

func singleOpeningMessage(details ShowingDetails) string {
	return fmt.Sprintf(
		"Hello, this is %s, calling for %s. I'm excited to help you explore %s. Are you available for a private showing on %s at %s? If that doesn't work, I can find another time that suits you.",
		defaultPersona, details.Name, details.Address, details.Date, details.Time,
	)
}
