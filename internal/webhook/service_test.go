package webhook

import (
	"context"
	"testing"

	"showings_backend/internal/leads/domain"
	"showings_backend/internal/leads/repository"
	"showings_backend/platform/events"
	"showings_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	leads map[uuid.UUID]*repository.Lead

	callLookups  int
	phoneLookups int
}

func newFakeStore(leads ...*repository.Lead) *fakeStore {
	s := &fakeStore{leads: make(map[uuid.UUID]*repository.Lead)}
	for _, lead := range leads {
		s.leads[lead.ID] = lead
	}
	return s
}

func (s *fakeStore) GetByCallID(_ context.Context, callID string) (repository.Lead, error) {
	s.callLookups++
	for _, lead := range s.leads {
		if lead.CallID != nil && *lead.CallID == callID {
			return *lead, nil
		}
	}
	return repository.Lead{}, repository.ErrNotFound
}

func (s *fakeStore) GetByPhoneDigits(_ context.Context, digits string) (repository.Lead, error) {
	s.phoneLookups++
	for _, lead := range s.leads {
		if onlyDigits(lead.Phone) == digits {
			return *lead, nil
		}
	}
	return repository.Lead{}, repository.ErrNotFound
}

func (s *fakeStore) ApplyOutcome(_ context.Context, id uuid.UUID, outcome repository.Outcome) error {
	lead, ok := s.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	lead.Status = outcome.Status
	lead.ShowingDate = outcome.ShowingDate
	lead.Reason = outcome.Reason
	return nil
}

func onlyDigits(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	return string(out)
}

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func newService(store Store) *Service {
	log := logger.New("test")
	return NewService(store, events.NewInMemoryBus(log), log)
}

func TestReconcileByCallID(t *testing.T) {
	lead := &repository.Lead{
		ID:     uuid.New(),
		Phone:  "555-111-2222",
		Status: domain.StatusInProgress,
		CallID: strptr("call-123"),
	}
	store := newFakeStore(lead)

	err := newService(store).Reconcile(context.Background(), Event{
		Type:           "call-ended",
		CallID:         "call-123",
		Confirmed:      boolptr(true),
		Date:           "2024-01-01",
		CustomerNumber: "+19998887777", // stale number must not matter
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if lead.Status != domain.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", lead.Status)
	}
	if lead.ShowingDate == nil || *lead.ShowingDate != "2024-01-01" {
		t.Errorf("showing date = %v", lead.ShowingDate)
	}
	if lead.Reason == nil || *lead.Reason != "Call completed" {
		t.Errorf("reason = %v", lead.Reason)
	}
	if store.phoneLookups != 0 {
		t.Error("call id match should not fall back to phone lookup")
	}
}

func TestReconcileFallsBackToPhone(t *testing.T) {
	lead := &repository.Lead{
		ID:     uuid.New(),
		Phone:  "5551112222",
		Status: domain.StatusInProgress,
	}
	store := newFakeStore(lead)

	err := newService(store).Reconcile(context.Background(), Event{
		Type:           "call-ended",
		CallID:         "unknown-call",
		Confirmed:      boolptr(false),
		CustomerNumber: "+1 (555) 111-2222",
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if lead.Status != domain.StatusFailed {
		t.Errorf("status = %s, want failed", lead.Status)
	}
	if lead.Reason == nil || *lead.Reason != "Call failed" {
		t.Errorf("reason = %v", lead.Reason)
	}
}

func TestReconcileExplicitStatusWins(t *testing.T) {
	lead := &repository.Lead{
		ID:     uuid.New(),
		Phone:  "5551112222",
		Status: domain.StatusInProgress,
	}
	store := newFakeStore(lead)

	err := newService(store).Reconcile(context.Background(), Event{
		Type:           "call-ended",
		Status:         "failed",
		Confirmed:      boolptr(true),
		Error:          "voicemail reached",
		CustomerNumber: "5551112222",
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if lead.Status != domain.StatusFailed {
		t.Errorf("status = %s, explicit status should win over confirmed flag", lead.Status)
	}
	if lead.Reason == nil || *lead.Reason != "voicemail reached" {
		t.Errorf("reason = %v, explicit error should win", lead.Reason)
	}
}

func TestReconcileIdempotentRedelivery(t *testing.T) {
	lead := &repository.Lead{
		ID:     uuid.New(),
		Phone:  "5551112222",
		Status: domain.StatusInProgress,
		CallID: strptr("call-9"),
	}
	store := newFakeStore(lead)
	svc := newService(store)

	event := Event{
		Type:           "call-ended",
		CallID:         "call-9",
		Confirmed:      boolptr(true),
		Date:           "2024-01-01",
		CustomerNumber: "5551112222",
	}

	if err := svc.Reconcile(context.Background(), event); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	first := *lead

	if err := svc.Reconcile(context.Background(), event); err != nil {
		t.Fatalf("second delivery: %v", err)
	}

	if lead.Status != first.Status || *lead.ShowingDate != *first.ShowingDate || *lead.Reason != *first.Reason {
		t.Errorf("redelivery changed state: first=%+v second=%+v", first, *lead)
	}
}

func TestReconcileUnmatchedIsNoop(t *testing.T) {
	lead := &repository.Lead{ID: uuid.New(), Phone: "5551112222", Status: domain.StatusInProgress}
	store := newFakeStore(lead)

	err := newService(store).Reconcile(context.Background(), Event{
		Type:           "call-ended",
		Confirmed:      boolptr(true),
		CustomerNumber: "4440000000",
	})
	if err != nil {
		t.Fatalf("unmatched event must not error: %v", err)
	}
	if lead.Status != domain.StatusInProgress {
		t.Errorf("unmatched event mutated a lead: %s", lead.Status)
	}
}

func TestReconcileIgnoresOtherEventTypes(t *testing.T) {
	lead := &repository.Lead{
		ID:     uuid.New(),
		Phone:  "5551112222",
		Status: domain.StatusInProgress,
		CallID: strptr("call-9"),
	}
	store := newFakeStore(lead)

	err := newService(store).Reconcile(context.Background(), Event{
		Type:      "speech-update",
		CallID:    "call-9",
		Confirmed: boolptr(true),
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if lead.Status != domain.StatusInProgress {
		t.Errorf("non call-ended event mutated a lead: %s", lead.Status)
	}
}

func TestReconcileRejectsIllegalTransition(t *testing.T) {
	lead := &repository.Lead{
		ID:     uuid.New(),
		Phone:  "5551112222",
		Status: domain.StatusConfirmed,
		CallID: strptr("call-9"),
	}
	store := newFakeStore(lead)

	err := newService(store).Reconcile(context.Background(), Event{
		Type:           "call-ended",
		CallID:         "call-9",
		Confirmed:      boolptr(false),
		CustomerNumber: "5551112222",
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if lead.Status != domain.StatusConfirmed {
		t.Error("a confirmed lead must not be demoted by a late failure event")
	}
}

func TestReconcileMatchesCountryCodeVariant(t *testing.T) {
	lead := &repository.Lead{ID: uuid.New(), Phone: "5551112222", Status: domain.StatusInProgress}
	store := newFakeStore(lead)

	err := newService(store).Reconcile(context.Background(), Event{
		Type:           "call-ended",
		Confirmed:      boolptr(true),
		CustomerNumber: "+15551112222",
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if lead.Status != domain.StatusConfirmed {
		t.Errorf("status = %s, want confirmed via country code fallback", lead.Status)
	}
}
