package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"showings_backend/internal/leads/domain"
	"showings_backend/internal/leads/repository"
	"showings_backend/internal/vapi"
	"showings_backend/platform/apperr"
	"showings_backend/platform/events"
	"showings_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeGateway struct {
	calls   []vapi.PlaceCallParams
	failFor map[string]error
	nextID  int
}

func (g *fakeGateway) PlaceCall(_ context.Context, params vapi.PlaceCallParams) (*vapi.Call, error) {
	g.calls = append(g.calls, params)
	if err, ok := g.failFor[params.Number]; ok {
		return nil, err
	}
	g.nextID++
	return &vapi.Call{ID: fmt.Sprintf("call-%d", g.nextID), Status: "queued"}, nil
}

type fakeStore struct {
	leads      []repository.Lead
	dispatched map[uuid.UUID]string
	failures   map[uuid.UUID]string
}

func newFakeStore(leads ...repository.Lead) *fakeStore {
	return &fakeStore{
		leads:      leads,
		dispatched: make(map[uuid.UUID]string),
		failures:   make(map[uuid.UUID]string),
	}
}

func (s *fakeStore) List(context.Context) ([]repository.Lead, error) {
	return s.leads, nil
}

func (s *fakeStore) GetByPhoneDigits(_ context.Context, digits string) (repository.Lead, error) {
	for _, lead := range s.leads {
		if onlyDigits(lead.Phone) == digits {
			return lead, nil
		}
	}
	return repository.Lead{}, repository.ErrNotFound
}

func (s *fakeStore) MarkDispatched(_ context.Context, id uuid.UUID, callID string) error {
	s.dispatched[id] = callID
	return nil
}

func (s *fakeStore) RecordDispatchFailure(_ context.Context, id uuid.UUID, reason string) error {
	s.failures[id] = reason
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

func newService(gateway Gateway, store LeadStore, maxAttempts int) *Service {
	log := logger.New("test")
	return New(gateway, store, events.NewInMemoryBus(log), maxAttempts, log)
}

func validCandidate(phone string) Candidate {
	return Candidate{
		ID:             uuid.New(),
		Name:           "Jane",
		Phone:          phone,
		PreferredTime:  "ASAP",
		ShowingAddress: "1 Main St",
		Status:         domain.StatusPending,
	}
}

func TestDispatchBulkBestEffort(t *testing.T) {
	gateway := &fakeGateway{failFor: map[string]error{}}
	store := newFakeStore()

	candidates := make([]Candidate, 0, 10)
	for i := 0; i < 9; i++ {
		candidates = append(candidates, validCandidate(fmt.Sprintf("555123456%d", i)))
	}
	invalid := validCandidate("5559999999")
	invalid.ShowingAddress = ""
	candidates = append(candidates, invalid)

	results, err := newService(gateway, store, 0).DispatchBulk(context.Background(), candidates, Settings{})
	if err != nil {
		t.Fatalf("DispatchBulk: %v", err)
	}

	if len(results) != 10 {
		t.Fatalf("got %d results, want 10", len(results))
	}
	if len(gateway.calls) != 9 {
		t.Errorf("gateway received %d calls, want 9", len(gateway.calls))
	}

	var failures int
	for _, r := range results {
		if !r.Success {
			failures++
			if r.Error != "Missing required fields" {
				t.Errorf("failure reason = %q", r.Error)
			}
		} else if r.CallID == "" {
			t.Errorf("successful result for %s has no call id", r.Phone)
		}
	}
	if failures != 1 {
		t.Errorf("got %d failures, want 1", failures)
	}
	if len(store.dispatched) != 9 {
		t.Errorf("%d leads marked dispatched, want 9", len(store.dispatched))
	}
}

func TestDispatchBulkGatewayFailureDoesNotAbort(t *testing.T) {
	gateway := &fakeGateway{failFor: map[string]error{
		"+15551234561": errors.New("carrier rejected the call"),
	}}
	store := newFakeStore()

	candidates := []Candidate{
		validCandidate("5551234560"),
		validCandidate("5551234561"),
		validCandidate("5551234562"),
	}

	results, err := newService(gateway, store, 0).DispatchBulk(context.Background(), candidates, Settings{})
	if err != nil {
		t.Fatalf("DispatchBulk: %v", err)
	}

	if len(gateway.calls) != 3 {
		t.Errorf("gateway received %d calls, want 3", len(gateway.calls))
	}
	if results[1].Success || results[1].Error != "carrier rejected the call" {
		t.Errorf("middle result = %+v", results[1])
	}
	if !results[0].Success || !results[2].Success {
		t.Error("siblings of a failed dispatch must still succeed")
	}
	if reason := store.failures[candidates[1].ID]; reason != "carrier rejected the call" {
		t.Errorf("recorded failure reason = %q", reason)
	}
}

func TestDispatchBulkNormalizesPhones(t *testing.T) {
	gateway := &fakeGateway{}

	candidates := []Candidate{
		validCandidate("5551234567"),
		validCandidate("15551234567"),
		validCandidate("+15551234567"),
	}

	if _, err := newService(gateway, newFakeStore(), 0).DispatchBulk(context.Background(), candidates, Settings{}); err != nil {
		t.Fatalf("DispatchBulk: %v", err)
	}

	for i, call := range gateway.calls {
		if call.Number != "+15551234567" {
			t.Errorf("call %d dialed %q, want +15551234567", i, call.Number)
		}
	}
}

func TestDispatchBulkSelection(t *testing.T) {
	gateway := &fakeGateway{}

	confirmed := validCandidate("5551111111")
	confirmed.Status = domain.StatusConfirmed
	capped := validCandidate("5552222222")
	capped.Attempts = 3
	eligible := validCandidate("5553333333")
	eligible.Status = domain.StatusFailed

	results, err := newService(gateway, newFakeStore(), 3).
		DispatchBulk(context.Background(), []Candidate{confirmed, capped, eligible}, Settings{})
	if err != nil {
		t.Fatalf("DispatchBulk: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("got %d results, want only the eligible lead", len(results))
	}
	if len(gateway.calls) != 1 || gateway.calls[0].Number != "+15553333333" {
		t.Errorf("gateway calls = %+v", gateway.calls)
	}
}

func TestDispatchBulkNothingToDo(t *testing.T) {
	gateway := &fakeGateway{}
	confirmed := validCandidate("5551111111")
	confirmed.Status = domain.StatusConfirmed

	results, err := newService(gateway, newFakeStore(), 0).
		DispatchBulk(context.Background(), []Candidate{confirmed}, Settings{})
	if err != nil {
		t.Fatalf("DispatchBulk: %v", err)
	}
	if len(results) != 0 || len(gateway.calls) != 0 {
		t.Errorf("expected no work, got results=%v calls=%v", results, gateway.calls)
	}
}

func TestDispatchBulkLoadsStoredLeads(t *testing.T) {
	gateway := &fakeGateway{}
	lead := repository.Lead{
		ID:             uuid.New(),
		Name:           "Jane",
		Phone:          "555-123-4567",
		PreferredTime:  "today",
		ShowingAddress: "1 Main St",
		Status:         domain.StatusPending,
	}
	store := newFakeStore(lead)

	results, err := newService(gateway, store, 0).DispatchBulk(context.Background(), nil, Settings{})
	if err != nil {
		t.Fatalf("DispatchBulk: %v", err)
	}
	if len(results) != 1 || !results[0].Success {
		t.Fatalf("results = %+v", results)
	}
	if store.dispatched[lead.ID] == "" {
		t.Error("stored lead was not marked dispatched")
	}
}

func TestDispatchBulkPersonaInOpeningMessage(t *testing.T) {
	gateway := &fakeGateway{}
	settings := Settings{AgentPersonality: "Alex from Lakeside Homes"}

	if _, err := newService(gateway, newFakeStore(), 0).
		DispatchBulk(context.Background(), []Candidate{validCandidate("5551234567")}, settings); err != nil {
		t.Fatalf("DispatchBulk: %v", err)
	}

	msg := gateway.calls[0].FirstMessage
	for _, want := range []string{"Alex from Lakeside Homes", "Jane", "1 Main St", "ASAP"} {
		if !strings.Contains(msg, want) {
			t.Errorf("opening message %q missing %q", msg, want)
		}
	}
}

func TestDispatchSingle(t *testing.T) {
	gateway := &fakeGateway{}
	lead := repository.Lead{
		ID:     uuid.New(),
		Phone:  "5551234567",
		Status: domain.StatusPending,
	}
	store := newFakeStore(lead)

	result, err := newService(gateway, store, 0).DispatchSingle(context.Background(), SingleDispatch{
		PhoneNumber: "555-123-4567",
		Details:     ShowingDetails{Name: "Jane", Address: "1 Main St", Date: "2024-01-01", Time: "2pm"},
	})
	if err != nil {
		t.Fatalf("DispatchSingle: %v", err)
	}
	if !result.Success || result.Phone != "+15551234567" {
		t.Errorf("result = %+v", result)
	}
	if store.dispatched[lead.ID] != result.CallID {
		t.Error("matched lead should carry the new call id")
	}
}

func TestDispatchSingleRejectsConfirmedLead(t *testing.T) {
	gateway := &fakeGateway{}
	lead := repository.Lead{ID: uuid.New(), Phone: "5551234567", Status: domain.StatusConfirmed}

	_, err := newService(gateway, newFakeStore(lead), 0).DispatchSingle(context.Background(), SingleDispatch{
		PhoneNumber: "5551234567",
		Details:     ShowingDetails{Name: "Jane", Address: "1 Main St", Date: "2024-01-01", Time: "2pm"},
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if len(gateway.calls) != 0 {
		t.Error("no gateway call should be placed for a confirmed lead")
	}
}

func TestDispatchUnavailableWithoutGateway(t *testing.T) {
	svc := newService(nil, newFakeStore(), 0)

	if _, err := svc.DispatchBulk(context.Background(), []Candidate{validCandidate("5551234567")}, Settings{}); !apperr.Is(err, apperr.KindUnavailable) {
		t.Errorf("bulk without gateway: %v", err)
	}
	if _, err := svc.DispatchSingle(context.Background(), SingleDispatch{PhoneNumber: "5551234567"}); !apperr.Is(err, apperr.KindUnavailable) {
		t.Errorf("single without gateway: %v", err)
	}
}
