package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"showings_backend/internal/events"
	"showings_backend/internal/leads/repository"
	platformevents "showings_backend/platform/events"
	"showings_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	inserted  []repository.CreateLeadParams
	insertErr error
	leads     []repository.Lead
}

func (s *fakeStore) InsertBatch(_ context.Context, params []repository.CreateLeadParams) ([]repository.Lead, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	s.inserted = params
	out := make([]repository.Lead, 0, len(params))
	for _, p := range params {
		out = append(out, repository.Lead{ID: uuid.New(), Name: p.Name, Phone: p.Phone})
	}
	return out, nil
}

func (s *fakeStore) List(context.Context) ([]repository.Lead, error) {
	return s.leads, nil
}

func TestImportPublishesEvent(t *testing.T) {
	log := logger.New("test")
	bus := platformevents.NewInMemoryBus(log)

	counts := make(chan int, 1)
	bus.Subscribe(events.LeadsImported{}.EventName(), events.HandlerFunc(func(_ context.Context, event events.Event) error {
		counts <- event.(events.LeadsImported).Count
		return nil
	}))

	store := &fakeStore{}
	svc := New(store, bus, log)

	params := []repository.CreateLeadParams{
		{Name: "Jane", Phone: "5551112222", PreferredTime: "ASAP", ShowingAddress: "1 Main St"},
		{Name: "John", Phone: "5553334444", PreferredTime: "today", ShowingAddress: "2 Oak Ave"},
	}
	leads, err := svc.Import(context.Background(), params)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(leads) != 2 || len(store.inserted) != 2 {
		t.Errorf("inserted %d leads, want 2", len(leads))
	}

	select {
	case count := <-counts:
		if count != 2 {
			t.Errorf("event count = %d, want 2", count)
		}
	case <-time.After(time.Second):
		t.Fatal("no import event published")
	}
}

func TestImportSurfacesBatchFailure(t *testing.T) {
	log := logger.New("test")
	store := &fakeStore{insertErr: errors.New("duplicate phone")}
	svc := New(store, platformevents.NewInMemoryBus(log), log)

	_, err := svc.Import(context.Background(), []repository.CreateLeadParams{{Name: "Jane"}})
	if err == nil {
		t.Fatal("expected the batch failure to surface")
	}
	if len(store.inserted) != 0 {
		t.Error("no rows should be recorded on failure")
	}
}
