package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Mekimak/efoyta-sub000/models"
	"github.com/Mekimak/efoyta-sub000/store"
	"github.com/Mekimak/efoyta-sub000/utils"
)

type fakeLister struct {
	mu    sync.Mutex
	calls int
	hook  func(call int) ([]models.Property, error)
}

func (f *fakeLister) ListProperties(ctx context.Context, filter *store.ServerFilter) ([]models.Property, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	hook := f.hook
	f.mu.Unlock()
	return hook(call)
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSaved struct {
	ids       map[string]struct{}
	notLoaded bool
}

func (f *fakeSaved) IsSaved(id string) bool {
	_, ok := f.ids[id]
	return ok
}

func (f *fakeSaved) Loaded() bool { return !f.notLoaded }

func available(id, price string) models.Property {
	return models.Property{ExternalID: id, Price: price, Status: models.StatusAvailable}
}

func newTestSession(lister Lister) *Session {
	return NewSession(lister, &fakeSaved{}, utils.NewLogger())
}

func TestSessionLoadsAndDerivesView(t *testing.T) {
	lister := &fakeLister{hook: func(int) ([]models.Property, error) {
		return []models.Property{
			available("PROP1002", "20,000 ETB"),
			available("PROP1001", "10,000 ETB"),
		}, nil
	}}
	s := newTestSession(lister)

	if s.State() != StateIdle {
		t.Fatalf("initial state: got %s, want idle", s.State())
	}
	if err := s.SetSpec(context.Background(), models.FilterSpec{}, models.SortPriceLow); err != nil {
		t.Fatalf("SetSpec: %v", err)
	}
	if s.State() != StateReady {
		t.Errorf("state after load: got %s, want ready", s.State())
	}

	view := s.View()
	if len(view) != 2 || view[0].ExternalID != "PROP1001" {
		t.Errorf("derived view should be sorted by price, got %+v", view)
	}
}

func TestSessionFailedLoad(t *testing.T) {
	boom := errors.New("store down")
	lister := &fakeLister{hook: func(int) ([]models.Property, error) { return nil, boom }}
	s := newTestSession(lister)

	if err := s.Refresh(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Refresh should surface the store error, got %v", err)
	}
	if s.State() != StateFailed {
		t.Errorf("state: got %s, want failed", s.State())
	}
	if !errors.Is(s.Err(), boom) {
		t.Errorf("Err: got %v, want %v", s.Err(), boom)
	}
}

func TestSessionRejectsInvalidSpecBeforeLoading(t *testing.T) {
	lister := &fakeLister{hook: func(int) ([]models.Property, error) { return nil, nil }}
	s := newTestSession(lister)

	min, max := 100.0, 50.0
	err := s.SetFilter(context.Background(), models.FilterSpec{MinPrice: &min, MaxPrice: &max})
	if err == nil {
		t.Fatal("invalid filter must be rejected")
	}
	if lister.callCount() != 0 {
		t.Error("a rejected spec must never reach the store")
	}
	if s.State() != StateIdle {
		t.Errorf("state must be untouched by a rejected spec, got %s", s.State())
	}
}

func TestSessionLastRequestWins(t *testing.T) {
	entered := make(chan struct{})
	gate := make(chan struct{})
	lister := &fakeLister{hook: func(call int) ([]models.Property, error) {
		if call == 1 {
			close(entered)
			<-gate
			return []models.Property{available("PROP1001", "10,000")}, nil
		}
		return []models.Property{available("PROP1002", "20,000")}, nil
	}}
	s := newTestSession(lister)

	done := make(chan error, 1)
	go func() { done <- s.Refresh(context.Background()) }()
	<-entered

	// The second load starts and finishes while the first is in flight.
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("second Refresh: %v", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("first Refresh: %v", err)
	}

	view := s.View()
	if len(view) != 1 || view[0].ExternalID != "PROP1002" {
		t.Fatalf("superseded load must be discarded, view = %+v", view)
	}
	if s.State() != StateReady {
		t.Errorf("state: got %s, want ready", s.State())
	}
}

func TestSessionViewCarriesSavedFlags(t *testing.T) {
	lister := &fakeLister{hook: func(int) ([]models.Property, error) {
		return []models.Property{
			available("PROP1001", "10,000"),
			available("PROP1002", "20,000"),
		}, nil
	}}
	savedSet := &fakeSaved{ids: map[string]struct{}{"PROP1002": {}}}
	s := NewSession(lister, savedSet, utils.NewLogger())

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	view := s.View()
	if view[0].Saved || !view[1].Saved {
		t.Errorf("saved flags wrong: %+v", view)
	}

	// The flag is read at view time: a membership change shows up without
	// another load.
	savedSet.ids["PROP1001"] = struct{}{}
	view = s.View()
	if !view[0].Saved {
		t.Error("saved flag must reflect the synchronizer's latest state")
	}
}

func TestSessionViewUnsavedUntilMembershipLoaded(t *testing.T) {
	lister := &fakeLister{hook: func(int) ([]models.Property, error) {
		return []models.Property{available("PROP1001", "10,000")}, nil
	}}
	savedSet := &fakeSaved{ids: map[string]struct{}{"PROP1001": {}}, notLoaded: true}
	s := NewSession(lister, savedSet, utils.NewLogger())

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if s.View()[0].Saved {
		t.Error("saved flags must stay false until the initial membership fetch lands")
	}

	savedSet.notLoaded = false
	if !s.View()[0].Saved {
		t.Error("saved flags must appear once membership is loaded")
	}
}

func TestSessionCachesRawReads(t *testing.T) {
	lister := &fakeLister{hook: func(int) ([]models.Property, error) {
		return []models.Property{available("PROP1001", "10,000")}, nil
	}}
	s := newTestSession(lister)
	ctx := context.Background()

	if err := s.SetFilter(ctx, models.FilterSpec{}); err != nil {
		t.Fatalf("SetFilter: %v", err)
	}
	if err := s.SetSort(ctx, models.SortPriceLow); err != nil {
		t.Fatalf("SetSort: %v", err)
	}
	if lister.callCount() != 1 {
		t.Errorf("second load with same prefilter should hit the local cache, calls = %d", lister.callCount())
	}

	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if lister.callCount() != 2 {
		t.Errorf("Refresh must bypass the cache, calls = %d", lister.callCount())
	}
}
