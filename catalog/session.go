package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/Mekimak/efoyta-sub000/models"
	"github.com/Mekimak/efoyta-sub000/store"
	"github.com/Mekimak/efoyta-sub000/utils"
)

// State tracks one catalog load.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Lister is the slice of the remote store the session reads from.
type Lister interface {
	ListProperties(ctx context.Context, filter *store.ServerFilter) ([]models.Property, error)
}

// SavedView answers membership questions at render time.
type SavedView interface {
	IsSaved(propertyID string) bool
	Loaded() bool
}

// Item is one row of the derived view. Saved is read from the synchronizer
// when the view is materialized, never cached on the property itself, so it
// always reflects the latest membership without re-running the engine.
type Item struct {
	models.Property
	Saved bool `json:"saved"`
}

const rawCacheTTL = 30 * time.Second

// Session composes the filter/sort pair, the last-fetched raw collection
// and the synchronizer's saved set into the derived view. Loads follow
// last-request-wins: a fetch superseded by a newer filter/sort change is
// discarded when it lands, so a slow old response can never overwrite a
// newer view.
type Session struct {
	lister Lister
	saved  SavedView
	log    *utils.Logger

	// Local cache tier for raw server reads; Refresh bypasses it.
	raw *ccache.Cache[[]models.Property]

	mu         sync.Mutex
	filter     models.FilterSpec
	sortSpec   models.SortSpec
	collection []models.Property
	view       []models.Property
	state      State
	lastErr    error
	generation uint64
}

func NewSession(lister Lister, saved SavedView, log *utils.Logger) *Session {
	return &Session{
		lister:   lister,
		saved:    saved,
		log:      log,
		raw:      ccache.New(ccache.Configure[[]models.Property]().MaxSize(64)),
		sortSpec: models.SortNewest,
		state:    StateIdle,
	}
}

// SetFilter validates and applies a new filter, then reloads the view.
func (s *Session) SetFilter(ctx context.Context, filter models.FilterSpec) error {
	if err := filter.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
	return s.load(ctx, false)
}

// SetSort validates and applies a new sort order, then reloads the view.
func (s *Session) SetSort(ctx context.Context, sortSpec models.SortSpec) error {
	if err := sortSpec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.sortSpec = sortSpec
	s.mu.Unlock()
	return s.load(ctx, false)
}

// SetSpec applies a filter and sort together with a single reload.
func (s *Session) SetSpec(ctx context.Context, filter models.FilterSpec, sortSpec models.SortSpec) error {
	if err := filter.Validate(); err != nil {
		return err
	}
	if err := sortSpec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.filter = filter
	s.sortSpec = sortSpec
	s.mu.Unlock()
	return s.load(ctx, false)
}

// Refresh refetches from the store, skipping the local cache tier.
func (s *Session) Refresh(ctx context.Context) error {
	return s.load(ctx, true)
}

func (s *Session) load(ctx context.Context, bypassCache bool) error {
	s.mu.Lock()
	s.state = StateLoading
	s.generation++
	gen := s.generation
	filter := s.filter
	sortSpec := s.sortSpec
	s.mu.Unlock()

	prefilter := serverFilter(filter)
	properties, err := s.fetch(ctx, prefilter, bypassCache)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		// A newer load superseded this one while it was in flight;
		// its result decides the view, not ours.
		return nil
	}
	if err != nil {
		s.state = StateFailed
		s.lastErr = err
		s.log.Warn("catalog load failed: %v", err)
		return err
	}
	s.collection = properties
	s.view = Apply(properties, filter, sortSpec)
	s.state = StateReady
	s.lastErr = nil
	return nil
}

func (s *Session) fetch(ctx context.Context, prefilter *store.ServerFilter, bypass bool) ([]models.Property, error) {
	key := prefilterKey(prefilter)
	if !bypass {
		if item := s.raw.Get(key); item != nil && !item.Expired() {
			return item.Value(), nil
		}
	}
	properties, err := s.lister.ListProperties(ctx, prefilter)
	if err != nil {
		return nil, err
	}
	s.raw.Set(key, properties, rawCacheTTL)
	return properties, nil
}

// serverFilter pushes the exact-match facets down to the store. This is an
// optimization only: Apply re-checks everything on the way out.
func serverFilter(f models.FilterSpec) *store.ServerFilter {
	sf := &store.ServerFilter{
		Type:   f.Type,
		Status: f.Status,
	}
	if f.MinBedrooms != nil {
		sf.MinBedrooms = *f.MinBedrooms
	}
	return sf
}

func prefilterKey(f *store.ServerFilter) string {
	return fmt.Sprintf("%s|%s|%s|%d", f.City, f.Type, f.Status, f.MinBedrooms)
}

// View materializes the derived view, stamping each row with the current
// saved flag. Until the synchronizer's initial fetch lands its answers are
// not authoritative, so every row reads as unsaved rather than guessing.
func (s *Session) View() []Item {
	s.mu.Lock()
	view := s.view
	s.mu.Unlock()

	loaded := s.saved.Loaded()
	items := make([]Item, len(view))
	for i, p := range view {
		items[i] = Item{Property: p, Saved: loaded && s.saved.IsSaved(p.ExternalID)}
	}
	return items
}

// State reports the current load state; Err carries the failure when the
// state is StateFailed.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
