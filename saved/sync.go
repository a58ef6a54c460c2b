// Package saved owns the set of property ids the current user has saved and
// keeps it converged with the remote store across concurrent toggles and
// change-feed events from other sessions.
package saved

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mekimak/efoyta-sub000/store"
	"github.com/Mekimak/efoyta-sub000/utils"
)

// Store is the slice of the remote contract the synchronizer needs.
type Store interface {
	InsertSavedProperty(ctx context.Context, userID primitive.ObjectID, propertyID string) error
	DeleteSavedProperty(ctx context.Context, userID primitive.ObjectID, propertyID string) error
	ListSavedPropertyIDs(ctx context.Context, userID primitive.ObjectID) ([]string, error)
}

// Synchronizer tracks one user's saved-property membership. Local state is
// mutated only after a remote write is confirmed, so it never runs ahead of
// a failed write; Reconcile re-derives the whole set from the store, so
// missed or reordered feed events cannot corrupt it.
type Synchronizer struct {
	store  Store
	userID primitive.ObjectID
	log    *utils.Logger

	mu     sync.RWMutex
	loaded bool
	ids    map[string]struct{}
	// version counts confirmed local mutations. A reconcile fetch that
	// raced a confirmed Save/Unsave is retried instead of applied, so a
	// stale snapshot never clobbers a newer local write.
	version uint64
}

func NewSynchronizer(s Store, userID primitive.ObjectID, log *utils.Logger) *Synchronizer {
	return &Synchronizer{
		store:  s,
		userID: userID,
		log:    log,
		ids:    make(map[string]struct{}),
	}
}

// Load performs the initial full fetch. Until it succeeds, Loaded reports
// false and IsSaved answers are not authoritative.
func (s *Synchronizer) Load(ctx context.Context) error {
	ids, err := s.store.ListSavedPropertyIDs(ctx, s.userID)
	if err != nil {
		return err
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	s.mu.Lock()
	s.ids = set
	s.loaded = true
	s.version++
	s.mu.Unlock()
	return nil
}

// Loaded distinguishes "not yet fetched" from "fetched and empty".
func (s *Synchronizer) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// IsSaved is a pure membership check against local state. It never blocks
// and performs no I/O.
func (s *Synchronizer) IsSaved(propertyID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[propertyID]
	return ok
}

// SavedIDs returns a snapshot of the current membership.
func (s *Synchronizer) SavedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	return ids
}

// Save is idempotent. An id that is already a member succeeds without a
// remote write; a duplicate-key conflict from a racing save in another
// session is absorbed as success. Any other failure leaves local state
// untouched.
func (s *Synchronizer) Save(ctx context.Context, propertyID string) error {
	s.mu.RLock()
	_, member := s.ids[propertyID]
	s.mu.RUnlock()
	if member {
		return nil
	}

	err := s.store.InsertSavedProperty(ctx, s.userID, propertyID)
	if errors.Is(err, store.ErrDuplicate) {
		// Another session won the race; the row exists, which is the
		// outcome we wanted.
		s.log.Info("save of %s raced another session, already saved", propertyID)
	} else if err != nil {
		return err
	}

	s.mu.Lock()
	s.ids[propertyID] = struct{}{}
	s.version++
	s.mu.Unlock()
	return nil
}

// Unsave is idempotent: the remote delete succeeds whether or not a row
// existed, and the id is dropped locally either way. A failed delete leaves
// local state untouched.
func (s *Synchronizer) Unsave(ctx context.Context, propertyID string) error {
	if err := s.store.DeleteSavedProperty(ctx, s.userID, propertyID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.ids, propertyID)
	s.version++
	s.mu.Unlock()
	return nil
}

// Reconcile re-derives membership from the authoritative remote list. It is
// the change-feed handler's entry point: events are at-least-once and may
// arrive out of order, so their payloads are never applied as deltas. Safe
// to call concurrently with in-flight Save/Unsave calls.
func (s *Synchronizer) Reconcile(ctx context.Context) error {
	for {
		s.mu.RLock()
		before := s.version
		s.mu.RUnlock()

		ids, err := s.store.ListSavedPropertyIDs(ctx, s.userID)
		if err != nil {
			return err
		}

		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}

		s.mu.Lock()
		if s.version != before {
			// A Save/Unsave confirmed while we were fetching; the
			// snapshot may predate it. Fetch again.
			s.mu.Unlock()
			continue
		}
		s.ids = set
		s.loaded = true
		s.mu.Unlock()
		return nil
	}
}

// Clear wipes local state on sign-out so no saved-set leaks into the next
// account on a shared client.
func (s *Synchronizer) Clear() {
	s.mu.Lock()
	s.ids = make(map[string]struct{})
	s.loaded = false
	s.version++
	s.mu.Unlock()
}
