package handlers

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mekimak/efoyta-sub000/catalog"
	"github.com/Mekimak/efoyta-sub000/saved"
	"github.com/Mekimak/efoyta-sub000/store"
	"github.com/Mekimak/efoyta-sub000/utils"
)

type userSession struct {
	sync     *saved.Synchronizer
	catalog  *catalog.Session
	stopFeed func()
}

// SessionManager keeps one synchronizer and catalog session per signed-in
// user, created lazily on first use. Each synchronizer is loaded from the
// store and subscribed to the change feed before it is handed out, so saves
// made from another device converge into this one.
type SessionManager struct {
	store store.PropertyStore
	feed  store.ChangeFeed
	log   *utils.Logger

	mu       sync.Mutex
	sessions map[primitive.ObjectID]*userSession
}

func NewSessionManager(s store.PropertyStore, feed store.ChangeFeed, log *utils.Logger) *SessionManager {
	return &SessionManager{
		store:    s,
		feed:     feed,
		log:      log,
		sessions: make(map[primitive.ObjectID]*userSession),
	}
}

func (m *SessionManager) forUser(ctx context.Context, userID primitive.ObjectID) (*userSession, error) {
	m.mu.Lock()
	if us, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		return us, nil
	}
	m.mu.Unlock()

	syncer := saved.NewSynchronizer(m.store, userID, m.log)

	// The initial fetch must land before IsSaved answers count; transient
	// store hiccups here would otherwise block sign-in entirely.
	retry := utils.RetryConfig{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond, Logger: m.log}
	if err := retry.Do("saved-properties initial fetch", func() error {
		return syncer.Load(ctx)
	}); err != nil {
		return nil, err
	}

	stop, err := m.feed.SubscribeSavedChanges(context.Background(), userID, func(ev store.SavedChange) {
		// Events are hints, not deltas: re-derive from the store. Our
		// own writes publish events too, which is what guarantees a
		// reconcile after any snapshot race settles.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := syncer.Reconcile(rctx); err != nil {
			m.log.Warn("reconcile after %s event failed for user=%s: %v", ev.Type, ev.UserID, err)
		}
	})
	if err != nil {
		return nil, err
	}

	us := &userSession{
		sync:     syncer,
		catalog:  catalog.NewSession(m.store, syncer, m.log),
		stopFeed: stop,
	}

	m.mu.Lock()
	if existing, ok := m.sessions[userID]; ok {
		// Another request won the race to build this user's session.
		m.mu.Unlock()
		stop()
		return existing, nil
	}
	m.sessions[userID] = us
	m.mu.Unlock()
	return us, nil
}

// Remove tears down a user's session on sign-out: the feed subscription is
// stopped and local saved state is cleared immediately.
func (m *SessionManager) Remove(userID primitive.ObjectID) {
	m.mu.Lock()
	us, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	us.stopFeed()
	us.sync.Clear()
}
