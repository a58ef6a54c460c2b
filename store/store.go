package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mekimak/efoyta-sub000/models"
)

var (
	// ErrNotFound is returned by point lookups for an unknown property id.
	ErrNotFound = errors.New("property not found")

	// ErrDuplicate is returned by InsertSavedProperty when the (user,
	// property) row already exists. Callers with idempotent semantics
	// absorb it as success.
	ErrDuplicate = errors.New("saved property already exists")
)

// TransientError wraps a network or timeout failure. The operation that hit
// it is idempotent, so the caller may simply reissue it.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// AuthorizationError marks a rejected credential. Local state is left
// untouched; the surrounding application decides whether to re-authenticate.
type AuthorizationError struct {
	Op string
}

func (e *AuthorizationError) Error() string { return fmt.Sprintf("%s: not authorized", e.Op) }

// ServerFilter narrows a property list read on the server side. It is a
// prefiltering optimization only: the catalog engine re-applies the full
// FilterSpec to whatever comes back.
type ServerFilter struct {
	City        string
	Type        models.PropertyType
	Status      models.PropertyStatus
	MinBedrooms int
}

// PropertyStore is the remote catalog the core reads from. Property rows
// are owned by the store; saved-property rows are written only through
// InsertSavedProperty/DeleteSavedProperty.
type PropertyStore interface {
	ListProperties(ctx context.Context, filter *ServerFilter) ([]models.Property, error)
	GetProperty(ctx context.Context, id string) (*models.Property, error)
	InsertSavedProperty(ctx context.Context, userID primitive.ObjectID, propertyID string) error
	DeleteSavedProperty(ctx context.Context, userID primitive.ObjectID, propertyID string) error
	ListSavedPropertyIDs(ctx context.Context, userID primitive.ObjectID) ([]string, error)
}

type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// SavedChange is one change-feed notification for a user's saved-property
// rows. Delivery is at-least-once and may be out of order relative to
// locally issued writes, so consumers must treat it as a hint to re-derive
// from ListSavedPropertyIDs, never as a delta to apply.
type SavedChange struct {
	EventID    string     `json:"eventId"`
	Type       ChangeType `json:"type"`
	UserID     string     `json:"userId"`
	PropertyID string     `json:"propertyId"`
	At         time.Time  `json:"at"`
}

// ChangeFeed delivers SavedChange events for one user from any session or
// device, including this one. The returned stop function tears the
// subscription down.
type ChangeFeed interface {
	SubscribeSavedChanges(ctx context.Context, userID primitive.ObjectID, handler func(SavedChange)) (stop func(), err error)
}
