package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SavedProperty is the (user, property) relation behind the heart icon.
// The store enforces at most one row per pair with a unique compound index;
// rows are created and destroyed only through the synchronizer.
type SavedProperty struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	PropertyID string             `bson:"propertyId" json:"propertyId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
