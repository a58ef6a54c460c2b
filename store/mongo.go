package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Mekimak/efoyta-sub000/models"
	"github.com/Mekimak/efoyta-sub000/utils"
)

// MongoStore binds the PropertyStore contract to MongoDB collections and
// publishes saved-property changes to the feed after every confirmed write.
type MongoStore struct {
	properties *mongo.Collection
	saved      *mongo.Collection
	feed       *RedisFeed
	log        *utils.Logger
}

func NewMongoStore(properties, saved *mongo.Collection, feed *RedisFeed, log *utils.Logger) *MongoStore {
	return &MongoStore{
		properties: properties,
		saved:      saved,
		feed:       feed,
		log:        log,
	}
}

func (s *MongoStore) ListProperties(ctx context.Context, filter *ServerFilter) ([]models.Property, error) {
	query := bson.M{}
	if filter != nil {
		if filter.City != "" {
			query["city"] = filter.City
		}
		if filter.Type != "" {
			query["type"] = filter.Type
		}
		if filter.Status != "" {
			query["status"] = filter.Status
		}
		if filter.MinBedrooms > 0 {
			query["bedrooms"] = bson.M{"$gte": filter.MinBedrooms}
		}
	}

	cursor, err := s.properties.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, classify("ListProperties", err)
	}
	defer cursor.Close(ctx)

	var properties []models.Property
	for cursor.Next(ctx) {
		var property models.Property
		if err := cursor.Decode(&property); err != nil {
			continue
		}
		properties = append(properties, property)
	}
	if err := cursor.Err(); err != nil {
		return nil, classify("ListProperties", err)
	}
	return properties, nil
}

func (s *MongoStore) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	// Point reads count as a view.
	res := s.properties.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var property models.Property
	if err := res.Decode(&property); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, classify("GetProperty", err)
	}
	return &property, nil
}

// InsertSavedProperty relies on the unique (userId, propertyId) index: a
// racing duplicate insert surfaces as ErrDuplicate instead of a second row.
func (s *MongoStore) InsertSavedProperty(ctx context.Context, userID primitive.ObjectID, propertyID string) error {
	row := models.SavedProperty{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		PropertyID: propertyID,
		CreatedAt:  time.Now(),
	}
	_, err := s.saved.InsertOne(ctx, row)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return classify("InsertSavedProperty", err)
	}
	s.publish(ChangeInsert, userID, propertyID)
	return nil
}

// DeleteSavedProperty is idempotent: deleting an absent row succeeds.
func (s *MongoStore) DeleteSavedProperty(ctx context.Context, userID primitive.ObjectID, propertyID string) error {
	_, err := s.saved.DeleteOne(ctx, bson.M{"userId": userID, "propertyId": propertyID})
	if err != nil {
		return classify("DeleteSavedProperty", err)
	}
	s.publish(ChangeDelete, userID, propertyID)
	return nil
}

func (s *MongoStore) ListSavedPropertyIDs(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	cursor, err := s.saved.Find(ctx, bson.M{"userId": userID},
		options.Find().SetProjection(bson.M{"propertyId": 1}))
	if err != nil {
		return nil, classify("ListSavedPropertyIDs", err)
	}
	defer cursor.Close(ctx)

	ids := []string{}
	for cursor.Next(ctx) {
		var row models.SavedProperty
		if err := cursor.Decode(&row); err != nil {
			continue
		}
		ids = append(ids, row.PropertyID)
	}
	if err := cursor.Err(); err != nil {
		return nil, classify("ListSavedPropertyIDs", err)
	}
	return ids, nil
}

func (s *MongoStore) publish(t ChangeType, userID primitive.ObjectID, propertyID string) {
	if s.feed == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.feed.PublishSavedChange(ctx, t, userID, propertyID); err != nil {
		// The feed is best-effort: subscribers re-derive from the
		// collection, so a lost event delays convergence until the
		// next one rather than breaking it.
		s.log.Warn("failed to publish %s event for user=%s property=%s: %v", t, userID.Hex(), propertyID, err)
	}
}

func classify(op string, err error) error {
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) || errors.Is(err, context.DeadlineExceeded) {
		return &TransientError{Op: op, Err: err}
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && (cmdErr.Code == 13 || cmdErr.Code == 18) {
		return &AuthorizationError{Op: op}
	}
	return err
}
