package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mekimak/efoyta-sub000/utils"
)

const savedChannelPrefix = "saved-changes:"

// RedisFeed carries saved-property change notifications over Redis pub/sub,
// one channel per user. Pub/sub gives no replay, so delivery is best-effort
// at-least-once for connected subscribers; consumers re-derive state from
// the store on every event.
type RedisFeed struct {
	client *redis.Client
	log    *utils.Logger
}

func NewRedisFeed(client *redis.Client, log *utils.Logger) *RedisFeed {
	return &RedisFeed{client: client, log: log}
}

func savedChannel(userID primitive.ObjectID) string {
	return savedChannelPrefix + userID.Hex()
}

func (f *RedisFeed) PublishSavedChange(ctx context.Context, t ChangeType, userID primitive.ObjectID, propertyID string) error {
	event := SavedChange{
		EventID:    uuid.NewString(),
		Type:       t,
		UserID:     userID.Hex(),
		PropertyID: propertyID,
		At:         time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, savedChannel(userID), payload).Err()
}

// SubscribeSavedChanges registers handler for one user's change events and
// returns a stop function. The handler runs on the subscription goroutine;
// it must not block for long.
func (f *RedisFeed) SubscribeSavedChanges(ctx context.Context, userID primitive.ObjectID, handler func(SavedChange)) (func(), error) {
	pubsub := f.client.Subscribe(ctx, savedChannel(userID))

	// Confirm the subscription before returning so no event published
	// after this call is silently missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, &TransientError{Op: "SubscribeSavedChanges", Err: err}
	}

	go func() {
		for msg := range pubsub.Channel() {
			var event SavedChange
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				f.log.Warn("dropping malformed change event on %s: %v", msg.Channel, err)
				continue
			}
			handler(event)
		}
	}()

	return func() { pubsub.Close() }, nil
}
