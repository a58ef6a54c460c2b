package config

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	client   *mongo.Client
	database *mongo.Database
)

func ConnectDB() {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGODB_DATABASE")
	if dbName == "" {
		dbName = "efoyta"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := c.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	client = c
	database = c.Database(dbName)
	log.Printf("Connected to MongoDB database %q", dbName)
}

func GetCollection(name string) *mongo.Collection {
	return database.Collection(name)
}

// EnsureIndexes creates the indexes the catalog relies on. The unique
// compound index on (userId, propertyId) is what makes a saved-property
// insert safe to race: the second writer gets a duplicate-key error
// instead of a second row.
func EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	savedName := os.Getenv("MONGODB_COLLECTION_SAVED")
	if savedName == "" {
		savedName = "saved_properties"
	}
	saved := GetCollection(savedName)
	_, err := saved.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "propertyId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	userName := os.Getenv("MONGODB_COLLECTION_USER")
	if userName == "" {
		userName = "user"
	}
	users := GetCollection(userName)
	_, err = users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	propName := os.Getenv("MONGODB_COLLECTION_PROPERTIES")
	if propName == "" {
		propName = "properties"
	}
	props := GetCollection(propName)
	_, err = props.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "city", Value: 1}, {Key: "type", Value: 1}, {Key: "status", Value: 1}},
	})
	return err
}

func DisconnectDB() {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Printf("Error disconnecting from MongoDB: %v", err)
	}
}
