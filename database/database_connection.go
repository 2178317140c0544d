package database

import (
	"context"
	"time"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	UsersCollection         = "users"
	EventsCollection        = "events"
	RegistrationsCollection = "registrations"
)

func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, oops.In("database").Code("DB_CONNECT_FAILED").Wrapf(err, "mongo connect")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, oops.In("database").Code("DB_PING_FAILED").Wrapf(err, "mongo ping")
	}
	return client, nil
}

// EnsureIndexes creates the unique indexes the stores rely on for conflict detection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	users := db.Collection(UsersCollection)
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return oops.In("database").Code("DB_INDEX_FAILED").With("collection", UsersCollection).Wrap(err)
	}

	events := db.Collection(EventsCollection)
	_, err = events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "organizer", Value: 1}}},
		{Keys: bson.D{{Key: "location", Value: 1}}},
	})
	if err != nil {
		return oops.In("database").Code("DB_INDEX_FAILED").With("collection", EventsCollection).Wrap(err)
	}

	registrations := db.Collection(RegistrationsCollection)
	_, err = registrations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "event", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "event", Value: 1}}},
	})
	if err != nil {
		return oops.In("database").Code("DB_INDEX_FAILED").With("collection", RegistrationsCollection).Wrap(err)
	}
	return nil
}
