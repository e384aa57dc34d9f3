package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type tokenDocument struct {
	ID        string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoTokenStore keeps the token as a single document in the "session"
// collection, keyed by TokenKey.
type MongoTokenStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoTokenStore(ctx context.Context, uri, database string) (*MongoTokenStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoTokenStore{
		client:     client,
		collection: client.Database(database).Collection("session"),
	}, nil
}

func (s *MongoTokenStore) Load(ctx context.Context) (string, error) {
	var doc tokenDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": TokenKey}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find token: %w", err)
	}
	return doc.Value, nil
}

func (s *MongoTokenStore) Save(ctx context.Context, token string) error {
	update := bson.M{
		"$set": bson.M{
			"value":      token,
			"updated_at": time.Now().UTC(),
		},
	}
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": TokenKey}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

func (s *MongoTokenStore) Clear(ctx context.Context) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": TokenKey}); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (s *MongoTokenStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
