package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type kvStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewKVStore keeps one document per key; the key is the document _id.
func NewKVStore(client *mongo.Client, database, collection string) repository.KVStore {
	return &kvStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

func (s *kvStore) Get(ctx context.Context, key string) (string, error) {
	var doc kvDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("%w: find key %s: %v", repository.ErrQueryFailed, key, err)
	}
	return doc.Value, nil
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("cannot write value under empty key")
	}
	doc := kvDocument{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("%w: replace key %s: %v", repository.ErrQueryFailed, key, err)
	}
	return nil
}

func (s *kvStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrConnectionFailed, err)
	}
	return nil
}
