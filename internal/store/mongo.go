package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoBlob struct {
	Key   string `bson:"_id"`
	Value []byte `bson:"value"`
}

// MongoBackend keeps one document per key, with the key as _id.
type MongoBackend struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoBackend wraps a connected client. Close disconnects it.
func NewMongoBackend(client *mongo.Client, database, collection string) *MongoBackend {
	return &MongoBackend{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

func (m *MongoBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var doc mongoBlob
	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Value, nil
}

func (m *MongoBackend) Save(ctx context.Context, key string, data []byte) error {
	_, err := m.collection.ReplaceOne(ctx,
		bson.M{"_id": key},
		mongoBlob{Key: key, Value: data},
		options.Replace().SetUpsert(true),
	)
	return err
}

func (m *MongoBackend) Delete(ctx context.Context, key string) error {
	_, err := m.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (m *MongoBackend) Close() error {
	return m.client.Disconnect(context.Background())
}
