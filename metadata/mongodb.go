package metadata

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store using MongoDB.
//
// Each partition's metadata is one document keyed by partition path:
//
//	{
//	    "_id": "2024/06/01",
//	    "instantTime": "00000000000000",
//	    "nodes": [{"value": 536870911, "fileIdPfx": "..."}, ...]
//	}
//
// Create-if-absent relies on the unique _id index: of any number of
// concurrent writers racing on a fresh partition, exactly one insert
// succeeds and the rest observe a duplicate-key error and load the
// winner's version.
//
// Example:
//
//	client, _ := mongo.Connect(ctx, options.Client().ApplyURI(uri))
//	coll := client.Database("lake").Collection("hashing_metadata")
//	store := metadata.NewMongoStore(coll)
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a new MongoDB-backed metadata store.
func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

// LoadOrCreate returns the partition's metadata, creating the default
// layout atomically if the partition has never been written.
func (s *MongoStore) LoadOrCreate(ctx context.Context, partitionPath string, defaultBucketCount int) (*Metadata, error) {
	m, err := NewDefault(partitionPath, defaultBucketCount)
	if err != nil {
		return nil, err
	}

	_, err = s.collection.InsertOne(ctx, m)
	if err == nil {
		return m, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("create metadata for %q: %w", partitionPath, err)
	}

	// Another writer won the race; load its version.
	var loaded Metadata
	if err := s.collection.FindOne(ctx, bson.M{"_id": partitionPath}).Decode(&loaded); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: metadata for %q vanished after duplicate insert", ErrCorrupt, partitionPath)
		}
		return nil, fmt.Errorf("load metadata for %q: %w", partitionPath, err)
	}
	return &loaded, nil
}

// Save unconditionally replaces the partition's metadata with a new
// version, as written by reorganization tooling after a replace commit.
func (s *MongoStore) Save(ctx context.Context, m *Metadata) error {
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": m.PartitionPath}, m,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save metadata for %q: %w", m.PartitionPath, err)
	}
	return nil
}

// Compile-time check
var _ Store = (*MongoStore)(nil)
