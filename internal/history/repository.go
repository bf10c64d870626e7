package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"smsrelay/pkg/metrics"
)

type Repository interface {
	Append(ctx context.Context, phoneNumber string, msg StoredMessage) error
	GetAll(ctx context.Context, phoneNumber string) ([]StoredMessage, error)
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database, collectionName string) Repository {
	return &MongoRepository{collection: db.Collection(collectionName)}
}

// Append pushes one message onto the end of the recipient's sequence,
// creating the record on first write. The push is a single atomic update,
// concurrent appends for the same recipient interleave but never lose
// entries.
func (r *MongoRepository) Append(ctx context.Context, phoneNumber string, msg StoredMessage) error {
	start := time.Now()

	filter := bson.M{"_id": phoneNumber}
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		metrics.ObserveStoreAppendDuration(time.Since(start), "error")
		return fmt.Errorf("failed to append message for %s: %w", phoneNumber, err)
	}

	metrics.ObserveStoreAppendDuration(time.Since(start), "ok")
	return nil
}

// GetAll returns the recipient's messages in insertion order. An unknown
// recipient yields an empty slice, not an error.
func (r *MongoRepository) GetAll(ctx context.Context, phoneNumber string) ([]StoredMessage, error) {
	var record RecipientRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": phoneNumber}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []StoredMessage{}, nil
		}
		return nil, fmt.Errorf("failed to load messages for %s: %w", phoneNumber, err)
	}

	if record.Messages == nil {
		return []StoredMessage{}, nil
	}
	return record.Messages, nil
}
