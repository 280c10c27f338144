package sequence

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// counterDocument is the singleton record holding the last issued value.
type counterDocument struct {
	ID            string `bson:"_id"`
	SequenceValue int64  `bson:"sequence_value"`
}

// MongoCounter implements Sequence on top of a MongoDB counters collection.
type MongoCounter struct {
	coll *mongo.Collection
	name string
}

// NewMongoCounter creates a counter stored under the given name in coll.
// The counter document is created on the first call to Next.
func NewMongoCounter(coll *mongo.Collection, name string) *MongoCounter {
	return &MongoCounter{
		coll: coll,
		name: name,
	}
}

// Next increments the counter and returns the new value in one findOneAndUpdate round trip.
func (c *MongoCounter) Next(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc counterDocument
	err := c.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": c.name},
		bson.M{"$inc": bson.M{"sequence_value": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter %q: %w", c.name, err)
	}
	return doc.SequenceValue, nil
}
