package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/productcrud/internal/errors"
	"github.com/abgdnv/productcrud/internal/sequence"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// productDocument is the BSON shape of a product. The integer ID is stored as _id.
type productDocument struct {
	ID       int64   `bson:"_id"`
	Name     string  `bson:"name"`
	Price    float64 `bson:"price"`
	Category string  `bson:"category"`
}

func (d productDocument) toProduct() Product {
	return Product{
		ID:       d.ID,
		Name:     d.Name,
		Price:    d.Price,
		Category: d.Category,
	}
}

// MongoStore implements ProductStore on a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
	seq  sequence.Sequence
}

// NewMongoStore creates a MongoStore. seq supplies the _id of every new document.
func NewMongoStore(coll *mongo.Collection, seq sequence.Sequence) *MongoStore {
	return &MongoStore{
		coll: coll,
		seq:  seq,
	}
}

// FindByID retrieves a product by its ID.
// Returns ErrProductNotFound if no document has the given ID.
func (s *MongoStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	var doc productDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	p := doc.toProduct()
	return &p, nil
}

// FindAll retrieves products matching the filter, ordered by ID.
func (s *MongoStore) FindAll(ctx context.Context, filter Filter) ([]Product, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	cur, err := s.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toProduct())
	}
	return products, nil
}

// Create takes the next value from the sequence and inserts the document under it.
func (s *MongoStore) Create(ctx context.Context, name string, price float64, category string) (*Product, error) {
	id, err := s.seq.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to assign product ID: %w", err)
	}

	doc := productDocument{
		ID:       id,
		Name:     name,
		Price:    price,
		Category: category,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	p := doc.toProduct()
	return &p, nil
}

// Update applies the patch with $set and returns the document after the update.
// Returns ErrProductNotFound if no document has the given ID.
func (s *MongoStore) Update(ctx context.Context, id int64, patch Patch) (*Product, error) {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if len(set) == 0 {
		return s.FindByID(ctx, id)
	}

	var doc productDocument
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	p := doc.toProduct()
	return &p, nil
}

// DeleteByID removes a document by its ID.
// Returns ErrProductNotFound if no document has the given ID.
func (s *MongoStore) DeleteByID(ctx context.Context, id int64) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if res.DeletedCount == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// Ping checks that the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}
