package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JaimeStill/resource-lab/pkg/query"
	"github.com/JaimeStill/resource-lab/pkg/store"
)

const mongoID = "_id"

type collection struct {
	coll   *mongo.Collection
	schema store.Schema
	now    func() time.Time
}

func (c *collection) Name() string {
	return c.coll.Name()
}

func (c *collection) ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

func (c *collection) Find(ctx context.Context, filter query.Filter, opts store.FindOptions) ([]store.Entity, error) {
	findOpts := options.Find()
	if opts.Sort != nil {
		findOpts.SetSort(sortDocument(opts.Sort))
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(int64(opts.Skip))
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cursor, err := c.coll.Find(ctx, filterDocument(filter), findOpts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.Name(), err)
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.Name(), err)
	}

	entities := make([]store.Entity, 0, len(docs))
	for _, doc := range docs {
		entities = append(entities, toEntity(doc))
	}
	return entities, nil
}

func (c *collection) Count(ctx context.Context, filter query.Filter) (int, error) {
	n, err := c.coll.CountDocuments(ctx, filterDocument(filter))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", c.Name(), err)
	}
	return int(n), nil
}

func (c *collection) FindByID(ctx context.Context, id string) (store.Entity, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrInvalidID
	}

	var doc bson.M
	if err := c.coll.FindOne(ctx, bson.M{mongoID: oid}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return toEntity(doc), nil
}

func (c *collection) Create(ctx context.Context, payload store.Entity) (store.Entity, error) {
	if err := c.schema.Validate(c.Name(), payload); err != nil {
		return nil, err
	}

	doc := store.PrepareCreate(payload, c.now())
	oid := primitive.NewObjectID()

	insert := bson.M{mongoID: oid}
	for k, v := range doc {
		insert[k] = v
	}

	if _, err := c.coll.InsertOne(ctx, insert); err != nil {
		return nil, fmt.Errorf("insert %s: %w", c.Name(), err)
	}
	return toEntity(insert), nil
}

func (c *collection) FindByIDAndUpdate(ctx context.Context, id string, payload store.Entity) (store.Entity, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrInvalidID
	}

	update := bson.M{"$set": bson.M(store.PrepareUpdate(payload, c.now()))}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bson.M
	if err := c.coll.FindOneAndUpdate(ctx, bson.M{mongoID: oid}, update, opts).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return toEntity(doc), nil
}

func (c *collection) FindByIDAndDelete(ctx context.Context, id string) (store.Entity, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrInvalidID
	}

	var doc bson.M
	if err := c.coll.FindOneAndDelete(ctx, bson.M{mongoID: oid}).Decode(&doc); err != nil {
		return nil, mapError(err)
	}
	return toEntity(doc), nil
}

func mapError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}
