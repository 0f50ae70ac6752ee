// Package store defines the document-store contract used by resource controllers.
// A System hands out Collections; each Collection owns identifier generation,
// schema validation, and the atomic find-and-modify primitives for one entity set.
package store

import (
	"context"
	"time"

	"github.com/JaimeStill/resource-lab/pkg/lifecycle"
	"github.com/JaimeStill/resource-lab/pkg/query"
)

// Reserved entity fields.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Entity is a free-form record. The id field is assigned by the store and never changes.
type Entity map[string]any

// ID returns the entity identifier as a string, or "" when absent.
func (e Entity) ID() string {
	if id, ok := e[FieldID].(string); ok {
		return id
	}
	return ""
}

// FindOptions controls ordering and windowing of Find results.
// A zero Limit returns every matching entity.
type FindOptions struct {
	Sort  *query.Sort
	Skip  int
	Limit int
}

// Collection is the set of operations a controller needs from one entity collection.
// Absent entities are reported as ErrNotFound; schema failures as *ValidationError.
type Collection interface {
	Name() string
	Find(ctx context.Context, filter query.Filter, opts FindOptions) ([]Entity, error)
	Count(ctx context.Context, filter query.Filter) (int, error)
	FindByID(ctx context.Context, id string) (Entity, error)
	Create(ctx context.Context, payload Entity) (Entity, error)
	FindByIDAndUpdate(ctx context.Context, id string, payload Entity) (Entity, error)
	FindByIDAndDelete(ctx context.Context, id string) (Entity, error)
	ValidID(id string) bool
}

// System opens collections on one backing store and ties its connection to the service lifecycle.
type System interface {
	Collection(name string, schema Schema) Collection
	Start(lc *lifecycle.Coordinator) error
}

// Schema lists the constraints a collection enforces when entities are created.
type Schema struct {
	Required []string `toml:"required"`
}

// Validate checks payload against the schema.
func (s Schema) Validate(collection string, payload Entity) error {
	var missing []string
	for _, field := range s.Required {
		v, ok := payload[field]
		if !ok || v == nil || v == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Collection: collection, Missing: missing}
	}
	return nil
}

// PrepareCreate copies payload without reserved fields and stamps both timestamps.
func PrepareCreate(payload Entity, now time.Time) Entity {
	doc := writable(payload)
	doc[FieldCreatedAt] = now
	doc[FieldUpdatedAt] = now
	return doc
}

// PrepareUpdate copies payload without reserved fields and stamps updatedAt.
func PrepareUpdate(payload Entity, now time.Time) Entity {
	doc := writable(payload)
	doc[FieldUpdatedAt] = now
	return doc
}

func writable(payload Entity) Entity {
	doc := make(Entity, len(payload)+2)
	for k, v := range payload {
		switch k {
		case FieldID, "_id", FieldCreatedAt, FieldUpdatedAt:
			continue
		}
		doc[k] = v
	}
	return doc
}
