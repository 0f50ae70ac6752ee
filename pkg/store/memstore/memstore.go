// Package memstore provides an in-memory store.System for development and tests.
// Identifiers use the MongoDB ObjectID hex format so resources behave the same
// way they do against the document store.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaimeStill/resource-lab/pkg/lifecycle"
	"github.com/JaimeStill/resource-lab/pkg/query"
	"github.com/JaimeStill/resource-lab/pkg/store"
)

type memory struct {
	mu          sync.Mutex
	collections map[string]*collection
	logger      *slog.Logger
	now         func() time.Time
}

// New creates an empty in-memory store.
func New(logger *slog.Logger) store.System {
	return NewWithClock(logger, time.Now)
}

// NewWithClock creates an empty in-memory store that stamps timestamps from now.
func NewWithClock(logger *slog.Logger, now func() time.Time) store.System {
	return &memory{
		collections: make(map[string]*collection),
		logger:      logger.With("system", "store", "driver", "memory"),
		now:         now,
	}
}

func (m *memory) Start(lc *lifecycle.Coordinator) error {
	m.logger.Info("starting in-memory store")
	return nil
}

// Collection returns the named collection, creating it on first use.
// Collections opened twice share their entities; the most recent schema applies.
func (m *memory) Collection(name string, schema store.Schema) store.Collection {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[name]
	if !ok {
		c = &collection{
			name:     name,
			entities: make(map[string]store.Entity),
			now:      m.now,
		}
		m.collections[name] = c
	}
	c.schema = schema
	return c
}

type collection struct {
	mu       sync.RWMutex
	name     string
	schema   store.Schema
	order    []string
	entities map[string]store.Entity
	now      func() time.Time
}

func (c *collection) Name() string {
	return c.name
}

func (c *collection) ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

func (c *collection) Find(ctx context.Context, filter query.Filter, opts store.FindOptions) ([]store.Entity, error) {
	c.mu.RLock()
	matched := make([]store.Entity, 0)
	for _, id := range c.order {
		e := c.entities[id]
		if matches(e, filter) {
			matched = append(matched, clone(e))
		}
	}
	c.mu.RUnlock()

	if opts.Sort != nil {
		field := opts.Sort.Field
		desc := opts.Sort.Descending
		sort.SliceStable(matched, func(i, j int) bool {
			order := compare(matched[i][field], matched[j][field])
			if desc {
				return order > 0
			}
			return order < 0
		})
	}

	return window(matched, opts.Skip, opts.Limit), nil
}

func (c *collection) Count(ctx context.Context, filter query.Filter) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, e := range c.entities {
		if matches(e, filter) {
			n++
		}
	}
	return n, nil
}

func (c *collection) FindByID(ctx context.Context, id string) (store.Entity, error) {
	if !c.ValidID(id) {
		return nil, store.ErrInvalidID
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entities[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(e), nil
}

func (c *collection) Create(ctx context.Context, payload store.Entity) (store.Entity, error) {
	if err := c.schema.Validate(c.name, payload); err != nil {
		return nil, err
	}

	doc := store.PrepareCreate(payload, c.now())
	id := primitive.NewObjectID().Hex()
	doc[store.FieldID] = id

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entities[id] = doc
	c.order = append(c.order, id)
	return clone(doc), nil
}

func (c *collection) FindByIDAndUpdate(ctx context.Context, id string, payload store.Entity) (store.Entity, error) {
	if !c.ValidID(id) {
		return nil, store.ErrInvalidID
	}

	set := store.PrepareUpdate(payload, c.now())

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entities[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	for k, v := range set {
		e[k] = v
	}
	return clone(e), nil
}

func (c *collection) FindByIDAndDelete(ctx context.Context, id string) (store.Entity, error) {
	if !c.ValidID(id) {
		return nil, store.ErrInvalidID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entities[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(c.entities, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return e, nil
}

func matches(e store.Entity, filter query.Filter) bool {
	for field, want := range filter {
		got, ok := e[field]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func window(entities []store.Entity, skip, limit int) []store.Entity {
	if skip >= len(entities) {
		return []store.Entity{}
	}
	if skip > 0 {
		entities = entities[skip:]
	}
	if limit > 0 && limit < len(entities) {
		entities = entities[:limit]
	}
	return entities
}

func clone(e store.Entity) store.Entity {
	c := make(store.Entity, len(e))
	for k, v := range e {
		c[k] = v
	}
	return c
}

// compare orders values of the same kind; missing values sort first,
// mixed kinds fall back to their string forms.
func compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return cmp.Compare(boolRank(av), boolRank(bv))
		}
	}

	if af, ok := number(a); ok {
		if bf, ok := number(b); ok {
			return cmp.Compare(af, bf)
		}
	}

	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

