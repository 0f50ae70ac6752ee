package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/resource-lab/pkg/query"
	"github.com/JaimeStill/resource-lab/pkg/store"
)

type collection struct {
	db     *sql.DB
	name   string
	schema store.Schema
	now    func() time.Time
}

func (c *collection) Name() string {
	return c.name
}

func (c *collection) ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

func (c *collection) Find(ctx context.Context, filter query.Filter, opts store.FindOptions) ([]store.Entity, error) {
	q, args := query.NewBuilder(projection).
		Scope(collectionColumn, c.name).
		WhereFilter(filter).
		OrderBy(opts.Sort).
		BuildFind(opts.Skip, opts.Limit)

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.name, mapError(err))
	}
	defer rows.Close()

	entities := make([]store.Entity, 0)
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.name, err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", c.name, err)
	}
	return entities, nil
}

func (c *collection) Count(ctx context.Context, filter query.Filter) (int, error) {
	q, args := query.NewBuilder(projection).
		Scope(collectionColumn, c.name).
		WhereFilter(filter).
		BuildCount()

	var n int
	if err := c.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", c.name, mapError(err))
	}
	return n, nil
}

func (c *collection) FindByID(ctx context.Context, id string) (store.Entity, error) {
	if !c.ValidID(id) {
		return nil, store.ErrInvalidID
	}

	q := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1 AND id = $2",
		projection.Columns(), table, collectionColumn,
	)
	return c.queryOne(ctx, q, c.name, id)
}

func (c *collection) Create(ctx context.Context, payload store.Entity) (store.Entity, error) {
	if err := c.schema.Validate(c.name, payload); err != nil {
		return nil, err
	}

	now := c.now().UTC()
	data, err := marshalData(store.PrepareCreate(payload, now))
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(
		"INSERT INTO %s (id, %s, %s, created_at, updated_at) VALUES ($1, $2, $3::jsonb, $4, $4) RETURNING %s",
		table, collectionColumn, dataColumn, projection.Columns(),
	)
	return c.queryOne(ctx, q, uuid.New(), c.name, data, now)
}

func (c *collection) FindByIDAndUpdate(ctx context.Context, id string, payload store.Entity) (store.Entity, error) {
	if !c.ValidID(id) {
		return nil, store.ErrInvalidID
	}

	now := c.now().UTC()
	data, err := marshalData(store.PrepareUpdate(payload, now))
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(
		"UPDATE %s SET %s = %s || $1::jsonb, updated_at = $2 WHERE %s = $3 AND id = $4 RETURNING %s",
		table, dataColumn, dataColumn, collectionColumn, projection.Columns(),
	)
	return c.queryOne(ctx, q, data, now, c.name, id)
}

func (c *collection) FindByIDAndDelete(ctx context.Context, id string) (store.Entity, error) {
	if !c.ValidID(id) {
		return nil, store.ErrInvalidID
	}

	q := fmt.Sprintf(
		"DELETE FROM %s WHERE %s = $1 AND id = $2 RETURNING %s",
		table, collectionColumn, projection.Columns(),
	)
	return c.queryOne(ctx, q, c.name, id)
}

func (c *collection) queryOne(ctx context.Context, q string, args ...any) (store.Entity, error) {
	e, err := scanEntity(c.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(s scanner) (store.Entity, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		updatedAt time.Time
		data      []byte
	)
	if err := s.Scan(&id, &createdAt, &updatedAt, &data); err != nil {
		return nil, err
	}
	return decodeEntity(id, createdAt, updatedAt, data)
}

// decodeEntity rebuilds an Entity from its row, overlaying the promoted columns on the document.
func decodeEntity(id uuid.UUID, createdAt, updatedAt time.Time, data []byte) (store.Entity, error) {
	e := store.Entity{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
	}
	e[store.FieldID] = id.String()
	e[store.FieldCreatedAt] = createdAt.UTC()
	e[store.FieldUpdatedAt] = updatedAt.UTC()
	return e, nil
}

// marshalData encodes a prepared document without the fields held in columns.
func marshalData(doc store.Entity) ([]byte, error) {
	delete(doc, store.FieldCreatedAt)
	delete(doc, store.FieldUpdatedAt)

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}
