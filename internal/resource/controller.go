// Package resource implements generic CRUD over a store collection,
// with optional file upload on create and update.
package resource

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/resource-lab/pkg/pagination"
	"github.com/JaimeStill/resource-lab/pkg/query"
	"github.com/JaimeStill/resource-lab/pkg/store"
)

// Operations is the contract every resource exposes.
type Operations interface {
	List(ctx context.Context, req ListRequest) Response
	GetByID(ctx context.Context, req IDRequest) Response
	Create(ctx context.Context, req CreateRequest) Response
	Update(ctx context.Context, req UpdateRequest) Response
	Delete(ctx context.Context, req IDRequest) Response
}

// Controller binds Operations to one collection. It holds no mutable state.
type Controller struct {
	name   string
	coll   store.Collection
	sort   *query.Sort
	logger *slog.Logger
}

// NewController creates a controller for cfg over coll. cfg must be finalized.
func NewController(cfg *Config, coll store.Collection, logger *slog.Logger) *Controller {
	return &Controller{
		name:   cfg.Name,
		coll:   coll,
		sort:   query.ParseSort(cfg.OrderBy),
		logger: logger.With("resource", cfg.Name),
	}
}

// Name returns the resource name.
func (c *Controller) Name() string {
	return c.name
}

// ValidID reports whether id has the collection's identifier format.
func (c *Controller) ValidID(id string) bool {
	return c.coll.ValidID(id)
}

// List returns every matching entity, or one page of them wrapped in a PageResult.
// The count and the page are read separately and may disagree under concurrent writes.
func (c *Controller) List(ctx context.Context, req ListRequest) Response {
	opts := store.FindOptions{Sort: c.sort}

	if req.Page == nil {
		items, err := c.coll.Find(ctx, req.Filters, opts)
		if err != nil {
			return c.fail("list", err)
		}
		return Response{Status: http.StatusOK, Body: items}
	}

	total, err := c.coll.Count(ctx, req.Filters)
	if err != nil {
		return c.fail("count", err)
	}

	opts.Skip = req.Page.Offset()
	opts.Limit = req.Page.PageSize

	var items []store.Entity
	if opts.Skip < total {
		items, err = c.coll.Find(ctx, req.Filters, opts)
		if err != nil {
			return c.fail("list", err)
		}
	}

	return Response{
		Status: http.StatusOK,
		Body:   pagination.NewPageResult(items, total, req.Page.Page, req.Page.PageSize),
	}
}

func (c *Controller) GetByID(ctx context.Context, req IDRequest) Response {
	if !c.coll.ValidID(req.ID) {
		return invalidID()
	}

	entity, err := c.coll.FindByID(ctx, req.ID)
	if err != nil {
		return c.fail("get", err)
	}
	return Response{Status: http.StatusOK, Body: entity}
}

// Create persists a new entity. Every store failure, validation included, is an internal failure.
func (c *Controller) Create(ctx context.Context, req CreateRequest) Response {
	entity, err := c.coll.Create(ctx, req.Payload)
	if err != nil {
		c.logger.Error("create failed", "error", err)
		return internal(err)
	}
	return Response{Status: http.StatusCreated, Body: entity}
}

// Update sets the payload fields on an entity and returns the updated entity.
func (c *Controller) Update(ctx context.Context, req UpdateRequest) Response {
	if !c.coll.ValidID(req.ID) {
		return invalidID()
	}

	entity, err := c.coll.FindByIDAndUpdate(ctx, req.ID, req.Payload)
	if err != nil {
		return c.fail("update", err)
	}
	return Response{Status: http.StatusOK, Body: entity}
}

func (c *Controller) Delete(ctx context.Context, req IDRequest) Response {
	if !c.coll.ValidID(req.ID) {
		return invalidID()
	}

	if _, err := c.coll.FindByIDAndDelete(ctx, req.ID); err != nil {
		return c.fail("delete", err)
	}
	return Response{Status: http.StatusOK, Body: map[string]string{"message": "success"}}
}

func (c *Controller) fail(op string, err error) Response {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return notFound()
	case errors.Is(err, store.ErrInvalidID):
		return invalidID()
	}
	c.logger.Error(op+" failed", "error", err)
	return internal(err)
}
