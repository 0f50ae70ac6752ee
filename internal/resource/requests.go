package resource

import (
	"github.com/JaimeStill/resource-lab/internal/intake"
	"github.com/JaimeStill/resource-lab/pkg/pagination"
	"github.com/JaimeStill/resource-lab/pkg/query"
	"github.com/JaimeStill/resource-lab/pkg/store"
)

// ListRequest carries allow-listed filters and an optional page. A nil Page lists everything.
type ListRequest struct {
	Filters query.Filter
	Page    *pagination.PageRequest
}

// IDRequest addresses one entity.
type IDRequest struct {
	ID string
}

// CreateRequest carries the payload of a new entity.
type CreateRequest struct {
	Payload store.Entity
}

// UpdateRequest carries the fields to set on an existing entity.
type UpdateRequest struct {
	ID      string
	Payload store.Entity
}

// UploadRequest carries a payload plus an optional multipart source.
// ID is ignored on create.
type UploadRequest struct {
	ID      string
	Payload store.Entity
	Source  intake.Source
}

// Response is the outcome of an operation: an HTTP status and a JSON-encodable body.
// Failed operations carry an *Error body.
type Response struct {
	Status int
	Body   any
}

// Err returns the failure carried by the response, or nil.
func (r Response) Err() error {
	if e, ok := r.Body.(*Error); ok {
		return e
	}
	return nil
}
