package resource

import (
	"fmt"

	"github.com/JaimeStill/resource-lab/pkg/openapi"
)

// spec holds the OpenAPI operations for one configured resource.
type spec struct {
	List   *openapi.Operation
	Get    *openapi.Operation
	Create *openapi.Operation
	Update *openapi.Operation
	Delete *openapi.Operation
}

func newSpec(cfg *Config) spec {
	id := openapi.PathParam("id", fmt.Sprintf("%s identifier", cfg.Name))

	list := []*openapi.Parameter{
		openapi.QueryParam("page", "integer", "Page number (1-indexed). Omit to list every entity", false),
		openapi.QueryParam("pageSize", "integer", "Results per page when page is set", false),
	}
	for _, f := range cfg.Filters {
		list = append(list, openapi.QueryParam(f, "string", "Equality filter on "+f, false))
	}

	body := openapi.RequestBodyJSON("Payload", false)
	if cfg.Upload != nil {
		body = openapi.RequestBodyMultipart("Payload", cfg.Upload.FieldNames())
	}

	return spec{
		List: &openapi.Operation{
			Summary:     "List " + cfg.Name,
			Description: "Returns every matching entity, or one page wrapped with paging metadata when page is set",
			Parameters:  list,
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Entities or a page of entities", "EntityPage"),
				500: openapi.ResponseRef("InternalError"),
			},
		},
		Get: &openapi.Operation{
			Summary:    fmt.Sprintf("Get %s by ID", cfg.Name),
			Parameters: []*openapi.Parameter{id},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Entity", "Entity"),
				400: openapi.ResponseRef("BadRequest"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Create: &openapi.Operation{
			Summary:     "Create " + cfg.Name,
			RequestBody: body,
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created entity", "Entity"),
				400: openapi.ResponseRef("BadRequest"),
				500: openapi.ResponseRef("InternalError"),
			},
		},
		Update: &openapi.Operation{
			Summary:     "Update " + cfg.Name,
			Description: "Sets the supplied fields and returns the updated entity",
			Parameters:  []*openapi.Parameter{id},
			RequestBody: body,
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Updated entity", "Entity"),
				400: openapi.ResponseRef("BadRequest"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete " + cfg.Name,
			Parameters: []*openapi.Parameter{id},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Deletion acknowledged", "Message"),
				400: openapi.ResponseRef("BadRequest"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}
}
