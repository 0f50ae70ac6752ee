package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/JaimeStill/resource-lab/internal/intake"
	"github.com/JaimeStill/resource-lab/pkg/handlers"
	"github.com/JaimeStill/resource-lab/pkg/pagination"
	"github.com/JaimeStill/resource-lab/pkg/query"
	"github.com/JaimeStill/resource-lab/pkg/routes"
	"github.com/JaimeStill/resource-lab/pkg/store"
)

// Handler binds a resource's operations to HTTP.
type Handler struct {
	cfg        *Config
	spec       spec
	ctrl       *Controller
	uploads    *UploadController
	pagination pagination.Config
	logger     *slog.Logger
}

// NewHandler creates a handler for ctrl. uploads may be nil for resources without file intake.
func NewHandler(cfg *Config, ctrl *Controller, uploads *UploadController, pagination pagination.Config, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:        cfg,
		spec:       newSpec(cfg),
		ctrl:       ctrl,
		uploads:    uploads,
		pagination: pagination,
		logger:     logger.With("resource", cfg.Name),
	}
}

// Routes returns the route group for the resource.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/" + h.cfg.Name,
		Tags:        []string{h.cfg.Name},
		Description: fmt.Sprintf("%s resource", h.cfg.Name),
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.guard(h.List), OpenAPI: h.spec.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.guard(h.GetByID), OpenAPI: h.spec.Get},
			{Method: "POST", Pattern: "", Handler: h.guard(h.Create), OpenAPI: h.spec.Create},
			{Method: "PUT", Pattern: "/{id}", Handler: h.guard(h.Update), OpenAPI: h.spec.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.guard(h.Delete), OpenAPI: h.spec.Delete},
		},
	}
}

// List handles GET /{name}. Pagination applies only when the page parameter is present.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	h.write(w, h.ctrl.List(r.Context(), ListRequest{
		Filters: query.FilterFromQuery(values, h.cfg.Filters),
		Page:    pagination.PageRequestFromQuery(values, h.pagination),
	}))
}

// GetByID handles GET /{name}/{id}.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	h.write(w, h.ctrl.GetByID(r.Context(), IDRequest{ID: r.PathValue("id")}))
}

// Create handles POST /{name}.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.uploads != nil {
		req, fail := h.uploadRequest(r)
		if fail != nil {
			h.write(w, *fail)
			return
		}
		h.write(w, h.uploads.Create(r.Context(), req))
		return
	}

	payload, err := decodePayload(r)
	if err != nil {
		h.write(w, invalidBody(err))
		return
	}
	h.write(w, h.ctrl.Create(r.Context(), CreateRequest{Payload: payload}))
}

// Update handles PUT /{name}/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if h.uploads != nil {
		// Reject a malformed id before the body is read or any file is stored.
		if !h.ctrl.ValidID(id) {
			h.write(w, invalidID())
			return
		}
		req, fail := h.uploadRequest(r)
		if fail != nil {
			h.write(w, *fail)
			return
		}
		req.ID = id
		h.write(w, h.uploads.Update(r.Context(), req))
		return
	}

	if !h.ctrl.ValidID(id) {
		h.write(w, invalidID())
		return
	}

	payload, err := decodePayload(r)
	if err != nil {
		h.write(w, invalidBody(err))
		return
	}
	h.write(w, h.ctrl.Update(r.Context(), UpdateRequest{ID: id, Payload: payload}))
}

// Delete handles DELETE /{name}/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.write(w, h.ctrl.Delete(r.Context(), IDRequest{ID: r.PathValue("id")}))
}

// uploadRequest streams multipart bodies; any other body is decoded as a JSON payload.
func (h *Handler) uploadRequest(r *http.Request) (UploadRequest, *Response) {
	if isMultipart(r) {
		mr, err := r.MultipartReader()
		if err != nil {
			resp := uploadFailure(fmt.Errorf("%w: %v", intake.ErrMalformed, err))
			return UploadRequest{}, &resp
		}
		return UploadRequest{Payload: store.Entity{}, Source: mr}, nil
	}

	payload, err := decodePayload(r)
	if err != nil {
		resp := invalidBody(err)
		return UploadRequest{}, &resp
	}
	return UploadRequest{Payload: payload}, nil
}

func (h *Handler) write(w http.ResponseWriter, resp Response) {
	if err := resp.Err(); err != nil {
		handlers.RespondError(w, h.logger, resp.Status, err)
		return
	}
	handlers.RespondJSON(w, resp.Status, resp.Body)
}

// guard converts a panic in next into an internal failure response.
func (h *Handler) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				h.logger.Error("handler panic", "panic", v, "method", r.Method, "path", r.URL.Path)
				h.write(w, internal(fmt.Errorf("%v", v)))
			}
		}()
		next(w, r)
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// decodePayload reads a JSON object body. An empty body is an empty payload.
func decodePayload(r *http.Request) (store.Entity, error) {
	payload := store.Entity{}
	if r.Body == nil {
		return payload, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return store.Entity{}, nil
		}
		return nil, err
	}
	if payload == nil {
		return store.Entity{}, nil
	}
	return payload, nil
}
