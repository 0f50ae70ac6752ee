// Package fileserve serves stored upload files by name under configured routes.
package fileserve

import (
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/JaimeStill/resource-lab/pkg/handlers"
	"github.com/JaimeStill/resource-lab/pkg/openapi"
	"github.com/JaimeStill/resource-lab/pkg/routes"
	"github.com/JaimeStill/resource-lab/pkg/storage"
)

// Response messages.
const (
	MsgInvalidRoute = "Invalid Routes!"
	MsgNotFound     = "File not found"
)

// ErrInvalidName indicates a requested file name that escapes or does not name a single file.
var ErrInvalidName = errors.New("invalid file name")

// Handler serves the files of one configured folder.
type Handler struct {
	cfg     *Config
	storage storage.System
	logger  *slog.Logger
}

// NewHandler creates a handler for cfg. cfg must be finalized.
func NewHandler(cfg *Config, st storage.System, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:     cfg,
		storage: st,
		logger:  logger.With("files", cfg.Route),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      h.cfg.Route,
		Tags:        []string{"files"},
		Description: "Stored files under " + h.cfg.Folder(),
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "/{fileName}",
				Handler: h.Serve,
				OpenAPI: &openapi.Operation{
					Summary:    "Download a stored file",
					Parameters: []*openapi.Parameter{openapi.PathParam("fileName", "Stored file name")},
					Responses: map[int]*openapi.Response{
						200: {Description: "File contents"},
						400: openapi.ResponseJSON("Invalid file name", "Message"),
						404: openapi.ResponseJSON("File not found", "Message"),
					},
				},
			},
		},
	}
}

// Serve handles GET {route}/{fileName}.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	key, err := h.key(r.PathValue("fileName"))
	if err != nil {
		h.reject(w, http.StatusBadRequest, MsgInvalidRoute, err)
		return
	}

	full, err := h.storage.Path(key)
	if err != nil {
		h.reject(w, http.StatusBadRequest, MsgInvalidRoute, err)
		return
	}

	ok, err := h.storage.Validate(r.Context(), key)
	if err != nil {
		h.reject(w, http.StatusBadRequest, MsgInvalidRoute, err)
		return
	}
	if !ok {
		h.reject(w, http.StatusNotFound, MsgNotFound, nil)
		return
	}

	http.ServeFile(w, r, full)
}

// key resolves name inside the configured folder.
func (h *Handler) key(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return "", ErrInvalidName
	}
	return path.Join(h.cfg.Folder(), name), nil
}

func (h *Handler) reject(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		h.logger.Warn("file request rejected", "error", err, "status", status)
	}
	handlers.RespondJSON(w, status, map[string]string{"message": message})
}
