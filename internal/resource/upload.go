package resource

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/resource-lab/internal/intake"
	"github.com/JaimeStill/resource-lab/pkg/storage"
	"github.com/JaimeStill/resource-lab/pkg/store"
)

// MissingFile is written to every multi-mode field that received no file.
const MissingFile = ""

// UploadController runs file intake before delegating Create and Update to a Controller.
// Files from a successful intake stay stored even if persistence then fails.
type UploadController struct {
	base    *Controller
	cfg     *UploadConfig
	intake  intake.Intake
	storage storage.System
	logger  *slog.Logger
}

// NewUploadController wraps base with the upload mode described by cfg.
func NewUploadController(base *Controller, cfg *UploadConfig, in intake.Intake, st storage.System, logger *slog.Logger) *UploadController {
	return &UploadController{
		base:    base,
		cfg:     cfg,
		intake:  in,
		storage: st,
		logger:  logger.With("resource", base.Name(), "upload", cfg.Folder),
	}
}

// Base returns the wrapped controller.
func (u *UploadController) Base() *Controller {
	return u.base
}

func (u *UploadController) Create(ctx context.Context, req UploadRequest) Response {
	payload, fail := u.receive(ctx, req)
	if fail != nil {
		return *fail
	}
	return u.base.Create(ctx, CreateRequest{Payload: payload})
}

// Update validates the identifier before any file is received.
func (u *UploadController) Update(ctx context.Context, req UploadRequest) Response {
	if !u.base.ValidID(req.ID) {
		return invalidID()
	}

	payload, fail := u.receive(ctx, req)
	if fail != nil {
		return *fail
	}
	return u.base.Update(ctx, UpdateRequest{ID: req.ID, Payload: payload})
}

func (u *UploadController) receive(ctx context.Context, req UploadRequest) (store.Entity, *Response) {
	if err := u.storage.EnsureDir(ctx, u.cfg.Folder); err != nil {
		u.logger.Error("upload destination unavailable", "error", err)
		resp := uploadFailure(fmt.Errorf("upload destination unavailable: %w", err))
		return nil, &resp
	}

	result := &intake.Result{Values: map[string]string{}}
	if req.Source != nil {
		var err error
		result, err = u.intake.Receive(ctx, req.Source, intake.Spec{
			Folder: u.cfg.Folder,
			Fields: u.cfg.FieldNames(),
		})
		if err != nil {
			u.logger.Warn("upload rejected", "error", err)
			resp := uploadFailure(err)
			return nil, &resp
		}
	}

	return u.merge(req.Payload, result), nil
}

// merge copies payload, overlays multipart text values, then records received filenames.
// Single mode leaves an unfilled field untouched; multi mode writes MissingFile.
func (u *UploadController) merge(payload store.Entity, result *intake.Result) store.Entity {
	out := make(store.Entity, len(payload)+len(result.Values)+len(u.cfg.FieldNames()))
	for k, v := range payload {
		out[k] = v
	}
	for k, v := range result.Values {
		out[k] = v
	}

	for _, field := range u.cfg.FieldNames() {
		if f, ok := result.File(field); ok {
			out[field] = f.OriginalFilename
		} else if u.cfg.Multi() {
			out[field] = MissingFile
		}
	}
	return out
}
