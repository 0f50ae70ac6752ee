// Package intake receives multipart uploads into blob storage.
package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/JaimeStill/resource-lab/pkg/storage"
	"github.com/google/uuid"
)

// Source yields the parts of a multipart body. *multipart.Reader satisfies it.
type Source interface {
	NextPart() (*multipart.Part, error)
}

// Spec describes which file fields an upload accepts and where files are stored.
type Spec struct {
	// Folder is the storage key prefix for stored files.
	Folder string
	// Fields lists the form fields that may carry one file each.
	Fields []string
}

// UploadedFile describes one stored file.
type UploadedFile struct {
	FieldName        string
	OriginalFilename string
	StoredPath       string
}

// Result holds the text values and files received from one request.
type Result struct {
	Values map[string]string
	Files  []UploadedFile
}

// File returns the file received for field, if any.
func (r *Result) File(field string) (UploadedFile, bool) {
	for _, f := range r.Files {
		if f.FieldName == field {
			return f, true
		}
	}
	return UploadedFile{}, false
}

// Intake streams multipart bodies into storage.
type Intake interface {
	// Receive consumes src. Files are staged and only replace their final keys
	// once every part has been received. On error, staged files are removed and
	// existing files are left untouched.
	Receive(ctx context.Context, src Source, spec Spec) (*Result, error)
}

type intake struct {
	storage  storage.System
	maxBytes int64
	logger   *slog.Logger
}

// New creates an Intake writing through store. maxBytes bounds the combined size
// of all parts of one request.
func New(store storage.System, maxBytes int64, logger *slog.Logger) Intake {
	return &intake{
		storage:  store,
		maxBytes: maxBytes,
		logger:   logger.With("system", "intake"),
	}
}

func (in *intake) Receive(ctx context.Context, src Source, spec Spec) (*Result, error) {
	result := &Result{Values: make(map[string]string)}
	budget := &budget{remaining: in.maxBytes}
	var staged []string

	for {
		part, err := src.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			in.discard(ctx, staged)
			return nil, classify(err)
		}

		key, err := in.receivePart(ctx, part, spec, budget, result)
		part.Close()
		if key != "" {
			staged = append(staged, key)
		}
		if err != nil {
			in.discard(ctx, staged)
			return nil, err
		}
	}

	if err := in.commit(ctx, staged, result); err != nil {
		return nil, err
	}
	return result, nil
}

// receivePart consumes one part. For file parts it returns the staging key
// written, which is set whenever anything reached storage.
func (in *intake) receivePart(ctx context.Context, part *multipart.Part, spec Spec, b *budget, result *Result) (string, error) {
	field := part.FormName()
	r := &limitedReader{r: part, budget: b}

	if part.FileName() == "" {
		value, err := io.ReadAll(r)
		if err != nil {
			return "", classify(err)
		}
		result.Values[field] = string(value)
		return "", nil
	}

	if !slices.Contains(spec.Fields, field) {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedField, field)
	}
	if _, ok := result.File(field); ok {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedField, field)
	}

	name, err := sanitizeFilename(part.FileName())
	if err != nil {
		return "", err
	}

	stage := stagingKey(spec.Folder, name)
	n, err := in.storage.Store(ctx, stage, r)
	if err != nil {
		return "", classify(err)
	}

	key := path.Join(spec.Folder, name)
	in.logger.Debug("file staged", "field", field, "key", key, "bytes", n)
	result.Files = append(result.Files, UploadedFile{
		FieldName:        field,
		OriginalFilename: name,
		StoredPath:       key,
	})
	return stage, nil
}

// commit moves staged files onto their final keys, in receipt order.
func (in *intake) commit(ctx context.Context, staged []string, result *Result) error {
	for i, stage := range staged {
		if err := in.storage.Move(ctx, stage, result.Files[i].StoredPath); err != nil {
			in.discard(ctx, staged[i:])
			return fmt.Errorf("commit %s: %w", result.Files[i].StoredPath, err)
		}
	}
	return nil
}

// discard removes staged files of a failed request.
func (in *intake) discard(ctx context.Context, staged []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range staged {
		if err := in.storage.Delete(ctx, key); err != nil {
			in.logger.Warn("staged upload cleanup failed", "key", key, "error", err)
		}
	}
}

func stagingKey(folder, name string) string {
	return path.Join(folder, ".upload-"+uuid.NewString()+"-"+name)
}

// sanitizeFilename keeps only the base name of a client-supplied filename.
func sanitizeFilename(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.TrimSpace(name)

	if name == "" || name == "." || name == ".." || name == "/" || strings.ContainsRune(name, 0) {
		return "", ErrInvalidFilename
	}
	return name, nil
}

func classify(err error) error {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, ErrTooLarge), errors.As(err, &maxErr):
		return ErrTooLarge
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, multipart.ErrMessageTooLarge):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, storage.ErrInvalidKey):
		return ErrInvalidFilename
	}
	if strings.Contains(err.Error(), "multipart") {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return err
}

type budget struct {
	remaining int64
}

// limitedReader fails with ErrTooLarge once the shared budget is exhausted.
type limitedReader struct {
	r      io.Reader
	budget *budget
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.budget.remaining <= 0 {
		// Probe for one more byte to tell an exact fit from an overflow.
		var one [1]byte
		n, err := l.r.Read(one[:])
		if n > 0 {
			return 0, ErrTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > l.budget.remaining {
		p = p[:l.budget.remaining]
	}
	n, err := l.r.Read(p)
	l.budget.remaining -= int64(n)
	return n, err
}
