package resource_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/resource-lab/internal/intake"
	"github.com/JaimeStill/resource-lab/internal/resource"
	"github.com/JaimeStill/resource-lab/pkg/storage"
	"github.com/JaimeStill/resource-lab/pkg/store"
)

type part struct {
	field    string
	filename string
	content  string
}

func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, *multipart.Writer) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range parts {
		var dst io.Writer
		var err error
		if p.filename != "" {
			dst, err = w.CreateFormFile(p.field, p.filename)
		} else {
			dst, err = w.CreateFormField(p.field)
		}
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		io.WriteString(dst, p.content)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w
}

func multipartSource(t *testing.T, parts ...part) intake.Source {
	t.Helper()
	buf, w := multipartBody(t, parts...)
	return multipart.NewReader(buf, w.Boundary())
}

type uploadFixture struct {
	*fixture
	dir     string
	uploads *resource.UploadController
}

func newUploadFixture(t *testing.T, cfg resource.Config, maxBytes int64) *uploadFixture {
	t.Helper()
	f := newFixture(t, cfg)
	dir := t.TempDir()

	st, err := storage.New(&storage.Config{BasePath: dir}, testLogger())
	if err != nil {
		t.Fatalf("storage.New() failed: %v", err)
	}

	in := intake.New(st, maxBytes, testLogger())
	return &uploadFixture{
		fixture: f,
		dir:     dir,
		uploads: resource.NewUploadController(f.ctrl, f.cfg.Upload, in, st, testLogger()),
	}
}

func (f *uploadFixture) stored(t *testing.T) []string {
	t.Helper()
	var names []string
	filepath.WalkDir(f.dir, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			rel, _ := filepath.Rel(f.dir, path)
			names = append(names, filepath.ToSlash(rel))
		}
		return nil
	})
	return names
}

func singleUpload() resource.Config {
	return resource.Config{
		Name:   "users",
		Upload: &resource.UploadConfig{Field: "avatar"},
	}
}

func multiUpload() resource.Config {
	return resource.Config{
		Name:   "products",
		Upload: &resource.UploadConfig{Folder: "catalog", Fields: []string{"image", "manual"}},
	}
}

func TestUploadCreate_StoresFile(t *testing.T) {
	f := newUploadFixture(t, singleUpload(), 1<<20)

	resp := f.uploads.Create(context.Background(), resource.UploadRequest{
		Payload: store.Entity{},
		Source: multipartSource(t,
			part{field: "name", content: "alice"},
			part{field: "avatar", filename: "a.png", content: "png-bytes"},
		),
	})
	if resp.Status != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%v)", resp.Status, resp.Err())
	}

	e := resp.Body.(store.Entity)
	if e["avatar"] != "a.png" || e["name"] != "alice" {
		t.Errorf("entity = %v, want avatar=a.png name=alice", e)
	}

	data, err := os.ReadFile(filepath.Join(f.dir, "users", "a.png"))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("stored content = %q", data)
	}
}

// Scenario D.
func TestUploadCreate_SingleWithoutFile(t *testing.T) {
	f := newUploadFixture(t, singleUpload(), 1<<20)

	resp := f.uploads.Create(context.Background(), resource.UploadRequest{
		Payload: store.Entity{},
		Source:  multipartSource(t, part{field: "name", content: "bob"}),
	})
	if resp.Status != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%v)", resp.Status, resp.Err())
	}

	e := resp.Body.(store.Entity)
	if _, ok := e["avatar"]; ok {
		t.Errorf("avatar = %v, want absent", e["avatar"])
	}
	if e["name"] != "bob" {
		t.Errorf("name = %v, want bob", e["name"])
	}
	if names := f.stored(t); len(names) != 0 {
		t.Errorf("stored = %v, want none", names)
	}
}

func TestUploadUpdate_SingleWithoutFileKeepsField(t *testing.T) {
	f := newUploadFixture(t, singleUpload(), 1<<20)
	created := f.seed(t, store.Entity{"name": "x", "avatar": "old.png"})[0]

	resp := f.uploads.Update(context.Background(), resource.UploadRequest{
		ID:      created.ID(),
		Payload: store.Entity{},
		Source:  multipartSource(t, part{field: "name", content: "y"}),
	})
	if resp.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%v)", resp.Status, resp.Err())
	}

	e := resp.Body.(store.Entity)
	if e["avatar"] != "old.png" || e["name"] != "y" {
		t.Errorf("entity = %v, want avatar kept and name=y", e)
	}
}

func TestUploadUpdate_MultiMissingFieldsCleared(t *testing.T) {
	f := newUploadFixture(t, multiUpload(), 1<<20)
	created := f.seed(t, store.Entity{"name": "x", "image": "i.png", "manual": "m.pdf"})[0]

	resp := f.uploads.Update(context.Background(), resource.UploadRequest{
		ID:      created.ID(),
		Payload: store.Entity{},
		Source:  multipartSource(t, part{field: "image", filename: "new.png", content: "img"}),
	})
	if resp.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%v)", resp.Status, resp.Err())
	}

	e := resp.Body.(store.Entity)
	if e["image"] != "new.png" {
		t.Errorf("image = %v, want new.png", e["image"])
	}
	if v, ok := e["manual"]; !ok || v != resource.MissingFile {
		t.Errorf("manual = %v (present %t), want %q", v, ok, resource.MissingFile)
	}

	if _, err := os.Stat(filepath.Join(f.dir, "catalog", "new.png")); err != nil {
		t.Errorf("file not stored under configured folder: %v", err)
	}
}

func TestUploadCreate_UnexpectedField(t *testing.T) {
	f := newUploadFixture(t, singleUpload(), 1<<20)

	resp := f.uploads.Create(context.Background(), resource.UploadRequest{
		Payload: store.Entity{},
		Source: multipartSource(t,
			part{field: "avatar", filename: "a.png", content: "ok"},
			part{field: "resume", filename: "r.pdf", content: "nope"},
		),
	})
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Status)
	}
	if key := errorKey(t, resp); key != "upload_failure" {
		t.Errorf("key = %q, want upload_failure", key)
	}
	if !errors.Is(resp.Err(), resource.ErrUploadFailure) {
		t.Errorf("Err() = %v, want ErrUploadFailure", resp.Err())
	}
	if names := f.stored(t); len(names) != 0 {
		t.Errorf("stored = %v, want cleanup of partial writes", names)
	}
	if f.count(t) != 0 {
		t.Error("entity persisted despite upload failure")
	}
}

func TestUploadCreate_TooLarge(t *testing.T) {
	f := newUploadFixture(t, singleUpload(), 8)

	resp := f.uploads.Create(context.Background(), resource.UploadRequest{
		Payload: store.Entity{},
		Source:  multipartSource(t, part{field: "avatar", filename: "big.bin", content: "0123456789abcdef"}),
	})
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Status)
	}
	if msg := resp.Err().Error(); msg != intake.ErrTooLarge.Error() {
		t.Errorf("message = %q, want %q", msg, intake.ErrTooLarge.Error())
	}
	if f.count(t) != 0 {
		t.Error("entity persisted despite upload failure")
	}
}

func TestUploadUpdate_InvalidIDStoresNothing(t *testing.T) {
	f := newUploadFixture(t, singleUpload(), 1<<20)

	resp := f.uploads.Update(context.Background(), resource.UploadRequest{
		ID:      "bogus",
		Payload: store.Entity{},
		Source:  multipartSource(t, part{field: "avatar", filename: "a.png", content: "x"}),
	})
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Status)
	}
	if key := errorKey(t, resp); key != "invalid_id" {
		t.Errorf("key = %q, want invalid_id", key)
	}
	if names := f.stored(t); len(names) != 0 {
		t.Errorf("stored = %v, want none", names)
	}
	if n := f.coll.calls.Load(); n != 0 {
		t.Errorf("store calls = %d, want 0", n)
	}
}

func TestUploadUpdate_NotFoundKeepsFile(t *testing.T) {
	f := newUploadFixture(t, singleUpload(), 1<<20)

	resp := f.uploads.Update(context.Background(), resource.UploadRequest{
		ID:      missingID,
		Payload: store.Entity{},
		Source:  multipartSource(t, part{field: "avatar", filename: "a.png", content: "x"}),
	})
	if resp.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Status)
	}
	if names := f.stored(t); len(names) != 1 || names[0] != "users/a.png" {
		t.Errorf("stored = %v, want [users/a.png]", names)
	}
}

func TestUploadCreate_JSONPayloadWithoutSource(t *testing.T) {
	f := newUploadFixture(t, multiUpload(), 1<<20)

	resp := f.uploads.Create(context.Background(), resource.UploadRequest{
		Payload: store.Entity{"name": "plain"},
	})
	if resp.Status != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%v)", resp.Status, resp.Err())
	}

	e := resp.Body.(store.Entity)
	if e["image"] != resource.MissingFile || e["manual"] != resource.MissingFile {
		t.Errorf("entity = %v, want both file fields set to the missing sentinel", e)
	}
	if _, err := os.Stat(filepath.Join(f.dir, "catalog")); err != nil {
		t.Errorf("upload folder not ensured: %v", err)
	}
}
