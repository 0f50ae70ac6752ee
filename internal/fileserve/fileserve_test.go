package fileserve_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/resource-lab/internal/fileserve"
	"github.com/JaimeStill/resource-lab/pkg/routes"
	"github.com/JaimeStill/resource-lab/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServer(t *testing.T, cfg fileserve.Config) (storage.System, *httptest.Server) {
	t.Helper()
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	st, err := storage.New(&storage.Config{BasePath: t.TempDir()}, testLogger())
	if err != nil {
		t.Fatalf("storage.New() failed: %v", err)
	}

	r := routes.New(testLogger())
	r.RegisterGroup(fileserve.NewHandler(&cfg, st, testLogger()).Routes())

	srv := httptest.NewServer(r.Build())
	t.Cleanup(srv.Close)
	return st, srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func message(t *testing.T, body string) string {
	t.Helper()
	var decoded map[string]string
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		t.Fatalf("body %q is not JSON: %v", body, err)
	}
	return decoded["message"]
}

func TestServe_StoredFile(t *testing.T) {
	st, srv := newServer(t, fileserve.Config{Route: "/uploads/avatars", Segments: []string{"users"}})

	if _, err := st.Store(context.Background(), "users/a.txt", strings.NewReader("hello")); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	status, body := get(t, srv.URL+"/uploads/avatars/a.txt")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body != "hello" {
		t.Errorf("body = %q, want hello", body)
	}
}

func TestServe_NestedSegments(t *testing.T) {
	st, srv := newServer(t, fileserve.Config{Route: "manuals", Segments: []string{"catalog", "docs"}})

	st.Store(context.Background(), "catalog/docs/m.pdf", strings.NewReader("pdf"))

	if status, body := get(t, srv.URL+"/manuals/m.pdf"); status != http.StatusOK || body != "pdf" {
		t.Errorf("GET = %d %q, want 200 pdf", status, body)
	}
}

func TestServe_Missing(t *testing.T) {
	_, srv := newServer(t, fileserve.Config{Route: "/files", Segments: []string{"users"}})

	status, body := get(t, srv.URL+"/files/nope.png")
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	if msg := message(t, body); msg != fileserve.MsgNotFound {
		t.Errorf("message = %q, want %q", msg, fileserve.MsgNotFound)
	}
}

func TestServe_InvalidNames(t *testing.T) {
	cfg := fileserve.Config{Route: "/files", Segments: []string{"users"}}
	cfg.Finalize()

	st, err := storage.New(&storage.Config{BasePath: t.TempDir()}, testLogger())
	if err != nil {
		t.Fatalf("storage.New() failed: %v", err)
	}
	st.Store(context.Background(), "secret.txt", strings.NewReader("top"))

	h := fileserve.NewHandler(&cfg, st, testLogger())

	for _, name := range []string{"..", "../secret.txt", `..\secret.txt`, "a/b", "bad\x00name", ""} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/files/x", nil)
			req.SetPathValue("fileName", name)
			rec := httptest.NewRecorder()

			h.Serve(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if msg := message(t, rec.Body.String()); msg != fileserve.MsgInvalidRoute {
				t.Errorf("message = %q, want %q", msg, fileserve.MsgInvalidRoute)
			}
		})
	}
}

func TestServe_EscapedSeparator(t *testing.T) {
	_, srv := newServer(t, fileserve.Config{Route: "/files", Segments: []string{"users"}})

	if status, _ := get(t, srv.URL+"/files/..%5Csecret.txt"); status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

func TestServe_DirectoryIsMissing(t *testing.T) {
	st, srv := newServer(t, fileserve.Config{Route: "/files", Segments: []string{"users"}})
	st.EnsureDir(context.Background(), "users/nested")

	if status, _ := get(t, srv.URL+"/files/nested"); status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestConfig_Finalize(t *testing.T) {
	cfg := fileserve.Config{Route: "uploads/", Segments: []string{"users", "avatars"}}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}
	if cfg.Route != "/uploads" {
		t.Errorf("Route = %q, want /uploads", cfg.Route)
	}
	if cfg.Folder() != "users/avatars" {
		t.Errorf("Folder() = %q, want users/avatars", cfg.Folder())
	}

	invalid := []fileserve.Config{
		{Route: "", Segments: []string{"a"}},
		{Route: "/x/{id}", Segments: []string{"a"}},
		{Route: "/x"},
		{Route: "/x", Segments: []string{".."}},
		{Route: "/x", Segments: []string{"a/b"}},
	}
	for _, c := range invalid {
		if err := c.Finalize(); err == nil {
			t.Errorf("Finalize(%+v) succeeded, want error", c)
		}
	}
}
