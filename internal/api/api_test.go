package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/resource-lab/internal/api"
	"github.com/JaimeStill/resource-lab/internal/config"
	"github.com/JaimeStill/resource-lab/internal/fileserve"
	"github.com/JaimeStill/resource-lab/internal/infrastructure"
	"github.com/JaimeStill/resource-lab/internal/resource"
)

func newServer(t *testing.T) (*infrastructure.Infrastructure, *httptest.Server) {
	t.Helper()

	cfg := &config.Config{
		Resources: []resource.Config{
			{Name: "users", Filters: []string{"role"}, Upload: &resource.UploadConfig{Field: "avatar"}},
			{Name: "notes", OrderBy: "-createdAt"},
		},
		Files: []fileserve.Config{
			{Route: "/uploads/avatars", Segments: []string{"users"}},
		},
	}
	cfg.Storage.BasePath = t.TempDir()
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	infra, err := infrastructure.NewWithLogger(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("infrastructure.New() failed: %v", err)
	}
	if err := infra.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	handler, err := api.NewHandler(cfg, infra)
	if err != nil {
		t.Fatalf("NewHandler() failed: %v", err)
	}

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return infra, srv
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestReadiness(t *testing.T) {
	infra, srv := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz = %v %v, want 200", resp, err)
	}
	resp.Body.Close()

	infra.Lifecycle.WaitForStartup()

	resp, err = http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("readyz: %v", err)
	}
	if body := decode(t, resp); resp.StatusCode != http.StatusOK || body["status"] != "ready" {
		t.Errorf("readyz = %d %v, want 200 ready", resp.StatusCode, body)
	}
}

func TestResourceRoundTrip(t *testing.T) {
	_, srv := newServer(t)

	resp, err := http.Post(srv.URL+"/api/notes", "application/json", strings.NewReader(`{"text":"hi"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	created := decode(t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create = %d %v, want 201", resp.StatusCode, created)
	}
	id := created["id"].(string)

	req, _ := http.NewRequest("PUT", srv.URL+"/api/notes/"+id, strings.NewReader(`{"text":"bye"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	if body := decode(t, resp); body["text"] != "bye" {
		t.Errorf("update body = %v, want text=bye", body)
	}

	req, _ = http.NewRequest("DELETE", srv.URL+"/api/notes/"+id, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	if body := decode(t, resp); resp.StatusCode != http.StatusOK || body["message"] != "success" {
		t.Errorf("delete = %d %v, want 200 success", resp.StatusCode, body)
	}

	resp, _ = http.Get(srv.URL + "/api/notes/" + id)
	if body := decode(t, resp); resp.StatusCode != http.StatusNotFound || body["key"] != "not_found" {
		t.Errorf("get after delete = %d %v, want 404 not_found", resp.StatusCode, body)
	}
}

func TestUploadThenServe(t *testing.T) {
	_, srv := newServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("name", "alice")
	fw, _ := w.CreateFormFile("avatar", "alice.png")
	io.WriteString(fw, "png-bytes")
	w.Close()

	resp, err := http.Post(srv.URL+"/api/users", w.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if body := decode(t, resp); resp.StatusCode != http.StatusCreated || body["avatar"] != "alice.png" {
		t.Fatalf("create = %d %v, want 201 avatar=alice.png", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/api/uploads/avatars/alice.png")
	if err != nil {
		t.Fatalf("GET file: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(data) != "png-bytes" {
		t.Errorf("file = %d %q, want 200 png-bytes", resp.StatusCode, data)
	}
}

func TestTrailingSlashRedirects(t *testing.T) {
	_, srv := newServer(t)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	resp, err := client.Get(srv.URL + "/api/notes/?page=1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMovedPermanently {
		t.Errorf("status = %d, want 301", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/api/notes?page=1" {
		t.Errorf("Location = %q", loc)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, srv := newServer(t)

	resp, _ := http.Get(srv.URL + "/api/notes/abc")
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	want := `resource_http_requests_total{method="GET",route="GET /api/notes/{id}",status="400"} 1`
	if !strings.Contains(string(data), want) {
		t.Errorf("metrics missing %q", want)
	}
}

func TestOpenAPIDocument(t *testing.T) {
	_, srv := newServer(t)

	resp, err := http.Get(srv.URL + "/api/openapi.json")
	if err != nil {
		t.Fatalf("GET openapi.json: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	doc := decode(t, resp)
	if doc["openapi"] != "3.1.0" {
		t.Errorf("openapi = %v, want 3.1.0", doc["openapi"])
	}

	paths, _ := doc["paths"].(map[string]any)
	for _, p := range []string{
		"/api/users",
		"/api/users/{id}",
		"/api/notes",
		"/api/uploads/avatars/{fileName}",
	} {
		if _, ok := paths[p]; !ok {
			t.Errorf("paths missing %s", p)
		}
	}

	if _, ok := paths["/healthz"]; ok {
		t.Error("operational endpoint listed in document")
	}
}
