package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/resource-lab/pkg/handlers"
)

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
		wantBody   string
	}{
		{
			"ok with map",
			http.StatusOK,
			map[string]string{"message": "hello"},
			http.StatusOK,
			`{"message":"hello"}`,
		},
		{
			"created with struct",
			http.StatusCreated,
			struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			}{1, "test"},
			http.StatusCreated,
			`{"id":1,"name":"test"}`,
		},
		{
			"ok with slice",
			http.StatusOK,
			[]int{1, 2, 3},
			http.StatusOK,
			`[1,2,3]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			handlers.RespondJSON(w, tt.status, tt.data)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want %q", ct, "application/json")
			}

			body, _ := io.ReadAll(resp.Body)
			var got, want any
			json.Unmarshal(body, &got)
			json.Unmarshal([]byte(tt.wantBody), &want)

			gotJSON, _ := json.Marshal(got)
			wantJSON, _ := json.Marshal(want)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("body = %s, want %s", gotJSON, wantJSON)
			}
		})
	}
}

type keyedError struct{}

func (keyedError) Error() string { return "Invalid ID" }
func (keyedError) Key() string   { return "invalid_id" }

func TestRespondError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		err       error
		wantError string
		wantKey   string
	}{
		{"bad request", http.StatusBadRequest, errors.New("invalid input"), "invalid input", ""},
		{"internal error", http.StatusInternalServerError, errors.New("something went wrong"), "something went wrong", ""},
		{"keyed error", http.StatusBadRequest, keyedError{}, "Invalid ID", "invalid_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))

			handlers.RespondError(w, logger, tt.status, tt.err)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}

			var result map[string]string
			json.NewDecoder(resp.Body).Decode(&result)

			if result["error"] != tt.wantError {
				t.Errorf("error = %q, want %q", result["error"], tt.wantError)
			}
			if result["key"] != tt.wantKey {
				t.Errorf("key = %q, want %q", result["key"], tt.wantKey)
			}
		})
	}
}
