package database_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/JaimeStill/resource-lab/pkg/database"
)

func TestConfig_Finalize_Defaults(t *testing.T) {
	cfg := &database.Config{
		Name: "testdb",
		User: "testuser",
	}

	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Host != "localhost" {
		t.Errorf("Host = %q, want %q", cfg.Host, "localhost")
	}
	if cfg.Port != 5432 {
		t.Errorf("Port = %d, want %d", cfg.Port, 5432)
	}
	if cfg.MaxOpenConns != 25 {
		t.Errorf("MaxOpenConns = %d, want %d", cfg.MaxOpenConns, 25)
	}
	if cfg.ConnTimeout != "5s" {
		t.Errorf("ConnTimeout = %q, want %q", cfg.ConnTimeout, "5s")
	}
	if cfg.SSLMode != "disable" {
		t.Errorf("SSLMode = %q, want %q", cfg.SSLMode, "disable")
	}
}

func TestConfig_Finalize_EnvOverrides(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "envhost")
	t.Setenv("TEST_DB_PORT", "5434")
	t.Setenv("TEST_DB_NAME", "envdb")
	t.Setenv("TEST_DB_USER", "envuser")
	t.Setenv("TEST_DB_SSL", "require")

	cfg := &database.Config{}
	env := &database.Env{
		Host:    "TEST_DB_HOST",
		Port:    "TEST_DB_PORT",
		Name:    "TEST_DB_NAME",
		User:    "TEST_DB_USER",
		SSLMode: "TEST_DB_SSL",
	}

	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Host != "envhost" {
		t.Errorf("Host = %q, want %q", cfg.Host, "envhost")
	}
	if cfg.Port != 5434 {
		t.Errorf("Port = %d, want %d", cfg.Port, 5434)
	}
	if cfg.Name != "envdb" {
		t.Errorf("Name = %q, want %q", cfg.Name, "envdb")
	}
	if cfg.SSLMode != "require" {
		t.Errorf("SSLMode = %q, want %q", cfg.SSLMode, "require")
	}
}

func TestConfig_Finalize_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  database.Config
	}{
		{"missing name", database.Config{User: "u"}},
		{"missing user", database.Config{Name: "db"}},
		{"bad lifetime", database.Config{Name: "db", User: "u", ConnMaxLifetime: "forever"}},
		{"bad timeout", database.Config{Name: "db", User: "u", ConnTimeout: "soon"}},
		{"bad ssl mode", database.Config{Name: "db", User: "u", SSLMode: "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("Finalize() succeeded, want error")
			}
		})
	}
}

func TestConfig_Merge(t *testing.T) {
	base := &database.Config{Host: "localhost", Port: 5432, Name: "base"}
	base.Merge(&database.Config{Name: "overlay", SSLMode: "require"})

	if base.Name != "overlay" {
		t.Errorf("Name = %q, want overlay", base.Name)
	}
	if base.Host != "localhost" {
		t.Errorf("Host = %q, want localhost (unchanged)", base.Host)
	}
	if base.SSLMode != "require" {
		t.Errorf("SSLMode = %q, want require", base.SSLMode)
	}
}

func TestConfig_Dsn(t *testing.T) {
	cfg := &database.Config{Host: "db", Port: 5432, Name: "app", User: "u", Password: "p", SSLMode: "disable"}

	want := "host=db port=5432 dbname=app user=u password=p sslmode=disable"
	if got := cfg.Dsn(); got != want {
		t.Errorf("Dsn() = %q, want %q", got, want)
	}
}

func TestConfig_MigrationURL(t *testing.T) {
	cfg := &database.Config{Host: "db", Port: 5432, Name: "app", User: "u", Password: "p@ss", SSLMode: "disable"}

	want := "pgx5://u:p%40ss@db:5432/app?sslmode=disable"
	if got := cfg.MigrationURL(); got != want {
		t.Errorf("MigrationURL() = %q, want %q", got, want)
	}
}

func TestNew_DefersConnection(t *testing.T) {
	cfg := &database.Config{Name: "app", User: "u"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	sys, err := database.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys.Connection() == nil {
		t.Error("Connection() = nil")
	}
}

func TestErrNotReady(t *testing.T) {
	wrapped := errors.Join(database.ErrNotReady, errors.New("dial tcp"))
	if !errors.Is(wrapped, database.ErrNotReady) {
		t.Error("errors.Is(wrapped, ErrNotReady) = false")
	}
	if database.ErrNotReady.Error() != "database not ready" {
		t.Errorf("ErrNotReady.Error() = %q", database.ErrNotReady.Error())
	}
}
