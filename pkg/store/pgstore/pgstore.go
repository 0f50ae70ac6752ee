// Package pgstore implements store.System on PostgreSQL.
// Every collection shares one entities table; documents live in a JSONB column
// with the identifier and timestamps promoted to real columns.
package pgstore

import (
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/resource-lab/pkg/database"
	"github.com/JaimeStill/resource-lab/pkg/lifecycle"
	"github.com/JaimeStill/resource-lab/pkg/query"
	"github.com/JaimeStill/resource-lab/pkg/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	table            = "entities"
	dataColumn       = "data"
	collectionColumn = "collection"
)

var projection = query.NewProjection(table, dataColumn).
	Project("id", store.FieldID).
	Project("created_at", store.FieldCreatedAt).
	Project("updated_at", store.FieldUpdatedAt).
	DefaultSort("created_at", "id").
	Tiebreak("id")

type pgStore struct {
	db     database.System
	logger *slog.Logger
}

// New creates a PostgreSQL store over db. Start applies the embedded migrations.
func New(db database.System, logger *slog.Logger) store.System {
	return &pgStore{
		db:     db,
		logger: logger.With("system", "store", "driver", "postgres"),
	}
}

func (s *pgStore) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("applying store migrations")
	if err := s.db.Migrate(migrationsFS, "migrations"); err != nil {
		return fmt.Errorf("store migrations: %w", err)
	}
	return nil
}

func (s *pgStore) Collection(name string, schema store.Schema) store.Collection {
	return &collection{
		db:     s.db.Connection(),
		name:   name,
		schema: schema,
		now:    time.Now,
	}
}
