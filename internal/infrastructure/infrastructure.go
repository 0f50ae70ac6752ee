// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, store, storage) that resources require.
package infrastructure

import (
	"fmt"
	"log/slog"

	"github.com/JaimeStill/resource-lab/internal/config"
	"github.com/JaimeStill/resource-lab/pkg/database"
	"github.com/JaimeStill/resource-lab/pkg/lifecycle"
	"github.com/JaimeStill/resource-lab/pkg/logging"
	"github.com/JaimeStill/resource-lab/pkg/storage"
	"github.com/JaimeStill/resource-lab/pkg/store"
)

// Infrastructure holds the core systems required by every resource.
// Database is nil unless the postgres store driver is configured.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Store     store.System
	Storage   storage.System
}

// New creates an Infrastructure from a finalized configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithLogger(cfg, logging.New(&cfg.Logging))
}

// NewWithLogger is New with an explicit logger.
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
	}

	if cfg.Store.Driver == config.DriverPostgres {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	}

	st, err := newStore(cfg, infra.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("store init failed: %w", err)
	}
	infra.Store = st

	blobs, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}
	infra.Storage = blobs

	return infra, nil
}

// Start registers every system with the lifecycle coordinator.
// The database starts before the store that migrates it.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if err := i.Store.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("store start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
