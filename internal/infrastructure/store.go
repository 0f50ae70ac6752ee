package infrastructure

import (
	"fmt"
	"log/slog"

	"github.com/JaimeStill/resource-lab/internal/config"
	"github.com/JaimeStill/resource-lab/pkg/database"
	"github.com/JaimeStill/resource-lab/pkg/store"
	"github.com/JaimeStill/resource-lab/pkg/store/memstore"
	"github.com/JaimeStill/resource-lab/pkg/store/mongostore"
	"github.com/JaimeStill/resource-lab/pkg/store/pgstore"
)

func newStore(cfg *config.Config, db database.System, logger *slog.Logger) (store.System, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return memstore.New(logger), nil
	case config.DriverMongo:
		return mongostore.New(&cfg.Store.Mongo, logger)
	case config.DriverPostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres driver requires a database")
		}
		return pgstore.New(db, logger), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}
