package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/resource-lab/pkg/store/mongostore"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// EnvStoreDriver overrides the store driver.
const EnvStoreDriver = "STORE_DRIVER"

var mongoEnv = &mongostore.Env{
	URI:         "MONGO_URI",
	Database:    "MONGO_DATABASE",
	ConnTimeout: "MONGO_CONN_TIMEOUT",
}

// StoreConfig selects the document store backing every resource.
// The postgres driver reads its connection from the root [database] section.
type StoreConfig struct {
	Driver string            `toml:"driver"`
	Mongo  mongostore.Config `toml:"mongo"`
}

func (c *StoreConfig) Finalize() error {
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
	if v := os.Getenv(EnvStoreDriver); v != "" {
		c.Driver = v
	}

	switch c.Driver {
	case DriverMemory, DriverPostgres:
		return nil
	case DriverMongo:
		if err := c.Mongo.Finalize(mongoEnv); err != nil {
			return fmt.Errorf("mongo: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown driver: %s", c.Driver)
	}
}

func (c *StoreConfig) Merge(overlay *StoreConfig) {
	if overlay.Driver != "" {
		c.Driver = overlay.Driver
	}
	c.Mongo.Merge(&overlay.Mongo)
}
