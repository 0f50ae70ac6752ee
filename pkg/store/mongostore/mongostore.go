// Package mongostore implements store.System on MongoDB.
package mongostore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JaimeStill/resource-lab/pkg/lifecycle"
	"github.com/JaimeStill/resource-lab/pkg/store"
)

type mongoStore struct {
	client      *mongo.Client
	db          *mongo.Database
	logger      *slog.Logger
	connTimeout time.Duration
}

// New creates a MongoDB store. The client is configured here; the server is
// first contacted when the startup hook pings it.
func New(cfg *Config, logger *slog.Logger) (store.System, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnTimeoutDuration())

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	return &mongoStore{
		client:      client,
		db:          client.Database(cfg.Database),
		logger:      logger.With("system", "store", "driver", "mongo"),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (s *mongoStore) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting mongo store", "database", s.db.Name())

	lc.OnStartup(func() {
		pingCtx, cancel := context.WithTimeout(lc.Context(), s.connTimeout)
		defer cancel()

		if err := s.client.Ping(pingCtx, nil); err != nil {
			s.logger.Error("mongo ping failed", "error", err)
			return
		}
		s.logger.Info("mongo connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		s.logger.Info("closing mongo connection")

		ctx, cancel := context.WithTimeout(context.Background(), s.connTimeout)
		defer cancel()

		if err := s.client.Disconnect(ctx); err != nil {
			s.logger.Error("mongo disconnect failed", "error", err)
			return
		}
		s.logger.Info("mongo connection closed")
	})

	return nil
}

func (s *mongoStore) Collection(name string, schema store.Schema) store.Collection {
	return &collection{
		coll:   s.db.Collection(name),
		schema: schema,
		now:    time.Now,
	}
}
