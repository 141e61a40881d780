// Package repomanager opens the configured store and hands out the
// repositories bound to it.
package repomanager

import (
	"context"
	"fmt"

	"github.com/gogamastore/storefront/internal/server/config"
	"github.com/gogamastore/storefront/internal/server/repositories/carts"
	"github.com/gogamastore/storefront/internal/server/repositories/catalog"
	"github.com/gogamastore/storefront/internal/server/repositories/users"
)

// RepositoryManager owns the store handle. It is opened once at startup,
// injected into every service and closed on shutdown.
type RepositoryManager interface {
	Users() users.Repository
	Catalog() catalog.Repository
	Carts() carts.Repository

	// RunMigrations brings the schema (tables or indexes) up to date.
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects to the store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepositoryManager(db), nil
	case config.DriverMongo:
		client, err := ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		return NewMongoRepositoryManager(client, cfg.MongoDatabase), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
