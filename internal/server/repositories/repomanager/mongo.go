package repomanager

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/gogamastore/storefront/internal/server/repositories/carts"
	"github.com/gogamastore/storefront/internal/server/repositories/catalog"
	"github.com/gogamastore/storefront/internal/server/repositories/users"
)

// MongoRepositoryManager vends MongoDB-backed repositories over one client.
type MongoRepositoryManager struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoRepositoryManager(client *mongo.Client, database string) *MongoRepositoryManager {
	return &MongoRepositoryManager{client: client, db: client.Database(database)}
}

// ConnectMongo dials uri and verifies the primary answers.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("mongo connect error: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping error: %w", err)
	}
	return client, nil
}

func (m *MongoRepositoryManager) Users() users.Repository {
	return users.NewMongoRepository(m.db)
}

func (m *MongoRepositoryManager) Catalog() catalog.Repository {
	return catalog.NewMongoRepository(m.db)
}

func (m *MongoRepositoryManager) Carts() carts.Repository {
	return carts.NewMongoRepository(m.db)
}

// indexes lists, per collection, the indexes the repositories rely on. The
// unique ones back email uniqueness, one cart per user and seeding by name.
var indexes = map[string][]mongo.IndexModel{
	users.CollectionName: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	carts.CollectionName: {
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	catalog.CategoriesCollection: {
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	catalog.ProductsCollection: {
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	},
}

// indexOrder keeps index creation deterministic.
var indexOrder = []string{
	users.CollectionName,
	carts.CollectionName,
	catalog.CategoriesCollection,
	catalog.ProductsCollection,
}

// RunMigrations creates the indexes; creating an existing index is a no-op.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	for _, name := range indexOrder {
		if _, err := m.db.Collection(name).Indexes().CreateMany(ctx, indexes[name]); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
