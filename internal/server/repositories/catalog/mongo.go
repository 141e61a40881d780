package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gogamastore/storefront/internal/common"
	"github.com/gogamastore/storefront/internal/mongox"
	"github.com/gogamastore/storefront/internal/server/models"
)

const (
	ProductsCollection   = "products"
	CategoriesCollection = "categories"
)

type productDocument struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Image       string               `bson:"image"`
	Category    string               `bson:"category"`
	Stock       int                  `bson:"stock"`
	CreatedAt   time.Time            `bson:"created_at"`
}

func (d *productDocument) model() (models.Product, error) {
	price, err := mongox.FromDecimal128(d.Price)
	if err != nil {
		return models.Product{}, err
	}
	return models.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		Image:       d.Image,
		Category:    d.Category,
		Stock:       d.Stock,
		CreatedAt:   d.CreatedAt,
	}, nil
}

type categoryDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Image     string    `bson:"image,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

type MongoRepository struct {
	products   *mongo.Collection
	categories *mongo.Collection
	now        func() time.Time
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		products:   db.Collection(ProductsCollection),
		categories: db.Collection(CategoriesCollection),
		now:        time.Now,
	}
}

func listOptions() *options.FindOptions {
	return options.Find().
		SetLimit(MaxRows).
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "name", Value: 1}})
}

func (r *MongoRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	return r.findProducts(ctx, bson.M{})
}

func (r *MongoRepository) ListProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return r.findProducts(ctx, bson.M{"category": category})
}

func (r *MongoRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var doc productDocument
	if err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if mongox.IsNotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	p, err := doc.model()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &p, nil
}

func (r *MongoRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	cur, err := r.categories.Find(ctx, bson.M{}, listOptions())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var docs []categoryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	out := make([]models.Category, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.Category{ID: d.ID, Name: d.Name, Image: d.Image, CreatedAt: d.CreatedAt})
	}
	return out, nil
}

func (r *MongoRepository) EnsureCategory(ctx context.Context, c *models.Category) (bool, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.now().UTC()
	}

	doc := categoryDocument{ID: c.ID, Name: c.Name, Image: c.Image, CreatedAt: c.CreatedAt}
	return r.insertIfAbsent(ctx, r.categories, c.Name, doc)
}

func (r *MongoRepository) EnsureProduct(ctx context.Context, p *models.Product) (bool, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now().UTC()
	}

	price, err := mongox.ToDecimal128(p.Price)
	if err != nil {
		return false, err
	}

	doc := productDocument{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Image:       p.Image,
		Category:    p.Category,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
	}
	return r.insertIfAbsent(ctx, r.products, p.Name, doc)
}

// insertIfAbsent upserts doc keyed by name with $setOnInsert, so an existing
// entry is never modified.
func (r *MongoRepository) insertIfAbsent(ctx context.Context, coll *mongo.Collection, name string, doc any) (bool, error) {
	res, err := coll.UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if mongox.IsDuplicateKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return res.UpsertedCount > 0, nil
}

func (r *MongoRepository) findProducts(ctx context.Context, filter bson.M) ([]models.Product, error) {
	cur, err := r.products.Find(ctx, filter, listOptions())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	out := make([]models.Product, 0, len(docs))
	for i := range docs {
		p, err := docs[i].model()
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}
