package carts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gogamastore/storefront/internal/common"
	"github.com/gogamastore/storefront/internal/mongox"
	"github.com/gogamastore/storefront/internal/server/models"
)

const (
	CollectionName = "carts"

	// maxAttempts bounds the compare-and-set loop in Mutate.
	maxAttempts = 5
)

type itemDocument struct {
	ProductID string               `bson:"product_id"`
	Name      string               `bson:"name"`
	Price     primitive.Decimal128 `bson:"price"`
	Image     string               `bson:"image"`
	Quantity  int                  `bson:"quantity"`
}

type cartDocument struct {
	ID        string               `bson:"_id"`
	UserID    string               `bson:"user_id"`
	Items     []itemDocument       `bson:"items"`
	Total     primitive.Decimal128 `bson:"total"`
	Version   int64                `bson:"version"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

func (d *cartDocument) model() (*models.Cart, error) {
	total, err := mongox.FromDecimal128(d.Total)
	if err != nil {
		return nil, err
	}

	items := make([]models.CartItem, 0, len(d.Items))
	for _, it := range d.Items {
		price, err := mongox.FromDecimal128(it.Price)
		if err != nil {
			return nil, err
		}
		items = append(items, models.CartItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     price,
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}

	return &models.Cart{
		ID:        d.ID,
		UserID:    d.UserID,
		Items:     items,
		Total:     total,
		Version:   d.Version,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func encodeItemDocuments(items []models.CartItem) ([]itemDocument, error) {
	docs := make([]itemDocument, 0, len(items))
	for _, it := range items {
		price, err := mongox.ToDecimal128(it.Price)
		if err != nil {
			return nil, err
		}
		docs = append(docs, itemDocument{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     price,
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}
	return docs, nil
}

// MongoRepository keeps one document per user, guarded by a unique index on
// user_id. Writes are compare-and-set on the version field.
type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName), now: time.Now}
}

func (r *MongoRepository) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	now := r.now().UTC()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"items":      bson.A{},
			"total":      mongox.MustDecimal128(decimal.Zero),
			"version":    int64(0),
			"created_at": now,
			"updated_at": now,
		}},
		options.Update().SetUpsert(true),
	)
	// Two concurrent upserts can race on the unique index; the loser simply
	// reads the winner's document.
	if err != nil && !mongox.IsDuplicateKey(err) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	c, err := r.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *MongoRepository) Mutate(ctx context.Context, userID string, create bool, fn MutateFunc) (*models.Cart, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		var (
			c   *models.Cart
			err error
		)
		if create {
			c, err = r.GetOrCreate(ctx, userID)
		} else {
			c, err = r.find(ctx, userID)
		}
		if err != nil {
			return nil, err
		}

		changed, err := fn(c)
		if err != nil {
			return nil, err
		}
		if !changed {
			return c, nil
		}

		ok, err := r.compareAndSet(ctx, c)
		if err != nil {
			return nil, err
		}
		if ok {
			return c, nil
		}
	}
	return nil, common.ErrVersionConflict
}

// compareAndSet writes c only if the stored version still equals c.Version.
func (r *MongoRepository) compareAndSet(ctx context.Context, c *models.Cart) (bool, error) {
	items, err := encodeItemDocuments(c.Items)
	if err != nil {
		return false, err
	}
	total, err := mongox.ToDecimal128(c.Total)
	if err != nil {
		return false, err
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": c.ID, "version": c.Version},
		bson.M{
			"$set": bson.M{"items": items, "total": total, "updated_at": c.UpdatedAt},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, nil
	}
	c.Version++
	return true, nil
}

func (r *MongoRepository) find(ctx context.Context, userID string) (*models.Cart, error) {
	var doc cartDocument
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc); err != nil {
		if mongox.IsNotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	c, err := doc.model()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}
