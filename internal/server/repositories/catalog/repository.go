// Package catalog reads products and categories and seeds sample entries.
package catalog

import (
	"context"

	"github.com/gogamastore/storefront/internal/server/models"
)

// MaxRows bounds every list query.
const MaxRows = 1000

// Repository is read-only apart from the Ensure* methods used for seeding,
// which insert an entry only when none with the same name exists.
type Repository interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	EnsureCategory(ctx context.Context, c *models.Category) (bool, error)
	EnsureProduct(ctx context.Context, p *models.Product) (bool, error)
}
