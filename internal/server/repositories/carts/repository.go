// Package carts persists one shopping cart per user.
package carts

import (
	"context"

	"github.com/gogamastore/storefront/internal/server/models"
)

// MutateFunc edits a cart in place and reports whether anything changed.
// Unchanged carts are not written back.
type MutateFunc func(c *models.Cart) (changed bool, err error)

type Repository interface {
	// GetOrCreate returns the user's cart, creating an empty one atomically
	// when absent.
	GetOrCreate(ctx context.Context, userID string) (*models.Cart, error)

	// Mutate loads the user's cart, applies fn and persists the result as a
	// single atomic read-modify-write. With create false a missing cart
	// yields common.ErrorNotFound; with create true it is created first.
	// Errors returned by fn are passed through unchanged.
	Mutate(ctx context.Context, userID string, create bool, fn MutateFunc) (*models.Cart, error)
}
