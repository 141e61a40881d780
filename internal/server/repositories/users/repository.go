// Package users persists customer accounts.
package users

import (
	"context"

	"github.com/gogamastore/storefront/internal/server/models"
)

// Repository stores users keyed by a unique email.
//
// Create returns common.ErrorAlreadyExists when the email is taken, and the
// lookups return common.ErrorNotFound when nothing matches.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, email string, patch models.ProfilePatch) error
}
