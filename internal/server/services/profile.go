package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gogamastore/storefront/internal/common"
	"github.com/gogamastore/storefront/internal/server/models"
	"github.com/gogamastore/storefront/internal/server/repositories/repomanager"
)

type ProfileService struct {
	repos repomanager.RepositoryManager
}

func NewProfileService(m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{repos: m}
}

func (s *ProfileService) GetProfile(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repos.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, unavailable(err)
	}
	return u, nil
}

// UpdateProfile applies every field set in patch in one write, or none.
// An empty patch succeeds without touching the store.
func (s *ProfileService) UpdateProfile(ctx context.Context, email string, patch models.ProfilePatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if patch.FullName != nil {
		v := strings.TrimSpace(*patch.FullName)
		if v == "" {
			return fmt.Errorf("%w: full_name must not be empty", common.ErrValidation)
		}
		patch.FullName = &v
	}
	if patch.Phone != nil {
		v := strings.TrimSpace(*patch.Phone)
		patch.Phone = &v
	}

	err := s.repos.Users().UpdateProfile(ctx, email, patch)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return unavailable(err)
	}
	return nil
}
