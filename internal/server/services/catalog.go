package services

import (
	"context"
	"errors"

	"github.com/gogamastore/storefront/internal/common"
	"github.com/gogamastore/storefront/internal/server/models"
	"github.com/gogamastore/storefront/internal/server/repositories/repomanager"
)

// CatalogService serves read-only product and category queries. Callers
// are authenticated at the transport.
type CatalogService struct {
	repos repomanager.RepositoryManager
}

func NewCatalogService(m repomanager.RepositoryManager) *CatalogService {
	return &CatalogService{repos: m}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	out, err := s.repos.Catalog().ListProducts(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.repos.Catalog().GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrProductNotFound
		}
		return nil, unavailable(err)
	}
	return p, nil
}

// ListByCategory matches the category label exactly; an unknown label is an
// empty result, not an error.
func (s *CatalogService) ListByCategory(ctx context.Context, name string) ([]models.Product, error) {
	out, err := s.repos.Catalog().ListProductsByCategory(ctx, name)
	if err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	out, err := s.repos.Catalog().ListCategories(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	return out, nil
}
