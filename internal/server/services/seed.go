package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gogamastore/storefront/internal/logging"
	"github.com/gogamastore/storefront/internal/server/models"
	"github.com/gogamastore/storefront/internal/server/repositories/repomanager"
)

// placeholderImage is a 1x1 transparent PNG.
const placeholderImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func sampleCategories() []models.Category {
	return []models.Category{
		{Name: "Elektronik"},
		{Name: "Fashion"},
		{Name: "Makanan"},
		{Name: "Kesehatan"},
	}
}

func sampleProducts() []models.Product {
	return []models.Product{
		{
			Name:        "Smartphone Android",
			Description: "Smartphone terbaru dengan kamera canggih",
			Price:       decimal.NewFromInt(2500000),
			Image:       placeholderImage,
			Category:    "Elektronik",
			Stock:       50,
		},
		{
			Name:        "T-Shirt Cotton",
			Description: "T-Shirt berbahan cotton premium",
			Price:       decimal.NewFromInt(150000),
			Image:       placeholderImage,
			Category:    "Fashion",
			Stock:       100,
		},
	}
}

// Seeder inserts the sample catalog. Entries whose name already exists are
// left alone, so seeding is safe on every start.
type Seeder struct {
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

func NewSeeder(m repomanager.RepositoryManager, logger logging.Logger) *Seeder {
	return &Seeder{repos: m, logger: logger.With("module", "seed")}
}

func (s *Seeder) Seed(ctx context.Context) error {
	repo := s.repos.Catalog()

	var categories, products int
	for _, c := range sampleCategories() {
		created, err := repo.EnsureCategory(ctx, &c)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		if created {
			categories++
		}
	}
	for _, p := range sampleProducts() {
		created, err := repo.EnsureProduct(ctx, &p)
		if err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		if created {
			products++
		}
	}

	s.logger.Info(ctx, "sample data loaded", "categories_added", categories, "products_added", products)
	return nil
}
