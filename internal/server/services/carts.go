package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gogamastore/storefront/internal/common"
	"github.com/gogamastore/storefront/internal/logging"
	"github.com/gogamastore/storefront/internal/server/models"
	"github.com/gogamastore/storefront/internal/server/repositories/repomanager"
)

type CartService struct {
	repos  repomanager.RepositoryManager
	logger logging.Logger
	now    func() time.Time
}

func NewCartService(m repomanager.RepositoryManager, logger logging.Logger) *CartService {
	return &CartService{repos: m, logger: logger.With("module", "carts"), now: time.Now}
}

// GetCart returns the user's cart, creating an empty one on first use.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	c, err := s.repos.Carts().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, unavailable(err)
	}
	return c, nil
}

// AddItem adds quantity units of productID. An existing line keeps its
// snapshot and only grows; stock is not checked.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id is required", common.ErrValidation)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", common.ErrValidation)
	}

	product, err := s.repos.Catalog().GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrProductNotFound
		}
		return nil, unavailable(err)
	}

	c, err := s.repos.Carts().Mutate(ctx, userID, true, func(c *models.Cart) (bool, error) {
		if line, ok := c.Item(productID); ok && line.Quantity > math.MaxInt-quantity {
			return false, fmt.Errorf("%w: quantity too large", common.ErrValidation)
		}
		c.AddItem(*product, quantity, s.now().UTC())
		return true, nil
	})
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, err
		}
		return nil, unavailable(err)
	}

	s.logger.Debug(ctx, "item added", "user_id", userID, "product_id", productID, "quantity", quantity)
	return c, nil
}

// RemoveItem drops the line for productID. Removing a product that is not
// in the cart returns the cart untouched.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	c, err := s.repos.Carts().Mutate(ctx, userID, false, func(c *models.Cart) (bool, error) {
		return c.RemoveItem(productID, s.now().UTC()), nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrCartNotFound
		}
		return nil, unavailable(err)
	}

	s.logger.Debug(ctx, "item removed", "user_id", userID, "product_id", productID)
	return c, nil
}
