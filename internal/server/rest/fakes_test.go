package rest

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gogamastore/storefront/internal/common"
	"github.com/gogamastore/storefront/internal/logging"
	"github.com/gogamastore/storefront/internal/server/models"
	"github.com/gogamastore/storefront/internal/server/services"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger          { return n }

var created = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

var sari = &models.User{ID: "u-1", Email: "sari@example.com", FullName: "Sari Wijaya", Phone: "0812", CreatedAt: created}

// fakeUsers accepts "good" as sari's token and reports "old" as expired.
type fakeUsers struct {
	registerErr error
	loginErr    error
	lastReg     services.Registration
}

func (f *fakeUsers) Register(_ context.Context, r services.Registration) (*services.Session, error) {
	f.lastReg = r
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &services.Session{AccessToken: "good", User: sari}, nil
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (*services.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.Session{AccessToken: "good", User: sari}, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, token string) (*models.User, error) {
	switch token {
	case "good":
		return sari, nil
	case "old":
		return nil, common.ErrTokenExpired
	case "down":
		return nil, common.ErrUnavailable
	default:
		return nil, common.ErrMalformedToken
	}
}

var tshirt = models.Product{
	ID:        "p-x",
	Name:      "T-Shirt Cotton",
	Price:     decimal.RequireFromString("150000.50"),
	Image:     "products/tshirt.png",
	Category:  "Fashion",
	Stock:     100,
	CreatedAt: created,
}

type fakeCatalog struct{ err error }

func (f fakeCatalog) ListProducts(context.Context) ([]models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.Product{tshirt}, nil
}

func (f fakeCatalog) GetProduct(_ context.Context, id string) (*models.Product, error) {
	if id != tshirt.ID {
		return nil, common.ErrProductNotFound
	}
	p := tshirt
	return &p, nil
}

func (f fakeCatalog) ListByCategory(_ context.Context, name string) ([]models.Product, error) {
	if name == tshirt.Category {
		return []models.Product{tshirt}, nil
	}
	return []models.Product{}, nil
}

func (f fakeCatalog) ListCategories(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: "c-1", Name: "Fashion", CreatedAt: created}}, nil
}

type addCall struct {
	userID, productID string
	quantity          int
}

type fakeCarts struct {
	adds    []addCall
	removed []string
}

func (f *fakeCarts) cart() *models.Cart {
	c := models.NewCart("cart-1", sari.ID, created)
	return c
}

func (f *fakeCarts) GetCart(context.Context, string) (*models.Cart, error) {
	return f.cart(), nil
}

func (f *fakeCarts) AddItem(_ context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	f.adds = append(f.adds, addCall{userID, productID, quantity})
	if productID != tshirt.ID {
		return nil, common.ErrProductNotFound
	}
	if quantity <= 0 {
		return nil, common.ErrValidation
	}
	c := f.cart()
	c.AddItem(tshirt, quantity, created.Add(time.Minute))
	return c, nil
}

func (f *fakeCarts) RemoveItem(_ context.Context, _ string, productID string) (*models.Cart, error) {
	f.removed = append(f.removed, productID)
	return f.cart(), nil
}

type fakeProfiles struct {
	patches []models.ProfilePatch
}

func (f *fakeProfiles) GetProfile(_ context.Context, email string) (*models.User, error) {
	if email != sari.Email {
		return nil, common.ErrUserNotFound
	}
	return sari, nil
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, _ string, p models.ProfilePatch) error {
	f.patches = append(f.patches, p)
	return nil
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// prefixResolver marks object keys so tests can see resolution happened.
type prefixResolver struct{}

func (prefixResolver) Resolve(_ context.Context, ref string) string {
	if strings.HasPrefix(ref, "data:") {
		return ref
	}
	return "https://cdn.test/" + ref
}
