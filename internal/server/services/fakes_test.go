package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogamastore/storefront/internal/common"
	"github.com/gogamastore/storefront/internal/logging"
	"github.com/gogamastore/storefront/internal/server/models"
	"github.com/gogamastore/storefront/internal/server/repositories/carts"
	"github.com/gogamastore/storefront/internal/server/repositories/catalog"
	"github.com/gogamastore/storefront/internal/server/repositories/users"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger          { return n }

// fakeStore is an in-memory RepositoryManager. Setting err makes every
// repository call fail with it.
type fakeStore struct {
	mu sync.Mutex

	err error

	users      map[string]models.User
	products   map[string]models.Product
	categories []models.Category
	carts      map[string]models.Cart

	cartWrites int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[string]models.User{},
		products: map[string]models.Product{},
		carts:    map[string]models.Cart{},
	}
}

func (f *fakeStore) Users() users.Repository             { return fakeUsers{f} }
func (f *fakeStore) Catalog() catalog.Repository         { return fakeCatalog{f} }
func (f *fakeStore) Carts() carts.Repository             { return fakeCarts{f} }
func (f *fakeStore) RunMigrations(context.Context) error { return f.err }
func (f *fakeStore) Ping(context.Context) error          { return f.err }
func (f *fakeStore) Close(context.Context) error         { return nil }

type fakeUsers struct{ f *fakeStore }

func (r fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.err != nil {
		return nil, r.f.err
	}
	if _, ok := r.f.users[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	r.f.users[u.Email] = *u
	return u, nil
}

func (r fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.err != nil {
		return nil, r.f.err
	}
	u, ok := r.f.users[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r fakeUsers) UpdateProfile(_ context.Context, email string, p models.ProfilePatch) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.err != nil {
		return r.f.err
	}
	u, ok := r.f.users[email]
	if !ok {
		return common.ErrorNotFound
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	r.f.users[email] = u
	return nil
}

type fakeCatalog struct{ f *fakeStore }

func (r fakeCatalog) ListProducts(context.Context) ([]models.Product, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.err != nil {
		return nil, r.f.err
	}
	out := make([]models.Product, 0, len(r.f.products))
	for _, p := range r.f.products {
		out = append(out, p)
	}
	return out, nil
}

func (r fakeCatalog) GetProduct(_ context.Context, id string) (*models.Product, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.err != nil {
		return nil, r.f.err
	}
	p, ok := r.f.products[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r fakeCatalog) ListProductsByCategory(_ context.Context, name string) ([]models.Product, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.err != nil {
		return nil, r.f.err
	}
	out := make([]models.Product, 0)
	for _, p := range r.f.products {
		if p.Category == name {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fakeCatalog) ListCategories(context.Context) ([]models.Category, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.err != nil {
		return nil, r.f.err
	}
	return append([]models.Category{}, r.f.categories...), nil
}

func (r fakeCatalog) EnsureCategory(_ context.Context, c *models.Category) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.err != nil {
		return false, r.f.err
	}
	for _, existing := range r.f.categories {
		if existing.Name == c.Name {
			return false, nil
		}
	}
	c.ID = uuid.NewString()
	r.f.categories = append(r.f.categories, *c)
	return true, nil
}

func (r fakeCatalog) EnsureProduct(_ context.Context, p *models.Product) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.err != nil {
		return false, r.f.err
	}
	for _, existing := range r.f.products {
		if existing.Name == p.Name {
			return false, nil
		}
	}
	p.ID = uuid.NewString()
	r.f.products[p.ID] = *p
	return true, nil
}

type fakeCarts struct{ f *fakeStore }

func cloneCart(c models.Cart) *models.Cart {
	c.Items = append([]models.CartItem{}, c.Items...)
	return &c
}

func (r fakeCarts) getOrCreateLocked(userID string) models.Cart {
	c, ok := r.f.carts[userID]
	if !ok {
		c = *models.NewCart(uuid.NewString(), userID, timeZero)
		r.f.carts[userID] = c
	}
	return c
}

func (r fakeCarts) GetOrCreate(_ context.Context, userID string) (*models.Cart, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.err != nil {
		return nil, r.f.err
	}
	return cloneCart(r.getOrCreateLocked(userID)), nil
}

func (r fakeCarts) Mutate(_ context.Context, userID string, create bool, fn carts.MutateFunc) (*models.Cart, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.err != nil {
		return nil, r.f.err
	}

	stored, ok := r.f.carts[userID]
	if !ok {
		if !create {
			return nil, common.ErrorNotFound
		}
		stored = r.getOrCreateLocked(userID)
	}

	c := cloneCart(stored)
	changed, err := fn(c)
	if err != nil {
		return nil, err
	}
	if changed {
		c.Version++
		r.f.carts[userID] = *cloneCart(*c)
		r.f.cartWrites++
	}
	return c, nil
}

var timeZero = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
