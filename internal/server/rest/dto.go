package rest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gogamastore/storefront/internal/common"
	"github.com/gogamastore/storefront/internal/server/models"
	"github.com/gogamastore/storefront/internal/server/services"
	"github.com/gogamastore/storefront/internal/server/storage"
)

type registerRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type profilePatchRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

type userView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

type sessionView struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        userView `json:"user"`
}

type productView struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Image       string      `json:"image"`
	Category    string      `json:"category"`
	Stock       int         `json:"stock"`
	CreatedAt   time.Time   `json:"created_at"`
}

type categoryView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type cartItemView struct {
	ProductID string      `json:"product_id"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Image     string      `json:"image"`
	Quantity  int         `json:"quantity"`
}

type cartView struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Items     []cartItemView `json:"items"`
	Total     json.Number    `json:"total"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type cartResponse struct {
	Message string   `json:"message"`
	Cart    cartView `json:"cart"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func newUserView(u *models.User) userView {
	return userView{ID: u.ID, Email: u.Email, FullName: u.FullName, Phone: u.Phone, CreatedAt: u.CreatedAt}
}

func newSessionView(s *services.Session) sessionView {
	return sessionView{AccessToken: s.AccessToken, TokenType: common.TokenType, User: newUserView(s.User)}
}

func newProductView(ctx context.Context, r storage.ImageResolver, p *models.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.Price),
		Image:       r.Resolve(ctx, p.Image),
		Category:    p.Category,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
	}
}

func newProductViews(ctx context.Context, r storage.ImageResolver, ps []models.Product) []productView {
	out := make([]productView, 0, len(ps))
	for i := range ps {
		out = append(out, newProductView(ctx, r, &ps[i]))
	}
	return out
}

func newCategoryViews(ctx context.Context, r storage.ImageResolver, cs []models.Category) []categoryView {
	out := make([]categoryView, 0, len(cs))
	for _, c := range cs {
		image := c.Image
		if image != "" {
			image = r.Resolve(ctx, image)
		}
		out = append(out, categoryView{ID: c.ID, Name: c.Name, Image: image, CreatedAt: c.CreatedAt})
	}
	return out
}

func newCartView(ctx context.Context, r storage.ImageResolver, c *models.Cart) cartView {
	items := make([]cartItemView, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, cartItemView{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     money(it.Price),
			Image:     r.Resolve(ctx, it.Image),
			Quantity:  it.Quantity,
		})
	}
	return cartView{
		ID:        c.ID,
		UserID:    c.UserID,
		Items:     items,
		Total:     money(c.Total),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
