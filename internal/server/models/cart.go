package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of a cart. Name, Price and Image are copied from the
// product when the line is first added and never refreshed afterwards.
type CartItem struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Image     string
	Quantity  int
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart belongs to exactly one user. Total always equals the sum of the
// line subtotals; every mutator recomputes it.
type Cart struct {
	ID        string
	UserID    string
	Items     []CartItem
	Total     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time

	// Version is bumped on every write; the document store uses it for
	// compare-and-set.
	Version int64
}

// NewCart returns an empty cart for userID.
func NewCart(id, userID string, now time.Time) *Cart {
	return &Cart{
		ID:        id,
		UserID:    userID,
		Items:     []CartItem{},
		Total:     decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem increments the line for p, or appends a new line snapshotting p.
func (c *Cart) AddItem(p Product, quantity int, now time.Time) {
	merged := false
	for i := range c.Items {
		if c.Items[i].ProductID == p.ID {
			c.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, CartItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Quantity:  quantity,
		})
	}
	c.Recalculate()
	c.UpdatedAt = now
}

// RemoveItem drops the line for productID. It reports false and leaves the
// cart untouched when there is no such line.
func (c *Cart) RemoveItem(productID string, now time.Time) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Recalculate()
			c.UpdatedAt = now
			return true
		}
	}
	return false
}

func (c *Cart) Recalculate() {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	c.Total = total
}

// Item returns the line for productID, if any.
func (c *Cart) Item(productID string) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}
