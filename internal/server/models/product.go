package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is read-only for the storefront. Category holds the category name,
// not its id.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	Category    string
	Stock       int
	CreatedAt   time.Time
}

type Category struct {
	ID        string
	Name      string
	Image     string
	CreatedAt time.Time
}
