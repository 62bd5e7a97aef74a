package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry.
// Stock never goes negative: the only path that decrements it is the
// order unit of work, which validates availability first.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StockChange is the (product, resulting stock) pair produced by a
// committed order, one per touched product.
type StockChange struct {
	ProductID uuid.UUID
	NewStock  int
}
