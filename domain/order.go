package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

// Lifecycle transitions beyond creation are handled elsewhere;
// every new order starts as StatusPending.
const StatusPending OrderStatus = "PENDING"

// OrderLine captures the unit price at order time. Historical orders
// stay accurate even if the catalog price changes afterwards.
type OrderLine struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is persisted together with its lines in one logical write.
// Total always equals the sum of line subtotals.
type Order struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Lines     []OrderLine
	Total     decimal.Decimal
	Status    OrderStatus
	CreatedAt time.Time
}
