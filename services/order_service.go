//go:generate go run go.uber.org/mock/mockgen -source=order_service.go -destination=../mocks/mock_order_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shop-lab/contract"
	"shop-lab/domain"
	"shop-lab/errors"
	"shop-lab/repositories"
	"shop-lab/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderLineRequest struct {
	ProductID uuid.UUID `validate:"required"`
	Quantity  int       `validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	Lines []OrderLineRequest `validate:"required,min=1,dive"`
}

type IOrderService interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (domain.Order, error)
	List(ctx context.Context, user domain.User) ([]domain.Order, error)
	Get(ctx context.Context, user domain.User, orderID uuid.UUID) (domain.Order, error)
}

// OrderService coordinates the order-creation transaction: read,
// validate, decrement and write in one atomic unit of work, then hand
// the stock changes to the broadcaster strictly after commit.
type OrderService struct {
	store       *storage.Store
	products    repositories.IProductRepository
	orders      repositories.IOrderRepository
	broadcaster contract.IBroadcaster
	log         *slog.Logger
	validate    *validator.Validate
}

func NewOrderService(store *storage.Store, products repositories.IProductRepository,
	orders repositories.IOrderRepository, broadcaster contract.IBroadcaster,
	log *slog.Logger) IOrderService {
	return &OrderService{
		store:       store,
		products:    products,
		orders:      orders,
		broadcaster: broadcaster,
		log:         log,
		validate:    validator.New(),
	}
}

// Create converts a cart into a persisted order, or fails without having
// mutated any stored state.
//
// Each requested line is processed in caller order: fetch the product,
// check availability, snapshot the unit price, decrement stock inside
// the transaction. Duplicate product ids are treated as independent
// lines, each validated against the stock value left by the previous
// lines of the same request. The order and its lines persist together in
// one logical write; any failure rolls the whole attempt back.
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (domain.Order, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", errors.ErrInvalidOrder, err)
	}

	var (
		order   domain.Order
		changes []domain.StockChange
	)

	err := s.store.RunInTransaction(ctx, func(txn *badger.Txn) error {
		// The closure may be re-executed after a commit conflict;
		// start every attempt from a clean slate.
		changes = changes[:0]
		total := decimal.Zero
		lines := make([]domain.OrderLine, 0, len(req.Lines))

		for _, lineReq := range req.Lines {
			product, err := s.products.GetTxn(txn, lineReq.ProductID)
			if err != nil {
				return err
			}

			if product.Stock < lineReq.Quantity {
				return errors.InsufficientStock(product.ID, lineReq.Quantity, product.Stock)
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(lineReq.Quantity))))

			product.Stock -= lineReq.Quantity
			product.UpdatedAt = time.Now().UTC()
			if err := s.products.PutTxn(txn, product); err != nil {
				return err
			}

			lines = append(lines, domain.OrderLine{
				ID:        uuid.New(),
				ProductID: product.ID,
				Quantity:  lineReq.Quantity,
				UnitPrice: product.Price,
			})
			changes = append(changes, domain.StockChange{ProductID: product.ID, NewStock: product.Stock})
		}

		order = domain.Order{
			ID:        uuid.New(),
			UserID:    userID,
			Lines:     lines,
			Total:     total,
			Status:    domain.StatusPending,
			CreatedAt: time.Now().UTC(),
		}
		return s.orders.CreateTxn(txn, order)
	})
	if err != nil {
		return domain.Order{}, s.classify(err)
	}

	// Only after a successful commit: exactly one event per touched
	// product, resulting stock of the last line that touched it.
	s.broadcaster.PublishStockChanged(collapseByProduct(changes))

	return order, nil
}

// List returns the requesting user's own orders.
func (s *OrderService) List(ctx context.Context, user domain.User) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, s.classify(err)
	}
	return orders, nil
}

// Get enforces owner-or-admin read access.
func (s *OrderService) Get(ctx context.Context, user domain.User, orderID uuid.UUID) (domain.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.classify(err)
	}

	if !user.IsAdmin() && order.UserID != user.ID {
		return domain.Order{}, errors.ErrForbidden
	}
	return order, nil
}

// classify surfaces expected business outcomes verbatim and collapses
// everything else to an opaque internal failure, logged with full
// detail server-side.
func (s *OrderService) classify(err error) error {
	switch {
	case errors.Is(err, errors.ErrProductNotFound),
		errors.Is(err, errors.ErrInsufficientStock),
		errors.Is(err, errors.ErrOrderNotFound),
		errors.Is(err, errors.ErrForbidden),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		s.log.Error("order transaction failed", "error", err)
		return errors.ErrInternal
	}
}

// collapseByProduct keeps the final stock per product while preserving
// first-touch order, so duplicate lines in one request still produce a
// single event for that product.
func collapseByProduct(changes []domain.StockChange) []domain.StockChange {
	if len(changes) <= 1 {
		return changes
	}

	index := make(map[uuid.UUID]int, len(changes))
	collapsed := make([]domain.StockChange, 0, len(changes))
	for _, change := range changes {
		if i, seen := index[change.ProductID]; seen {
			collapsed[i] = change
			continue
		}
		index[change.ProductID] = len(collapsed)
		collapsed = append(collapsed, change)
	}
	return collapsed
}
