//go:generate go run go.uber.org/mock/mockgen -source=order.go -destination=../mocks/mock_order_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shop-lab/domain"
	"shop-lab/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	orderKeyPrefix     = "order:"
	userOrderKeyPrefix = "user-order:"
)

type IOrderRepository interface {
	// CreateTxn persists the order together with its lines inside an
	// open transaction: one logical write, visible only on commit.
	CreateTxn(txn *badger.Txn, order domain.Order) error
	Get(ctx context.Context, id uuid.UUID) (domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error)
}

type OrderRepository struct {
	db *badger.DB
}

func NewOrderRepository(db *badger.DB) IOrderRepository {
	return &OrderRepository{db: db}
}

type orderLineRecord struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type orderRecord struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Lines     []orderLineRecord `json:"lines"`
	Total     string            `json:"total"`
	Status    string            `json:"status"`
	CreatedAt int64             `json:"created_at"`
}

// CreateTxn writes the order record plus an owner index key.
// The index key embeds the creation timestamp, 19-digit zero padded, so
// a prefix scan returns a user's orders in chronological order.
func (o *OrderRepository) CreateTxn(txn *badger.Txn, order domain.Order) error {
	data, err := json.Marshal(fromOrder(order))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	if err := txn.Set([]byte(orderKeyPrefix+order.ID.String()), data); err != nil {
		return err
	}

	indexKey := fmt.Sprintf("%s%s:%019d:%s",
		userOrderKeyPrefix,
		order.UserID,
		order.CreatedAt.UnixNano(),
		order.ID,
	)
	return txn.Set([]byte(indexKey), []byte(order.ID.String()))
}

func (o *OrderRepository) Get(_ context.Context, id uuid.UUID) (domain.Order, error) {
	var record orderRecord
	err := o.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(orderKeyPrefix + id.String()))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Order{}, errors.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	return toOrder(record)
}

func (o *OrderRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Order, error) {
	var records []orderRecord
	err := o.db.View(func(txn *badger.Txn) error {
		prefix := []byte(userOrderKeyPrefix + userID.String() + ":")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		var ids []string
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			}); err != nil {
				return err
			}
		}

		for _, id := range ids {
			item, err := txn.Get([]byte(orderKeyPrefix + id))
			if err != nil {
				return err
			}
			var record orderRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(records))
	for _, record := range records {
		order, err := toOrder(record)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func fromOrder(order domain.Order) orderRecord {
	return orderRecord{
		ID:     order.ID.String(),
		UserID: order.UserID.String(),
		Lines: lo.Map(order.Lines, func(line domain.OrderLine, _ int) orderLineRecord {
			return orderLineRecord{
				ID:        line.ID.String(),
				ProductID: line.ProductID.String(),
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice.String(),
			}
		}),
		Total:     order.Total.String(),
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt.UnixNano(),
	}
}

func toOrder(record orderRecord) (domain.Order, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Order{}, err
	}
	userID, err := uuid.Parse(record.UserID)
	if err != nil {
		return domain.Order{}, err
	}
	total, err := decimal.NewFromString(record.Total)
	if err != nil {
		return domain.Order{}, err
	}

	lines := make([]domain.OrderLine, 0, len(record.Lines))
	for _, lineRecord := range record.Lines {
		lineID, err := uuid.Parse(lineRecord.ID)
		if err != nil {
			return domain.Order{}, err
		}
		productID, err := uuid.Parse(lineRecord.ProductID)
		if err != nil {
			return domain.Order{}, err
		}
		unitPrice, err := decimal.NewFromString(lineRecord.UnitPrice)
		if err != nil {
			return domain.Order{}, err
		}
		lines = append(lines, domain.OrderLine{
			ID:        lineID,
			ProductID: productID,
			Quantity:  lineRecord.Quantity,
			UnitPrice: unitPrice,
		})
	}

	return domain.Order{
		ID:        id,
		UserID:    userID,
		Lines:     lines,
		Total:     total,
		Status:    domain.OrderStatus(record.Status),
		CreatedAt: time.Unix(0, record.CreatedAt).UTC(),
	}, nil
}
