//go:generate go run go.uber.org/mock/mockgen -source=product.go -destination=../mocks/mock_product_repository.go -package=mocks
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
	"github.com/shopspring/decimal"
)

const (
	productKeyPrefix     = "product:"
	productNameKeyPrefix = "product-name:"
)

type IProductRepository interface {
	Create(ctx context.Context, product domain.Product) error
	Get(ctx context.Context, id uuid.UUID) (domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]domain.Product, error)
	Update(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Txn-scoped variants used inside the order unit of work. Reads go
	// through the transaction so Badger tracks them for conflict
	// detection against concurrent decrements of the same product.
	GetTxn(txn *badger.Txn, id uuid.UUID) (domain.Product, error)
	PutTxn(txn *badger.Txn, product domain.Product) error
}

type ProductRepository struct {
	db *badger.DB
}

func NewProductRepository(db *badger.DB) IProductRepository {
	return &ProductRepository{db: db}
}

type productRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// Create persists the product plus a name index key enforcing display
// name uniqueness.
func (p *ProductRepository) Create(_ context.Context, product domain.Product) error {
	data, err := json.Marshal(fromProduct(product))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	return p.db.Update(func(txn *badger.Txn) error {
		nameKey := []byte(productNameKeyPrefix + product.Name)
		if _, err := txn.Get(nameKey); err == nil {
			return errors.ErrProductAlreadyExists
		}
		if err := txn.Set([]byte(productKeyPrefix+product.ID.String()), data); err != nil {
			return err
		}
		return txn.Set(nameKey, []byte(product.ID.String()))
	})
}

func (p *ProductRepository) Get(_ context.Context, id uuid.UUID) (domain.Product, error) {
	var product domain.Product
	err := p.db.View(func(txn *badger.Txn) error {
		found, err := p.GetTxn(txn, id)
		if err != nil {
			return err
		}
		product = found
		return nil
	})
	return product, err
}

// GetTxn fetches one product row inside an open transaction.
// Absence maps to ErrProductNotFound carrying the requested id.
func (p *ProductRepository) GetTxn(txn *badger.Txn, id uuid.UUID) (domain.Product, error) {
	item, err := txn.Get([]byte(productKeyPrefix + id.String()))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Product{}, errors.ProductNotFound(id)
	}
	if err != nil {
		return domain.Product{}, err
	}

	var record productRecord
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &record)
	}); err != nil {
		return domain.Product{}, err
	}
	return toProduct(record)
}

// PutTxn writes the product row inside an open transaction. The write is
// only visible once the surrounding unit of work commits.
func (p *ProductRepository) PutTxn(txn *badger.Txn, product domain.Product) error {
	data, err := json.Marshal(fromProduct(product))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set([]byte(productKeyPrefix+product.ID.String()), data)
}

// List pages through the catalog in key order.
func (p *ProductRepository) List(_ context.Context, limit, offset int) ([]domain.Product, error) {
	var products []domain.Product
	err := p.db.View(func(txn *badger.Txn) error {
		prefix := []byte(productKeyPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		skipped := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(products) == limit {
				break
			}

			var record productRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			product, err := toProduct(record)
			if err != nil {
				return err
			}
			products = append(products, product)
		}
		return nil
	})
	return products, err
}

// Update rewrites name, description and price. Stock is deliberately
// carried over from the stored row: it only moves through order
// transactions.
func (p *ProductRepository) Update(_ context.Context, product domain.Product) error {
	return p.db.Update(func(txn *badger.Txn) error {
		current, err := p.GetTxn(txn, product.ID)
		if err != nil {
			return err
		}

		if current.Name != product.Name {
			nameKey := []byte(productNameKeyPrefix + product.Name)
			if _, err := txn.Get(nameKey); err == nil {
				return errors.ErrProductAlreadyExists
			}
			if err := txn.Delete([]byte(productNameKeyPrefix + current.Name)); err != nil {
				return err
			}
			if err := txn.Set(nameKey, []byte(product.ID.String())); err != nil {
				return err
			}
		}

		product.Stock = current.Stock
		product.CreatedAt = current.CreatedAt
		product.UpdatedAt = time.Now().UTC()
		return p.PutTxn(txn, product)
	})
}

func (p *ProductRepository) Delete(_ context.Context, id uuid.UUID) error {
	return p.db.Update(func(txn *badger.Txn) error {
		current, err := p.GetTxn(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete([]byte(productNameKeyPrefix + current.Name)); err != nil {
			return err
		}
		return txn.Delete([]byte(productKeyPrefix + id.String()))
	})
}

func fromProduct(product domain.Product) productRecord {
	return productRecord{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.String(),
		Stock:       product.Stock,
		CreatedAt:   product.CreatedAt.UnixNano(),
		UpdatedAt:   product.UpdatedAt.UnixNano(),
	}
}

func toProduct(record productRecord) (domain.Product, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Product{}, err
	}
	price, err := decimal.NewFromString(record.Price)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		ID:          id,
		Name:        record.Name,
		Description: record.Description,
		Price:       price,
		Stock:       record.Stock,
		CreatedAt:   time.Unix(0, record.CreatedAt).UTC(),
		UpdatedAt:   time.Unix(0, record.UpdatedAt).UTC(),
	}, nil
}
