//go:generate go run go.uber.org/mock/mockgen -source=product_service.go -destination=../mocks/mock_product_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shop-lab/domain"
	"shop-lab/errors"
	"shop-lab/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultSearchLimit = 10

type CreateProductRequest struct {
	Name        string          `validate:"required,min=1"`
	Description string          `validate:"omitempty"`
	Price       decimal.Decimal `validate:"-"`
	Stock       int             `validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name        string          `validate:"required,min=1"`
	Description string          `validate:"omitempty"`
	Price       decimal.Decimal `validate:"-"`
}

type IProductService interface {
	Create(ctx context.Context, req CreateProductRequest) (domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, term string) ([]domain.Product, error)
}

// ProductService is the static catalog surface. Stock is read-only here:
// it only moves through the order transaction.
type ProductService struct {
	products repositories.IProductRepository
	index    repositories.IProductIndex
	log      *slog.Logger
	validate *validator.Validate
}

func NewProductService(products repositories.IProductRepository,
	index repositories.IProductIndex, log *slog.Logger) IProductService {
	return &ProductService{
		products: products,
		index:    index,
		log:      log,
		validate: validator.New(),
	}
}

func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (domain.Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Product{}, fmt.Errorf("%w: %v", errors.ErrInvalidProduct, err)
	}
	if req.Price.IsNegative() {
		return domain.Product{}, fmt.Errorf("%w: price must not be negative", errors.ErrInvalidProduct)
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return domain.Product{}, s.classify(err)
	}

	// Index failures don't undo the committed row; the index is derived
	// data and a miss only degrades search.
	if err := s.index.Index(product); err != nil {
		s.log.Warn("product indexing failed", "product_id", product.ID, "error", err)
	}
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, s.classify(err)
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	products, err := s.products.List(ctx, limit, offset)
	if err != nil {
		return nil, s.classify(err)
	}
	return products, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (domain.Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Product{}, fmt.Errorf("%w: %v", errors.ErrInvalidProduct, err)
	}
	if req.Price.IsNegative() {
		return domain.Product{}, fmt.Errorf("%w: price must not be negative", errors.ErrInvalidProduct)
	}

	product := domain.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}
	if err := s.products.Update(ctx, product); err != nil {
		return domain.Product{}, s.classify(err)
	}

	updated, err := s.products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, s.classify(err)
	}
	if err := s.index.Index(updated); err != nil {
		s.log.Warn("product indexing failed", "product_id", id, "error", err)
	}
	return updated, nil
}

// Delete removes the row first; the index entry goes afterwards,
// best-effort, decoupled from the committed deletion.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return s.classify(err)
	}
	if err := s.index.Remove(id); err != nil {
		s.log.Warn("product index cleanup failed", "product_id", id, "error", err)
	}
	return nil
}

func (s *ProductService) Search(ctx context.Context, term string) ([]domain.Product, error) {
	ids, err := s.index.Search(ctx, term, defaultSearchLimit)
	if err != nil {
		return nil, s.classify(err)
	}

	products := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		product, err := s.products.Get(ctx, id)
		if errors.Is(err, errors.ErrProductNotFound) {
			// Stale index entry; skip it.
			continue
		}
		if err != nil {
			return nil, s.classify(err)
		}
		products = append(products, product)
	}
	return products, nil
}

func (s *ProductService) classify(err error) error {
	switch {
	case errors.Is(err, errors.ErrProductNotFound),
		errors.Is(err, errors.ErrProductAlreadyExists),
		errors.Is(err, errors.ErrInvalidProduct):
		return err
	default:
		s.log.Error("catalog operation failed", "error", err)
		return errors.ErrInternal
	}
}
