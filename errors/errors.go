package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound      = fmt.Errorf("product not found")
	ErrInsufficientStock    = fmt.Errorf("insufficient stock")
	ErrOrderNotFound        = fmt.Errorf("order not found")
	ErrForbidden            = fmt.Errorf("forbidden")
	ErrInvalidOrder         = fmt.Errorf("invalid order request")
	ErrInvalidProduct       = fmt.Errorf("invalid product request")
	ErrInternal             = fmt.Errorf("internal error, check server logs")
	ErrProductAlreadyExists = fmt.Errorf("product already exists")
	ErrUserAlreadyExists    = fmt.Errorf("user already exists")
	ErrUserNotFound         = fmt.Errorf("user not found")
	ErrUserInactive         = fmt.Errorf("user is not active")
	ErrInvalidCredentials   = fmt.Errorf("invalid credentials")
	ErrInvalidPassword      = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration      = fmt.Errorf("token generation failed")
	ErrConnectionRefused    = fmt.Errorf("connection refused")
	ErrSinkSaturated        = fmt.Errorf("sink buffer is full")
	ErrWorkerPanic          = fmt.Errorf("worker panic")
)

// ProductNotFoundError carries the id the caller asked for.
// errors.Is(err, ErrProductNotFound) matches it.
type ProductNotFoundError struct {
	ProductID uuid.UUID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with id %s not found", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

func ProductNotFound(id uuid.UUID) error {
	return &ProductNotFoundError{ProductID: id}
}

// InsufficientStockError carries enough detail for the caller to retry
// with an adjusted quantity.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %s has insufficient stock (requested: %d, available: %d)",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

func InsufficientStock(id uuid.UUID, requested, available int) error {
	return &InsufficientStockError{ProductID: id, Requested: requested, Available: available}
}

// Is and As are re-exported so callers don't need to import both this
// package and the standard library errors package.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
