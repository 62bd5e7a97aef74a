//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
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
)

const (
	userKeyPrefix   = "user:"
	userIDKeyPrefix = "user-id:"
)

type IUserRepository interface {
	Create(ctx context.Context, email, fullName, hashedPassword string) (uuid.UUID, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	GrantRole(ctx context.Context, id uuid.UUID, role string) error
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// userRecord is the stored representation of a user.
type userRecord struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	FullName     string   `json:"full_name"`
	PasswordHash string   `json:"password_hash"`
	Roles        []string `json:"roles"`
	IsActive     bool     `json:"is_active"`
	CreatedAt    int64    `json:"created_at"`
}

// Create persists a new account under its email key, plus an id index so
// connection-time authentication can resolve the identity from a token.
func (u *UserRepository) Create(_ context.Context, email, fullName, hashedPassword string) (uuid.UUID, error) {
	newID := uuid.New()
	record := userRecord{
		ID:           newID.String(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		IsActive:     true,
		CreatedAt:    time.Now().Unix(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := []byte(userKeyPrefix + email)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set([]byte(userIDKeyPrefix+record.ID), []byte(email))
	})
	if err != nil {
		return uuid.Nil, err
	}
	return newID, nil
}

func (u *UserRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	var record userRecord

	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userKeyPrefix + email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}

	return toUser(record)
}

func (u *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var email string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userIDKeyPrefix + id.String()))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			email = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}

	return u.GetByEmail(ctx, email)
}

// SetActive flips the account flag checked at connection time.
// Deactivated accounts keep their data but can no longer connect.
func (u *UserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	user, err := u.GetByID(ctx, id)
	if err != nil {
		return err
	}

	record := userRecord{
		ID:           user.ID.String(),
		Email:        user.Email,
		FullName:     user.FullName,
		PasswordHash: user.PasswordHash,
		Roles:        user.Roles,
		IsActive:     active,
		CreatedAt:    user.CreatedAt.Unix(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	return u.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(userKeyPrefix+user.Email), data)
	})
}

// GrantRole appends a role to the account. Granting an already held
// role is a no-op.
func (u *UserRepository) GrantRole(ctx context.Context, id uuid.UUID, role string) error {
	user, err := u.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if lo.Contains(user.Roles, role) {
		return nil
	}

	record := userRecord{
		ID:           user.ID.String(),
		Email:        user.Email,
		FullName:     user.FullName,
		PasswordHash: user.PasswordHash,
		Roles:        append(user.Roles, role),
		IsActive:     user.IsActive,
		CreatedAt:    user.CreatedAt.Unix(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	return u.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(userKeyPrefix+user.Email), data)
	})
}

func toUser(record userRecord) (domain.User, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:           id,
		Email:        record.Email,
		FullName:     record.FullName,
		PasswordHash: record.PasswordHash,
		Roles:        record.Roles,
		IsActive:     record.IsActive,
		CreatedAt:    time.Unix(record.CreatedAt, 0).UTC(),
	}, nil
}
