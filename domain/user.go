package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const RoleAdmin = "admin"

type User struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	PasswordHash string
	Roles        []string
	IsActive     bool
	CreatedAt    time.Time
}

// IsAdmin grants read access to any order, not just the user's own.
func (u User) IsAdmin() bool {
	return lo.Contains(u.Roles, RoleAdmin)
}
