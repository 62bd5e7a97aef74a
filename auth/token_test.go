package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_GenerateAndValidate(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager([]byte("test-secret"), 1*time.Hour)
	userID := uuid.NewString()

	tokenString, err := tokens.Generate(userID, []string{"user", "admin"})
	req.NoError(err)
	req.NotEmpty(tokenString)

	claims, err := tokens.Validate(tokenString)
	req.NoError(err)
	req.Equal(userID, claims.UserID)
	req.Equal([]string{"user", "admin"}, claims.Roles)
	req.Equal("shop-lab", claims.Issuer)
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager([]byte("test-secret"), -1*time.Minute)

	tokenString, err := tokens.Generate(uuid.NewString(), []string{"user"})
	req.NoError(err)

	_, err = tokens.Validate(tokenString)
	req.Error(err)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager([]byte("test-secret"), 1*time.Hour)
	foreign := NewTokenManager([]byte("other-secret"), 1*time.Hour)

	tokenString, err := foreign.Generate(uuid.NewString(), []string{"user"})
	req.NoError(err)

	_, err = tokens.Validate(tokenString)
	req.Error(err)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tokens := NewTokenManager([]byte("test-secret"), 1*time.Hour)

	_, err := tokens.Validate("not.a.token")
	require.Error(t, err)
}
