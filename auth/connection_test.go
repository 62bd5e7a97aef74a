package auth

import (
	"context"
	"log/slog"
	"shop-lab/domain"
	"shop-lab/errors"
	"shop-lab/mocks"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/metadata"
)

func TestConnectionAuthenticator_Authenticate(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx := context.Background()
	tokens := NewTokenManager([]byte("test-secret"), 1*time.Hour)

	user := domain.User{
		ID:       uuid.New(),
		Email:    "user@example.com",
		Roles:    []string{"user"},
		IsActive: true,
	}

	validToken := func(t *testing.T) string {
		t.Helper()
		tokenString, err := tokens.Generate(user.ID.String(), user.Roles)
		require.NoError(t, err)
		return tokenString
	}

	t.Run("should accept a token in the authentication value", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		users := mocks.NewMockIUserRepository(ctrl)
		users.EXPECT().GetByID(ctx, user.ID).Return(user, nil).Times(1)

		authenticator := NewConnectionAuthenticator(tokens, users, log)

		md := metadata.New(map[string]string{"authentication": validToken(t)})
		found, err := authenticator.Authenticate(ctx, md)
		req.NoError(err)
		req.Equal(user.ID, found.ID)
	})

	t.Run("should fall back to the Authentication cookie", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		users := mocks.NewMockIUserRepository(ctrl)
		users.EXPECT().GetByID(ctx, user.ID).Return(user, nil).Times(1)

		authenticator := NewConnectionAuthenticator(tokens, users, log)

		md := metadata.New(map[string]string{
			"cookie": "theme=dark; Authentication=" + validToken(t) + "; lang=fr",
		})
		found, err := authenticator.Authenticate(ctx, md)
		req.NoError(err)
		req.Equal(user.ID, found.ID)
	})

	t.Run("should refuse when no credential is presented", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		users := mocks.NewMockIUserRepository(ctrl)

		authenticator := NewConnectionAuthenticator(tokens, users, log)

		_, err := authenticator.Authenticate(ctx, metadata.MD{})
		require.ErrorIs(t, err, errors.ErrConnectionRefused)
	})

	t.Run("should refuse an invalid token with the same error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		users := mocks.NewMockIUserRepository(ctrl)

		authenticator := NewConnectionAuthenticator(tokens, users, log)

		md := metadata.New(map[string]string{"authentication": "not-a-token"})
		_, err := authenticator.Authenticate(ctx, md)
		require.ErrorIs(t, err, errors.ErrConnectionRefused)
	})

	t.Run("should refuse an unknown account with the same error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		users := mocks.NewMockIUserRepository(ctrl)
		users.EXPECT().GetByID(ctx, user.ID).
			Return(domain.User{}, errors.ErrUserNotFound).
			Times(1)

		authenticator := NewConnectionAuthenticator(tokens, users, log)

		md := metadata.New(map[string]string{"authentication": validToken(t)})
		_, err := authenticator.Authenticate(ctx, md)
		require.ErrorIs(t, err, errors.ErrConnectionRefused)
	})

	t.Run("should refuse a deactivated account with the same error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		inactive := user
		inactive.IsActive = false
		users := mocks.NewMockIUserRepository(ctrl)
		users.EXPECT().GetByID(ctx, user.ID).Return(inactive, nil).Times(1)

		authenticator := NewConnectionAuthenticator(tokens, users, log)

		md := metadata.New(map[string]string{"authentication": validToken(t)})
		_, err := authenticator.Authenticate(ctx, md)
		require.ErrorIs(t, err, errors.ErrConnectionRefused)
	})
}

func TestPassword_HashAndCompare(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("ComplexPass123!")
	req.NoError(err)
	req.NotContains(hash, "ComplexPass123!")

	match, err := ComparePassword("ComplexPass123!", hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("WrongPass123!", hash)
	req.NoError(err)
	req.False(match)
}

func TestValidateRegister_PasswordComplexity(t *testing.T) {
	req := require.New(t)

	valid := RegisterRequest{Email: "user@example.com", Password: "ComplexPass123!", FullName: "User"}
	req.NoError(ValidateRegister(valid))

	noDigit := valid
	noDigit.Password = "ComplexPassword!"
	req.Error(ValidateRegister(noDigit))

	tooShort := valid
	tooShort.Password = "Cp1!"
	req.Error(ValidateRegister(tooShort))

	badEmail := valid
	badEmail.Email = "not-an-email"
	req.Error(ValidateRegister(badEmail))
}
