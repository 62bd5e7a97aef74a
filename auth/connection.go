//go:generate go run go.uber.org/mock/mockgen -source=connection.go -destination=../mocks/mock_connection.go -package=mocks
package auth

import (
	"context"
	"log/slog"
	"strings"

	"shop-lab/domain"
	"shop-lab/errors"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"
)

const (
	credentialHeader = "authentication"
	credentialCookie = "Authentication"
)

// UserResolver looks a user up by id on the account store.
type UserResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

type IConnectionAuthenticator interface {
	Authenticate(ctx context.Context, md metadata.MD) (domain.User, error)
}

// ConnectionAuthenticator validates the credential presented when a
// realtime connection is opened. Every failure mode collapses to
// ErrConnectionRefused toward the peer; the concrete step that failed
// is only visible in the server logs.
type ConnectionAuthenticator struct {
	tokens *TokenManager
	users  UserResolver
	log    *slog.Logger
}

func NewConnectionAuthenticator(tokens *TokenManager, users UserResolver, log *slog.Logger) *ConnectionAuthenticator {
	return &ConnectionAuthenticator{tokens: tokens, users: users, log: log}
}

func (a *ConnectionAuthenticator) Authenticate(ctx context.Context, md metadata.MD) (domain.User, error) {
	token := extractCredential(md)
	if token == "" {
		a.log.Debug("connection rejected: no credential in metadata")
		return domain.User{}, errors.ErrConnectionRefused
	}

	claims, err := a.tokens.Validate(token)
	if err != nil {
		a.log.Debug("connection rejected: token validation failed", "error", err)
		return domain.User{}, errors.ErrConnectionRefused
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		a.log.Debug("connection rejected: malformed user id in claims", "error", err)
		return domain.User{}, errors.ErrConnectionRefused
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		a.log.Debug("connection rejected: unknown user", "user_id", claims.UserID)
		return domain.User{}, errors.ErrConnectionRefused
	}
	if !user.IsActive {
		a.log.Debug("connection rejected: inactive user", "user_id", claims.UserID)
		return domain.User{}, errors.ErrConnectionRefused
	}

	return user, nil
}

// extractCredential reads the token from the "authentication" metadata
// value, falling back to the Authentication cookie for browser clients.
func extractCredential(md metadata.MD) string {
	if values := md.Get(credentialHeader); len(values) > 0 && values[0] != "" {
		return values[0]
	}

	for _, raw := range md.Get("cookie") {
		for _, part := range strings.Split(raw, "; ") {
			name, value, found := strings.Cut(part, "=")
			if found && name == credentialCookie {
				return value
			}
		}
	}
	return ""
}
