package runtime

import (
	"context"
	"log/slog"
	"shop-lab/domain"
	"shop-lab/errors"
	"shop-lab/mocks"
	"testing"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/metadata"
)

type stubAuthenticator struct {
	user domain.User
	err  error
}

func (s stubAuthenticator) Authenticate(_ context.Context, _ metadata.MD) (domain.User, error) {
	return s.user, s.err
}

func TestConnectionLifecycle_OnConnect(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	t.Run("should register the connection and announce presence", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		registry := NewRegistry()
		broadcaster := mocks.NewMockIBroadcaster(ctrl)
		user := activeUser()
		connectionID := uuid.NewString()

		lifecycle := NewConnectionLifecycle(log, stubAuthenticator{user: user},
			registry, broadcaster, 8)

		broadcaster.EXPECT().PublishPresenceChanged([]string{connectionID}).Times(1)

		connection, err := lifecycle.OnConnect(context.Background(), connectionID, metadata.MD{})
		req.NoError(err)
		req.NotNil(connection)

		found, ok := registry.Lookup(connectionID)
		req.True(ok)
		req.Equal(user.ID, found.ID)
	})

	t.Run("should refuse without detail when authentication fails", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		registry := NewRegistry()
		broadcaster := mocks.NewMockIBroadcaster(ctrl)

		lifecycle := NewConnectionLifecycle(log,
			stubAuthenticator{err: errors.ErrConnectionRefused},
			registry, broadcaster, 8)

		// No presence event expected on refusal
		connection, err := lifecycle.OnConnect(context.Background(), uuid.NewString(), metadata.MD{})
		req.ErrorIs(err, errors.ErrConnectionRefused)
		req.Nil(connection)
		req.Empty(registry.ConnectedClients())
	})

	t.Run("should refuse with the same error when registration fails", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		registry := NewRegistry()
		broadcaster := mocks.NewMockIBroadcaster(ctrl)
		inactive := activeUser()
		inactive.IsActive = false

		lifecycle := NewConnectionLifecycle(log, stubAuthenticator{user: inactive},
			registry, broadcaster, 8)

		connection, err := lifecycle.OnConnect(context.Background(), uuid.NewString(), metadata.MD{})
		req.ErrorIs(err, errors.ErrConnectionRefused)
		req.Nil(connection)
	})
}

func TestConnectionLifecycle_OnDisconnect(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	registry := NewRegistry()
	broadcaster := mocks.NewMockIBroadcaster(ctrl)
	user := activeUser()
	connectionID := uuid.NewString()

	lifecycle := NewConnectionLifecycle(log, stubAuthenticator{user: user},
		registry, broadcaster, 8)

	broadcaster.EXPECT().PublishPresenceChanged([]string{connectionID}).Times(1)
	_, err := lifecycle.OnConnect(context.Background(), connectionID, metadata.MD{})
	req.NoError(err)

	// Disconnect announces the emptied snapshot; doing it again
	// re-announces but never fails.
	broadcaster.EXPECT().PublishPresenceChanged([]string{}).Times(2)
	lifecycle.OnDisconnect(connectionID)
	lifecycle.OnDisconnect(connectionID)

	req.Empty(registry.ConnectedClients())
}
