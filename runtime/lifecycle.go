package runtime

import (
	"context"
	"log/slog"

	"shop-lab/auth"
	"shop-lab/contract"
	"shop-lab/errors"
	"shop-lab/sink"

	"google.golang.org/grpc/metadata"
)

// ConnectionLifecycle glues the transport layer to the presence engine:
// authenticate the credential carried in connection metadata, register
// the connection, announce the presence change, and undo all of it on
// disconnect. The transport owns the returned sink's receiving side.
type ConnectionLifecycle struct {
	log           *slog.Logger
	authenticator auth.IConnectionAuthenticator
	registry      contract.IRegistry
	broadcaster   contract.IBroadcaster
	bufferSize    int
}

func NewConnectionLifecycle(log *slog.Logger, authenticator auth.IConnectionAuthenticator,
	registry contract.IRegistry, broadcaster contract.IBroadcaster, bufferSize int) *ConnectionLifecycle {
	return &ConnectionLifecycle{
		log:           log,
		authenticator: authenticator,
		registry:      registry,
		broadcaster:   broadcaster,
		bufferSize:    bufferSize,
	}
}

// OnConnect admits or refuses one incoming connection. Refusal is always
// ErrConnectionRefused, whatever actually failed: the peer learns
// nothing, the logs know everything.
func (l *ConnectionLifecycle) OnConnect(ctx context.Context, connectionID string, md metadata.MD) (*sink.Connection, error) {
	user, err := l.authenticator.Authenticate(ctx, md)
	if err != nil {
		return nil, errors.ErrConnectionRefused
	}

	connection := sink.NewConnection(l.bufferSize)
	if err := l.registry.Register(connectionID, user, connection); err != nil {
		l.log.Debug("registration refused", "connection_id", connectionID, "error", err)
		return nil, errors.ErrConnectionRefused
	}

	l.log.Info("client connected", "connection_id", connectionID, "user_id", user.ID)
	l.broadcaster.PublishPresenceChanged(l.registry.ConnectedClients())
	return connection, nil
}

// OnDisconnect is idempotent, like Registry.Remove.
func (l *ConnectionLifecycle) OnDisconnect(connectionID string) {
	l.registry.Remove(connectionID)
	l.log.Info("client disconnected", "connection_id", connectionID)
	l.broadcaster.PublishPresenceChanged(l.registry.ConnectedClients())
}
