package sink

import (
	"context"

	"shop-lab/domain/event"
	"shop-lab/errors"
)

// Connection buffers events for one live connection. The transport layer
// owns the channel's receiving side and pushes each event to the peer.
type Connection struct {
	Events chan event.DomainEvent
}

func NewConnection(bufferSize int) *Connection {
	return &Connection{Events: make(chan event.DomainEvent, bufferSize)}
}

// Consume is called by the broadcaster. It never blocks past the given
// context: a peer that stopped draining its buffer gets events dropped
// instead of stalling delivery to everyone else.
func (c *Connection) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case c.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrSinkSaturated
	}
}
