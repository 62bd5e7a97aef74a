package sink

import (
	"context"
	"shop-lab/domain/event"
	"shop-lab/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnection_Consume(t *testing.T) {
	req := require.New(t)
	connection := NewConnection(2)
	ctx := context.Background()

	evt := event.PresenceChanged{Identities: []string{"a"}}
	req.NoError(connection.Consume(ctx, evt))
	req.Equal(evt, <-connection.Events)
}

func TestConnection_Consume_SaturatedBuffer(t *testing.T) {
	req := require.New(t)
	connection := NewConnection(1)
	ctx := context.Background()

	req.NoError(connection.Consume(ctx, event.PresenceChanged{}))

	// Nobody drains the buffer; the second event is dropped, not queued
	err := connection.Consume(ctx, event.PresenceChanged{})
	req.ErrorIs(err, errors.ErrSinkSaturated)
}

func TestConnection_Consume_CancelledContext(t *testing.T) {
	req := require.New(t)
	connection := NewConnection(1)

	// Saturate the buffer first so the send case can never be chosen
	req.NoError(connection.Consume(context.Background(), event.PresenceChanged{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := connection.Consume(ctx, event.PresenceChanged{})
	req.ErrorIs(err, context.Canceled)
}
