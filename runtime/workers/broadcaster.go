package workers

import (
	"context"
	"log/slog"
	"time"

	"shop-lab/contract"
	"shop-lab/domain"
	"shop-lab/domain/event"
)

// Broadcaster fans presence and stock events out to every connection in
// the registry.
//
// It provides best-effort delivery with no durability, no retries and no
// ordering guarantee across peers. Events published from one source are
// delivered to a given peer in emission order, because a single worker
// goroutine drains the queue and feeds each sink sequentially.
//
// Broadcaster is safe for concurrent use by multiple goroutines.
type Broadcaster struct {
	log             *slog.Logger
	registry        contract.IRegistry
	queue           chan event.DomainEvent
	deliveryTimeout time.Duration
}

func NewBroadcaster(log *slog.Logger, registry contract.IRegistry,
	bufferSize int, deliveryTimeout time.Duration) *Broadcaster {
	return &Broadcaster{
		log:             log,
		registry:        registry,
		queue:           make(chan event.DomainEvent, bufferSize),
		deliveryTimeout: deliveryTimeout,
	}
}

// PublishStockChanged enqueues one event per touched product, in the
// order the coordinator emitted them. Fire-and-forget: the caller's
// response never waits on peer delivery.
func (b *Broadcaster) PublishStockChanged(changes []domain.StockChange) {
	for _, change := range changes {
		b.publish(event.StockChanged{ProductID: change.ProductID, NewStock: change.NewStock})
	}
}

// PublishPresenceChanged enqueues the identity snapshot taken when a
// connection was registered or removed.
func (b *Broadcaster) PublishPresenceChanged(identities []string) {
	b.publish(event.PresenceChanged{Identities: identities})
}

func (b *Broadcaster) publish(e event.DomainEvent) {
	select {
	case b.queue <- e:
	default:
		b.log.Warn("broadcast queue full, event lost", "event", e.EventName())
	}
}

// Run drains the queue until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			b.log.Debug("context done, stopping broadcaster")
			return nil
		case e := <-b.queue:
			b.Fanout(ctx, e)
		}
	}
}

// Fanout delivers one event to every currently registered sink. A failed
// delivery is logged and skipped; it never fails the broadcast or
// reaches the peer that triggered the event.
func (b *Broadcaster) Fanout(ctx context.Context, e event.DomainEvent) {
	for _, s := range b.registry.Sinks() {
		deliveryCtx, cancel := context.WithTimeout(ctx, b.deliveryTimeout)
		if err := s.Consume(deliveryCtx, e); err != nil {
			b.log.Warn("event delivery failed", "event", e.EventName(), "error", err)
		}
		cancel()
	}
}
