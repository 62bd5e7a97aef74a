//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"shop-lab/domain"
	"shop-lab/domain/event"
)

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision, avoiding manual naming in the
// Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one connected client's receiving end.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry holds the set of live connections and the identity bound to
// each. Lifetime = process lifetime; nothing is persisted.
type IRegistry interface {
	Register(connectionID string, user domain.User, sink EventSink) error
	Remove(connectionID string)
	ConnectedClients() []string
	Lookup(connectionID string) (domain.User, bool)
	Sinks() []EventSink
}

// IBroadcaster fans events out to every registered connection.
// Best-effort: a failed or slow delivery is logged and dropped, never
// retried, never surfaced to the publisher.
type IBroadcaster interface {
	PublishStockChanged(changes []domain.StockChange)
	PublishPresenceChanged(identities []string)
}
