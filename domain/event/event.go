package event

import (
	"encoding/json"

	"github.com/google/uuid"
)

// DomainEvent is anything the broadcaster can push to connected clients.
// Events are transient: a client connecting after emission receives nothing.
type DomainEvent interface {
	EventName() string
}

// StockChanged is emitted once per product touched by a committed order,
// strictly after commit.
type StockChanged struct {
	ProductID uuid.UUID
	NewStock  int
}

func (StockChanged) EventName() string { return "stock-changed" }

// PresenceChanged carries the snapshot of connected client ids taken
// when a connection was registered or removed.
type PresenceChanged struct {
	Identities []string
}

func (PresenceChanged) EventName() string { return "presence-changed" }

type stockChangedPayload struct {
	Event     string `json:"event"`
	ProductID string `json:"productId"`
	NewStock  int    `json:"newStock"`
}

type presenceChangedPayload struct {
	Event      string   `json:"event"`
	Identities []string `json:"identities"`
}

// Encode produces the wire payload pushed over the realtime transport.
func Encode(e DomainEvent) ([]byte, error) {
	switch evt := e.(type) {
	case StockChanged:
		return json.Marshal(stockChangedPayload{
			Event:     evt.EventName(),
			ProductID: evt.ProductID.String(),
			NewStock:  evt.NewStock,
		})
	case PresenceChanged:
		return json.Marshal(presenceChangedPayload{
			Event:      evt.EventName(),
			Identities: evt.Identities,
		})
	default:
		return json.Marshal(map[string]string{"event": e.EventName()})
	}
}
