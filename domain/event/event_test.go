package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestEncode_StockChanged(t *testing.T) {
	req := require.New(t)
	productID := uuid.MustParse("6f1c24b5-7e21-4a1f-9c56-0d1a2b3c4d5e")

	payload, err := Encode(StockChanged{ProductID: productID, NewStock: 2})

	req.NoError(err)
	req.JSONEq(`{
		"event": "stock-changed",
		"productId": "6f1c24b5-7e21-4a1f-9c56-0d1a2b3c4d5e",
		"newStock": 2
	}`, string(payload))
}

func TestEncode_PresenceChanged(t *testing.T) {
	req := require.New(t)

	payload, err := Encode(PresenceChanged{Identities: []string{"conn-1", "conn-2"}})

	req.NoError(err)
	req.JSONEq(`{
		"event": "presence-changed",
		"identities": ["conn-1", "conn-2"]
	}`, string(payload))
}
