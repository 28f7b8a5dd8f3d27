package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ItemCount int `json:"item_count"`
}

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent("cart.updated", "@GoMarketplace:products", "cart", payload{ItemCount: 3})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, 1, ev.Version)
	assert.Equal(t, "UTC", ev.Timestamp.Location().String())

	var got payload
	require.NoError(t, ev.DecodeData(&got))
	assert.Equal(t, 3, got.ItemCount)
}

func TestNewEvent_UnmarshalablePayload(t *testing.T) {
	_, err := NewEvent("cart.updated", "k", "cart", make(chan int))
	assert.Error(t, err)
}

func TestNewMessage(t *testing.T) {
	ev, err := NewEvent("cart.updated", "cart-key", "cart", payload{ItemCount: 1})
	require.NoError(t, err)
	ev.CorrelationID = "corr-1"

	msg, err := NewMessage("ecommerce.cart.updated", ev)
	require.NoError(t, err)

	assert.Equal(t, "ecommerce.cart.updated", msg.Topic)
	assert.Equal(t, []byte("cart-key"), msg.Key)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "cart.updated", headers["event_type"])
	assert.Equal(t, "cart", headers["source"])
	assert.Equal(t, "corr-1", headers["correlation_id"])

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, ev.EventID, decoded.EventID)
}

func TestPing_NoBrokers(t *testing.T) {
	p := NewProducer(DefaultProducerConfig(nil), slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer p.Close()

	assert.Error(t, p.Ping(context.Background()))
}
