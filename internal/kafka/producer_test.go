package kafka

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/adityarahman/go-shop-api/internal/shop"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestPublishEnvelope(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, shop.TopicOrders, 4, testLog())

	ev := shop.Envelope{
		EventID:       "abc-123",
		EventType:     shop.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      "shop-api",
		CorrelationID: "7",
	}
	ev.Payload = MustMarshal(shop.OrderEventPayload{
		OrderID:     7,
		CustomerID:  3,
		OrderAmount: decimal.RequireFromString("19.98"),
	})
	p.PublishEnvelope(shop.PartitionKey(7), ev)

	m := <-p.inbox
	require.Equal(t, []byte("7"), m.Key)
	require.Len(t, m.Headers, 2)
	require.Equal(t, "x-event-type", m.Headers[0].Key)
	require.Equal(t, []byte(shop.EventOrderCreated), m.Headers[0].Value)
	require.Equal(t, "x-event-version", m.Headers[1].Key)
	require.Equal(t, []byte("1"), m.Headers[1].Value)

	var got shop.Envelope
	require.NoError(t, json.Unmarshal(m.Value, &got))
	require.Equal(t, shop.EventOrderCreated, got.EventType)
	require.Equal(t, "7", got.CorrelationID)

	var payload shop.OrderEventPayload
	require.NoError(t, json.Unmarshal(got.Payload, &payload))
	require.Equal(t, int64(7), payload.OrderID)
	require.True(t, payload.OrderAmount.Equal(decimal.RequireFromString("19.98")))
}

func TestProducerCloseIdempotent(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, shop.TopicOrders, 1, testLog())

	p.Close()
	p.Close() // tidak panic

	// publish setelah close di-drop, tidak block walau buffer penuh
	p.Publish([]byte("1"), []byte("{}"))
	p.Publish([]byte("2"), []byte("{}"))
	select {
	case m := <-p.inbox:
		t.Fatalf("pesan ketinggalan di inbox setelah close: %s", m.Key)
	default:
	}
}
