package shop

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated = "OrderCreated"
	EventOrderUpdated = "OrderUpdated"
	EventOrderDeleted = "OrderDeleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "shop-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type EventItem struct {
	OrderItemID int64           `json:"order_item_id"`
	ProductID   int64           `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type OrderEventPayload struct {
	OrderID     int64           `json:"order_id"`
	CustomerID  int64           `json:"customer_id"`
	OrderAmount decimal.Decimal `json:"order_amount"`
	Items       []EventItem     `json:"items,omitempty"`
}

func EventItemsOf(items []OrderItem) []EventItem {
	out := make([]EventItem, 0, len(items))
	for _, it := range items {
		out = append(out, EventItem{
			OrderItemID: it.ID,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return out
}
