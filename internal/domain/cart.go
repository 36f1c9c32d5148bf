package domain

import (
	"encoding/json"
	"time"
)

type Cart struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	Items     []CartItem `json:"items"`
}

// TotalCents sums price*quantity over all lines. It is computed on every read.
func (c Cart) TotalCents() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.TotalCents()
	}
	return total
}

type CartItem struct {
	ID         int64 `json:"id"`
	CartID     int64 `json:"cart_id"`
	EventID    int64 `json:"event_id"`
	Quantity   int   `json:"quantity"`
	PriceCents int64 `json:"price_cents"`
	// CustomizedItems is stored and returned as submitted.
	CustomizedItems json.RawMessage `json:"customized_items,omitempty"`
	Event           *Event          `json:"event,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (i CartItem) TotalCents() int64 {
	return i.PriceCents * int64(i.Quantity)
}
