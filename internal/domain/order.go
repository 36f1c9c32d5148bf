package domain

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCancelled OrderStatus = "cancelled"
	OrderDelivered OrderStatus = "delivered"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:   {OrderConfirmed: true, OrderCancelled: true},
	OrderConfirmed: {OrderCancelled: true, OrderDelivered: true},
	OrderCancelled: {},
	OrderDelivered: {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// ParseOrderStatus returns false for strings outside the known status set.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(s)
	_, ok := validNext[st]
	return st, ok
}

// Cancellable reports whether the owner may cancel an order in this status.
func (s OrderStatus) Cancellable() bool {
	return CanTransition(s, OrderCancelled)
}

type Order struct {
	ID              int64       `json:"id"`
	UserID          int64       `json:"user_id"`
	OrderNumber     string      `json:"order_number"`
	TotalCents      int64       `json:"total_cents"`
	Status          OrderStatus `json:"status"`
	ShippingAddress string      `json:"shipping_address"`
	ShippingCity    string      `json:"shipping_city"`
	ShippingState   string      `json:"shipping_state"`
	ShippingPincode string      `json:"shipping_pincode"`
	PaymentMethod   string      `json:"payment_method"`
	PaymentStatus   string      `json:"payment_status"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderItem is a snapshot of an event's title and price at order time.
type OrderItem struct {
	ID         int64  `json:"id"`
	OrderID    int64  `json:"order_id"`
	EventID    int64  `json:"event_id"`
	EventTitle string `json:"event_title"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}

// ItemsTotalCents sums the snapshot lines.
func (o Order) ItemsTotalCents() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.PriceCents * int64(it.Quantity)
	}
	return total
}
