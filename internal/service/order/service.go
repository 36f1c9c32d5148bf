package order

import (
	"context"
	"io"
	"log"
	"math"
	"strings"

	"eventhub/internal/broker"
	"eventhub/internal/domain"
	orderrepo "eventhub/internal/repository/order"
)

type orderRepo interface {
	Create(ctx context.Context, in orderrepo.CreateInput) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	Get(ctx context.Context, userID, id int64) (*domain.Order, error)
	Transition(ctx context.Context, userID, id int64, to domain.OrderStatus, decide orderrepo.Decide) (*domain.Order, domain.OrderStatus, error)
}

type publisher interface {
	PublishOrder(ctx context.Context, eventType string, payload broker.OrderPayload)
}

// Service places orders and moves them through their lifecycle.
type Service struct {
	repo   orderRepo
	events publisher
	logger *log.Logger
}

func New(repo orderRepo, events publisher, logger *log.Logger) *Service {
	if events == nil {
		events = broker.Noop{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, events: events, logger: logger}
}

type ItemInput struct {
	EventID  int64 `json:"event_id"`
	Quantity int   `json:"quantity"`
}

// PlaceInput is the checkout payload. TotalAmount is in major currency units.
type PlaceInput struct {
	Items           []ItemInput `json:"items"`
	ShippingAddress string      `json:"shipping_address"`
	ShippingCity    string      `json:"shipping_city"`
	ShippingState   string      `json:"shipping_state"`
	ShippingPincode string      `json:"shipping_pincode"`
	PaymentMethod   string      `json:"payment_method"`
	TotalAmount     *float64    `json:"total_amount"`
}

func (in PlaceInput) validate() error {
	if len(in.Items) == 0 {
		return domain.InvalidInput("items is required")
	}
	for _, f := range []struct{ name, value string }{
		{"shipping_address", in.ShippingAddress},
		{"shipping_city", in.ShippingCity},
		{"shipping_state", in.ShippingState},
		{"shipping_pincode", in.ShippingPincode},
		{"payment_method", in.PaymentMethod},
	} {
		if strings.TrimSpace(f.value) == "" {
			return domain.InvalidInput("%s is required", f.name)
		}
	}
	for i, it := range in.Items {
		if it.EventID <= 0 {
			return domain.InvalidInput("items[%d].event_id is required", i)
		}
		if it.Quantity < 1 {
			return domain.InvalidInput("items[%d].quantity is required", i)
		}
		if it.Quantity > domain.MaxQuantity {
			return domain.InvalidInput("items[%d].quantity must be at most %d", i, domain.MaxQuantity)
		}
	}
	if in.TotalAmount == nil {
		return domain.InvalidInput("total_amount is required")
	}
	if *in.TotalAmount < 0 || math.IsNaN(*in.TotalAmount) || math.IsInf(*in.TotalAmount, 0) {
		return domain.InvalidInput("total_amount must not be negative")
	}
	if *in.TotalAmount > domain.MaxAmount {
		return domain.InvalidInput("total_amount is out of range")
	}
	return nil
}

// Place validates the request and stores the order with snapshots of every
// known event. Unknown events are skipped. The submitted total is stored as is.
func (s *Service) Place(ctx context.Context, userID int64, in PlaceInput) (*domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	lines := make([]orderrepo.LineInput, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, orderrepo.LineInput{EventID: it.EventID, Quantity: it.Quantity})
	}
	total := int64(math.Round(*in.TotalAmount * 100))

	o, err := s.repo.Create(ctx, orderrepo.CreateInput{
		UserID:          userID,
		TotalCents:      total,
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		ShippingCity:    strings.TrimSpace(in.ShippingCity),
		ShippingState:   strings.TrimSpace(in.ShippingState),
		ShippingPincode: strings.TrimSpace(in.ShippingPincode),
		PaymentMethod:   strings.TrimSpace(in.PaymentMethod),
		Items:           lines,
	})
	if err != nil {
		return nil, err
	}
	if skipped := len(lines) - len(o.Items); skipped > 0 {
		s.logger.Printf("order %s: skipped %d unknown event(s)", o.OrderNumber, skipped)
	}
	if sum := o.ItemsTotalCents(); sum != total {
		s.logger.Printf("order %s: submitted total %d differs from item sum %d", o.OrderNumber, total, sum)
	}
	s.publish(ctx, broker.EventOrderPlaced, o, "")
	return o, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]domain.Order, error) {
	return nonNil(s.repo.ListByUser(ctx, userID))
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return nonNil(s.repo.ListAll(ctx))
}

func (s *Service) Get(ctx context.Context, userID, id int64) (*domain.Order, error) {
	return s.repo.Get(ctx, userID, id)
}

// Cancel is allowed while the order is pending or confirmed.
func (s *Service) Cancel(ctx context.Context, userID, id int64) (*domain.Order, error) {
	o, from, err := s.repo.Transition(ctx, userID, id, domain.OrderCancelled, func(current domain.OrderStatus) error {
		if !current.Cancellable() {
			return domain.InvalidOperation("order cannot be cancelled")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, broker.EventOrderCancelled, o, from)
	return o, nil
}

// UpdateStatus is the administrative transition along the status machine.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	to, ok := domain.ParseOrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !ok {
		return nil, domain.InvalidInput("status must be one of pending, confirmed, cancelled, delivered")
	}
	o, from, err := s.repo.Transition(ctx, 0, id, to, func(current domain.OrderStatus) error {
		if !domain.CanTransition(current, to) {
			return domain.InvalidOperation("order cannot move from %s to %s", current, to)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	eventType := broker.EventOrderStatusChanged
	if to == domain.OrderCancelled {
		eventType = broker.EventOrderCancelled
	}
	s.publish(ctx, eventType, o, from)
	return o, nil
}

func (s *Service) publish(ctx context.Context, eventType string, o *domain.Order, from domain.OrderStatus) {
	s.events.PublishOrder(ctx, eventType, broker.OrderPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Status:      o.Status,
		Previous:    from,
		TotalCents:  o.TotalCents,
		Items:       o.Items,
	})
}

func nonNil(orders []domain.Order, err error) ([]domain.Order, error) {
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}
