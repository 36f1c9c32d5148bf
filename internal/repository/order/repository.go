package order

import (
	"context"
	"strings"

	"eventhub/internal/domain"
	"github.com/google/uuid"
)

type LineInput struct {
	EventID  int64
	Quantity int
}

type CreateInput struct {
	UserID          int64
	TotalCents      int64
	ShippingAddress string
	ShippingCity    string
	ShippingState   string
	ShippingPincode string
	PaymentMethod   string
	Items           []LineInput
}

// Decide inspects the current status and returns an error to abort a transition.
type Decide func(current domain.OrderStatus) error

type Repository interface {
	// Create snapshots every known event in Items and skips unknown ones.
	Create(ctx context.Context, in CreateInput) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	// Get returns the order; a non-zero userID restricts it to that owner.
	Get(ctx context.Context, userID, id int64) (*domain.Order, error)
	// Transition locks the order, runs decide and moves it to status to.
	// It returns the updated order and the status it had before.
	Transition(ctx context.Context, userID, id int64, to domain.OrderStatus, decide Decide) (*domain.Order, domain.OrderStatus, error)
}

// maxNumberAttempts bounds order number regeneration on collisions.
const maxNumberAttempts = 5

// NewOrderNumber returns 8 uppercase hex characters taken from a random UUID.
func NewOrderNumber() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
