package cart

import (
	"context"
	"encoding/json"

	"eventhub/internal/domain"
)

// UpsertItemInput replaces the caller's line for EventID. A nil PriceCents
// means the event's catalog price is used.
type UpsertItemInput struct {
	EventID         int64
	Quantity        int
	PriceCents      *int64
	CustomizedItems json.RawMessage
}

type Repository interface {
	GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error)
	UpsertItem(ctx context.Context, userID int64, in UpsertItemInput) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, cartItemID int64) (*domain.Cart, error)
	Clear(ctx context.Context, userID int64) (*domain.Cart, error)
}
