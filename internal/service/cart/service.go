package cart

import (
	"bytes"
	"context"
	"encoding/json"

	"eventhub/internal/domain"
	cartrepo "eventhub/internal/repository/cart"
)

type cartRepo interface {
	GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error)
	UpsertItem(ctx context.Context, userID int64, in cartrepo.UpsertItemInput) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, cartItemID int64) (*domain.Cart, error)
	Clear(ctx context.Context, userID int64) (*domain.Cart, error)
}

// Service manages the single cart each user owns.
type Service struct {
	repo cartRepo
}

func New(repo cartRepo) *Service {
	return &Service{repo: repo}
}

// AddItemInput is the payload of an add-to-cart request. CustomPriceCents
// overrides the catalog price; CustomizedItems is stored as given.
type AddItemInput struct {
	EventID          int64           `json:"event_id"`
	Quantity         *int            `json:"quantity"`
	CustomPriceCents *int64          `json:"custom_price_cents"`
	CustomizedItems  json.RawMessage `json:"customized_items"`
}

// View is a cart with its computed total.
type View struct {
	*domain.Cart
	TotalCents int64 `json:"total_cents"`
}

func view(c *domain.Cart) *View {
	return &View{Cart: c, TotalCents: c.TotalCents()}
}

func (s *Service) Get(ctx context.Context, userID int64) (*View, error) {
	c, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return view(c), nil
}

// AddItem sets the user's line for the event, replacing any earlier line.
func (s *Service) AddItem(ctx context.Context, userID int64, in AddItemInput) (*View, error) {
	if in.EventID <= 0 {
		return nil, domain.InvalidInput("event_id is required")
	}
	if in.Quantity == nil {
		return nil, domain.InvalidInput("quantity is required")
	}
	qty := *in.Quantity
	if qty < 1 {
		return nil, domain.InvalidInput("quantity must be at least 1")
	}
	if qty > domain.MaxQuantity {
		return nil, domain.InvalidInput("quantity must be at most %d", domain.MaxQuantity)
	}
	if in.CustomPriceCents != nil && *in.CustomPriceCents < 0 {
		return nil, domain.InvalidInput("custom price must not be negative")
	}
	if in.CustomPriceCents != nil && *in.CustomPriceCents > domain.MaxPriceCents {
		return nil, domain.InvalidInput("custom price is out of range")
	}
	custom := in.CustomizedItems
	if isNull(custom) {
		custom = nil
	} else if !json.Valid(custom) {
		return nil, domain.InvalidInput("customized_items must be valid JSON")
	}
	c, err := s.repo.UpsertItem(ctx, userID, cartrepo.UpsertItemInput{
		EventID:         in.EventID,
		Quantity:        qty,
		PriceCents:      in.CustomPriceCents,
		CustomizedItems: custom,
	})
	if err != nil {
		return nil, err
	}
	return view(c), nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, cartItemID int64) (*View, error) {
	c, err := s.repo.RemoveItem(ctx, userID, cartItemID)
	if err != nil {
		return nil, err
	}
	return view(c), nil
}

// Clear empties the cart. Clearing an empty cart succeeds.
func (s *Service) Clear(ctx context.Context, userID int64) (*View, error) {
	c, err := s.repo.Clear(ctx, userID)
	if err != nil {
		return nil, err
	}
	return view(c), nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
