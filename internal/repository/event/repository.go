package event

import (
	"context"

	"eventhub/internal/domain"
)

type EventInput struct {
	Slug            string
	Title           string
	Description     string
	ImageURL        string
	Location        string
	Date            string
	Category        string
	PriceCents      int64
	DeliveryOptions []domain.DeliveryOption
}

// EventPatch updates only the non-nil fields.
type EventPatch struct {
	Title           *string
	Description     *string
	ImageURL        *string
	Location        *string
	Date            *string
	Category        *string
	PriceCents      *int64
	DeliveryOptions *[]domain.DeliveryOption
}

type ItemInput struct {
	Name        string
	Description string
	Quantity    int
	PriceCents  int64
	ImageURL    string
	Category    string
}

type ItemPatch struct {
	Name        *string
	Description *string
	Quantity    *int
	PriceCents  *int64
	ImageURL    *string
	Category    *string
}

type Repository interface {
	// List returns events newest first; an empty category matches all.
	List(ctx context.Context, category string) ([]domain.Event, error)
	Get(ctx context.Context, id int64) (*domain.Event, error)
	Create(ctx context.Context, in EventInput) (*domain.Event, error)
	Update(ctx context.Context, id int64, p EventPatch) (*domain.Event, error)
	Delete(ctx context.Context, id int64) error
	// UpsertBySlug writes the event and replaces its items wholesale.
	UpsertBySlug(ctx context.Context, in EventInput, items []ItemInput) (*domain.Event, error)

	AddItem(ctx context.Context, eventID int64, in ItemInput) (*domain.EventItem, error)
	UpdateItem(ctx context.Context, eventID, itemID int64, p ItemPatch) (*domain.EventItem, error)
	DeleteItem(ctx context.Context, eventID, itemID int64) error
}
