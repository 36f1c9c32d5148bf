package wishlist

import (
	"context"

	"eventhub/internal/domain"
)

type Repository interface {
	// List returns entries newest first with their event embedded.
	List(ctx context.Context, userID int64) ([]domain.WishlistItem, error)
	Add(ctx context.Context, userID, eventID int64) (*domain.WishlistItem, error)
	Remove(ctx context.Context, userID, eventID int64) error
}
