package wishlist

import (
	"context"

	"eventhub/internal/domain"
)

type wishlistRepo interface {
	List(ctx context.Context, userID int64) ([]domain.WishlistItem, error)
	Add(ctx context.Context, userID, eventID int64) (*domain.WishlistItem, error)
	Remove(ctx context.Context, userID, eventID int64) error
}

type Service struct {
	repo wishlistRepo
}

func New(repo wishlistRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int64) ([]domain.WishlistItem, error) {
	return s.repo.List(ctx, userID)
}

// Add saves an event for later. Saving the same event twice is a conflict.
func (s *Service) Add(ctx context.Context, userID, eventID int64) (*domain.WishlistItem, error) {
	if eventID <= 0 {
		return nil, domain.InvalidInput("event_id is required")
	}
	return s.repo.Add(ctx, userID, eventID)
}

func (s *Service) Remove(ctx context.Context, userID, eventID int64) error {
	return s.repo.Remove(ctx, userID, eventID)
}
