package payment

import (
	"context"

	"eventhub/internal/domain"
)

type CreateInput struct {
	CardType    string
	LastFour    string
	ExpiryMonth string
	ExpiryYear  string
	IsDefault   bool
}

type Repository interface {
	List(ctx context.Context, userID int64) ([]domain.PaymentMethod, error)
	Create(ctx context.Context, userID int64, in CreateInput) (*domain.PaymentMethod, error)
	Delete(ctx context.Context, userID, id int64) error
	SetDefault(ctx context.Context, userID, id int64) (*domain.PaymentMethod, error)
}
