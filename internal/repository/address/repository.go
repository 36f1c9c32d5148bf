package address

import (
	"context"

	"eventhub/internal/domain"
)

type CreateInput struct {
	AddressLine string
	City        string
	State       string
	PostalCode  string
	Country     string
	AddressType string
	IsDefault   bool
}

// Patch changes only the non-nil fields. IsDefault=true makes the address
// the user's default; false is ignored.
type Patch struct {
	AddressLine *string
	City        *string
	State       *string
	PostalCode  *string
	Country     *string
	AddressType *string
	IsDefault   *bool
}

type Repository interface {
	List(ctx context.Context, userID int64) ([]domain.Address, error)
	Create(ctx context.Context, userID int64, in CreateInput) (*domain.Address, error)
	Update(ctx context.Context, userID, id int64, p Patch) (*domain.Address, error)
	Delete(ctx context.Context, userID, id int64) error
}
