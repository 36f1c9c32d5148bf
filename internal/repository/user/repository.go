package user

import (
	"context"

	"eventhub/internal/domain"
)

// ProfilePatch holds the fields a user may change on their own profile.
// Nil fields are left untouched.
type ProfilePatch struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

func (p ProfilePatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil
}

type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, p ProfilePatch) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	// Delete removes the user; carts, orders, addresses, payment methods and
	// wishlist rows go with it through ON DELETE CASCADE.
	Delete(ctx context.Context, id int64) error
	// EnsureAdmin creates or promotes the account with the given email.
	EnsureAdmin(ctx context.Context, u domain.User) (*domain.User, error)
}
