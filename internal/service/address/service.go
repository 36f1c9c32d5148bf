package address

import (
	"context"
	"strings"

	"eventhub/internal/domain"
	addressrepo "eventhub/internal/repository/address"
)

const (
	defaultCountry = "India"
	defaultType    = "Home"
)

type addressRepo interface {
	List(ctx context.Context, userID int64) ([]domain.Address, error)
	Create(ctx context.Context, userID int64, in addressrepo.CreateInput) (*domain.Address, error)
	Update(ctx context.Context, userID, id int64, p addressrepo.Patch) (*domain.Address, error)
	Delete(ctx context.Context, userID, id int64) error
}

type Service struct {
	repo addressRepo
}

func New(repo addressRepo) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	AddressType string `json:"address_type"`
	IsDefault   bool   `json:"is_default"`
}

type UpdateInput struct {
	AddressLine *string `json:"address_line"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	PostalCode  *string `json:"postal_code"`
	Country     *string `json:"country"`
	AddressType *string `json:"address_type"`
	IsDefault   *bool   `json:"is_default"`
}

func (s *Service) List(ctx context.Context, userID int64) ([]domain.Address, error) {
	return s.repo.List(ctx, userID)
}

// Create stores a new address. The first address a user adds is always their default.
func (s *Service) Create(ctx context.Context, userID int64, in CreateInput) (*domain.Address, error) {
	var missing []string
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"address_line", &in.AddressLine},
		{"city", &in.City},
		{"state", &in.State},
		{"postal_code", &in.PostalCode},
	} {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, domain.InvalidInput("missing required fields: %s", strings.Join(missing, ", "))
	}
	return s.repo.Create(ctx, userID, addressrepo.CreateInput{
		AddressLine: in.AddressLine,
		City:        in.City,
		State:       in.State,
		PostalCode:  in.PostalCode,
		Country:     orDefault(in.Country, defaultCountry),
		AddressType: orDefault(in.AddressType, defaultType),
		IsDefault:   in.IsDefault,
	})
}

// Update applies the provided fields. is_default=false is ignored because a
// user with addresses always keeps exactly one default.
func (s *Service) Update(ctx context.Context, userID, id int64, in UpdateInput) (*domain.Address, error) {
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"address_line", in.AddressLine},
		{"city", in.City},
		{"state", in.State},
		{"postal_code", in.PostalCode},
		{"country", in.Country},
		{"address_type", in.AddressType},
	} {
		if f.value == nil {
			continue
		}
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return nil, domain.InvalidInput("%s must not be empty", f.name)
		}
	}
	return s.repo.Update(ctx, userID, id, addressrepo.Patch{
		AddressLine: in.AddressLine,
		City:        in.City,
		State:       in.State,
		PostalCode:  in.PostalCode,
		Country:     in.Country,
		AddressType: in.AddressType,
		IsDefault:   in.IsDefault,
	})
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.Delete(ctx, userID, id)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
