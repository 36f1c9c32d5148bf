package payment

import (
	"context"
	"strconv"
	"strings"

	"eventhub/internal/domain"
	paymentrepo "eventhub/internal/repository/payment"
)

type paymentRepo interface {
	List(ctx context.Context, userID int64) ([]domain.PaymentMethod, error)
	Create(ctx context.Context, userID int64, in paymentrepo.CreateInput) (*domain.PaymentMethod, error)
	Delete(ctx context.Context, userID, id int64) error
	SetDefault(ctx context.Context, userID, id int64) (*domain.PaymentMethod, error)
}

type Service struct {
	repo paymentRepo
}

func New(repo paymentRepo) *Service {
	return &Service{repo: repo}
}

// CreateInput stores display data only; full card numbers are never accepted.
type CreateInput struct {
	CardType    string `json:"card_type"`
	LastFour    string `json:"last_four"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	IsDefault   bool   `json:"is_default"`
}

func (s *Service) List(ctx context.Context, userID int64) ([]domain.PaymentMethod, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Create(ctx context.Context, userID int64, in CreateInput) (*domain.PaymentMethod, error) {
	in.CardType = strings.TrimSpace(in.CardType)
	in.LastFour = strings.TrimSpace(in.LastFour)
	in.ExpiryMonth = strings.TrimSpace(in.ExpiryMonth)
	in.ExpiryYear = strings.TrimSpace(in.ExpiryYear)

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"card_type", in.CardType},
		{"last_four", in.LastFour},
		{"expiry_month", in.ExpiryMonth},
		{"expiry_year", in.ExpiryYear},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, domain.InvalidInput("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !digits(in.LastFour, 4) {
		return nil, domain.InvalidInput("last_four must be 4 digits")
	}
	month, err := strconv.Atoi(in.ExpiryMonth)
	if err != nil || month < 1 || month > 12 {
		return nil, domain.InvalidInput("expiry_month must be between 01 and 12")
	}
	if !digits(in.ExpiryYear, 2) && !digits(in.ExpiryYear, 4) {
		return nil, domain.InvalidInput("expiry_year must be 2 or 4 digits")
	}
	return s.repo.Create(ctx, userID, paymentrepo.CreateInput{
		CardType:    in.CardType,
		LastFour:    in.LastFour,
		ExpiryMonth: padMonth(month),
		ExpiryYear:  in.ExpiryYear,
		IsDefault:   in.IsDefault,
	})
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) SetDefault(ctx context.Context, userID, id int64) (*domain.PaymentMethod, error) {
	return s.repo.SetDefault(ctx, userID, id)
}

func digits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func padMonth(m int) string {
	if m < 10 {
		return "0" + strconv.Itoa(m)
	}
	return strconv.Itoa(m)
}
