package payment

import (
	"context"
	"testing"

	"eventhub/internal/domain"
	paymentrepo "eventhub/internal/repository/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	created *paymentrepo.CreateInput
}

func (r *stubRepo) List(context.Context, int64) ([]domain.PaymentMethod, error) {
	return []domain.PaymentMethod{}, nil
}

func (r *stubRepo) Create(_ context.Context, _ int64, in paymentrepo.CreateInput) (*domain.PaymentMethod, error) {
	r.created = &in
	return &domain.PaymentMethod{ID: 1, CardType: in.CardType, LastFour: in.LastFour, ExpiryMonth: in.ExpiryMonth}, nil
}

func (r *stubRepo) Delete(context.Context, int64, int64) error { return nil }

func (r *stubRepo) SetDefault(_ context.Context, _, id int64) (*domain.PaymentMethod, error) {
	return &domain.PaymentMethod{ID: id, IsDefault: true}, nil
}

func TestCreateValidation(t *testing.T) {
	valid := CreateInput{CardType: "visa", LastFour: "4242", ExpiryMonth: "7", ExpiryYear: "2030"}
	cases := []struct {
		name   string
		mutate func(*CreateInput)
		msg    string
	}{
		{"missing", func(in *CreateInput) { in.CardType = ""; in.ExpiryYear = "" }, "missing required fields: card_type, expiry_year"},
		{"short last four", func(in *CreateInput) { in.LastFour = "424" }, "last_four must be 4 digits"},
		{"letters in last four", func(in *CreateInput) { in.LastFour = "42a2" }, "last_four must be 4 digits"},
		{"month 13", func(in *CreateInput) { in.ExpiryMonth = "13" }, "expiry_month must be between 01 and 12"},
		{"month 00", func(in *CreateInput) { in.ExpiryMonth = "00" }, "expiry_month must be between 01 and 12"},
		{"year", func(in *CreateInput) { in.ExpiryYear = "203" }, "expiry_year must be 2 or 4 digits"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &stubRepo{}
			in := valid
			tc.mutate(&in)
			_, err := New(repo).Create(context.Background(), 1, in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, tc.msg, domain.Message(err))
			assert.Nil(t, repo.created)
		})
	}
}

func TestCreateNormalizesMonth(t *testing.T) {
	repo := &stubRepo{}
	pm, err := New(repo).Create(context.Background(), 1, CreateInput{CardType: "visa", LastFour: "4242", ExpiryMonth: "7", ExpiryYear: "30", IsDefault: true})
	require.NoError(t, err)
	assert.Equal(t, "07", pm.ExpiryMonth)
	assert.True(t, repo.created.IsDefault)
}
