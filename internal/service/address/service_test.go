package address

import (
	"context"
	"testing"

	"eventhub/internal/domain"
	addressrepo "eventhub/internal/repository/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	created *addressrepo.CreateInput
	patch   *addressrepo.Patch
	deleted int64
}

func (r *stubRepo) List(context.Context, int64) ([]domain.Address, error) {
	return []domain.Address{}, nil
}

func (r *stubRepo) Create(_ context.Context, userID int64, in addressrepo.CreateInput) (*domain.Address, error) {
	r.created = &in
	return &domain.Address{ID: 1, UserID: userID, City: in.City, Country: in.Country, AddressType: in.AddressType, IsDefault: true}, nil
}

func (r *stubRepo) Update(_ context.Context, userID, id int64, p addressrepo.Patch) (*domain.Address, error) {
	r.patch = &p
	if id != 1 {
		return nil, domain.NotFound("address not found")
	}
	return &domain.Address{ID: id, UserID: userID}, nil
}

func (r *stubRepo) Delete(_ context.Context, _, id int64) error {
	r.deleted = id
	return nil
}

func TestCreateNamesEveryMissingField(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo)
	_, err := svc.Create(context.Background(), 1, CreateInput{AddressLine: "1 MG Road", PostalCode: "411001", City: "  "})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "missing required fields: city, state", domain.Message(err))
	assert.Nil(t, repo.created)
}

func TestCreateAppliesDefaults(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo)
	a, err := svc.Create(context.Background(), 1, CreateInput{
		AddressLine: " 1 MG Road ",
		City:        "Pune",
		State:       "MH",
		PostalCode:  "411001",
	})
	require.NoError(t, err)
	assert.Equal(t, "India", a.Country)
	assert.Equal(t, "Home", a.AddressType)
	assert.Equal(t, "1 MG Road", repo.created.AddressLine)
	assert.False(t, repo.created.IsDefault)
}

func TestUpdateRejectsBlankFields(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo)
	blank := " "
	_, err := svc.Update(context.Background(), 1, 1, UpdateInput{City: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, repo.patch)

	yes := true
	_, err = svc.Update(context.Background(), 1, 1, UpdateInput{IsDefault: &yes})
	require.NoError(t, err)
	require.NotNil(t, repo.patch.IsDefault)
	assert.True(t, *repo.patch.IsDefault)

	_, err = svc.Update(context.Background(), 1, 2, UpdateInput{IsDefault: &yes})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateTrimsCountryAndType(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo)

	empty := ""
	_, err := svc.Update(context.Background(), 1, 1, UpdateInput{Country: &empty})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "country must not be empty", domain.Message(err))
	_, err = svc.Update(context.Background(), 1, 1, UpdateInput{AddressType: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, repo.patch)

	country, kind := " Nepal ", " Work "
	_, err = svc.Update(context.Background(), 1, 1, UpdateInput{Country: &country, AddressType: &kind})
	require.NoError(t, err)
	assert.Equal(t, "Nepal", *repo.patch.Country)
	assert.Equal(t, "Work", *repo.patch.AddressType)
}
