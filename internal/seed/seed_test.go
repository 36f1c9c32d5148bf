package seed

import (
	"context"
	"testing"

	"eventhub/internal/domain"
	eventrepo "eventhub/internal/repository/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubEvents struct {
	slugs []string
	items int
}

func (s *stubEvents) UpsertBySlug(_ context.Context, in eventrepo.EventInput, items []eventrepo.ItemInput) (*domain.Event, error) {
	s.slugs = append(s.slugs, in.Slug)
	s.items += len(items)
	return &domain.Event{ID: int64(len(s.slugs)), Slug: in.Slug}, nil
}

type stubUsers struct {
	admins []domain.User
}

func (s *stubUsers) EnsureAdmin(_ context.Context, u domain.User) (*domain.User, error) {
	u.ID = 1
	s.admins = append(s.admins, u)
	return &u, nil
}

func TestApplySeedsCatalogAndAdmin(t *testing.T) {
	events := &stubEvents{}
	users := &stubUsers{}

	require.NoError(t, Apply(context.Background(), events, users, nil, "admin@example.com", "Secret123"))

	assert.Equal(t, []string{"royal-wedding-package", "kids-birthday-bash", "housewarming-celebration"}, events.slugs)
	assert.Positive(t, events.items)
	require.Len(t, users.admins, 1)
	admin := users.admins[0]
	assert.True(t, admin.IsAdmin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("Secret123")))
}

func TestApplySkipsAdminWithoutCredentials(t *testing.T) {
	users := &stubUsers{}
	require.NoError(t, Apply(context.Background(), &stubEvents{}, users, nil, "", ""))
	assert.Empty(t, users.admins)
}

func TestCatalogSlugsMatchTitles(t *testing.T) {
	for _, s := range catalog {
		assert.Equal(t, domain.Slugify(s.event.Title), s.event.Slug)
		assert.NotEmpty(t, s.event.Category)
	}
}
