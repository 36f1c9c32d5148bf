package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventhub/internal/domain"
	userrepo "eventhub/internal/repository/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo is a lightweight in-memory user repository for tests.
type memoryRepo struct {
	byEmail map[string]*domain.User
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byEmail: map[string]*domain.User{}}
}

func (r *memoryRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	if _, ok := r.byEmail[u.Email]; ok {
		return nil, domain.ErrAlreadyExists
	}
	r.nextID++
	u.ID = r.nextID
	r.byEmail[u.Email] = &u
	clone := u
	return &clone, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.byEmail[email]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) UpdateProfile(ctx context.Context, id int64, p userrepo.ProfilePatch) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID != id {
			continue
		}
		if p.FirstName != nil {
			u.FirstName = *p.FirstName
		}
		if p.LastName != nil {
			u.LastName = *p.LastName
		}
		if p.Phone != nil {
			u.Phone = *p.Phone
		}
		clone := *u
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) List(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.byEmail {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memoryRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	for _, u := range r.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	for email, u := range r.byEmail {
		if u.ID == id {
			delete(r.byEmail, email)
			return nil
		}
	}
	return domain.ErrNotFound
}

func newService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	svc, err := New(repo, "test-secret", time.Hour)
	require.NoError(t, err)
	return svc, repo
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Email:     "Priya@Example.com",
		Password:  "Password1",
		FirstName: "Priya",
		LastName:  "Sharma",
		Phone:     "9876543210",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", sess.User.Email)
	assert.NotEmpty(t, sess.Token)

	claims, err := svc.ParseToken(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID)
	assert.False(t, claims.IsAdmin)

	login, err := svc.Login(ctx, "priya@example.com", "Password1")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, login.User.ID)

	_, err = svc.Login(ctx, "priya@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "Password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newService(t)
	cases := []struct {
		name   string
		mutate func(*RegisterInput)
		msg    string
	}{
		{"missing email", func(in *RegisterInput) { in.Email = "" }, "email is required"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email is invalid"},
		{"short password", func(in *RegisterInput) { in.Password = "short" }, "password must be at least 8 characters"},
		{"missing phone", func(in *RegisterInput) { in.Phone = " " }, "phone is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegistration()
			tc.mutate(&in)
			_, err := svc.Register(context.Background(), in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
			assert.Equal(t, tc.msg, domain.Message(err))
		})
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), validRegistration())
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestParseTokenRejectsForeignAndExpiredTokens(t *testing.T) {
	svc, _ := newService(t)
	other, err := New(newMemoryRepo(), "other-secret", time.Hour)
	require.NoError(t, err)

	foreign, err := other.tokens.Issue(1, true)
	require.NoError(t, err)
	_, err = svc.ParseToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := svc.tokens.Issue(1, false)
	require.NoError(t, err)
	svc.tokens.now = time.Now
	_, err = svc.ParseToken(stale)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ParseToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newService(t)
	sess, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	phone := "1112223333"
	u, err := svc.UpdateProfile(context.Background(), sess.User.ID, ProfileInput{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, u.Phone)
	assert.Equal(t, "Priya", u.FirstName)

	empty := ""
	_, err = svc.UpdateProfile(context.Background(), sess.User.ID, ProfileInput{FirstName: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(newMemoryRepo(), "", time.Hour)
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	sess, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, sess.User.ID, PasswordChange{CurrentPassword: "Password1"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "current_password and new_password are required", domain.Message(err))

	err = svc.ChangePassword(ctx, sess.User.ID, PasswordChange{CurrentPassword: "Password1", NewPassword: "short"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = svc.ChangePassword(ctx, sess.User.ID, PasswordChange{CurrentPassword: "wrong-one", NewPassword: "NewPassword2"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "current password is incorrect", domain.Message(err))

	require.NoError(t, svc.ChangePassword(ctx, sess.User.ID, PasswordChange{CurrentPassword: "Password1", NewPassword: "NewPassword2"}))

	_, err = svc.Login(ctx, "priya@example.com", "Password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "priya@example.com", "NewPassword2")
	assert.NoError(t, err)

	err = svc.ChangePassword(ctx, 404, PasswordChange{CurrentPassword: "Password1", NewPassword: "NewPassword2"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteAccount(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	sess, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, sess.User.ID))
	_, err = svc.Me(ctx, sess.User.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Login(ctx, "priya@example.com", "Password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.DeleteAccount(ctx, sess.User.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "user not found", domain.Message(err))
}
