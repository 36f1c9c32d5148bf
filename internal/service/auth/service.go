package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"eventhub/internal/domain"
	userrepo "eventhub/internal/repository/user"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type userRepo interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, p userrepo.ProfilePatch) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	Delete(ctx context.Context, id int64) error
}

// Service handles registration, login and profile flows.
type Service struct {
	repo        userRepo
	tokens      *tokenManager
	passwordMin int
}

// New creates a Service signing tokens with secret for ttl.
func New(repo userRepo, secret string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(secret, ttl),
		passwordMin: 8,
	}, nil
}

type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	TermsAgreed bool   `json:"terms_agreed"`
}

type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ProfileInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// Session is returned by Register and Login.
type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, domain.InvalidInput("email is required")
	}
	if !emailPattern.MatchString(email) {
		return nil, domain.InvalidInput("email is invalid")
	}
	if len(strings.TrimSpace(in.Password)) < s.passwordMin {
		return nil, domain.InvalidInput("password must be at least %d characters", s.passwordMin)
	}
	for _, f := range []struct{ name, value string }{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"phone", in.Phone},
	} {
		if strings.TrimSpace(f.value) == "" {
			return nil, domain.InvalidInput("%s is required", f.name)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.Create(ctx, domain.User{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		TermsAgreed:  in.TermsAgreed,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.Conflict("email already registered")
		}
		return nil, err
	}
	return s.session(u)
}

// Login validates credentials and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(u)
}

// ParseToken returns the claims carried by a valid bearer token.
func (s *Service) ParseToken(raw string) (*Claims, error) {
	return s.tokens.Validate(strings.TrimSpace(raw))
}

func (s *Service) Me(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("user not found")
	}
	return u, err
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (*domain.User, error) {
	patch := userrepo.ProfilePatch{}
	for _, f := range []struct {
		name string
		src  *string
		dst  **string
	}{
		{"first_name", in.FirstName, &patch.FirstName},
		{"last_name", in.LastName, &patch.LastName},
		{"phone", in.Phone, &patch.Phone},
	} {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if v == "" {
			return nil, domain.InvalidInput("%s must not be empty", f.name)
		}
		*f.dst = &v
	}
	u, err := s.repo.UpdateProfile(ctx, userID, patch)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("user not found")
	}
	return u, err
}

// ChangePassword replaces the password after checking the current one.
// Tokens issued earlier stay valid until they expire.
func (s *Service) ChangePassword(ctx context.Context, userID int64, in PasswordChange) error {
	if in.CurrentPassword == "" || in.NewPassword == "" {
		return domain.InvalidInput("current_password and new_password are required")
	}
	if len(strings.TrimSpace(in.NewPassword)) < s.passwordMin {
		return domain.InvalidInput("password must be at least %d characters", s.passwordMin)
	}
	u, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return domain.InvalidInput("current password is incorrect")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	err = s.repo.UpdatePassword(ctx, userID, string(hashed))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("user not found")
	}
	return err
}

func (s *Service) DeleteAccount(ctx context.Context, userID int64) error {
	err := s.repo.Delete(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("user not found")
	}
	return err
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *Service) session(u *domain.User) (*Session, error) {
	token, err := s.tokens.Issue(u.ID, u.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: u}, nil
}
