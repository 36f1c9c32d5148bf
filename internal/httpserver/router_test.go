package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventhub/internal/domain"
	addresssvc "eventhub/internal/service/address"
	authsvc "eventhub/internal/service/auth"
	cartsvc "eventhub/internal/service/cart"
	catalogsvc "eventhub/internal/service/catalog"
	ordersvc "eventhub/internal/service/order"
	paymentsvc "eventhub/internal/service/payment"
	"github.com/gin-gonic/gin"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// stubAuth accepts the tokens "user" (id 7) and "admin" (id 1, admin).
// "demoted" (id 2) and "deleted" (id 404) carry an admin claim that the user
// row no longer backs.
type stubAuth struct {
	session   *authsvc.Session
	err       error
	users     []domain.User
	passwords []authsvc.PasswordChange
	deleted   []int64
}

func (s *stubAuth) Register(_ context.Context, _ authsvc.RegisterInput) (*authsvc.Session, error) {
	return s.session, s.err
}

func (s *stubAuth) Login(_ context.Context, _, _ string) (*authsvc.Session, error) {
	return s.session, s.err
}

func (s *stubAuth) ParseToken(raw string) (*authsvc.Claims, error) {
	switch raw {
	case "user":
		return &authsvc.Claims{UserID: 7}, nil
	case "admin":
		return &authsvc.Claims{UserID: 1, IsAdmin: true}, nil
	case "demoted":
		return &authsvc.Claims{UserID: 2, IsAdmin: true}, nil
	case "deleted":
		return &authsvc.Claims{UserID: 404, IsAdmin: true}, nil
	}
	return nil, authsvc.ErrInvalidToken
}

func (s *stubAuth) Me(_ context.Context, userID int64) (*domain.User, error) {
	if userID == 404 {
		return nil, domain.NotFound("user not found")
	}
	return &domain.User{ID: userID, Email: "me@example.com", IsAdmin: userID == 1}, nil
}

func (s *stubAuth) ChangePassword(_ context.Context, _ int64, in authsvc.PasswordChange) error {
	s.passwords = append(s.passwords, in)
	return s.err
}

func (s *stubAuth) DeleteAccount(_ context.Context, userID int64) error {
	s.deleted = append(s.deleted, userID)
	return s.err
}

func (s *stubAuth) UpdateProfile(_ context.Context, userID int64, _ authsvc.ProfileInput) (*domain.User, error) {
	return &domain.User{ID: userID}, s.err
}

func (s *stubAuth) ListUsers(_ context.Context) ([]domain.User, error) {
	return s.users, nil
}

type stubCatalog struct {
	detail *catalogsvc.Detail
	err    error
}

func (s *stubCatalog) List(_ context.Context, _ string) ([]domain.Event, error) {
	return []domain.Event{}, nil
}

func (s *stubCatalog) Get(_ context.Context, _ int64) (*catalogsvc.Detail, error) {
	return s.detail, s.err
}

func (s *stubCatalog) Create(_ context.Context, in catalogsvc.EventInput) (*domain.Event, error) {
	return &domain.Event{ID: 1, Title: in.Title}, s.err
}

func (s *stubCatalog) Update(_ context.Context, id int64, _ catalogsvc.EventPatch) (*domain.Event, error) {
	return &domain.Event{ID: id}, s.err
}

func (s *stubCatalog) Delete(_ context.Context, _ int64) error { return s.err }

func (s *stubCatalog) AddItem(_ context.Context, _ int64, _ catalogsvc.ItemInput) (*domain.EventItem, error) {
	return &domain.EventItem{ID: 1}, s.err
}

func (s *stubCatalog) UpdateItem(_ context.Context, _, itemID int64, _ catalogsvc.ItemPatch) (*domain.EventItem, error) {
	return &domain.EventItem{ID: itemID}, s.err
}

func (s *stubCatalog) ListItems(_ context.Context, eventID int64) ([]domain.EventItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.EventItem{{ID: 1, EventID: eventID, Name: "Stage"}}, nil
}

func (s *stubCatalog) DeleteItem(_ context.Context, _, _ int64) error { return s.err }

type stubCart struct {
	lastUser int64
	lastIn   cartsvc.AddItemInput
}

func (s *stubCart) Get(_ context.Context, userID int64) (*cartsvc.View, error) {
	s.lastUser = userID
	return &cartsvc.View{Cart: &domain.Cart{UserID: userID, Items: []domain.CartItem{}}}, nil
}

func (s *stubCart) AddItem(_ context.Context, userID int64, in cartsvc.AddItemInput) (*cartsvc.View, error) {
	s.lastUser = userID
	s.lastIn = in
	return &cartsvc.View{Cart: &domain.Cart{UserID: userID}}, nil
}

func (s *stubCart) RemoveItem(_ context.Context, _, _ int64) (*cartsvc.View, error) {
	return nil, domain.NotFound("cart item not found")
}

func (s *stubCart) Clear(_ context.Context, userID int64) (*cartsvc.View, error) {
	return &cartsvc.View{Cart: &domain.Cart{UserID: userID}}, nil
}

type stubOrders struct {
	err        error
	lastStatus string
}

func (s *stubOrders) Place(_ context.Context, userID int64, _ ordersvc.PlaceInput) (*domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{ID: 1, UserID: userID, OrderNumber: "ABCD1234", Status: domain.OrderPending}, nil
}

func (s *stubOrders) List(_ context.Context, _ int64) ([]domain.Order, error) {
	return []domain.Order{}, nil
}

func (s *stubOrders) ListAll(_ context.Context) ([]domain.Order, error) {
	return []domain.Order{}, nil
}

func (s *stubOrders) Get(_ context.Context, _, _ int64) (*domain.Order, error) {
	return nil, domain.NotFound("order not found")
}

func (s *stubOrders) Cancel(_ context.Context, _, _ int64) (*domain.Order, error) {
	return nil, domain.InvalidOperation("order cannot be cancelled")
}

func (s *stubOrders) UpdateStatus(_ context.Context, id int64, status string) (*domain.Order, error) {
	s.lastStatus = status
	return &domain.Order{ID: id, Status: domain.OrderStatus(status)}, s.err
}

type stubAddresses struct{}

func (stubAddresses) List(_ context.Context, _ int64) ([]domain.Address, error) {
	return []domain.Address{}, nil
}

func (stubAddresses) Create(_ context.Context, _ int64, _ addresssvc.CreateInput) (*domain.Address, error) {
	return nil, domain.InvalidInput("missing required fields: address_line, city")
}

func (stubAddresses) Update(_ context.Context, _, id int64, _ addresssvc.UpdateInput) (*domain.Address, error) {
	return &domain.Address{ID: id}, nil
}

func (stubAddresses) Delete(_ context.Context, _, _ int64) error { return nil }

type stubPayments struct{}

func (stubPayments) List(_ context.Context, _ int64) ([]domain.PaymentMethod, error) {
	return []domain.PaymentMethod{}, nil
}

func (stubPayments) Create(_ context.Context, _ int64, in paymentsvc.CreateInput) (*domain.PaymentMethod, error) {
	return &domain.PaymentMethod{ID: 3, LastFour: in.LastFour}, nil
}

func (stubPayments) Delete(_ context.Context, _, _ int64) error { return nil }

func (stubPayments) SetDefault(_ context.Context, _, id int64) (*domain.PaymentMethod, error) {
	return &domain.PaymentMethod{ID: id, IsDefault: true}, nil
}

type stubWishlist struct{}

func (stubWishlist) List(_ context.Context, _ int64) ([]domain.WishlistItem, error) {
	return []domain.WishlistItem{}, nil
}

func (stubWishlist) Add(_ context.Context, _, _ int64) (*domain.WishlistItem, error) {
	return nil, domain.Conflict("event already in wishlist")
}

func (stubWishlist) Remove(_ context.Context, _, _ int64) error { return nil }

func testDeps() Deps {
	return Deps{
		AuthSvc:     &stubAuth{},
		CatalogSvc:  &stubCatalog{},
		CartSvc:     &stubCart{},
		OrderSvc:    &stubOrders{},
		AddressSvc:  stubAddresses{},
		PaymentSvc:  stubPayments{},
		WishlistSvc: stubWishlist{},
	}
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func do(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, testDeps())
	rec := do(router, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyzWithoutDB(t *testing.T) {
	router := newTestRouter(t, testDeps())
	rec := do(router, http.MethodGet, "/readyz", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(t, testDeps())

	if rec := do(router, http.MethodGet, "/api/cart", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/api/cart", "forged", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/api/cart", "user", ""); rec.Code != http.StatusOK {
		t.Fatalf("valid token: expected 200, got %d", rec.Code)
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	router := newTestRouter(t, testDeps())

	if rec := do(router, http.MethodGet, "/api/admin/users", "user", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/api/admin/users", "admin", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
}

func TestAdminRoutesCheckUserRow(t *testing.T) {
	router := newTestRouter(t, testDeps())

	if rec := do(router, http.MethodGet, "/api/admin/orders", "demoted", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("demoted admin: expected 403, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/api/admin/orders", "deleted", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("deleted admin: expected 401, got %d", rec.Code)
	}
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	deps := testDeps()
	deps.CatalogSvc = &stubCatalog{err: domain.NotFound("event not found")}
	router := newTestRouter(t, deps)

	if rec := do(router, http.MethodGet, "/api/events?category=wedding", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec := do(router, http.MethodGet, "/api/events/99", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "event not found") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if rec := do(router, http.MethodGet, "/api/events/abc", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestInternalErrorsAreHidden(t *testing.T) {
	deps := testDeps()
	deps.CatalogSvc = &stubCatalog{err: errors.New("connection reset by peer")}
	router := newTestRouter(t, deps)

	rec := do(router, http.MethodGet, "/api/events/1", "", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection reset") {
		t.Fatalf("internal cause leaked: %s", rec.Body.String())
	}
}
