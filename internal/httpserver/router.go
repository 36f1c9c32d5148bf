package httpserver

import (
	"context"
	"log"
	"time"

	"eventhub/internal/domain"
	addresssvc "eventhub/internal/service/address"
	authsvc "eventhub/internal/service/auth"
	cartsvc "eventhub/internal/service/cart"
	catalogsvc "eventhub/internal/service/catalog"
	ordersvc "eventhub/internal/service/order"
	paymentsvc "eventhub/internal/service/payment"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type authService interface {
	Register(ctx context.Context, in authsvc.RegisterInput) (*authsvc.Session, error)
	Login(ctx context.Context, email, password string) (*authsvc.Session, error)
	ParseToken(raw string) (*authsvc.Claims, error)
	Me(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, in authsvc.ProfileInput) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ChangePassword(ctx context.Context, userID int64, in authsvc.PasswordChange) error
	DeleteAccount(ctx context.Context, userID int64) error
}

type catalogService interface {
	List(ctx context.Context, category string) ([]domain.Event, error)
	Get(ctx context.Context, id int64) (*catalogsvc.Detail, error)
	Create(ctx context.Context, in catalogsvc.EventInput) (*domain.Event, error)
	Update(ctx context.Context, id int64, p catalogsvc.EventPatch) (*domain.Event, error)
	Delete(ctx context.Context, id int64) error
	AddItem(ctx context.Context, eventID int64, in catalogsvc.ItemInput) (*domain.EventItem, error)
	UpdateItem(ctx context.Context, eventID, itemID int64, p catalogsvc.ItemPatch) (*domain.EventItem, error)
	ListItems(ctx context.Context, eventID int64) ([]domain.EventItem, error)
	DeleteItem(ctx context.Context, eventID, itemID int64) error
}

type cartService interface {
	Get(ctx context.Context, userID int64) (*cartsvc.View, error)
	AddItem(ctx context.Context, userID int64, in cartsvc.AddItemInput) (*cartsvc.View, error)
	RemoveItem(ctx context.Context, userID, cartItemID int64) (*cartsvc.View, error)
	Clear(ctx context.Context, userID int64) (*cartsvc.View, error)
}

type orderService interface {
	Place(ctx context.Context, userID int64, in ordersvc.PlaceInput) (*domain.Order, error)
	List(ctx context.Context, userID int64) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	Get(ctx context.Context, userID, id int64) (*domain.Order, error)
	Cancel(ctx context.Context, userID, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.Order, error)
}

type addressService interface {
	List(ctx context.Context, userID int64) ([]domain.Address, error)
	Create(ctx context.Context, userID int64, in addresssvc.CreateInput) (*domain.Address, error)
	Update(ctx context.Context, userID, id int64, in addresssvc.UpdateInput) (*domain.Address, error)
	Delete(ctx context.Context, userID, id int64) error
}

type paymentService interface {
	List(ctx context.Context, userID int64) ([]domain.PaymentMethod, error)
	Create(ctx context.Context, userID int64, in paymentsvc.CreateInput) (*domain.PaymentMethod, error)
	Delete(ctx context.Context, userID, id int64) error
	SetDefault(ctx context.Context, userID, id int64) (*domain.PaymentMethod, error)
}

type wishlistService interface {
	List(ctx context.Context, userID int64) ([]domain.WishlistItem, error)
	Add(ctx context.Context, userID, eventID int64) (*domain.WishlistItem, error)
	Remove(ctx context.Context, userID, eventID int64) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds the services the router dispatches to.
type Deps struct {
	AuthSvc     authService
	CatalogSvc  catalogService
	CartSvc     cartService
	OrderSvc    orderService
	AddressSvc  addressService
	PaymentSvc  paymentService
	WishlistSvc wishlistService

	// Cache is checked by /readyz when set.
	Cache       pinger
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db, deps.Cache))

	h := &handlers{deps: deps, logger: logger}
	api := router.Group("/api")

	api.POST("/auth/register", h.register)
	api.POST("/auth/login", h.login)

	api.GET("/events", h.listEvents)
	api.GET("/events/:id", h.getEvent)

	authed := api.Group("", authMiddleware(deps.AuthSvc))

	authed.PUT("/auth/change-password", h.changePassword)
	authed.DELETE("/auth/delete-account", h.deleteAccount)

	authed.GET("/users/me", h.me)
	authed.PUT("/users/me", h.updateMe)
	authed.DELETE("/users/me/delete", h.deleteAccount)

	authed.GET("/cart", h.getCart)
	authed.POST("/cart/add", h.addToCart)
	authed.DELETE("/cart/remove/:itemId", h.removeFromCart)
	authed.DELETE("/cart/clear", h.clearCart)

	authed.GET("/orders", h.listOrders)
	authed.POST("/orders", h.placeOrder)
	authed.GET("/orders/:id", h.getOrder)
	authed.PUT("/orders/:id/cancel", h.cancelOrder)

	authed.GET("/users/me/addresses", h.listAddresses)
	authed.POST("/users/me/addresses", h.createAddress)
	authed.PUT("/users/me/addresses/:id", h.updateAddress)
	authed.DELETE("/users/me/addresses/:id", h.deleteAddress)

	authed.GET("/users/me/payment-methods", h.listPaymentMethods)
	authed.POST("/users/me/payment-methods", h.createPaymentMethod)
	authed.DELETE("/users/me/payment-methods/:id", h.deletePaymentMethod)
	authed.PUT("/users/me/payment-methods/:id/set-default", h.setDefaultPaymentMethod)

	authed.GET("/users/me/wishlist", h.listWishlist)
	authed.POST("/users/me/wishlist", h.addToWishlist)
	authed.DELETE("/users/me/wishlist/:eventId", h.removeFromWishlist)

	admin := authed.Group("/admin", adminOnly(deps.AuthSvc))
	admin.GET("/users", h.adminListUsers)
	admin.GET("/orders", h.adminListOrders)
	admin.PUT("/orders/:id/status", h.adminUpdateOrderStatus)
	admin.POST("/events", h.adminCreateEvent)
	admin.PUT("/events/:id", h.adminUpdateEvent)
	admin.DELETE("/events/:id", h.adminDeleteEvent)
	admin.GET("/events/:id/items", h.adminListEventItems)
	admin.POST("/events/:id/items", h.adminAddEventItem)
	admin.PUT("/events/:id/items/:itemId", h.adminUpdateEventItem)
	admin.DELETE("/events/:id/items/:itemId", h.adminDeleteEventItem)

	return router, nil
}
