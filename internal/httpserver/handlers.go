package httpserver

import (
	"log"
	"net/http"
	"strings"

	addresssvc "eventhub/internal/service/address"
	authsvc "eventhub/internal/service/auth"
	cartsvc "eventhub/internal/service/cart"
	catalogsvc "eventhub/internal/service/catalog"
	ordersvc "eventhub/internal/service/order"
	paymentsvc "eventhub/internal/service/payment"
	"github.com/gin-gonic/gin"
)

type handlers struct {
	deps   Deps
	logger *log.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type wishlistRequest struct {
	EventID int64 `json:"event_id"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// bind decodes the JSON body and writes a 400 on failure.
func (h *handlers) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.badRequest(c, "invalid request body")
		return false
	}
	return true
}

func (h *handlers) register(c *gin.Context) {
	var req authsvc.RegisterInput
	if !h.bind(c, &req) {
		return
	}
	sess, err := h.deps.AuthSvc.Register(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		h.badRequest(c, "email and password are required")
		return
	}
	sess, err := h.deps.AuthSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *handlers) me(c *gin.Context) {
	u, err := h.deps.AuthSvc.Me(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *handlers) updateMe(c *gin.Context) {
	var req authsvc.ProfileInput
	if !h.bind(c, &req) {
		return
	}
	u, err := h.deps.AuthSvc.UpdateProfile(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *handlers) changePassword(c *gin.Context) {
	var req authsvc.PasswordChange
	if !h.bind(c, &req) {
		return
	}
	if err := h.deps.AuthSvc.ChangePassword(c.Request.Context(), currentUserID(c), req); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (h *handlers) deleteAccount(c *gin.Context) {
	if err := h.deps.AuthSvc.DeleteAccount(c.Request.Context(), currentUserID(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

func (h *handlers) listEvents(c *gin.Context) {
	events, err := h.deps.CatalogSvc.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *handlers) getEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.deps.CatalogSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *handlers) getCart(c *gin.Context) {
	view, err := h.deps.CartSvc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) addToCart(c *gin.Context) {
	var req cartsvc.AddItemInput
	if !h.bind(c, &req) {
		return
	}
	view, err := h.deps.CartSvc.AddItem(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) removeFromCart(c *gin.Context) {
	id, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	view, err := h.deps.CartSvc.RemoveItem(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) clearCart(c *gin.Context) {
	view, err := h.deps.CartSvc.Clear(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *handlers) placeOrder(c *gin.Context) {
	var req ordersvc.PlaceInput
	if !h.bind(c, &req) {
		return
	}
	o, err := h.deps.OrderSvc.Place(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *handlers) getOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.deps.OrderSvc.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) cancelOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.deps.OrderSvc.Cancel(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) listAddresses(c *gin.Context) {
	list, err := h.deps.AddressSvc.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handlers) createAddress(c *gin.Context) {
	var req addresssvc.CreateInput
	if !h.bind(c, &req) {
		return
	}
	a, err := h.deps.AddressSvc.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *handlers) updateAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req addresssvc.UpdateInput
	if !h.bind(c, &req) {
		return
	}
	a, err := h.deps.AddressSvc.Update(c.Request.Context(), currentUserID(c), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handlers) deleteAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.AddressSvc.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "address deleted"})
}

func (h *handlers) listPaymentMethods(c *gin.Context) {
	list, err := h.deps.PaymentSvc.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handlers) createPaymentMethod(c *gin.Context) {
	var req paymentsvc.CreateInput
	if !h.bind(c, &req) {
		return
	}
	pm, err := h.deps.PaymentSvc.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pm)
}

func (h *handlers) deletePaymentMethod(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.PaymentSvc.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment method deleted"})
}

func (h *handlers) setDefaultPaymentMethod(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	pm, err := h.deps.PaymentSvc.SetDefault(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pm)
}

func (h *handlers) listWishlist(c *gin.Context) {
	list, err := h.deps.WishlistSvc.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handlers) addToWishlist(c *gin.Context) {
	var req wishlistRequest
	if !h.bind(c, &req) {
		return
	}
	item, err := h.deps.WishlistSvc.Add(c.Request.Context(), currentUserID(c), req.EventID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *handlers) removeFromWishlist(c *gin.Context) {
	id, ok := pathID(c, "eventId")
	if !ok {
		return
	}
	if err := h.deps.WishlistSvc.Remove(c.Request.Context(), currentUserID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed from wishlist"})
}

func (h *handlers) adminListUsers(c *gin.Context) {
	users, err := h.deps.AuthSvc.ListUsers(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *handlers) adminListOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.ListAll(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *handlers) adminUpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !h.bind(c, &req) {
		return
	}
	o, err := h.deps.OrderSvc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) adminCreateEvent(c *gin.Context) {
	var req catalogsvc.EventInput
	if !h.bind(c, &req) {
		return
	}
	e, err := h.deps.CatalogSvc.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *handlers) adminUpdateEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req catalogsvc.EventPatch
	if !h.bind(c, &req) {
		return
	}
	e, err := h.deps.CatalogSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *handlers) adminDeleteEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deps.CatalogSvc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event deleted"})
}

func (h *handlers) adminListEventItems(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.deps.CatalogSvc.ListItems(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *handlers) adminAddEventItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req catalogsvc.ItemInput
	if !h.bind(c, &req) {
		return
	}
	item, err := h.deps.CatalogSvc.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *handlers) adminUpdateEventItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	var req catalogsvc.ItemPatch
	if !h.bind(c, &req) {
		return
	}
	item, err := h.deps.CatalogSvc.UpdateItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handlers) adminDeleteEventItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	if err := h.deps.CatalogSvc.DeleteItem(c.Request.Context(), id, itemID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event item deleted"})
}
