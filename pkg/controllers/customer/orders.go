package customer

import (
	"errors"
	"net/http"

	"ecom_inventory/pkg/middleware"
	"ecom_inventory/pkg/services"
	"ecom_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Handler serves the storefront order routes
type Handler struct {
	orders *services.OrderService
	log    *zap.Logger
}

func NewHandler(orders *services.OrderService, log *zap.Logger) *Handler {
	return &Handler{orders: orders, log: log}
}

// cartItem is one cart line. The storefront cart sends the product id as ID.
type cartItem struct {
	ProductID int              `json:"productId"`
	ID        int              `json:"ID"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
}

func (i cartItem) productID() int {
	if i.ProductID != 0 {
		return i.ProductID
	}
	return i.ID
}

// PlaceOrder checks out the caller's cart
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req struct {
		CartItems  []cartItem `json:"cartItems"`
		CustomerID *int       `json:"customerId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid order payload.")
		return
	}
	if len(req.CartItems) == 0 {
		utils.BadRequestResponse(c, "Cart is empty. Cannot place an order.")
		return
	}
	if req.CustomerID == nil || *req.CustomerID <= 0 {
		utils.BadRequestResponse(c, "Customer ID is required to place an order.")
		return
	}

	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required.")
		return
	}
	if *req.CustomerID != identity.ID {
		utils.ForbiddenResponse(c, "Access denied. You can only place orders for your own account.")
		return
	}

	lines := make([]services.CartLine, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		lines = append(lines, services.CartLine{ProductID: item.productID(), Quantity: item.Quantity, Price: item.Price})
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), services.PlaceOrderInput{
		CustomerID: identity.ID,
		Lines:      lines,
		Actor:      identity.Name,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order placed successfully!",
		"orderId": order.ID,
	})
}

// MyOrders lists the caller's orders, newest first
func (h *Handler) MyOrders(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok || !identity.IsCustomer() {
		utils.ForbiddenResponse(c, "Access denied. Only customers can view their orders.")
		return
	}

	orders, err := h.orders.ListForCustomer(c.Request.Context(), identity.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var stockErr *services.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		utils.ErrorResponseWithFields(c, http.StatusBadRequest, stockErr.Error(), gin.H{
			"productId":   stockErr.ProductID,
			"productName": stockErr.ProductName,
			"available":   stockErr.Available,
			"requested":   stockErr.Requested,
		})
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, services.Message(err, "Not found."))
	case errors.Is(err, services.ErrValidation):
		utils.BadRequestResponse(c, services.Message(err, "Invalid request."))
	default:
		h.log.Error("order request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.InternalServerErrorResponse(c)
	}
}
