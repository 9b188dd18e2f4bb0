package admin

import (
	"net/http"

	"ecom_inventory/pkg/middleware"
	"ecom_inventory/pkg/models"
	"ecom_inventory/pkg/services"
	"ecom_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ListOrders returns a page of orders with customer names
func (h *Handler) ListOrders(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !models.OrderStatus(status).IsValid() {
		utils.BadRequestResponse(c, "Invalid order status.")
		return
	}

	page := utils.ParsePage(c, 10, 100)
	orders, total, err := h.orders.List(c.Request.Context(), services.OrderFilter{
		Status: status,
		Search: c.Query("search"),
		SortBy: c.Query("sortBy"),
		Page:   page,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":      orders,
		"totalOrders": total,
		"totalPages":  page.TotalPages(total),
		"currentPage": page.Number,
	})
}

// GetOrder returns an order with its items. Customers only see their own.
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "orderId")
	if !ok {
		utils.BadRequestResponse(c, "Invalid order ID.")
		return
	}

	if identity, _ := middleware.CurrentIdentity(c); identity.IsCustomer() {
		owned, err := h.orders.OwnedBy(c.Request.Context(), id, identity.ID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		if !owned {
			utils.ForbiddenResponse(c, "Access denied. You can only view your own orders.")
			return
		}
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus moves an order to a new status
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "orderId")
	if !ok {
		utils.BadRequestResponse(c, "Invalid order ID.")
		return
	}

	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.IsValid() {
		utils.BadRequestResponse(c, "Invalid order status.")
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
