package admin

import (
	"net/http"

	"ecom_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ListInventory returns every inventory row with its product name
func (h *Handler) ListInventory(c *gin.Context) {
	rows, err := h.inventory.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetInventory returns the inventory row of one product
func (h *Handler) GetInventory(c *gin.Context) {
	productID, ok := utils.ParseIDParam(c, "productId")
	if !ok {
		utils.BadRequestResponse(c, "Invalid product ID.")
		return
	}

	row, err := h.inventory.Get(c.Request.Context(), productID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// UpdateInventory sets the stock level of a product
func (h *Handler) UpdateInventory(c *gin.Context) {
	productID, ok := utils.ParseIDParam(c, "productId")
	if !ok {
		utils.BadRequestResponse(c, "Invalid product ID.")
		return
	}

	var req struct {
		Quantity *int    `json:"quantity"`
		Reason   *string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil || *req.Quantity < 0 {
		utils.BadRequestResponse(c, "Invalid quantity.")
		return
	}

	row, err := h.inventory.Adjust(c.Request.Context(), productID, *req.Quantity, actor(c), req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// ListStockAdjustments returns the adjustment history of a product
func (h *Handler) ListStockAdjustments(c *gin.Context) {
	productID, ok := utils.ParseIDParam(c, "productId")
	if !ok {
		utils.BadRequestResponse(c, "Invalid product ID.")
		return
	}

	rows, err := h.inventory.History(c.Request.Context(), productID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
