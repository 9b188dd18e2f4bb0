// Package admin holds the staff back-office handlers: catalogue, suppliers,
// customers, inventory and order management.
package admin

import (
	"errors"

	"ecom_inventory/pkg/middleware"
	"ecom_inventory/pkg/services"
	"ecom_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db        *gorm.DB
	catalog   *services.CatalogService
	inventory *services.InventoryService
	orders    *services.OrderService
	log       *zap.Logger
}

func NewHandler(db *gorm.DB, catalog *services.CatalogService, inventory *services.InventoryService, orders *services.OrderService, log *zap.Logger) *Handler {
	return &Handler{db: db, catalog: catalog, inventory: inventory, orders: orders, log: log}
}

// actor is the name recorded on stock adjustments
func actor(c *gin.Context) string {
	if identity, ok := middleware.CurrentIdentity(c); ok {
		if identity.Name != "" {
			return identity.Name
		}
		return identity.Email
	}
	return ""
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, services.Message(err, "Not found."))
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrDuplicateEmail),
		errors.Is(err, services.ErrConflict):
		utils.BadRequestResponse(c, services.Message(err, "Invalid request."))
	default:
		h.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		utils.InternalServerErrorResponse(c)
	}
}
