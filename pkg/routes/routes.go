package routes

import (
	"ecom_inventory/pkg/controllers/admin"
	"ecom_inventory/pkg/controllers/auth"
	"ecom_inventory/pkg/controllers/customer"
	"ecom_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Handlers bundles the controller sets mounted under /api
type Handlers struct {
	Auth     *auth.Handler
	Admin    *admin.Handler
	Customer *customer.Handler
}

// Register mounts every API route on router
func Register(router *gin.Engine, tokens *utils.TokenManager, h Handlers) {
	api := router.Group("/api")

	RegisterAuthRoutes(api, tokens, h.Auth)
	RegisterCatalogRoutes(api, tokens, h.Admin)
	RegisterCustomerRoutes(api, tokens, h.Admin)
	RegisterInventoryRoutes(api, tokens, h.Admin)
	RegisterOrderRoutes(api, tokens, h.Admin, h.Customer)
}
