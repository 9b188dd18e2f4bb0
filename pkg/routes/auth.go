package routes

import (
	"ecom_inventory/pkg/controllers/auth"
	"ecom_inventory/pkg/middleware"
	"ecom_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers all authentication routes
func RegisterAuthRoutes(api *gin.RouterGroup, tokens *utils.TokenManager, h *auth.Handler) {
	authGroup := api.Group("/auth")
	{
		// Staff auth
		authGroup.POST("/register", h.StaffRegister)
		authGroup.POST("/login", h.StaffLogin)

		// Customer auth
		authGroup.POST("/customer/register", h.CustomerRegister)
		authGroup.POST("/customer/login", h.CustomerLogin)

		// Protected routes
		authGroup.GET("/me", middleware.AuthenticateToken(tokens), h.Me)
	}
}
