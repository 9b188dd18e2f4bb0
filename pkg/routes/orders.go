package routes

import (
	"ecom_inventory/pkg/controllers/admin"
	"ecom_inventory/pkg/controllers/customer"
	"ecom_inventory/pkg/middleware"
	"ecom_inventory/pkg/models"
	"ecom_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
)

var orderDesk = []models.Role{models.RoleAdmin, models.RoleSalesManager, models.RoleStaff}

// RegisterOrderRoutes registers staff order management and storefront checkout
func RegisterOrderRoutes(api *gin.RouterGroup, tokens *utils.TokenManager, staff *admin.Handler, shop *customer.Handler) {
	customerOnly := middleware.Restrict(tokens, models.RoleCustomer)
	staffOrOwner := middleware.Restrict(tokens, append(append([]models.Role{}, models.StaffRoles...), models.RoleCustomer)...)

	orders := api.Group("/orders")
	{
		// Storefront
		orders.POST("", customerOnly, shop.PlaceOrder)
		orders.GET("/customer", customerOnly, shop.MyOrders)

		// Back office
		orders.GET("", middleware.Restrict(tokens, orderDesk...), staff.ListOrders)
		orders.GET("/:orderId", staffOrOwner, staff.GetOrder)
		orders.PUT("/:orderId", middleware.Restrict(tokens, orderDesk...), staff.UpdateOrderStatus)
	}
}
