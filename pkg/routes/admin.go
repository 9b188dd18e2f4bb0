package routes

import (
	"ecom_inventory/pkg/controllers/admin"
	"ecom_inventory/pkg/middleware"
	"ecom_inventory/pkg/models"
	"ecom_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
)

var (
	catalogManagers = []models.Role{models.RoleAdmin, models.RoleInventoryManager}
	salesManagers   = []models.Role{models.RoleAdmin, models.RoleSalesManager}
)

// RegisterCatalogRoutes registers products, categories and suppliers
func RegisterCatalogRoutes(api *gin.RouterGroup, tokens *utils.TokenManager, h *admin.Handler) {
	manage := middleware.Restrict(tokens, catalogManagers...)

	// Storefront reads are public
	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)
	api.GET("/categories", h.ListCategories)

	api.POST("/products", manage, h.CreateProduct)
	api.PUT("/products/:id", manage, h.UpdateProduct)
	api.DELETE("/products/:id", manage, h.DeleteProduct)

	suppliers := api.Group("/suppliers", manage)
	{
		suppliers.GET("", h.ListSuppliers)
		suppliers.GET("/:id", h.GetSupplier)
		suppliers.POST("", h.CreateSupplier)
		suppliers.PUT("/:id", h.UpdateSupplier)
		suppliers.DELETE("/:id", h.DeleteSupplier)
	}
}

// RegisterCustomerRoutes registers the staff view of customers
func RegisterCustomerRoutes(api *gin.RouterGroup, tokens *utils.TokenManager, h *admin.Handler) {
	customers := api.Group("/customers", middleware.AuthenticateToken(tokens), middleware.AuthorizeRoles(salesManagers...))
	{
		customers.GET("", h.ListCustomers)
		customers.GET("/:id", h.GetCustomer)
		customers.POST("", h.CreateCustomer)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.DELETE("/:id", h.DeleteCustomer)
	}
}

// RegisterInventoryRoutes registers stock levels and adjustment history
func RegisterInventoryRoutes(api *gin.RouterGroup, tokens *utils.TokenManager, h *admin.Handler) {
	anyStaff := middleware.Restrict(tokens, models.StaffRoles...)

	api.GET("/inventory", anyStaff, h.ListInventory)
	api.GET("/inventory/:productId", anyStaff, h.GetInventory)
	api.PUT("/inventory/:productId", middleware.Restrict(tokens, catalogManagers...), h.UpdateInventory)
	api.GET("/stock-adjustments/:productId", anyStaff, h.ListStockAdjustments)
}
