package admin

import (
	"errors"
	"net/http"
	"strings"

	"ecom_inventory/pkg/models"
	"ecom_inventory/pkg/services"
	"ecom_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type customerRequest struct {
	Name    string  `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (r *customerRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	if r.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*r.Email))
		if email == "" {
			r.Email = nil
		} else {
			r.Email = &email
		}
	}
}

var errCustomerEmailTaken = &services.Error{Kind: services.ErrDuplicateEmail, Message: "Customer already exists with this email."}

func emailTaken(db *gorm.DB, email *string, exceptID int) (bool, error) {
	if email == nil {
		return false, nil
	}
	var count int64
	err := db.Model(&models.Customer{}).Where("email = ? AND id <> ?", *email, exceptID).Count(&count).Error
	return count > 0, err
}

// ListCustomers returns every customer
func (h *Handler) ListCustomers(c *gin.Context) {
	customers := []models.Customer{}
	if err := h.db.WithContext(c.Request.Context()).Order("id").Find(&customers).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

// GetCustomer returns one customer
func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid customer ID.")
		return
	}

	var customer models.Customer
	if err := h.db.WithContext(c.Request.Context()).First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundResponse(c, "Customer not found.")
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// CreateCustomer adds a customer record without login credentials
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Name is required.")
		return
	}
	req.normalize()
	if req.Name == "" {
		utils.BadRequestResponse(c, "Name is required.")
		return
	}

	db := h.db.WithContext(c.Request.Context())
	taken, err := emailTaken(db, req.Email, 0)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if taken {
		h.respondError(c, errCustomerEmailTaken)
		return
	}

	customer := models.Customer{Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address}
	if err := db.Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = errCustomerEmailTaken
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer replaces a customer's contact fields
func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid customer ID.")
		return
	}
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Name is required.")
		return
	}
	req.normalize()
	if req.Name == "" {
		utils.BadRequestResponse(c, "Name is required.")
		return
	}

	db := h.db.WithContext(c.Request.Context())
	var customer models.Customer
	if err := db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundResponse(c, "Customer not found.")
			return
		}
		h.respondError(c, err)
		return
	}

	taken, err := emailTaken(db, req.Email, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if taken {
		h.respondError(c, errCustomerEmailTaken)
		return
	}

	customer.Name = req.Name
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Address = req.Address
	if err := db.Save(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = errCustomerEmailTaken
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer removes a customer that has no orders
func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid customer ID.")
		return
	}

	var deleted int64
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var orders int64
		if err := tx.Model(&models.Order{}).Where("customer_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return &services.Error{Kind: services.ErrConflict, Message: "Customer has orders and cannot be deleted."}
		}
		res := tx.Delete(&models.Customer{}, id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	if deleted == 0 {
		utils.NotFoundResponse(c, "Customer not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Customer deleted successfully."})
}
