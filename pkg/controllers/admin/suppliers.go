package admin

import (
	"errors"
	"net/http"
	"strings"

	"ecom_inventory/pkg/models"
	"ecom_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type supplierRequest struct {
	Name          string  `json:"name"`
	ContactPerson *string `json:"contactPerson"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
}

func (r *supplierRequest) apply(s *models.Supplier) {
	s.Name = strings.TrimSpace(r.Name)
	s.ContactPerson = r.ContactPerson
	s.Email = r.Email
	s.Phone = r.Phone
	s.Address = r.Address
}

// ListSuppliers returns every supplier
func (h *Handler) ListSuppliers(c *gin.Context) {
	suppliers := []models.Supplier{}
	if err := h.db.WithContext(c.Request.Context()).Order("id").Find(&suppliers).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

// GetSupplier returns one supplier
func (h *Handler) GetSupplier(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid supplier ID.")
		return
	}

	var supplier models.Supplier
	if err := h.db.WithContext(c.Request.Context()).First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundResponse(c, "Supplier not found.")
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// CreateSupplier adds a supplier
func (h *Handler) CreateSupplier(c *gin.Context) {
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		utils.BadRequestResponse(c, "Name is required.")
		return
	}

	var supplier models.Supplier
	req.apply(&supplier)
	if err := h.db.WithContext(c.Request.Context()).Create(&supplier).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

// UpdateSupplier replaces a supplier's fields
func (h *Handler) UpdateSupplier(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid supplier ID.")
		return
	}
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		utils.BadRequestResponse(c, "Name is required.")
		return
	}

	db := h.db.WithContext(c.Request.Context())
	var supplier models.Supplier
	if err := db.First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundResponse(c, "Supplier not found.")
			return
		}
		h.respondError(c, err)
		return
	}

	req.apply(&supplier)
	if err := db.Save(&supplier).Error; err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// DeleteSupplier removes a supplier and detaches its products
func (h *Handler) DeleteSupplier(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid supplier ID.")
		return
	}

	var deleted int64
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("supplier_id = ?", id).Update("supplier_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Supplier{}, id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	if deleted == 0 {
		utils.NotFoundResponse(c, "Supplier not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Supplier deleted successfully."})
}
