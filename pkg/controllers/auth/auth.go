package auth

import (
	"errors"
	"net/http"

	"ecom_inventory/pkg/middleware"
	"ecom_inventory/pkg/models"
	"ecom_inventory/pkg/services"
	"ecom_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the staff and customer authentication routes
type Handler struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewHandler(auth *services.AuthService, log *zap.Logger) *Handler {
	return &Handler{auth: auth, log: log}
}

// StaffRegister handles admin/staff registration
func (h *Handler) StaffRegister(c *gin.Context) {
	var req struct {
		Name     string      `json:"name" binding:"required"`
		Email    string      `json:"email" binding:"required"`
		Password string      `json:"password" binding:"required"`
		Role     models.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Name, email, password, and role are required.")
		return
	}

	user, err := h.auth.RegisterStaff(c.Request.Context(), services.StaffRegistration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully.",
		"user":    user,
	})
}

// StaffLogin handles admin/staff sign in
func (h *Handler) StaffLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Email and password are required.")
		return
	}

	res, err := h.auth.LoginStaff(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful.",
		"token":   res.Token,
		"user":    res.Identity,
	})
}

// CustomerRegister handles storefront sign up
func (h *Handler) CustomerRegister(c *gin.Context) {
	var req struct {
		Name     string  `json:"name" binding:"required"`
		Email    string  `json:"email" binding:"required"`
		Password string  `json:"password" binding:"required"`
		Phone    *string `json:"phone"`
		Address  *string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Name, email, and password are required.")
		return
	}

	customer, err := h.auth.RegisterCustomer(c.Request.Context(), services.CustomerRegistration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Customer account created successfully.",
		"customerId": customer.ID,
	})
}

// CustomerLogin handles storefront sign in
func (h *Handler) CustomerLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Email and password are required.")
		return
	}

	res, err := h.auth.LoginCustomer(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful.",
		"token":   res.Token,
		"user":    res.Identity,
	})
}

// Me returns the identity decoded from the bearer token
func (h *Handler) Me(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": identity})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, "Invalid email or password.")
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrDuplicateEmail):
		utils.BadRequestResponse(c, services.Message(err, "Invalid request."))
	default:
		h.log.Error("auth request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.InternalServerErrorResponse(c)
	}
}
