package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ecom_inventory/pkg/services"
	"ecom_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListProducts returns the catalogue. Paging applies only when page or
// pageSize is given; the unpaged total is sent in X-Total-Count.
func (h *Handler) ListProducts(c *gin.Context) {
	filter := services.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	if c.Query("page") != "" || c.Query("pageSize") != "" {
		filter.Page = utils.ParsePage(c, 20, 100)
	}

	products, total, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, products)
}

// GetProduct returns one product
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid product ID provided.")
		return
	}

	product, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ListCategories returns the distinct categories
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateProduct handles a multipart product form with an optional image
func (h *Handler) CreateProduct(c *gin.Context) {
	in, err := productForm(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	img, err := imageForm(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	product, err := h.catalog.Create(c.Request.Context(), in, img)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct replaces a product from a multipart form
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid product ID provided.")
		return
	}

	in, err := productForm(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	img, err := imageForm(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	product, err := h.catalog.Update(c.Request.Context(), id, in, img, actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product and everything that references it
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.BadRequestResponse(c, "Invalid product ID.")
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Product with ID %d deleted successfully", id),
	})
}

func productForm(c *gin.Context) (services.ProductInput, error) {
	var in services.ProductInput
	invalid := func(msg string) error {
		return &services.Error{Kind: services.ErrValidation, Message: msg}
	}

	in.Name = c.PostForm("name")
	in.Category = c.PostForm("category")

	price, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("price")))
	if err != nil {
		return in, invalid("Price must be a positive number.")
	}
	in.Price = price

	quantity, err := strconv.Atoi(strings.TrimSpace(c.PostForm("quantity")))
	if err != nil {
		return in, invalid("Quantity must be a non-negative integer.")
	}
	in.Quantity = quantity

	switch raw := strings.TrimSpace(c.PostForm("supplierId")); raw {
	case "", "null", "undefined":
	default:
		supplierID, err := strconv.Atoi(raw)
		if err != nil || supplierID <= 0 {
			return in, invalid("Supplier ID must be a positive integer.")
		}
		in.SupplierID = &supplierID
	}
	return in, nil
}

func imageForm(c *gin.Context) (*services.ImageUpload, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read image field: %w", err)
	}
	return services.ReadImage(fh)
}
