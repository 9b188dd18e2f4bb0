package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecom_inventory/pkg/models"
	"ecom_inventory/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductInput carries the writable product fields
type ProductInput struct {
	Name       string
	Price      decimal.Decimal
	Quantity   int
	Category   string
	SupplierID *int
}

func (in *ProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)

	if len(in.Name) < 3 {
		return validationf("Product name must be at least 3 characters long.")
	}
	if !in.Price.IsPositive() {
		return validationf("Price must be a positive number.")
	}
	if in.Quantity < 0 {
		return validationf("Quantity must be a non-negative integer.")
	}
	if in.Category == "" {
		return validationf("Category is required.")
	}
	return nil
}

// ProductView is a product joined with its supplier name
type ProductView struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Category     string          `json:"category"`
	ImageURL     *string         `json:"imageUrl"`
	SupplierID   *int            `json:"supplierId"`
	SupplierName *string         `json:"supplierName"`
}

// ProductFilter narrows a product listing. A zero Page size lists everything.
type ProductFilter struct {
	Category string
	Search   string
	Page     utils.Page
}

type CatalogService struct {
	db     *gorm.DB
	images ImageStore
	log    *zap.Logger
}

func NewCatalogService(db *gorm.DB, images ImageStore, log *zap.Logger) *CatalogService {
	return &CatalogService{db: db, images: images, log: log}
}

func (s *CatalogService) products(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("products AS p").
		Joins("LEFT JOIN suppliers s ON s.id = p.supplier_id")
}

// List returns products matching filter and the unpaged total
func (s *CatalogService) List(ctx context.Context, filter ProductFilter) ([]ProductView, int64, error) {
	scope := func(q *gorm.DB) *gorm.DB {
		if filter.Category != "" {
			q = q.Where("p.category = ?", filter.Category)
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			q = q.Where("LOWER(p.name) LIKE ?", "%"+strings.ToLower(search)+"%")
		}
		return q
	}

	var total int64
	if err := s.products(ctx).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	q := s.products(ctx).Scopes(scope).
		Select("p.id, p.name, p.price, p.quantity, p.category, p.image_url, p.supplier_id, s.name AS supplier_name").
		Order("p.id")
	if filter.Page.Size > 0 {
		q = q.Offset(filter.Page.Offset()).Limit(filter.Page.Size)
	}

	views := []ProductView{}
	if err := q.Scan(&views).Error; err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return views, total, nil
}

// Get returns one product
func (s *CatalogService) Get(ctx context.Context, id int) (*ProductView, error) {
	var views []ProductView
	err := s.products(ctx).
		Select("p.id, p.name, p.price, p.quantity, p.category, p.image_url, p.supplier_id, s.name AS supplier_name").
		Where("p.id = ?", id).
		Limit(1).
		Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if len(views) == 0 {
		return nil, notFound("Product not found.")
	}
	return &views[0], nil
}

// Categories returns the distinct product categories in name order
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) checkSupplier(ctx context.Context, supplierID *int) error {
	if supplierID == nil {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Supplier{}).Where("id = ?", *supplierID).Count(&count).Error; err != nil {
		return fmt.Errorf("check supplier: %w", err)
	}
	if count == 0 {
		return validationf("Supplier not found.")
	}
	return nil
}

func (s *CatalogService) saveImage(ctx context.Context, img *ImageUpload) (*string, error) {
	if img == nil {
		return nil, nil
	}
	url, err := s.images.Save(ctx, img)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func (s *CatalogService) discardImage(ctx context.Context, url *string) {
	if url == nil {
		return
	}
	if err := s.images.Delete(ctx, *url); err != nil {
		s.log.Warn("failed to delete product image", zap.String("url", *url), zap.Error(err))
	}
}

// Create inserts a product and its inventory row in one transaction
func (s *CatalogService) Create(ctx context.Context, in ProductInput, img *ImageUpload) (*ProductView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, in.SupplierID); err != nil {
		return nil, err
	}

	imageURL, err := s.saveImage(ctx, img)
	if err != nil {
		return nil, err
	}

	product := models.Product{
		Name:       in.Name,
		Price:      in.Price,
		Quantity:   in.Quantity,
		Category:   in.Category,
		ImageURL:   imageURL,
		SupplierID: in.SupplierID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&product).Error; err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		inv := models.Inventory{ProductID: product.ID, Quantity: product.Quantity, LastUpdated: time.Now()}
		if err := tx.Create(&inv).Error; err != nil {
			return fmt.Errorf("create inventory: %w", err)
		}
		return nil
	})
	if err != nil {
		s.discardImage(ctx, imageURL)
		return nil, err
	}

	s.log.Info("product created", zap.Int("productId", product.ID), zap.String("name", product.Name))
	return s.Get(ctx, product.ID)
}

// Update replaces the product fields. A changed quantity is applied through
// the inventory path and audited under actor.
func (s *CatalogService) Update(ctx context.Context, id int, in ProductInput, img *ImageUpload, actor string) (*ProductView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var existing models.Product
	if err := s.db.WithContext(ctx).First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Product not found.")
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	if err := s.checkSupplier(ctx, in.SupplierID); err != nil {
		return nil, err
	}

	newImage, err := s.saveImage(ctx, img)
	if err != nil {
		return nil, err
	}
	imageURL := existing.ImageURL
	if newImage != nil {
		imageURL = newImage
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).Where("id = ?", id).Updates(map[string]any{
			"name":        in.Name,
			"price":       in.Price,
			"category":    in.Category,
			"supplier_id": in.SupplierID,
			"image_url":   imageURL,
			"updated_at":  time.Now(),
		})
		if res.Error != nil {
			return fmt.Errorf("update product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("Product not found.")
		}

		inv, err := lockInventory(tx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			// Repair a product that lost its inventory row
			inv = &models.Inventory{ProductID: id, Quantity: existing.Quantity, LastUpdated: time.Now()}
			if err := tx.Create(inv).Error; err != nil {
				return fmt.Errorf("create inventory: %w", err)
			}
		}
		if inv.Quantity == in.Quantity && existing.Quantity == in.Quantity {
			return nil
		}
		reason := "Product update"
		return setStock(tx, inv, in.Quantity, actor, &reason, true)
	})
	if err != nil {
		s.discardImage(ctx, newImage)
		return nil, err
	}
	if newImage != nil {
		s.discardImage(ctx, existing.ImageURL)
	}

	s.log.Info("product updated", zap.Int("productId", id))
	return s.Get(ctx, id)
}

// Delete removes a product together with its order items, inventory and
// adjustment history. The stored image is removed after commit.
func (s *CatalogService) Delete(ctx context.Context, id int) error {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Product not found.")
		}
		return fmt.Errorf("load product: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}

		var inventoryIDs []int
		if err := tx.Model(&models.Inventory{}).Where("product_id = ?", id).Pluck("id", &inventoryIDs).Error; err != nil {
			return fmt.Errorf("find inventory: %w", err)
		}
		adjustments := tx.Where("product_id = ?", id)
		if len(inventoryIDs) > 0 {
			adjustments = tx.Where("inventory_id IN ? OR product_id = ?", inventoryIDs, id)
		}
		if err := adjustments.Delete(&models.StockAdjustment{}).Error; err != nil {
			return fmt.Errorf("delete stock adjustments: %w", err)
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.Inventory{}).Error; err != nil {
			return fmt.Errorf("delete inventory: %w", err)
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("Product not found.")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.discardImage(ctx, product.ImageURL)
	s.log.Info("product deleted", zap.Int("productId", id))
	return nil
}
