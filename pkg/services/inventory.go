package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecom_inventory/pkg/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SystemActor is recorded when an adjustment has no named actor
const SystemActor = "System"

// InventoryView is an inventory row joined with its product name
type InventoryView struct {
	InventoryID int       `json:"inventoryId"`
	ProductID   int       `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// AdjustmentView is a stock adjustment joined with its product name
type AdjustmentView struct {
	AdjustmentID   int       `json:"adjustmentId"`
	InventoryID    int       `json:"inventoryId"`
	ProductID      int       `json:"productId"`
	ProductName    string    `json:"productName"`
	AdjustedBy     string    `json:"adjustedBy"`
	OldQuantity    int       `json:"oldQuantity"`
	NewQuantity    int       `json:"newQuantity"`
	Reason         *string   `json:"reason"`
	AdjustmentDate time.Time `json:"adjustmentDate"`
}

type InventoryService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewInventoryService(db *gorm.DB, log *zap.Logger) *InventoryService {
	return &InventoryService{db: db, log: log}
}

func (s *InventoryService) views(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("inventory AS i").
		Select("i.id AS inventory_id, i.product_id, p.name AS product_name, i.quantity, i.last_updated").
		Joins("JOIN products p ON p.id = i.product_id")
}

// List returns every inventory row ordered by product
func (s *InventoryService) List(ctx context.Context) ([]InventoryView, error) {
	views := []InventoryView{}
	if err := s.views(ctx).Order("i.product_id").Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return views, nil
}

// Get returns the inventory row of one product
func (s *InventoryService) Get(ctx context.Context, productID int) (*InventoryView, error) {
	var views []InventoryView
	if err := s.views(ctx).Where("i.product_id = ?", productID).Limit(1).Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	if len(views) == 0 {
		return nil, notFound("Inventory not found for this product.")
	}
	return &views[0], nil
}

// Adjust sets the stock of a product to newQuantity. Product and inventory
// are updated together and, when the quantity changes, one adjustment row
// records old and new values.
func (s *InventoryService) Adjust(ctx context.Context, productID, newQuantity int, actor string, reason *string) (*InventoryView, error) {
	if newQuantity < 0 {
		return nil, validationf("Quantity must be a non-negative integer.")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := lockProduct(tx, productID)
		if err != nil {
			return err
		}
		inv, err := lockInventory(tx, productID)
		if err != nil {
			return err
		}
		if product == nil || inv == nil {
			return notFound("Inventory not found for this product.")
		}
		return setStock(tx, inv, newQuantity, actor, reason, true)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("stock adjusted",
		zap.Int("productId", productID),
		zap.Int("quantity", newQuantity),
		zap.String("actor", actorOrSystem(actor)),
	)
	return s.Get(ctx, productID)
}

// History lists adjustments, newest first. A productID of zero lists all.
func (s *InventoryService) History(ctx context.Context, productID int) ([]AdjustmentView, error) {
	q := s.db.WithContext(ctx).
		Table("stock_adjustments AS sa").
		Select("sa.id AS adjustment_id, sa.inventory_id, sa.product_id, p.name AS product_name, " +
			"sa.adjusted_by, sa.old_quantity, sa.new_quantity, sa.reason, sa.adjustment_date").
		Joins("LEFT JOIN products p ON p.id = sa.product_id")
	if productID > 0 {
		q = q.Where("sa.product_id = ?", productID)
	}

	views := []AdjustmentView{}
	if err := q.Order("sa.adjustment_date DESC, sa.id DESC").Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("list stock adjustments: %w", err)
	}
	return views, nil
}

// lockProduct reads a product row FOR UPDATE. It returns nil without error
// when the product does not exist.
func lockProduct(tx *gorm.DB, id int) (*models.Product, error) {
	var p models.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock product: %w", err)
	}
	return &p, nil
}

// lockInventory reads the inventory row of a product FOR UPDATE. It returns
// nil without error when the product has no inventory row.
func lockInventory(tx *gorm.DB, productID int) (*models.Inventory, error) {
	var inv models.Inventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock inventory: %w", err)
	}
	return &inv, nil
}

// setStock writes newQuantity to both the product and its inventory row and
// appends an adjustment when audit is set and the quantity changed. It is the
// single path every stock change goes through. Callers must already hold the
// product row lock and then the inventory row lock, in that order.
func setStock(tx *gorm.DB, inv *models.Inventory, newQuantity int, actor string, reason *string, audit bool) error {
	old := inv.Quantity
	now := time.Now()

	res := tx.Model(&models.Inventory{}).Where("id = ?", inv.ID).
		Updates(map[string]any{"quantity": newQuantity, "last_updated": now})
	if res.Error != nil {
		return fmt.Errorf("update inventory: %w", res.Error)
	}
	res = tx.Model(&models.Product{}).Where("id = ?", inv.ProductID).
		Updates(map[string]any{"quantity": newQuantity, "updated_at": now})
	if res.Error != nil {
		return fmt.Errorf("update product quantity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("Product not found.")
	}

	inv.Quantity = newQuantity
	inv.LastUpdated = now

	if !audit || old == newQuantity {
		return nil
	}
	adj := models.StockAdjustment{
		InventoryID: inv.ID,
		ProductID:   inv.ProductID,
		AdjustedBy:  actorOrSystem(actor),
		OldQuantity: old,
		NewQuantity: newQuantity,
		Reason:      reason,
	}
	if err := tx.Create(&adj).Error; err != nil {
		return fmt.Errorf("record stock adjustment: %w", err)
	}
	return nil
}

func actorOrSystem(actor string) string {
	if actor == "" {
		return SystemActor
	}
	return actor
}
