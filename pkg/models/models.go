package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User model - staff and admin accounts
type User struct {
	ID        int       `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;column:name" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null;column:password" json:"-"` // Don't expose password in JSON
	Role      Role      `gorm:"type:varchar(32);not null;default:'staff';column:role" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"createdAt"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// Customer model - storefront accounts, disjoint from users
type Customer struct {
	ID           int       `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null;column:name" json:"name"`
	Email        *string   `gorm:"type:varchar(255);uniqueIndex;column:email" json:"email"`
	PasswordHash *string   `gorm:"type:varchar(255);column:password_hash" json:"-"`
	Phone        *string   `gorm:"type:varchar(50);column:phone" json:"phone"`
	Address      *string   `gorm:"type:varchar(500);column:address" json:"address"`
	CreatedAt    time.Time `gorm:"autoCreateTime;column:created_at" json:"createdAt"`

	// Relationships
	Orders []Order `gorm:"foreignKey:CustomerID" json:"orders,omitempty"`
}

// TableName specifies the table name for Customer model
func (Customer) TableName() string {
	return "customers"
}

// Supplier model
type Supplier struct {
	ID            int     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name          string  `gorm:"type:varchar(255);not null;column:name" json:"name"`
	ContactPerson *string `gorm:"type:varchar(255);column:contact_person" json:"contactPerson"`
	Email         *string `gorm:"type:varchar(255);column:email" json:"email"`
	Phone         *string `gorm:"type:varchar(50);column:phone" json:"phone"`
	Address       *string `gorm:"type:varchar(500);column:address" json:"address"`
}

// TableName specifies the table name for Supplier model
func (Supplier) TableName() string {
	return "suppliers"
}

// Product model
type Product struct {
	ID         int             `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name       string          `gorm:"type:varchar(255);not null;column:name" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null;column:price" json:"price"`
	Quantity   int             `gorm:"not null;default:0;column:quantity" json:"quantity"`
	Category   string          `gorm:"type:varchar(100);not null;index;column:category" json:"category"`
	ImageURL   *string         `gorm:"type:varchar(500);column:image_url" json:"imageUrl"`
	SupplierID *int            `gorm:"column:supplier_id" json:"supplierId"`
	CreatedAt  time.Time       `gorm:"autoCreateTime;column:created_at" json:"createdAt"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime;column:updated_at" json:"updatedAt"`

	// Relationships
	Supplier  *Supplier  `gorm:"foreignKey:SupplierID;references:ID" json:"supplier,omitempty"`
	Inventory *Inventory `gorm:"foreignKey:ProductID" json:"inventory,omitempty"`
}

// TableName specifies the table name for Product model
func (Product) TableName() string {
	return "products"
}

// Inventory model - one row per product, quantity mirrors Product.Quantity
type Inventory struct {
	ID          int       `gorm:"primaryKey;autoIncrement;column:id" json:"inventoryId"`
	ProductID   int       `gorm:"uniqueIndex;not null;column:product_id" json:"productId"`
	Quantity    int       `gorm:"not null;default:0;column:quantity" json:"quantity"`
	LastUpdated time.Time `gorm:"not null;column:last_updated" json:"lastUpdated"`
}

// TableName specifies the table name for Inventory model
func (Inventory) TableName() string {
	return "inventory"
}

// StockAdjustment model - append-only audit of quantity changes
type StockAdjustment struct {
	ID             int       `gorm:"primaryKey;autoIncrement;column:id" json:"adjustmentId"`
	InventoryID    int       `gorm:"not null;index;column:inventory_id" json:"inventoryId"`
	ProductID      int       `gorm:"not null;index;column:product_id" json:"productId"`
	AdjustedBy     string    `gorm:"type:varchar(255);not null;column:adjusted_by" json:"adjustedBy"`
	OldQuantity    int       `gorm:"not null;column:old_quantity" json:"oldQuantity"`
	NewQuantity    int       `gorm:"not null;column:new_quantity" json:"newQuantity"`
	Reason         *string   `gorm:"type:varchar(255);column:reason" json:"reason"`
	AdjustmentDate time.Time `gorm:"autoCreateTime;column:adjustment_date" json:"adjustmentDate"`

	// Relationships
	Inventory *Inventory `gorm:"foreignKey:InventoryID;references:ID" json:"-"`
	Product   *Product   `gorm:"foreignKey:ProductID;references:ID" json:"-"`
}

// TableName specifies the table name for StockAdjustment model
func (StockAdjustment) TableName() string {
	return "stock_adjustments"
}

// Order model
type Order struct {
	ID          int             `gorm:"primaryKey;autoIncrement;column:id" json:"orderId"`
	OrderDate   time.Time       `gorm:"not null;index;column:order_date" json:"orderDate"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null;default:'Pending';index;column:status" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;column:total_amount" json:"totalAmount"`
	CustomerID  int             `gorm:"not null;index;column:customer_id" json:"customerId"`

	// Relationships
	Customer *Customer  `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`
	Items    []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName specifies the table name for Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem model - unit price is captured when the order is placed
type OrderItem struct {
	ID        int             `gorm:"primaryKey;autoIncrement;column:id" json:"orderItemId"`
	OrderID   int             `gorm:"not null;index;column:order_id" json:"orderId"`
	ProductID int             `gorm:"not null;index;column:product_id" json:"productId"`
	Quantity  int             `gorm:"not null;column:quantity" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null;column:unit_price" json:"pricePerUnit"`

	// Relationships
	Product *Product `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`
}

// TableName specifies the table name for OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal returns quantity × unit price
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
