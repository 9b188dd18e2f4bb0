// Package testutil provides a migrated throwaway database for package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"ecom_inventory/pkg/database"
	"ecom_inventory/pkg/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a file-backed sqlite database in t's temp dir with every model
// migrated. A single connection serialises transactions the way row locks do
// on the server databases.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedProduct inserts a product together with its inventory row
func SeedProduct(t testing.TB, db *gorm.DB, name, price string, quantity int) models.Product {
	t.Helper()

	product := models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
		Category: "General",
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	inv := models.Inventory{ProductID: product.ID, Quantity: quantity, LastUpdated: time.Now()}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
	product.Inventory = &inv
	return product
}

// SeedCustomer inserts a customer without login credentials
func SeedCustomer(t testing.TB, db *gorm.DB, name string) models.Customer {
	t.Helper()

	customer := models.Customer{Name: name}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer
}
