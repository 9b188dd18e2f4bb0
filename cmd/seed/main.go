package main

import (
	"errors"
	"log"
	"time"

	"ecom_inventory/pkg/config"
	"ecom_inventory/pkg/database"
	"ecom_inventory/pkg/logger"
	"ecom_inventory/pkg/models"
	"ecom_inventory/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logr.Sync()

	// Initialize database
	db, err := database.Open(cfg, logr)
	if err != nil {
		logr.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.Close(db, logr)

	if err := database.AutoMigrate(db); err != nil {
		logr.Fatal("failed to run migrations", zap.Error(err))
	}

	if err := seedAdmin(db, cfg, logr); err != nil {
		logr.Fatal("failed to seed admin", zap.Error(err))
	}
	if err := seedCatalog(db, logr); err != nil {
		logr.Fatal("failed to seed catalogue", zap.Error(err))
	}
}

func seedAdmin(db *gorm.DB, cfg *config.Config, logr *zap.Logger) error {
	email := cfg.SeedAdminEmail
	if cfg.SeedAdminPassword == "" {
		logr.Warn("SEED_ADMIN_PASSWORD not set, skipping admin user")
		return nil
	}

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == nil {
		logr.Info("admin already exists", zap.String("email", email))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := utils.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	user = models.User{
		Name:     "Admin",
		Email:    email,
		Password: hashedPassword,
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	logr.Info("admin created", zap.String("email", email))
	return nil
}

// seedCatalog adds a sample supplier and products when the catalogue is empty
func seedCatalog(db *gorm.DB, logr *zap.Logger) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logr.Info("catalogue already seeded", zap.Int64("products", count))
		return nil
	}

	contact := "Sam Supplier"
	supplier := models.Supplier{Name: "Acme Wholesale", ContactPerson: &contact}

	products := []models.Product{
		{Name: "Ceramic Mug", Price: decimal.RequireFromString("8.50"), Quantity: 40, Category: "Kitchen"},
		{Name: "Cotton T-Shirt", Price: decimal.RequireFromString("19.99"), Quantity: 25, Category: "Apparel"},
		{Name: "Claw Hammer", Price: decimal.RequireFromString("14.00"), Quantity: 12, Category: "Tools"},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&supplier).Error; err != nil {
			return err
		}
		for i := range products {
			products[i].SupplierID = &supplier.ID
			if err := tx.Create(&products[i]).Error; err != nil {
				return err
			}
			inv := models.Inventory{ProductID: products[i].ID, Quantity: products[i].Quantity, LastUpdated: time.Now()}
			if err := tx.Create(&inv).Error; err != nil {
				return err
			}
		}
		logr.Info("catalogue seeded", zap.Int("products", len(products)))
		return nil
	})
}
