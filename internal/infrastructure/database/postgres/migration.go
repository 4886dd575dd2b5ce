package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/your-org/coffee-marketplace/internal/domain/cart"
	"github.com/your-org/coffee-marketplace/internal/domain/order"
	"github.com/your-org/coffee-marketplace/internal/domain/product"
	"github.com/your-org/coffee-marketplace/internal/domain/user"
	"github.com/your-org/coffee-marketplace/internal/domain/wishlist"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	logrus.Info("Running database auto-migrations")

	// Models in dependency order: referenced tables first
	models := []interface{}{
		&user.User{},
		&user.Address{},
		&user.BalanceTransaction{},

		&product.Vendor{},
		&product.Category{},
		&product.Product{},
		&product.ProductReview{},

		&cart.CartItem{},

		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},

		&wishlist.WishlistItem{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	logrus.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	logrus.Info("Creating additional database indexes")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_role_active ON users(role, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Balance transaction indexes
		"CREATE INDEX IF NOT EXISTS idx_balance_transactions_user_created ON balance_transactions(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_balance_transactions_reference ON balance_transactions(reference)",

		// Vendor indexes
		"CREATE INDEX IF NOT EXISTS idx_vendors_slug ON vendors(slug)",
		"CREATE INDEX IF NOT EXISTS idx_vendors_active ON vendors(is_active)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_vendor_active ON products(vendor_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Category indexes
		"CREATE INDEX IF NOT EXISTS idx_categories_parent_active ON categories(parent_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_categories_sort_order ON categories(sort_order)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_user_product ON cart_items(user_id, product_id)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_created_at ON cart_items(created_at DESC)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders(payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order items indexes
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_vendor ON order_items(vendor_id)",

		// Order status history indexes
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",

		// Address indexes
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_type ON addresses(user_id, type)",
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses(user_id, is_default)",

		// Product review indexes
		"CREATE INDEX IF NOT EXISTS idx_product_reviews_product ON product_reviews(product_id)",
		"CREATE INDEX IF NOT EXISTS idx_product_reviews_user ON product_reviews(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_product_reviews_rating ON product_reviews(rating)",

		// Wishlist indexes
		"CREATE INDEX IF NOT EXISTS idx_wishlist_items_user_product ON wishlist_items(user_id, product_id)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			logrus.WithError(err).Warn("Failed to create index")
			failCount++
		} else {
			successCount++
		}
	}

	logrus.WithFields(logrus.Fields{
		"created": successCount,
		"failed":  failCount,
	}).Info("Index creation finished")
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	logrus.Info("Seeding initial data")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedSellerAndVendor(); err != nil {
		return fmt.Errorf("failed to seed seller: %w", err)
	}

	if err := m.seedSampleProducts(); err != nil {
		return fmt.Errorf("failed to seed sample products: %w", err)
	}

	logrus.Info("Initial data seeded")
	return nil
}

// seedCategories creates default product categories
func (m *Migration) seedCategories() error {
	categories := []product.Category{
		{
			Name:        "Single Origin",
			Slug:        "single-origin",
			Description: "Beans from a single farm or region",
			SortOrder:   1,
			IsActive:    true,
		},
		{
			Name:        "Blends",
			Slug:        "blends",
			Description: "House blends balanced for espresso and filter",
			SortOrder:   2,
			IsActive:    true,
		},
		{
			Name:        "Decaf",
			Slug:        "decaf",
			Description: "Decaffeinated coffees, Swiss water and sugarcane process",
			SortOrder:   3,
			IsActive:    true,
		},
		{
			Name:        "Brewing Equipment",
			Slug:        "brewing-equipment",
			Description: "Drippers, grinders, scales, and filters",
			SortOrder:   4,
			IsActive:    true,
		},
	}

	for _, category := range categories {
		var existing product.Category
		result := m.db.Where("slug = ?", category.Slug).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
			logrus.WithField("category", category.Name).Info("Created category")
		}
	}

	return nil
}

func (m *Migration) seedAdminUser() error {
	var existing user.User
	result := m.db.Where("email = ?", "admin@beanmarket.example").First(&existing)
	if result.Error == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := user.User{
		Email:         "admin@beanmarket.example",
		Password:      string(hashedPassword),
		FirstName:     "Admin",
		LastName:      "User",
		Role:          user.RoleAdmin,
		IsActive:      true,
		EmailVerified: true,
	}

	if err := m.db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logrus.WithField("email", adminUser.Email).Info("Created admin user")
	return nil
}

// seedSellerAndVendor creates a demo seller account with its vendor profile
func (m *Migration) seedSellerAndVendor() error {
	var existing user.User
	result := m.db.Where("email = ?", "roaster@beanmarket.example").First(&existing)
	if result.Error == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("roaster123"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	seller := user.User{
		Email:         "roaster@beanmarket.example",
		Password:      string(hashedPassword),
		FirstName:     "Sari",
		LastName:      "Wijaya",
		Role:          user.RoleSeller,
		IsActive:      true,
		EmailVerified: true,
	}

	if err := m.db.Create(&seller).Error; err != nil {
		return fmt.Errorf("failed to create seller user: %w", err)
	}

	vendor := product.Vendor{
		UserID:      seller.ID,
		Name:        "Gunung Biru Roastery",
		Slug:        "gunung-biru-roastery",
		Description: "Small-batch roastery sourcing from East Java smallholders",
		City:        "Malang",
		IsActive:    true,
	}

	if err := m.db.Create(&vendor).Error; err != nil {
		return fmt.Errorf("failed to create vendor: %w", err)
	}

	logrus.WithField("vendor", vendor.Name).Info("Created demo seller and vendor")
	return nil
}

// seedSampleProducts creates sample listings so a fresh install has a storefront
func (m *Migration) seedSampleProducts() error {
	var productCount int64
	m.db.Model(&product.Product{}).Count(&productCount)
	if productCount > 0 {
		return nil
	}

	var vendor product.Vendor
	if err := m.db.Where("slug = ?", "gunung-biru-roastery").First(&vendor).Error; err != nil {
		logrus.Warn("No demo vendor found, skipping sample products")
		return nil
	}

	var singleOrigin, blends product.Category
	m.db.Where("slug = ?", "single-origin").First(&singleOrigin)
	m.db.Where("slug = ?", "blends").First(&blends)

	sampleProducts := []product.Product{
		{
			SKU:           "GB-ARB-001",
			Name:          "Ijen Highlands Natural",
			Slug:          "ijen-highlands-natural",
			Description:   "Sun-dried arabica from the Ijen plateau with heavy fruit sweetness.",
			Price:         95000,
			ComparePrice:  110000,
			VendorID:      vendor.ID,
			CategoryID:    singleOrigin.ID,
			Origin:        "Ijen, East Java",
			RoastLevel:    "light",
			Process:       "natural",
			TastingNotes:  "strawberry, brown sugar, winey finish",
			WeightGrams:   200,
			IsActive:      true,
			IsFeatured:    true,
			TrackQuantity: true,
			Quantity:      40,
		},
		{
			SKU:           "GB-ARB-002",
			Name:          "Kintamani Washed",
			Slug:          "kintamani-washed",
			Description:   "Clean washed lot grown alongside citrus orchards in Bali.",
			Price:         88000,
			VendorID:      vendor.ID,
			CategoryID:    singleOrigin.ID,
			Origin:        "Kintamani, Bali",
			RoastLevel:    "medium",
			Process:       "washed",
			TastingNotes:  "orange zest, milk chocolate, clean cup",
			WeightGrams:   200,
			IsActive:      true,
			TrackQuantity: true,
			Quantity:      60,
		},
		{
			SKU:           "GB-BLD-001",
			Name:          "Morning Warung Blend",
			Slug:          "morning-warung-blend",
			Description:   "Comfortable daily espresso blend of Java and Flores beans.",
			Price:         72000,
			VendorID:      vendor.ID,
			CategoryID:    blends.ID,
			RoastLevel:    "dark",
			Process:       "washed",
			TastingNotes:  "dark chocolate, hazelnut, syrupy body",
			WeightGrams:   250,
			IsActive:      true,
			TrackQuantity: true,
			Quantity:      80,
		},
	}

	for _, prod := range sampleProducts {
		if err := m.db.Create(&prod).Error; err != nil {
			logrus.WithError(err).WithField("sku", prod.SKU).Warn("Failed to create sample product")
		}
	}

	logrus.Info("Sample products seeded")
	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	logrus.Warn("Dropping all database tables")

	// Reverse dependency order
	tables := []string{
		"wishlist_items",
		"order_status_history",
		"order_items",
		"orders",
		"cart_items",
		"product_reviews",
		"products",
		"categories",
		"vendors",
		"balance_transactions",
		"addresses",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			logrus.WithError(err).WithField("table", table).Warn("Failed to drop table")
		}
	}

	return nil
}
