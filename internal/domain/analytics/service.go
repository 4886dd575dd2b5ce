// internal/domain/analytics/service.go
package analytics

import (
	"fmt"
	"time"

	"github.com/your-org/coffee-marketplace/internal/config"
	"gorm.io/gorm"
)

// Service handles dashboard analytics for admins and sellers
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// DashboardStats represents marketplace-wide statistics for the admin
// dashboard
type DashboardStats struct {
	TotalRevenue     int64 `json:"total_revenue"`
	RevenueToday     int64 `json:"revenue_today"`
	RevenueThisMonth int64 `json:"revenue_this_month"`

	TotalOrders     int64 `json:"total_orders"`
	OrdersToday     int64 `json:"orders_today"`
	OrdersThisMonth int64 `json:"orders_this_month"`

	TotalUsers    int64 `json:"total_users"`
	TotalSellers  int64 `json:"total_sellers"`
	NewUsersToday int64 `json:"new_users_today"`

	TotalProducts      int64 `json:"total_products"`
	ActiveProducts     int64 `json:"active_products"`
	OutOfStockProducts int64 `json:"out_of_stock_products"`

	AvgOrderValue int64 `json:"avg_order_value"`
}

// SellerStats represents a single vendor's dashboard statistics
type SellerStats struct {
	TotalRevenue     int64              `json:"total_revenue"`
	RevenueThisMonth int64              `json:"revenue_this_month"`
	TotalOrders      int64              `json:"total_orders"`
	TotalProducts    int64              `json:"total_products"`
	ActiveProducts   int64              `json:"active_products"`
	TopProducts      []ProductSalesData `json:"top_products"`
	DailyRevenue     []TimeSeriesData   `json:"daily_revenue"`
}

// TimeSeriesData is a dated value for charts
type TimeSeriesData struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
	Count int64  `json:"count,omitempty"`
}

// ProductSalesData summarizes sales of one product
type ProductSalesData struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	TotalSold   int64  `json:"total_sold"`
	Revenue     int64  `json:"revenue"`
}

// GetDashboardStats builds the admin dashboard
func (s *Service) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	type revenueRow struct {
		Revenue int64
		Count   int64
	}

	var all revenueRow
	err := s.db.Raw(`
		SELECT COALESCE(SUM(total_amount), 0) as revenue, COUNT(*) as count
		FROM orders
		WHERE status != 'cancelled' AND deleted_at IS NULL
	`).Scan(&all).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute revenue totals: %w", err)
	}
	stats.TotalRevenue = all.Revenue
	stats.TotalOrders = all.Count
	if all.Count > 0 {
		stats.AvgOrderValue = all.Revenue / all.Count
	}

	var todayRow revenueRow
	s.db.Raw(`
		SELECT COALESCE(SUM(total_amount), 0) as revenue, COUNT(*) as count
		FROM orders
		WHERE status != 'cancelled' AND deleted_at IS NULL AND created_at >= ?
	`, today).Scan(&todayRow)
	stats.RevenueToday = todayRow.Revenue
	stats.OrdersToday = todayRow.Count

	var monthRow revenueRow
	s.db.Raw(`
		SELECT COALESCE(SUM(total_amount), 0) as revenue, COUNT(*) as count
		FROM orders
		WHERE status != 'cancelled' AND deleted_at IS NULL AND created_at >= ?
	`, monthStart).Scan(&monthRow)
	stats.RevenueThisMonth = monthRow.Revenue
	stats.OrdersThisMonth = monthRow.Count

	s.db.Raw(`SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`).Scan(&stats.TotalUsers)
	s.db.Raw(`SELECT COUNT(*) FROM users WHERE role = 'seller' AND deleted_at IS NULL`).Scan(&stats.TotalSellers)
	s.db.Raw(`SELECT COUNT(*) FROM users WHERE created_at >= ? AND deleted_at IS NULL`, today).Scan(&stats.NewUsersToday)

	s.db.Raw(`SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`).Scan(&stats.TotalProducts)
	s.db.Raw(`SELECT COUNT(*) FROM products WHERE is_active = true AND deleted_at IS NULL`).Scan(&stats.ActiveProducts)
	s.db.Raw(`
		SELECT COUNT(*) FROM products
		WHERE track_quantity = true AND quantity <= 0 AND deleted_at IS NULL
	`).Scan(&stats.OutOfStockProducts)

	return stats, nil
}

// GetSellerStats builds a vendor's dashboard
func (s *Service) GetSellerStats(vendorID uint) (*SellerStats, error) {
	stats := &SellerStats{}
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	err := s.db.Raw(`
		SELECT COALESCE(SUM(oi.total_price), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.vendor_id = ? AND o.status != 'cancelled' AND o.deleted_at IS NULL
	`, vendorID).Scan(&stats.TotalRevenue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute seller revenue: %w", err)
	}

	s.db.Raw(`
		SELECT COALESCE(SUM(oi.total_price), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.vendor_id = ? AND o.status != 'cancelled' AND o.deleted_at IS NULL
			AND o.created_at >= ?
	`, vendorID, monthStart).Scan(&stats.RevenueThisMonth)

	s.db.Raw(`
		SELECT COUNT(DISTINCT oi.order_id)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.vendor_id = ? AND o.status != 'cancelled' AND o.deleted_at IS NULL
	`, vendorID).Scan(&stats.TotalOrders)

	s.db.Raw(`SELECT COUNT(*) FROM products WHERE vendor_id = ? AND deleted_at IS NULL`, vendorID).Scan(&stats.TotalProducts)
	s.db.Raw(`SELECT COUNT(*) FROM products WHERE vendor_id = ? AND is_active = true AND deleted_at IS NULL`, vendorID).Scan(&stats.ActiveProducts)

	s.db.Raw(`
		SELECT oi.product_id, oi.name as product_name,
			SUM(oi.quantity) as total_sold, SUM(oi.total_price) as revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.vendor_id = ? AND o.status != 'cancelled' AND o.deleted_at IS NULL
		GROUP BY oi.product_id, oi.name
		ORDER BY revenue DESC
		LIMIT 5
	`, vendorID).Scan(&stats.TopProducts)

	s.db.Raw(`
		SELECT DATE(o.created_at) as date,
			SUM(oi.total_price) as value, COUNT(DISTINCT o.id) as count
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.vendor_id = ? AND o.status != 'cancelled' AND o.deleted_at IS NULL
			AND o.created_at >= ?
		GROUP BY DATE(o.created_at)
		ORDER BY date
	`, vendorID, now.AddDate(0, 0, -30)).Scan(&stats.DailyRevenue)

	return stats, nil
}
