// internal/domain/user/admin_service.go
package user

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/your-org/coffee-marketplace/internal/config"
	"gorm.io/gorm"
)

// AdminService handles admin user management operations
type AdminService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAdminService creates a new admin user service
func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{
		db:     db,
		config: cfg,
	}
}

// UserListRequest represents user list query parameters
type UserListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Search    string `form:"search"`
	Status    string `form:"status"` // active, inactive, all
	Role      string `form:"role"`   // customer, seller, admin, all
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
}

// UserListResponse represents user list with pagination
type UserListResponse struct {
	Users      []UserWithStats `json:"users"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// UserWithStats represents user with additional statistics
type UserWithStats struct {
	User
	OrderCount  int64      `json:"order_count"`
	TotalSpent  int64      `json:"total_spent"`
	LastOrderAt *time.Time `json:"last_order_at"`
}

// UserStatusUpdateRequest represents user status update data
type UserStatusUpdateRequest struct {
	IsActive *bool  `json:"is_active" binding:"required"`
	Reason   string `json:"reason,omitempty"`
}

// UserRoleUpdateRequest represents a role change
type UserRoleUpdateRequest struct {
	Role   Role   `json:"role" binding:"required,oneof=customer seller admin"`
	Reason string `json:"reason,omitempty"`
}

// GetUsers retrieves users with filtering and pagination
func (s *AdminService) GetUsers(req *UserListRequest) (*UserListResponse, error) {
	var users []User
	var total int64

	query := s.db.Model(&User{})

	if req.Search != "" {
		searchTerm := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR phone LIKE ?",
			searchTerm, searchTerm, searchTerm, "%"+req.Search+"%",
		)
	}

	if req.Status != "" && req.Status != "all" {
		query = query.Where("is_active = ?", req.Status == "active")
	}

	if req.Role != "" && req.Role != "all" {
		query = query.Where("role = ?", req.Role)
	}

	// Date range filter
	if req.DateFrom != "" {
		if dateFrom, err := time.Parse("2006-01-02", req.DateFrom); err == nil {
			query = query.Where("created_at >= ?", dateFrom)
		}
	}

	if req.DateTo != "" {
		if dateTo, err := time.Parse("2006-01-02", req.DateTo); err == nil {
			query = query.Where("created_at <= ?", dateTo.Add(24*time.Hour-time.Second))
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	orderClause := req.SortBy
	if req.SortOrder == "desc" {
		orderClause += " DESC"
	} else {
		orderClause += " ASC"
	}
	query = query.Order(orderClause)

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}

	var usersWithStats []UserWithStats
	for _, user := range users {
		userStats, err := s.getUserStats(user.ID)
		if err != nil {
			userStats = &UserWithStats{}
		}
		userStats.User = user
		userStats.User.Password = ""
		usersWithStats = append(usersWithStats, *userStats)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &UserListResponse{
		Users:      usersWithStats,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetUser retrieves a single user by ID with stats
func (s *AdminService) GetUser(userID uint) (*UserWithStats, error) {
	var user User
	if err := s.db.Preload("Addresses").First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found")
	}

	userStats, err := s.getUserStats(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	userStats.User = user
	userStats.User.Password = ""

	return userStats, nil
}

// UpdateUserStatus updates user active status
func (s *AdminService) UpdateUserStatus(userID uint, req *UserStatusUpdateRequest, adminID uint) error {
	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		return fmt.Errorf("user not found")
	}

	// Prevent admin from deactivating themselves
	if userID == adminID && req.IsActive != nil && !*req.IsActive {
		return fmt.Errorf("cannot deactivate your own account")
	}

	updates := map[string]interface{}{
		"is_active":  *req.IsActive,
		"updated_at": time.Now(),
	}

	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	return nil
}

// UpdateUserRole changes a user's role. Takes effect on the next token
// refresh and on every guarded request that re-reads the role.
func (s *AdminService) UpdateUserRole(userID uint, req *UserRoleUpdateRequest, adminID uint) error {
	if !req.Role.IsValid() {
		return fmt.Errorf("invalid role: %s", req.Role)
	}

	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		return fmt.Errorf("user not found")
	}

	// Prevent admin from demoting themselves
	if userID == adminID && req.Role != RoleAdmin {
		return fmt.Errorf("cannot change your own admin role")
	}

	// Keep at least one admin
	if user.Role == RoleAdmin && req.Role != RoleAdmin {
		var adminCount int64
		s.db.Model(&User{}).Where("role = ? AND id != ?", RoleAdmin, userID).Count(&adminCount)
		if adminCount == 0 {
			return fmt.Errorf("cannot change role: at least one admin must remain")
		}
	}

	updates := map[string]interface{}{
		"role":       req.Role,
		"updated_at": time.Now(),
	}

	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}

	return nil
}

// ExportUsers exports users as CSV
func (s *AdminService) ExportUsers(status, role string) ([]byte, string, error) {
	query := s.db.Model(&User{})

	if status != "" && status != "all" {
		query = query.Where("is_active = ?", status == "active")
	}
	if role != "" && role != "all" {
		query = query.Where("role = ?", role)
	}

	var users []User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, "", fmt.Errorf("failed to retrieve users for export: %w", err)
	}

	records := [][]string{{
		"ID", "Email", "First Name", "Last Name", "Phone",
		"Role", "Is Active", "Balance", "Created At", "Last Login",
	}}

	for _, user := range users {
		record := []string{
			strconv.Itoa(int(user.ID)),
			user.Email,
			user.FirstName,
			user.LastName,
			user.Phone,
			string(user.Role),
			strconv.FormatBool(user.IsActive),
			strconv.FormatInt(user.Balance, 10),
			user.CreatedAt.Format("2006-01-02 15:04:05"),
		}

		if user.LastLoginAt != nil {
			record = append(record, user.LastLoginAt.Format("2006-01-02 15:04:05"))
		} else {
			record = append(record, "Never")
		}

		records = append(records, record)
	}

	var csvData strings.Builder
	writer := csv.NewWriter(&csvData)

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, "", fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to write CSV: %w", err)
	}

	filename := fmt.Sprintf("users_export_%s.csv", time.Now().Format("2006-01-02_15-04-05"))
	return []byte(csvData.String()), filename, nil
}

// getUserStats gets additional statistics for a user
func (s *AdminService) getUserStats(userID uint) (*UserWithStats, error) {
	stats := &UserWithStats{}

	type orderStats struct {
		OrderCount  int64
		TotalSpent  int64
		LastOrderAt *time.Time
	}

	var os orderStats
	err := s.db.Raw(`
		SELECT
			COUNT(*) as order_count,
			COALESCE(SUM(total_amount), 0) as total_spent,
			MAX(created_at) as last_order_at
		FROM orders
		WHERE user_id = ? AND status != 'cancelled'
	`, userID).Scan(&os).Error
	if err != nil {
		os = orderStats{}
	}

	stats.OrderCount = os.OrderCount
	stats.TotalSpent = os.TotalSpent
	stats.LastOrderAt = os.LastOrderAt

	return stats, nil
}
