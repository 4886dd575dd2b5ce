// internal/domain/user/service.go
package user

import (
	"fmt"
	"time"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/pkg/auth"
	"github.com/your-org/coffee-marketplace/internal/pkg/events"
	"gorm.io/gorm"
)

// Service handles user business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	bus             events.Bus
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config, bus events.Bus) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
		bus:             bus,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Phone           string `json:"phone"`
	Role            Role   `json:"role" binding:"omitempty,oneof=customer seller"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TopUpRequest represents a wallet top-up
type TopUpRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

// Register creates a new user account. Admin accounts cannot be
// self-registered.
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	// Validate password confirmation
	if req.Password != req.ConfirmPassword {
		return nil, fmt.Errorf("passwords do not match")
	}

	role := req.Role
	if role == "" {
		role = RoleCustomer
	}
	if role == RoleAdmin {
		return nil, fmt.Errorf("cannot register an admin account")
	}

	// Check if user already exists
	var existingUser User
	result := s.db.Where("email = ?", req.Email).First(&existingUser)
	if result.Error == nil {
		return nil, fmt.Errorf("user with this email already exists")
	}

	// Hash password
	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Create new user
	user := User{
		Email:     req.Email,
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      role,
		IsActive:  true,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.bus.Publish(events.Event{Topic: events.TopicUserRegistered, UserID: user.ID, Payload: &user})

	return s.issueTokens(&user)
}

// Login authenticates a user
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	// Find user by email
	var user User
	result := s.db.Where("email = ? AND is_active = ?", req.Email, true).First(&user)
	if result.Error != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	// Verify password
	if err := s.passwordManager.VerifyPassword(req.Password, user.Password); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	// Update last login
	now := time.Now().UTC()
	user.LastLoginAt = &now
	s.db.Save(&user)

	return s.issueTokens(&user)
}

// RefreshToken generates new tokens using a refresh token. The role claim is
// re-read from the user record, so a role change takes effect here.
func (s *Service) RefreshToken(refreshToken string) (*AuthResponse, error) {
	// Validate refresh token
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	// Find user
	var user User
	result := s.db.Where("id = ? AND is_active = ?", claims.UserID, true).First(&user)
	if result.Error != nil {
		return nil, fmt.Errorf("user not found or inactive")
	}

	return s.issueTokens(&user)
}

// GetProfile gets user profile by ID
func (s *Service) GetProfile(userID uint) (*User, error) {
	var user User
	result := s.db.Where("id = ? AND is_active = ?", userID, true).First(&user)
	if result.Error != nil {
		return nil, fmt.Errorf("user not found")
	}

	// Clear password
	user.Password = ""

	return &user, nil
}

// GetRole returns the current role stored for the user. Route guards call
// this so a stale token cannot hold on to a revoked role.
func (s *Service) GetRole(userID uint) (Role, error) {
	var user User
	result := s.db.Select("role").Where("id = ? AND is_active = ?", userID, true).First(&user)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return "", fmt.Errorf("user not found")
		}
		return "", fmt.Errorf("failed to resolve role: %w", result.Error)
	}
	return user.Role, nil
}

// UpdateProfile updates user profile
func (s *Service) UpdateProfile(userID uint, updates map[string]interface{}) (*User, error) {
	var user User
	result := s.db.Where("id = ? AND is_active = ?", userID, true).First(&user)
	if result.Error != nil {
		return nil, fmt.Errorf("user not found")
	}

	// Remove sensitive fields from updates
	delete(updates, "password")
	delete(updates, "role")
	delete(updates, "balance")
	delete(updates, "is_active")
	delete(updates, "email_verified")

	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.bus.Publish(events.Event{Topic: events.TopicProfileChanged, UserID: userID})

	// Clear password
	user.Password = ""

	return &user, nil
}

// ChangePassword changes user password after verifying current password
func (s *Service) ChangePassword(userID uint, currentPassword, newPassword string) error {
	// Find user
	var user User
	result := s.db.Where("id = ? AND is_active = ?", userID, true).First(&user)
	if result.Error != nil {
		return fmt.Errorf("user not found")
	}

	// Verify current password
	if err := s.passwordManager.VerifyPassword(currentPassword, user.Password); err != nil {
		return fmt.Errorf("current password is incorrect")
	}

	// Hash new password
	hashedPassword, err := s.passwordManager.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	// Update password
	if err := s.db.Model(&user).Update("password", hashedPassword).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// GetBalance returns the user's wallet balance
func (s *Service) GetBalance(userID uint) (int64, error) {
	var user User
	result := s.db.Select("balance").Where("id = ? AND is_active = ?", userID, true).First(&user)
	if result.Error != nil {
		return 0, fmt.Errorf("user not found")
	}
	return user.Balance, nil
}

// TopUpBalance credits the user's wallet and records the transaction
func (s *Service) TopUpBalance(userID uint, req *TopUpRequest) (int64, error) {
	if req.Amount <= 0 {
		return 0, fmt.Errorf("top-up amount must be positive")
	}

	var balance int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user User
		if err := tx.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
			return fmt.Errorf("user not found")
		}

		user.Balance += req.Amount
		if err := tx.Model(&user).Update("balance", user.Balance).Error; err != nil {
			return fmt.Errorf("failed to credit balance: %w", err)
		}

		entry := BalanceTransaction{
			UserID: userID,
			Amount: req.Amount,
			Kind:   "topup",
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		balance = user.Balance
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.bus.Publish(events.Event{Topic: events.TopicBalanceChanged, UserID: userID, Payload: balance})

	return balance, nil
}

// DebitBalance withdraws from the user's wallet inside the caller's
// transaction. Insufficient balance is a validation error, not a system one.
func (s *Service) DebitBalance(tx *gorm.DB, userID uint, amount int64, reference string) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive")
	}

	var user User
	if err := tx.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		return fmt.Errorf("user not found")
	}

	if user.Balance < amount {
		return fmt.Errorf("insufficient balance")
	}

	if err := tx.Model(&user).Update("balance", user.Balance-amount).Error; err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}

	entry := BalanceTransaction{
		UserID:    userID,
		Amount:    -amount,
		Kind:      "order",
		Reference: reference,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	return nil
}

// CreditBalance adds funds inside the caller's transaction, recording the
// movement with the given kind and reference
func (s *Service) CreditBalance(tx *gorm.DB, userID uint, amount int64, kind, reference string) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive")
	}

	var user User
	if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
		return fmt.Errorf("user not found")
	}

	if err := tx.Model(&user).Update("balance", user.Balance+amount).Error; err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}

	entry := BalanceTransaction{
		UserID:    userID,
		Amount:    amount,
		Kind:      kind,
		Reference: reference,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

// NotifyBalanceChanged publishes a balance change after a committed debit
func (s *Service) NotifyBalanceChanged(userID uint) {
	balance, err := s.GetBalance(userID)
	if err != nil {
		return
	}
	s.bus.Publish(events.Event{Topic: events.TopicBalanceChanged, UserID: userID, Payload: balance})
}

// GetBalanceTransactions lists recent wallet movements, newest first
func (s *Service) GetBalanceTransactions(userID uint, limit int) ([]BalanceTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var transactions []BalanceTransaction
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
	}
	return transactions, nil
}

// GetUserByEmail retrieves user by email
func (s *Service) GetUserByEmail(email string) (*User, error) {
	var user User
	result := s.db.Where("email = ?", email).First(&user)
	if result.Error != nil {
		return nil, fmt.Errorf("user not found")
	}

	// Clear password
	user.Password = ""
	return &user, nil
}

func (s *Service) issueTokens(user *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Clear password from response
	user.Password = ""

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}
