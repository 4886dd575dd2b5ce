// internal/domain/product/review_service.go
package product

import (
	"fmt"

	"github.com/your-org/coffee-marketplace/internal/config"
	"gorm.io/gorm"
)

// ReviewService handles product feedback
type ReviewService struct {
	db     *gorm.DB
	config *config.Config
}

// NewReviewService creates a new review service
func NewReviewService(db *gorm.DB, cfg *config.Config) *ReviewService {
	return &ReviewService{
		db:     db,
		config: cfg,
	}
}

// CreateReviewRequest represents review submission data
type CreateReviewRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	OrderID   *uint  `json:"order_id"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Title     string `json:"title"`
	Comment   string `json:"comment"`
}

// ReviewListResponse represents reviews with an aggregate rating
type ReviewListResponse struct {
	Reviews       []ProductReview `json:"reviews"`
	AverageRating float64         `json:"average_rating"`
	Total         int64           `json:"total"`
}

// CreateReview records a customer's feedback on a product. One review per
// user per product; resubmission updates the existing record.
func (s *ReviewService) CreateReview(userID uint, req *CreateReviewRequest) (*ProductReview, error) {
	// Product must exist and be active
	var prod Product
	if result := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&prod); result.Error != nil {
		return nil, fmt.Errorf("product not found or inactive")
	}

	var review ProductReview
	result := s.db.Where("product_id = ? AND user_id = ?", req.ProductID, userID).First(&review)
	if result.Error == gorm.ErrRecordNotFound {
		review = ProductReview{
			ProductID: req.ProductID,
			UserID:    userID,
			OrderID:   req.OrderID,
			Rating:    req.Rating,
			Title:     req.Title,
			Comment:   req.Comment,
		}
		if err := s.db.Create(&review).Error; err != nil {
			return nil, fmt.Errorf("failed to create review: %w", err)
		}
		return &review, nil
	}

	review.Rating = req.Rating
	review.Title = req.Title
	review.Comment = req.Comment
	if req.OrderID != nil {
		review.OrderID = req.OrderID
	}
	if err := s.db.Save(&review).Error; err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return &review, nil
}

// GetProductReviews lists reviews for a product with the aggregate rating
func (s *ReviewService) GetProductReviews(productID uint) (*ReviewListResponse, error) {
	var reviews []ProductReview
	err := s.db.Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}

	response := &ReviewListResponse{
		Reviews: reviews,
		Total:   int64(len(reviews)),
	}

	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		response.AverageRating = float64(sum) / float64(len(reviews))
	}

	return response, nil
}

// DeleteReview removes a user's own review
func (s *ReviewService) DeleteReview(userID, reviewID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", reviewID, userID).Delete(&ProductReview{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("review not found")
	}
	return nil
}
