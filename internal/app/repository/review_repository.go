package repository

import (
	"gorm.io/gorm"

	"github.com/construtorcheck/construtorcheck-backend/internal/app/model"
)

type ReviewRepository interface {
	FindByID(id uint) (*model.Review, error)
	ListByCompany(companyID uint, offset, limit int) ([]model.Review, int64, error)
	ListByUser(userID uint, offset, limit int) ([]model.Review, int64, error)
	IncrementReportCount(id uint) error
	FindVote(reviewID, userID uint) (*model.ReviewVote, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) FindByID(id uint) (*model.Review, error) {
	var review model.Review
	err := r.db.Preload("User").Preload("Company").First(&review, id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ListByCompany(companyID uint, offset, limit int) ([]model.Review, int64, error) {
	var reviews []model.Review
	var total int64

	query := r.db.Model(&model.Review{}).Where("company_id = ?", companyID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *reviewRepository) ListByUser(userID uint, offset, limit int) ([]model.Review, int64, error) {
	var reviews []model.Review
	var total int64

	query := r.db.Model(&model.Review{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Company").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// IncrementReportCount bumps the abuse-report counter. A commutative
// column increment is enough here, no aggregate arithmetic depends on it.
func (r *reviewRepository) IncrementReportCount(id uint) error {
	result := r.db.Model(&model.Review{}).
		Where("id = ?", id).
		UpdateColumn("report_count", gorm.Expr("report_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reviewRepository) FindVote(reviewID, userID uint) (*model.ReviewVote, error) {
	var vote model.ReviewVote
	err := r.db.Where("review_id = ? AND user_id = ?", reviewID, userID).First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}
