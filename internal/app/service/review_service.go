package service

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/construtorcheck/construtorcheck-backend/internal/app/model"
	"github.com/construtorcheck/construtorcheck-backend/internal/app/repository"
	"github.com/construtorcheck/construtorcheck-backend/pkg/logger"
	"github.com/construtorcheck/construtorcheck-backend/pkg/rating"
)

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrNotReviewOwner  = errors.New("review belongs to another user")
	ErrAlreadyAnswered = errors.New("review already has a company response")
)

// SubmitReviewInput carries a validated review submission.
type SubmitReviewInput struct {
	CompanyID   uint                 `json:"company_id" binding:"required"`
	Ratings     rating.Breakdown     `json:"ratings" binding:"required"`
	Title       string               `json:"title" binding:"required,min=5,max=120"`
	Content     string               `json:"content" binding:"required,min=30"`
	WorkTypes   []string             `json:"work_types"`
	ServiceDate time.Time            `json:"service_date"`
	Recommends  model.Recommendation `json:"would_recommend"`
	Photos      []string             `json:"photos"`
	IsAnonymous bool                 `json:"is_anonymous"`
}

// ReviewCreatedEvent is pushed to live feed subscribers after a submission
// commits, carrying the fresh company aggregate.
type ReviewCreatedEvent struct {
	Type          string        `json:"type"`
	ReviewID      uint          `json:"review_id"`
	CompanyID     uint          `json:"company_id"`
	OverallRating float64       `json:"overall_rating"`
	AvgRating     float64       `json:"avg_rating"`
	ReviewsCount  int           `json:"reviews_count"`
	Status        rating.Status `json:"status"`
}

// ReviewFeed receives review lifecycle events for live subscribers.
type ReviewFeed interface {
	PublishReviewCreated(event ReviewCreatedEvent)
}

type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	companyRepo repository.CompanyRepository
	db          *gorm.DB
	feed        ReviewFeed // optional
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	companyRepo repository.CompanyRepository,
	db *gorm.DB,
	feed ReviewFeed,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		companyRepo: companyRepo,
		db:          db,
		feed:        feed,
	}
}

// Submit creates a review and folds it into the company aggregate in one
// transaction. The company row is locked for the duration: the incremental
// mean needs the pre-update count and means read in the same transaction as
// the write, so concurrent submissions for one company serialize here.
func (s *ReviewService) Submit(userID uint, input SubmitReviewInput) (*model.Review, error) {
	// Controllers validate at the boundary; re-validate before touching the
	// aggregate rather than risk corrupting it.
	overall, err := rating.Overall(input.Ratings)
	if err != nil {
		return nil, err
	}

	review := &model.Review{
		CompanyID:     input.CompanyID,
		UserID:        userID,
		IsAnonymous:   input.IsAnonymous,
		Ratings:       input.Ratings,
		OverallRating: overall,
		Title:         input.Title,
		Content:       input.Content,
		WorkTypes:     model.StringArray(input.WorkTypes),
		ServiceDate:   input.ServiceDate,
		Recommends:    input.Recommends,
		Photos:        model.StringArray(input.Photos),
	}

	var event ReviewCreatedEvent

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var company model.Company
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&company, input.CompanyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCompanyNotFound
			}
			return err
		}

		if err := tx.Create(review).Error; err != nil {
			return err
		}

		company.Ratings = rating.UpdateBreakdown(company.Ratings, company.ReviewsCount, input.Ratings)
		company.AvgRating = rating.IncrementalMean(company.AvgRating, company.ReviewsCount, overall)
		company.ReviewsCount++
		company.Status = rating.Classify(company.AvgRating)

		if err := tx.Save(&company).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.User{}).
			Where("id = ?", userID).
			UpdateColumn("reviews_count", gorm.Expr("reviews_count + ?", 1)).Error; err != nil {
			return err
		}

		event = ReviewCreatedEvent{
			Type:          "review_created",
			ReviewID:      review.ID,
			CompanyID:     company.ID,
			OverallRating: overall,
			AvgRating:     company.AvgRating,
			ReviewsCount:  company.ReviewsCount,
			Status:        company.Status,
		}
		return nil
	})
	if err != nil {
		logger.Error("Review submission failed", err, map[string]interface{}{
			"user_id":    userID,
			"company_id": input.CompanyID,
		})
		return nil, err
	}

	logger.Info("Review submitted", map[string]interface{}{
		"review_id":      review.ID,
		"company_id":     input.CompanyID,
		"overall_rating": overall,
		"new_avg":        event.AvgRating,
		"new_status":     event.Status,
	})

	if s.feed != nil {
		s.feed.PublishReviewCreated(event)
	}

	return s.reviewRepo.FindByID(review.ID)
}

// Retract removes a review and decrements the company's review count,
// floored at zero. The per-category and overall means are left as they are:
// exact incremental removal would need the full history, so the count moves
// now and the nightly reconciliation recomputes the means from the surviving
// reviews.
func (s *ReviewService) Retract(reviewID, userID uint, isAdmin bool) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var review model.Review
		if err := tx.First(&review, reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		if review.UserID != userID && !isAdmin {
			return ErrNotReviewOwner
		}

		var company model.Company
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&company, review.CompanyID).Error
		if err == nil {
			if company.ReviewsCount > 0 {
				company.ReviewsCount--
			}
			if err := tx.Save(&company).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Delete(&review).Error; err != nil {
			return err
		}

		return tx.Model(&model.User{}).
			Where("id = ? AND reviews_count > 0", review.UserID).
			UpdateColumn("reviews_count", gorm.Expr("reviews_count - ?", 1)).Error
	})
	if err != nil {
		return err
	}

	logger.Info("Review retracted", map[string]interface{}{
		"review_id": reviewID,
		"user_id":   userID,
	})
	return nil
}

// Vote applies one helpfulness vote with toggle/change semantics. Per
// (user, review) pair: a repeated vote of the same polarity retracts it, an
// opposite vote flips it. The helpful counter only tracks "helpful" votes,
// so entering HELPFUL costs +1, leaving it costs -1, and every transition
// between NONE and UNHELPFUL is free. Returns the resulting vote state.
func (s *ReviewService) Vote(reviewID, userID uint, helpful bool) (model.VoteState, error) {
	var state model.VoteState

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var review model.Review
		if err := tx.First(&review, reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		delta := 0

		var vote model.ReviewVote
		err := tx.Where("review_id = ? AND user_id = ?", reviewID, userID).First(&vote).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote = model.ReviewVote{ReviewID: reviewID, UserID: userID, Helpful: helpful}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			if helpful {
				delta = 1
			}
			state = vote.State()

		case err != nil:
			return err

		case vote.Helpful == helpful:
			// Same polarity again: retract the vote.
			if err := tx.Delete(&vote).Error; err != nil {
				return err
			}
			if helpful {
				delta = -1
			}
			state = model.VoteNone

		default:
			vote.Helpful = helpful
			if err := tx.Save(&vote).Error; err != nil {
				return err
			}
			if helpful {
				delta = 1
			} else {
				delta = -1
			}
			state = vote.State()
		}

		if delta == 0 {
			return nil
		}

		// Commutative counter, safe as an atomic column update.
		return tx.Model(&model.Review{}).
			Where("id = ?", reviewID).
			UpdateColumn("helpful_votes", gorm.Expr("helpful_votes + ?", delta)).Error
	})
	if err != nil {
		return "", err
	}

	return state, nil
}

// GetVote reports the caller's current vote on a review. Pure read.
func (s *ReviewService) GetVote(reviewID, userID uint) (model.VoteState, error) {
	vote, err := s.reviewRepo.FindVote(reviewID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.VoteNone, nil
		}
		return "", err
	}
	return vote.State(), nil
}

func (s *ReviewService) GetReview(id uint) (*model.Review, error) {
	review, err := s.reviewRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) GetCompanyReviews(companyID uint, page, pageSize int) ([]model.Review, int64, error) {
	if _, err := s.companyRepo.FindByID(companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrCompanyNotFound
		}
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	return s.reviewRepo.ListByCompany(companyID, offset, pageSize)
}

func (s *ReviewService) GetUserReviews(userID uint, page, pageSize int) ([]model.Review, int64, error) {
	offset := (page - 1) * pageSize
	return s.reviewRepo.ListByUser(userID, offset, pageSize)
}

// Report bumps a review's abuse-report counter.
func (s *ReviewService) Report(reviewID uint) error {
	if err := s.reviewRepo.IncrementReportCount(reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	return nil
}

// Respond attaches the reviewed company's reply. Opaque to the rating
// logic; a review carries at most one response.
func (s *ReviewService) Respond(reviewID uint, content string) (*model.Review, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var review model.Review
		if err := tx.First(&review, reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		if review.ResponseContent != nil {
			return ErrAlreadyAnswered
		}

		now := time.Now()
		review.ResponseContent = &content
		review.RespondedAt = &now
		return tx.Save(&review).Error
	})
	if err != nil {
		return nil, err
	}

	return s.reviewRepo.FindByID(reviewID)
}
