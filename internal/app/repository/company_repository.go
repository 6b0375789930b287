package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/construtorcheck/construtorcheck-backend/internal/app/model"
	"github.com/construtorcheck/construtorcheck-backend/pkg/rating"
)

// CompanyFilters narrows the company listing.
type CompanyFilters struct {
	District  string
	Category  string
	Status    rating.Status
	MinRating float64
	SortBy    string // recent | rating-high | rating-low | reviews
}

type CompanyRepository interface {
	Create(company *model.Company) error
	FindByID(id uint) (*model.Company, error)
	FindBySlug(slug string) (*model.Company, error)
	List(filters CompanyFilters, offset, limit int) ([]model.Company, int64, error)
	SearchByName(term string, limit int) ([]model.Company, error)
	Count() (int64, error)
	CountReviews() (int64, error)
	AllIDs() ([]uint, error)
	RecalculateAggregate(companyID uint) error
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(company *model.Company) error {
	return r.db.Create(company).Error
}

func (r *companyRepository) FindByID(id uint) (*model.Company, error) {
	var company model.Company
	if err := r.db.First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) FindBySlug(slug string) (*model.Company, error) {
	var company model.Company
	if err := r.db.Where("slug = ?", slug).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) List(filters CompanyFilters, offset, limit int) ([]model.Company, int64, error) {
	var companies []model.Company
	var total int64

	query := r.db.Model(&model.Company{})

	if filters.District != "" {
		query = query.Where("district = ?", filters.District)
	}
	if filters.Category != "" {
		// Categories is a JSON array column; match the quoted element.
		query = query.Where("categories LIKE ?", `%"`+filters.Category+`"%`)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.MinRating > 0 {
		query = query.Where("avg_rating >= ?", filters.MinRating)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filters.SortBy {
	case "rating-high":
		query = query.Order("avg_rating DESC")
	case "rating-low":
		query = query.Order("avg_rating ASC")
	case "reviews":
		query = query.Order("reviews_count DESC")
	default:
		query = query.Order("updated_at DESC")
	}

	if err := query.Offset(offset).Limit(limit).Find(&companies).Error; err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}

func (r *companyRepository) SearchByName(term string, limit int) ([]model.Company, error) {
	var companies []model.Company
	// Match the raw name, and the slug as a diacritic-insensitive fallback
	// ("construcoes" finds "Construções").
	err := r.db.
		Where("LOWER(name) LIKE ? OR slug LIKE ?",
			"%"+strings.ToLower(term)+"%",
			"%"+model.Slugify(term)+"%").
		Order("reviews_count DESC").
		Limit(limit).
		Find(&companies).Error
	if err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *companyRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Company{}).Count(&count).Error
	return count, err
}

func (r *companyRepository) CountReviews() (int64, error) {
	var count int64
	err := r.db.Model(&model.Review{}).Count(&count).Error
	return count, err
}

func (r *companyRepository) AllIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.Company{}).Pluck("id", &ids).Error
	return ids, err
}

// aggregateRow receives the exact recomputation of a company's statistics.
type aggregateRow struct {
	ReviewsCount       int
	AvgRating          float64
	WorkQuality        float64
	DeadlineCompliance float64
	Communication      float64
	ProblemResolution  float64
	ValueForMoney      float64
	Professionalism    float64
}

// RecalculateAggregate recomputes a company's count, means and status from
// its surviving reviews. Retraction intentionally leaves the means stale
// (only the count moves); the nightly reconciler calls this to repair the
// drift exactly.
func (r *companyRepository) RecalculateAggregate(companyID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var company model.Company
		if err := tx.First(&company, companyID).Error; err != nil {
			return err
		}

		var agg aggregateRow
		err := tx.Model(&model.Review{}).
			Select(`COUNT(*) AS reviews_count,
				COALESCE(AVG(overall_rating), 0) AS avg_rating,
				COALESCE(AVG(rating_work_quality), 0) AS work_quality,
				COALESCE(AVG(rating_deadline_compliance), 0) AS deadline_compliance,
				COALESCE(AVG(rating_communication), 0) AS communication,
				COALESCE(AVG(rating_problem_resolution), 0) AS problem_resolution,
				COALESCE(AVG(rating_value_for_money), 0) AS value_for_money,
				COALESCE(AVG(rating_professionalism), 0) AS professionalism`).
			Where("company_id = ?", companyID).
			Scan(&agg).Error
		if err != nil {
			return err
		}

		company.ReviewsCount = agg.ReviewsCount
		company.AvgRating = rating.Round2(agg.AvgRating)
		company.Ratings = rating.Breakdown{
			WorkQuality:        rating.Round2(agg.WorkQuality),
			DeadlineCompliance: rating.Round2(agg.DeadlineCompliance),
			Communication:      rating.Round2(agg.Communication),
			ProblemResolution:  rating.Round2(agg.ProblemResolution),
			ValueForMoney:      rating.Round2(agg.ValueForMoney),
			Professionalism:    rating.Round2(agg.Professionalism),
		}
		if agg.ReviewsCount > 0 {
			company.Status = rating.Classify(company.AvgRating)
		} else {
			// Back to the pre-first-review state.
			company.Status = rating.StatusNeutral
		}

		return tx.Save(&company).Error
	})
}
