package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/construtorcheck/construtorcheck-backend/internal/app/model"
	"github.com/construtorcheck/construtorcheck-backend/internal/app/repository"
	"github.com/construtorcheck/construtorcheck-backend/pkg/logger"
	"github.com/construtorcheck/construtorcheck-backend/pkg/rating"
	"github.com/construtorcheck/construtorcheck-backend/pkg/redis"
)

var ErrInvalidCompanyName = errors.New("company name normalizes to an empty slug")

const (
	statsCacheKey = "stats:platform"
	statsCacheTTL = 5 * time.Minute

	searchResultLimit = 10
)

// PlatformStats are the homepage totals.
type PlatformStats struct {
	CompaniesCount int64 `json:"companies_count"`
	ReviewsCount   int64 `json:"reviews_count"`
}

type CompanyService struct {
	companyRepo repository.CompanyRepository
}

func NewCompanyService(companyRepo repository.CompanyRepository) *CompanyService {
	return &CompanyService{companyRepo: companyRepo}
}

// Resolve returns the company identified by the normalized name key,
// creating it zeroed when unknown. Metadata is first-write-wins: when the
// slug already exists the input location/categories are discarded. The
// unique index on slug keeps concurrent resolves of the same new name from
// creating duplicates; the loser of that race falls back to the winner's row.
func (s *CompanyService) Resolve(name, district, city string, categories []string) (*model.Company, error) {
	slug := model.Slugify(name)
	if slug == "" {
		return nil, ErrInvalidCompanyName
	}

	existing, err := s.companyRepo.FindBySlug(slug)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	company := &model.Company{
		Name:       strings.TrimSpace(name),
		Slug:       slug,
		District:   district,
		City:       city,
		Categories: model.StringArray(categories),
		// All aggregate fields start at zero; the status is a placeholder
		// until the first review lands.
		Status: rating.StatusNeutral,
	}

	if err := s.companyRepo.Create(company); err != nil {
		if isDuplicateKeyError(err) {
			logger.Debug("Lost company creation race, reusing winner", map[string]interface{}{
				"slug": slug,
			})
			return s.companyRepo.FindBySlug(slug)
		}
		return nil, err
	}

	logger.Info("Company created", map[string]interface{}{
		"company_id": company.ID,
		"slug":       slug,
		"district":   district,
	})
	return company, nil
}

func (s *CompanyService) GetByID(id uint) (*model.Company, error) {
	company, err := s.companyRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) GetBySlug(slug string) (*model.Company, error) {
	company, err := s.companyRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) List(filters repository.CompanyFilters, page, pageSize int) ([]model.Company, int64, error) {
	offset := (page - 1) * pageSize
	return s.companyRepo.List(filters, offset, pageSize)
}

func (s *CompanyService) Search(term string) ([]model.Company, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []model.Company{}, nil
	}
	return s.companyRepo.SearchByName(term, searchResultLimit)
}

// GetPlatformStats returns the platform totals, cached briefly in Redis.
func (s *CompanyService) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	var stats PlatformStats
	if ok := redis.GetJSON(ctx, statsCacheKey, &stats); ok {
		return &stats, nil
	}

	companies, err := s.companyRepo.Count()
	if err != nil {
		return nil, err
	}
	reviews, err := s.companyRepo.CountReviews()
	if err != nil {
		return nil, err
	}

	stats = PlatformStats{CompaniesCount: companies, ReviewsCount: reviews}
	redis.SetJSON(ctx, statsCacheKey, stats, statsCacheTTL)
	return &stats, nil
}

// ReconcileAggregates recomputes every company's aggregate from its
// surviving reviews. Run nightly to repair the drift review retraction
// leaves behind.
func (s *CompanyService) ReconcileAggregates() error {
	ids, err := s.companyRepo.AllIDs()
	if err != nil {
		return err
	}

	failed := 0
	for _, id := range ids {
		if err := s.companyRepo.RecalculateAggregate(id); err != nil {
			failed++
			logger.Error("Failed to reconcile company aggregate", err, map[string]interface{}{
				"company_id": id,
			})
		}
	}

	logger.Info("Aggregate reconciliation finished", map[string]interface{}{
		"companies": len(ids),
		"failed":    failed,
	})
	if failed > 0 {
		return errors.New("some company aggregates failed to reconcile")
	}
	return nil
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
