package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/construtorcheck/construtorcheck-backend/internal/app/model"
	"github.com/construtorcheck/construtorcheck-backend/internal/app/repository"
	"github.com/construtorcheck/construtorcheck-backend/internal/db"
	"github.com/construtorcheck/construtorcheck-backend/pkg/rating"
)

func setupCompanyServiceTest(t *testing.T) (*CompanyService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	companyRepo := repository.NewCompanyRepository(testDB)
	return NewCompanyService(companyRepo), testDB
}

func TestCompanyService_Resolve_CreatesZeroed(t *testing.T) {
	companyService, _ := setupCompanyServiceTest(t)

	company, err := companyService.Resolve(
		"Construções João & Filhos, Lda.", "Porto", "Matosinhos", []string{"moradias"})
	require.NoError(t, err)

	assert.Equal(t, "construcoes-joao-filhos-lda", company.Slug)
	assert.Equal(t, "Construções João & Filhos, Lda.", company.Name)
	assert.Equal(t, "Porto", company.District)
	assert.Equal(t, 0, company.ReviewsCount)
	assert.InDelta(t, 0.0, company.AvgRating, 0.001)
	assert.Equal(t, rating.StatusNeutral, company.Status)
}

func TestCompanyService_Resolve_IsIdempotent(t *testing.T) {
	companyService, _ := setupCompanyServiceTest(t)

	first, err := companyService.Resolve("Obras do Norte", "Braga", "Braga", []string{"remodelacao"})
	require.NoError(t, err)

	// Same name with different casing, punctuation and metadata maps to the
	// same row; the later metadata is discarded.
	second, err := companyService.Resolve("OBRAS DO NORTE!", "Lisboa", "Lisboa", []string{"pinturas"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Braga", second.District)
	assert.Equal(t, model.StringArray{"remodelacao"}, second.Categories)
}

func TestCompanyService_Resolve_EmptySlug(t *testing.T) {
	companyService, _ := setupCompanyServiceTest(t)

	_, err := companyService.Resolve("!!! ???", "Faro", "Faro", nil)
	assert.ErrorIs(t, err, ErrInvalidCompanyName)
}

func TestCompanyService_Resolve_LostRaceFallsBack(t *testing.T) {
	companyService, testDB := setupCompanyServiceTest(t)

	// Simulate the losing side of a creation race: the slug row appears
	// between the lookup and the insert.
	winner := &model.Company{
		Name:   "Telhados Rápidos",
		Slug:   model.Slugify("Telhados Rápidos"),
		Status: rating.StatusNeutral,
	}
	require.NoError(t, testDB.Create(winner).Error)

	resolved, err := companyService.Resolve("Telhados Rápidos", "Aveiro", "Aveiro", nil)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, resolved.ID)
}

func TestCompanyService_GetBySlug(t *testing.T) {
	companyService, _ := setupCompanyServiceTest(t)

	created, err := companyService.Resolve("Canalizações Silva", "Lisboa", "Sintra", nil)
	require.NoError(t, err)

	found, err := companyService.GetBySlug("canalizacoes-silva")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = companyService.GetBySlug("nao-existe")
	assert.ErrorIs(t, err, ErrCompanyNotFound)

	_, err = companyService.GetByID(9999)
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCompanyService_ListAndSearch(t *testing.T) {
	companyService, _ := setupCompanyServiceTest(t)

	names := map[string]string{
		"Construções Atlântico": "Lisboa",
		"Remodelações Douro":    "Porto",
		"Construções Mondego":   "Coimbra",
	}
	for name, district := range names {
		_, err := companyService.Resolve(name, district, district, []string{"remodelacao"})
		require.NoError(t, err)
	}

	all, total, err := companyService.List(repository.CompanyFilters{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	porto, total, err := companyService.List(repository.CompanyFilters{District: "Porto"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, porto, 1)
	assert.Equal(t, "Remodelações Douro", porto[0].Name)

	// Search matches by name and by normalized slug.
	results, err := companyService.Search("construções")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	none, err := companyService.Search("   ")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCompanyService_ReconcileAggregates(t *testing.T) {
	companyService, testDB := setupCompanyServiceTest(t)

	company, err := companyService.Resolve("Pinturas Tejo", "Lisboa", "Lisboa", nil)
	require.NoError(t, err)

	user := &model.User{Email: "autor@example.com", PasswordHash: "hash", DisplayName: "Autor", Role: model.RoleUser}
	require.NoError(t, testDB.Create(user).Error)

	// A stale aggregate: the stored means no longer match the one
	// surviving review.
	review := &model.Review{
		CompanyID:     company.ID,
		UserID:        user.ID,
		Ratings:       uniformBreakdown(5),
		OverallRating: 5.00,
		Title:         "Excelente trabalho",
		Content:       "Pintura impecável, prazos cumpridos e equipa profissional.",
		Recommends:    model.RecommendYes,
	}
	require.NoError(t, testDB.Create(review).Error)
	require.NoError(t, testDB.Model(&model.Company{}).Where("id = ?", company.ID).
		Updates(map[string]interface{}{"avg_rating": 3.20, "reviews_count": 2}).Error)

	require.NoError(t, companyService.ReconcileAggregates())

	var repaired model.Company
	require.NoError(t, testDB.First(&repaired, company.ID).Error)
	assert.Equal(t, 1, repaired.ReviewsCount)
	assert.InDelta(t, 5.00, repaired.AvgRating, 0.001)
	assert.Equal(t, rating.StatusRecommended, repaired.Status)

	// A company with no surviving reviews resets to the placeholder.
	empty, err := companyService.Resolve("Jardins do Sul", "Faro", "Loulé", nil)
	require.NoError(t, err)
	require.NoError(t, testDB.Model(&model.Company{}).Where("id = ?", empty.ID).
		Updates(map[string]interface{}{"avg_rating": 4.80, "reviews_count": 3, "status": rating.StatusRecommended}).Error)

	require.NoError(t, companyService.ReconcileAggregates())

	var reset model.Company
	require.NoError(t, testDB.First(&reset, empty.ID).Error)
	assert.Equal(t, 0, reset.ReviewsCount)
	assert.InDelta(t, 0.0, reset.AvgRating, 0.001)
	assert.Equal(t, rating.StatusNeutral, reset.Status)
}
