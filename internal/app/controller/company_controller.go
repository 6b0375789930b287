package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/construtorcheck/construtorcheck-backend/internal/app/repository"
	"github.com/construtorcheck/construtorcheck-backend/internal/app/service"
	apperrors "github.com/construtorcheck/construtorcheck-backend/internal/errors"
	"github.com/construtorcheck/construtorcheck-backend/pkg/rating"
)

type CompanyController struct {
	companyService *service.CompanyService
}

func NewCompanyController(companyService *service.CompanyService) *CompanyController {
	return &CompanyController{
		companyService: companyService,
	}
}

// ListCompanies returns companies filtered and sorted for the directory.
// @Summary List companies
// @Tags Companies
// @Produce json
// @Param district query string false "District filter"
// @Param category query string false "Category filter"
// @Param status query string false "Status filter"
// @Param min_rating query number false "Minimum average rating"
// @Param sort_by query string false "rating-high|rating-low|reviews|recent"
// @Success 200 {object} object
// @Router /companies [get]
func (ctrl *CompanyController) ListCompanies(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	minRating, _ := strconv.ParseFloat(c.DefaultQuery("min_rating", "0"), 64)

	filters := repository.CompanyFilters{
		District:  c.Query("district"),
		Category:  c.Query("category"),
		Status:    rating.Status(c.Query("status")),
		MinRating: minRating,
		SortBy:    c.DefaultQuery("sort_by", "rating-high"),
	}

	companies, total, err := ctrl.companyService.List(filters, page, pageSize)
	if err != nil {
		apperrors.InternalError(c, "Não foi possível obter a lista de empresas")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      companies,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// SearchCompanies matches companies by name or normalized slug.
// @Summary Search companies
// @Tags Companies
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {object} object
// @Router /companies/search [get]
func (ctrl *CompanyController) SearchCompanies(c *gin.Context) {
	results, err := ctrl.companyService.Search(c.Query("q"))
	if err != nil {
		apperrors.InternalError(c, "Não foi possível pesquisar empresas")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": results})
}

// GetPlatformStats returns the homepage totals.
// @Summary Platform statistics
// @Tags Companies
// @Produce json
// @Success 200 {object} service.PlatformStats
// @Router /companies/stats [get]
func (ctrl *CompanyController) GetPlatformStats(c *gin.Context) {
	stats, err := ctrl.companyService.GetPlatformStats(c.Request.Context())
	if err != nil {
		apperrors.InternalError(c, "Não foi possível obter as estatísticas")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetCompany returns one company by numeric ID.
// @Summary Company detail
// @Tags Companies
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} model.Company
// @Router /companies/{id} [get]
func (ctrl *CompanyController) GetCompany(c *gin.Context) {
	companyID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID de empresa inválido")
		return
	}

	company, err := ctrl.companyService.GetByID(uint(companyID))
	if err != nil {
		if errors.Is(err, service.ErrCompanyNotFound) {
			apperrors.NotFound(c, apperrors.CompanyNotFound, "Empresa não encontrada")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, company)
}

// GetCompanyBySlug returns one company by its URL slug.
// @Summary Company detail by slug
// @Tags Companies
// @Produce json
// @Param slug path string true "Company slug"
// @Success 200 {object} model.Company
// @Router /companies/slug/{slug} [get]
func (ctrl *CompanyController) GetCompanyBySlug(c *gin.Context) {
	company, err := ctrl.companyService.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrCompanyNotFound) {
			apperrors.NotFound(c, apperrors.CompanyNotFound, "Empresa não encontrada")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, company)
}

type resolveCompanyInput struct {
	Name       string   `json:"name" binding:"required,min=2,max=120"`
	District   string   `json:"district"`
	City       string   `json:"city"`
	Categories []string `json:"categories"`
}

// ResolveCompany finds or creates the company for a free-typed name, so a
// review can always attach to a registry row.
// @Summary Resolve a company name to a registry entry
// @Tags Companies
// @Accept json
// @Produce json
// @Success 200 {object} model.Company
// @Router /companies/resolve [post]
func (ctrl *CompanyController) ResolveCompany(c *gin.Context) {
	var input resolveCompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "O nome da empresa é obrigatório")
		return
	}

	company, err := ctrl.companyService.Resolve(input.Name, input.District, input.City, input.Categories)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCompanyName) {
			apperrors.BadRequest(c, apperrors.CompanyInvalidName, "O nome da empresa não é válido")
			return
		}
		apperrors.ParseAndRespond(c, err, "company")
		return
	}

	c.JSON(http.StatusOK, company)
}
