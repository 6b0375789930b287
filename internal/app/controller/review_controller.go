package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/construtorcheck/construtorcheck-backend/internal/app/service"
	apperrors "github.com/construtorcheck/construtorcheck-backend/internal/errors"
	"github.com/construtorcheck/construtorcheck-backend/internal/middleware"
	"github.com/construtorcheck/construtorcheck-backend/pkg/rating"
)

type ReviewController struct {
	reviewService *service.ReviewService
}

func NewReviewController(reviewService *service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

// SubmitReview creates a review and updates the company aggregate.
// @Summary Submit a review
// @Tags Reviews
// @Accept json
// @Produce json
// @Success 201 {object} model.Review
// @Router /reviews [post]
func (ctrl *ReviewController) SubmitReview(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var input service.SubmitReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Os dados da avaliação não são válidos")
		return
	}

	review, err := ctrl.reviewService.Submit(userID, input)
	if err != nil {
		switch {
		case errors.Is(err, rating.ErrInvalidRating):
			apperrors.BadRequest(c, apperrors.ReviewInvalidRating, "As classificações devem estar entre 1 e 5")
		case errors.Is(err, service.ErrCompanyNotFound):
			apperrors.NotFound(c, apperrors.CompanyNotFound, "Empresa não encontrada")
		default:
			apperrors.ParseAndRespond(c, err, "review")
		}
		return
	}

	c.JSON(http.StatusCreated, review)
}

// RetractReview soft-deletes the caller's review and releases its weight
// from the company counters.
// @Summary Retract a review
// @Tags Reviews
// @Param id path int true "Review ID"
// @Success 204
// @Router /reviews/{id} [delete]
func (ctrl *ReviewController) RetractReview(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID de avaliação inválido")
		return
	}

	if err := ctrl.reviewService.Retract(uint(reviewID), userID, middleware.IsAdmin(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "Avaliação não encontrada")
		case errors.Is(err, service.ErrNotReviewOwner):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "Só o autor pode remover a avaliação")
		default:
			apperrors.InternalError(c, "Não foi possível remover a avaliação")
		}
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

type voteInput struct {
	Helpful *bool `json:"helpful" binding:"required"`
}

// VoteReview casts or toggles the caller's helpfulness vote.
// @Summary Vote on a review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} object
// @Router /reviews/{id}/vote [post]
func (ctrl *ReviewController) VoteReview(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID de avaliação inválido")
		return
	}

	var input voteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "O campo helpful é obrigatório")
		return
	}

	state, err := ctrl.reviewService.Vote(uint(reviewID), userID, *input.Helpful)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			apperrors.NotFound(c, apperrors.VoteReviewNotFound, "Avaliação não encontrada")
			return
		}
		apperrors.ParseAndRespond(c, err, "vote")
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": state})
}

// GetReviewVote returns the caller's current vote on a review.
// @Summary Current vote on a review
// @Tags Reviews
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} object
// @Router /reviews/{id}/vote [get]
func (ctrl *ReviewController) GetReviewVote(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID de avaliação inválido")
		return
	}

	state, err := ctrl.reviewService.GetVote(uint(reviewID), userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": state})
}

// ReportReview bumps the moderation counter. No auth: abuse reports are
// accepted from anyone.
// @Summary Report a review
// @Tags Reviews
// @Param id path int true "Review ID"
// @Success 204
// @Router /reviews/{id}/report [post]
func (ctrl *ReviewController) ReportReview(c *gin.Context) {
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID de avaliação inválido")
		return
	}

	if err := ctrl.reviewService.Report(uint(reviewID)); err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			apperrors.NotFound(c, apperrors.ReviewNotFound, "Avaliação não encontrada")
			return
		}
		apperrors.InternalError(c, "Não foi possível reportar a avaliação")
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

type respondInput struct {
	Content string `json:"content" binding:"required,min=10,max=2000"`
}

// RespondToReview records the company's single public response.
// @Summary Respond to a review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} model.Review
// @Router /reviews/{id}/response [post]
func (ctrl *ReviewController) RespondToReview(c *gin.Context) {
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID de avaliação inválido")
		return
	}

	var input respondInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "O conteúdo da resposta é obrigatório")
		return
	}

	review, err := ctrl.reviewService.Respond(uint(reviewID), input.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			apperrors.NotFound(c, apperrors.ReviewNotFound, "Avaliação não encontrada")
		case errors.Is(err, service.ErrAlreadyAnswered):
			apperrors.Conflict(c, apperrors.ReviewAlreadyAnswered, "Esta avaliação já tem uma resposta")
		default:
			apperrors.InternalError(c, "Não foi possível registar a resposta")
		}
		return
	}

	c.JSON(http.StatusOK, review)
}

// GetCompanyReviews lists a company's reviews, newest first.
// @Summary Company reviews
// @Tags Reviews
// @Produce json
// @Param id path int true "Company ID"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} object
// @Router /companies/{id}/reviews [get]
func (ctrl *ReviewController) GetCompanyReviews(c *gin.Context) {
	companyID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID de empresa inválido")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	reviews, total, err := ctrl.reviewService.GetCompanyReviews(uint(companyID), page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrCompanyNotFound) {
			apperrors.NotFound(c, apperrors.CompanyNotFound, "Empresa não encontrada")
			return
		}
		apperrors.InternalError(c, "Não foi possível obter as avaliações")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      reviews,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetMyReviews lists the caller's own reviews.
// @Summary Own reviews
// @Tags Reviews
// @Produce json
// @Success 200 {object} object
// @Router /users/me/reviews [get]
func (ctrl *ReviewController) GetMyReviews(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	reviews, total, err := ctrl.reviewService.GetUserReviews(userID, page, pageSize)
	if err != nil {
		apperrors.InternalError(c, "Não foi possível obter as suas avaliações")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      reviews,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
