package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/construtorcheck/construtorcheck-backend/internal/app/service"
	apperrors "github.com/construtorcheck/construtorcheck-backend/internal/errors"
	"github.com/construtorcheck/construtorcheck-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type registerInput struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required,min=2,max=60"`
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and signs the user in.
// @Summary Register a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} object
// @Router /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Os dados de registo não são válidos")
		return
	}

	user, tokens, err := ctrl.authService.Register(input.Email, input.Password, input.DisplayName)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "Já existe uma conta com este email")
			return
		}
		apperrors.ParseAndRespond(c, err, "user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

// Login authenticates by email and password.
// @Summary Sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Email e palavra-passe são obrigatórios")
		return
	}

	user, tokens, err := ctrl.authService.Login(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Email ou palavra-passe incorretos")
			return
		}
		apperrors.InternalError(c, "Não foi possível iniciar sessão")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

// GetMe returns the authenticated user's profile.
// @Summary Current user profile
// @Tags Auth
// @Produce json
// @Success 200 {object} model.User
// @Router /auth/me [get]
func (ctrl *AuthController) GetMe(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Utilizador não encontrado")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, user)
}

type updateProfileInput struct {
	DisplayName string  `json:"display_name" binding:"omitempty,min=2,max=60"`
	PhotoURL    *string `json:"photo_url"`
}

// UpdateMe updates the authenticated user's display name or photo.
// @Summary Update profile
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} model.User
// @Router /auth/me [put]
func (ctrl *AuthController) UpdateMe(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var input updateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Os dados de perfil não são válidos")
		return
	}

	user, err := ctrl.authService.UpdateProfile(userID, input.DisplayName, input.PhotoURL)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Utilizador não encontrado")
			return
		}
		apperrors.InternalError(c, "Não foi possível atualizar o perfil")
		return
	}

	c.JSON(http.StatusOK, user)
}
