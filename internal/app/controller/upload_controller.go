package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/construtorcheck/construtorcheck-backend/internal/errors"
	"github.com/construtorcheck/construtorcheck-backend/internal/middleware"
	"github.com/construtorcheck/construtorcheck-backend/internal/storage"
)

// Review photos only; no other upload surface exists.
var allowedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/webp",
}

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(storage *storage.S3Storage) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type presignedUploadInput struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// GeneratePresignedURL issues a direct-to-S3 upload URL for a review photo.
// @Summary Presigned photo upload URL
// @Tags Uploads
// @Accept json
// @Produce json
// @Success 200 {object} storage.PresignedUpload
// @Router /uploads/presigned [post]
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input presignedUploadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Nome do ficheiro e tipo de conteúdo são obrigatórios")
		return
	}

	if err := ctrl.storage.ValidateContentType(input.ContentType, allowedImageTypes); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Apenas imagens JPEG, PNG ou WEBP são permitidas")
		return
	}

	upload, err := ctrl.storage.PresignUpload(c.Request.Context(), input.Filename, input.ContentType, "reviews")
	if err != nil {
		log.Error("Failed to presign upload", err, map[string]interface{}{
			"filename":     input.Filename,
			"content_type": input.ContentType,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Não foi possível preparar o carregamento")
		return
	}

	c.JSON(http.StatusOK, upload)
}
