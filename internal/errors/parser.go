package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with its user-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts a raw error into a code and a user-friendly message.
// Sensitive detail stays out of the response; the caller logs the raw error.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Ocorreu um erro no servidor",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. PostgreSQL constraint violations

	// 2-1. Unique constraint (23505)
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(errStrLower, "duplicate key") ||
		strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// 2-2. Foreign key constraint (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "O registo referenciado já não existe",
		}
	}

	// 2-3. Serialization/lock failures surface as conflicts to retry
	if strings.Contains(errStrLower, "could not serialize") ||
		strings.Contains(errStrLower, "deadlock detected") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "A operação falhou devido a um conflito. Tente novamente",
		}
	}

	// 3. Network / connectivity
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "Falha na ligação a um serviço externo. Tente novamente mais tarde",
		}
	}

	// 4. Default
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "slug") {
		return ErrorInfo{
			Code:    CompanySlugExists,
			Message: "Já existe uma empresa com este nome",
		}
	}

	if strings.Contains(errLower, "email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "Este email já está registado",
		}
	}

	if strings.Contains(errLower, "review_user_vote") {
		// Two simultaneous first votes by the same user; one wins.
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "O seu voto já foi registado",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "O registo já existe",
	}
}

// ParseAndRespond parses a raw error and writes the standard response with
// a status derived from the resulting code. Controllers use it on the
// fallback path, after their sentinel-error branches.
func ParseAndRespond(c *gin.Context, err error, context string) {
	info := ParseError(err, context)
	RespondWithError(c, statusForCode(info.Code), info.Code, info.Message)
}

func statusForCode(code string) int {
	switch code {
	case ResourceNotFound, CompanyNotFound, ReviewNotFound:
		return http.StatusNotFound
	case ResourceAlreadyExists, ResourceConflict, CompanySlugExists, AuthEmailAlreadyExists:
		return http.StatusConflict
	case ValidationInvalidInput, ValidationInvalidID, ValidationRequired:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func getNotFoundMessage(context string) string {
	switch context {
	case "company":
		return "Empresa não encontrada"
	case "review":
		return "Avaliação não encontrada"
	case "user":
		return "Utilizador não encontrado"
	default:
		return "Registo não encontrado"
	}
}

func getDefaultErrorMessage(context string) string {
	switch context {
	case "company":
		return "Não foi possível processar a empresa"
	case "review":
		return "Não foi possível processar a avaliação"
	case "vote":
		return "Não foi possível registar o voto"
	default:
		return "Ocorreu um erro no servidor"
	}
}
