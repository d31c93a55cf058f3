package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Hazratqul21/alif-24-sub000/internal/pkg/errors"
)

// handleDomainError отображает доменные ошибки в HTTP-статусы:
// 400 - нарушение состояния или диапазона, 401/403 - идентичность и владение,
// 404 - не найдено, 409 - конфликты, 410 - обращение к завершенной викторине.
// Тело всегда несет машиночитаемый code и человекочитаемый error.
func handleDomainError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, apperrors.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrQuizGone):
		status = http.StatusGone
	case errors.Is(err, apperrors.ErrInvalidState),
		errors.Is(err, apperrors.ErrOutOfRange),
		errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		log.Printf("[Handler] Внутренняя ошибка: %v", err)
		c.JSON(status, gin.H{"error": "Internal server error", "code": "INTERNAL"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error(), "code": apperrors.Code(err)})
}
