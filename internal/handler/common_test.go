package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/Hazratqul21/alif-24-sub000/internal/pkg/errors"
)

func TestHandleDomainError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid state", apperrors.ErrInvalidState, http.StatusBadRequest, "INVALID_STATE"},
		{"out of range", apperrors.ErrOutOfRange, http.StatusBadRequest, "OUT_OF_RANGE"},
		{"validation", apperrors.ErrValidation, http.StatusBadRequest, "VALIDATION"},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"not found", apperrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"already answered", apperrors.ErrAlreadyAnswered, http.StatusConflict, "ALREADY_ANSWERED"},
		{"duplicate join", apperrors.ErrDuplicateJoin, http.StatusConflict, "DUPLICATE_JOIN"},
		{"lobby full", apperrors.ErrLobbyFull, http.StatusConflict, "FULL"},
		{"code exhausted", apperrors.ErrCodeExhausted, http.StatusConflict, "CODE_EXHAUSTED"},
		{"quiz gone", apperrors.ErrQuizGone, http.StatusGone, "GONE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)

			// Act
			handleDomainError(c, tc.err)

			// Assert
			assert.Equal(t, tc.wantStatus, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tc.wantCode)
		})
	}
}

func TestHandleDomainError_WrappedErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Arrange: обернутая доменная ошибка сохраняет статус через errors.Is
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	err := fmt.Errorf("quiz state mismatch: %w", apperrors.ErrInvalidState)

	// Act
	handleDomainError(c, err)

	// Assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
