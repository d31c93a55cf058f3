package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestGinContext создает *gin.Context для тестов с JSON body
func newTestGinContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

// parseJSONResponse парсит JSON ответ из *httptest.ResponseRecorder
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

// ============================================================================
// Request validation tests — не требуют реального PlayerService:
// handler возвращает 400 до вызова сервиса
// ============================================================================

func TestJoin_ValidationErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &PlayerHandler{} // nil service — OK для validation tests

	tests := []struct {
		name string
		body interface{}
	}{
		{
			name: "empty body",
			body: nil,
		},
		{
			name: "missing join_code",
			body: map[string]string{"display_name": "Shb-01"},
		},
		{
			name: "join_code too short",
			body: map[string]string{"join_code": "123", "display_name": "Shb-01"},
		},
		{
			name: "join_code too long",
			body: map[string]string{"join_code": "1234567", "display_name": "Shb-01"},
		},
		{
			name: "join_code not numeric",
			body: map[string]string{"join_code": "12a456", "display_name": "Shb-01"},
		},
		{
			name: "missing display_name",
			body: map[string]string{"join_code": "123456"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			c, w := newTestGinContext(http.MethodPost, "/api/quizzes/join", tt.body)

			// Act
			handler.Join(c)

			// Assert
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := parseJSONResponse(t, w)
			assert.Equal(t, "VALIDATION", resp["code"])
		})
	}
}

func TestSubmitAnswer_ValidationErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &PlayerHandler{}

	tests := []struct {
		name string
		body interface{}
	}{
		{
			name: "empty body",
			body: nil,
		},
		{
			name: "missing question_id",
			body: map[string]interface{}{"selected_index": 1},
		},
		{
			// selected_index — указатель: required отличает отсутствие от нуля
			name: "missing selected_index",
			body: map[string]interface{}{"question_id": "a1b2c3d4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			c, w := newTestGinContext(http.MethodPost, "/api/quizzes/q1/player/answer", tt.body)

			// Act
			handler.SubmitAnswer(c)

			// Assert
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := parseJSONResponse(t, w)
			assert.Equal(t, "VALIDATION", resp["code"])
		})
	}
}
