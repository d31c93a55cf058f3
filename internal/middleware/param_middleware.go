package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
)

// ExtractIDParam создает middleware для извлечения и валидации идентификатора из URL.
// paramName - имя параметра в URL (например, "id").
// contextKey - ключ, под которым значение будет сохранено в контексте Gin.
func ExtractIDParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param(paramName)
		if !entity.IsValidID(id) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", paramName), "code": "VALIDATION"})
			c.Abort()
			return
		}
		c.Set(contextKey, id)
		c.Next()
	}
}
