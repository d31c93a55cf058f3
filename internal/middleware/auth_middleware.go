package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Hazratqul21/alif-24-sub000/pkg/auth"
)

// Ключи контекста gin, устанавливаемые после успешной аутентификации
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов.
// Выпуск токенов - забота платформенного провайдера идентичности;
// здесь токен только проверяется.
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware создает новый middleware аутентификации
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// RequireAuth проверяет Bearer-токен и кладет принципала в контекст запроса
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		claims, err := m.jwtService.ParseToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// HostOnly пропускает только принципалов с ролью host.
// Ставится после RequireAuth.
func (m *AuthMiddleware) HostOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != auth.RoleHost {
			c.JSON(http.StatusForbidden, gin.H{"error": "Host role is required", "code": "FORBIDDEN"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalID возвращает идентификатор аутентифицированного принципала
func PrincipalID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
