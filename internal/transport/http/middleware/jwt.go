package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"gopherblog/internal/pkg/jwtutil"
	"gopherblog/internal/transport/http/response"
)

const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "user_role"
)

// AuthJWT rejects requests without a valid bearer token and attaches the
// authenticated identity to the gin context. The database is not re-checked;
// role or active-flag changes take effect only after token expiry.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, 401, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, 401, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, 401, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// Identity reads the authenticated user id and role set by AuthJWT.
func Identity(c *gin.Context) (uint, string, bool) {
	idAny, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, "", false
	}
	id, ok := idAny.(uint)
	if !ok {
		return 0, "", false
	}
	role, _ := c.Get(ContextRoleKey)
	roleStr, _ := role.(string)
	return id, roleStr, true
}
