package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"seasonal-cms/internal/core/auth"
	resp "seasonal-cms/internal/transport/http/response"
)

func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		// 下游 action 从这两个键取身份
		c.Set("userId", claims.UID)
		c.Set("role", claims.Role)
		c.Set("claims", claims)
		c.Next()
	}
}
