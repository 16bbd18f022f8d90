package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-grocery-store/internal/core/auth"
	resp "go-grocery-store/internal/transport/http/response"
)

// AuthJWT 解析 Bearer token，把 userId/role 放进请求上下文，
// 后续 handler 显式传身份给 service，不走全局状态
func AuthJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, http.StatusUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.Abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		c.Set("userId", claims.UID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRole 路由级角色闸门
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != role {
			resp.Abort(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Next()
	}
}
