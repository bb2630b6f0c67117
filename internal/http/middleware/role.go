package middleware

import (
	"net/http"
	"strings"

	"railticket/internal/domain"

	"github.com/gin-gonic/gin"
)

// RequireRoles only lets through sessions whose "role" claim is one of allowedRoles.
// It must run after Session.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := SessionClaims(c)
		if !ok {
			abortUnauthorized(c, "sesi tidak ditemukan")
			return
		}
		role, _ := claims["role"].(string)
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(role))]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success":    false,
				"code":       domain.CodeForbidden,
				"message":    "role tidak diizinkan",
				"error":      "role tidak diizinkan",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}
