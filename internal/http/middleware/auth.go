package middleware

import (
	"errors"
	"net/http"
	"strings"

	"railticket/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const sessionClaimsKey = "session_claims"

// Session validates a bearer token when one is sent. Requests without a token pass through;
// sign-in itself lives outside this service.
func Session(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || len(key) == 0 {
			c.Next()
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortUnauthorized(c, "format Authorization tidak valid")
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (interface{}, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			msg := "token tidak valid"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token kedaluwarsa"
			}
			abortUnauthorized(c, msg)
			return
		}
		c.Set(sessionClaimsKey, claims)
		c.Next()
	}
}

// SessionClaims returns the validated claims, if any.
func SessionClaims(c *gin.Context) (jwt.MapClaims, bool) {
	v, ok := c.Get(sessionClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(jwt.MapClaims)
	return claims, ok
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success":    false,
		"code":       domain.CodeUnauthorized,
		"message":    msg,
		"error":      msg,
		"request_id": GetRequestID(c),
	})
}
