// Package auth guards the trigger API.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nikdata/oura-hrv/internal/response"
)

// BearerToken accepts requests whose Authorization header carries token.
// An empty token rejects everything.
func BearerToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if token != "" && strings.HasPrefix(header, "Bearer ") {
			got := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1 {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("Unauthorized"))
	}
}
