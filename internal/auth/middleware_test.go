package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func router(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BearerToken(token))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func status(r *gin.Engine, header string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestBearerToken(t *testing.T) {
	r := router("secret")
	assert.Equal(t, http.StatusNoContent, status(r, "Bearer secret"))
	assert.Equal(t, http.StatusNoContent, status(r, "Bearer  secret "))
	assert.Equal(t, http.StatusUnauthorized, status(r, "Bearer nope"))
	assert.Equal(t, http.StatusUnauthorized, status(r, "secret"))
	assert.Equal(t, http.StatusUnauthorized, status(r, ""))
}

func TestBearerToken_EmptyTokenRejectsAll(t *testing.T) {
	r := router("")
	assert.Equal(t, http.StatusUnauthorized, status(r, "Bearer "))
	assert.Equal(t, http.StatusUnauthorized, status(r, "Bearer x"))
}
