package api

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/nikdata/oura-hrv/internal/auth"
)

// NewRouter wires the trigger endpoints. /health is open; everything else
// needs the bearer token.
func NewRouter(app App, token string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware())

	r.GET("/health", GetHealth(app))

	var runs sync.Mutex
	protected := r.Group("/", auth.BearerToken(token))
	protected.POST("/sync", PostSync(app, &runs))
	protected.POST("/organize", PostOrganize(app, &runs))
	return r
}
