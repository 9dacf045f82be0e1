package http

import "github.com/gin-gonic/gin"

// Module mounts one bounded context's routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext holds the groups modules attach to.
type RouterContext struct {
	// V1 is /api/v1 without authentication. Webhooks live here and
	// authenticate by signature.
	V1 *gin.RouterGroup
	// Protected is /api/v1 behind JWT auth.
	Protected *gin.RouterGroup
}
