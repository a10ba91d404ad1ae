package router

import "github.com/gin-gonic/gin"

// Module is a feature slice (accounts, catalog) that registers its own
// routes, limiters, and auth groups on the shared /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
