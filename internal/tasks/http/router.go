package http

import "github.com/gin-gonic/gin"

// Register attaches task routes; the bearer middleware must run first.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
	rg.POST("/state/:id", h.toggle)
}
