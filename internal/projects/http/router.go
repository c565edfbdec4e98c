package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group. Every route
// expects the bearer middleware to have run.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)

	rg.POST("/collaborators", h.findCollaborator)
	rg.POST("/collaborators/:id", h.addCollaborator)
	rg.POST("/remove-collaborator/:id", h.removeCollaborator)
}
