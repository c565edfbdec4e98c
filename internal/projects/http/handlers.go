package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/GoSim-25-26J-441/taskroom-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
)

func (h *Handler) list(c *gin.Context) {
	actorID, ok := httpapi.ActorID(c)
	if !ok {
		return
	}

	items, err := h.projects.List(c.Request.Context(), actorID)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) create(c *gin.Context) {
	actorID, ok := httpapi.ActorID(c)
	if !ok {
		return
	}

	var req projectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c, apperr.Validation("invalid body"))
		return
	}

	p, err := h.projects.Create(c.Request.Context(), actorID, req.fields())
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) get(c *gin.Context) {
	actorID, ok := httpapi.ActorID(c)
	if !ok {
		return
	}

	p, err := h.projects.Get(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	actorID, ok := httpapi.ActorID(c)
	if !ok {
		return
	}

	var req projectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c, apperr.Validation("invalid body"))
		return
	}

	p, err := h.projects.Update(c.Request.Context(), actorID, c.Param("id"), req.fields())
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	actorID, ok := httpapi.ActorID(c)
	if !ok {
		return
	}

	if err := h.projects.Delete(c.Request.Context(), actorID, c.Param("id")); err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "project deleted"})
}

func (h *Handler) findCollaborator(c *gin.Context) {
	actorID, ok := httpapi.ActorID(c)
	if !ok {
		return
	}

	var req emailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c, apperr.Validation("a valid email is required"))
		return
	}

	user, err := h.projects.FindCollaborator(c.Request.Context(), actorID, req.Email)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

func (h *Handler) addCollaborator(c *gin.Context) {
	actorID, ok := httpapi.ActorID(c)
	if !ok {
		return
	}

	var req emailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c, apperr.Validation("a valid email is required"))
		return
	}

	if err := h.projects.AddCollaborator(c.Request.Context(), c.Param("id"), actorID, req.Email); err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "collaborator added"})
}

func (h *Handler) removeCollaborator(c *gin.Context) {
	actorID, ok := httpapi.ActorID(c)
	if !ok {
		return
	}

	var req collaboratorReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		httpapi.WriteError(c, apperr.Validation("collaborator id is required"))
		return
	}

	if err := h.projects.RemoveCollaborator(c.Request.Context(), c.Param("id"), actorID, req.ID); err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "collaborator removed"})
}
