package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/GoSim-25-26J-441/taskroom-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/realtime"
)

func (h *Handler) create(c *gin.Context) {
	actorID, ok := httpapi.ActorID(c)
	if !ok {
		return
	}

	var req taskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c, apperr.Validation("invalid body"))
		return
	}
	if req.Project == "" {
		httpapi.WriteError(c, apperr.Validation("project is required"))
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), actorID, req.Project, req.fields())
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	h.publish(c, actorID, realtime.TaskCreated, task.ProjectID, task)
	c.JSON(http.StatusCreated, gin.H{"ok": true, "task": task})
}

func (h *Handler) get(c *gin.Context) {
	actorID, ok := httpapi.ActorID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": task})
}

func (h *Handler) update(c *gin.Context) {
	actorID, ok := httpapi.ActorID(c)
	if !ok {
		return
	}

	var req taskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c, apperr.Validation("invalid body"))
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), actorID, c.Param("id"), req.fields())
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	h.publish(c, actorID, realtime.TaskUpdated, task.ProjectID, task)
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": task})
}

func (h *Handler) delete(c *gin.Context) {
	actorID, ok := httpapi.ActorID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Delete(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	h.publish(c, actorID, realtime.TaskDeleted, task.ProjectID, task)
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "task deleted"})
}

func (h *Handler) toggle(c *gin.Context) {
	actorID, ok := httpapi.ActorID(c)
	if !ok {
		return
	}

	task, err := h.tasks.ToggleCompletion(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	h.publish(c, actorID, realtime.TaskCompletionChanged, task.ProjectID, task)
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": task})
}

// publish runs only after the mutation has been stored. The caller's
// X-Connection-Id is skipped only if that connection is the caller's own.
func (h *Handler) publish(c *gin.Context, actorID string, kind realtime.EventType, projectID string, task any) {
	if h.events == nil {
		return
	}
	origin := realtime.Origin{Connection: httpapi.ConnectionID(c), User: actorID}
	h.events.Publish(c.Request.Context(), origin, realtime.Event{
		Type:    kind,
		Project: projectID,
		Task:    task,
	})
}
