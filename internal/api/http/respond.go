package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/logging"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// WriteError renders err as {"ok": false, "kind": ..., "error": ...}.
// Internal errors are logged with their cause and answered generically.
func WriteError(c *gin.Context, err error) {
	c.JSON(statusAndLog(c, err), errorBody(err))
}

// AbortWithError is WriteError for middleware that must stop the chain.
func AbortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusAndLog(c, err), errorBody(err))
}

func statusAndLog(c *gin.Context, err error) int {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logging.FromContext(c.Request.Context()).Error(c.Request.Method+" "+c.FullPath(), err)
	}
	return StatusFor(kind)
}

func errorBody(err error) gin.H {
	return gin.H{
		"ok":    false,
		"kind":  apperr.KindOf(err),
		"error": apperr.Message(err),
	}
}
