package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/GoSim-25-26J-441/taskroom-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/auth"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/users/domain"
)

func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c, apperr.Validation("invalid JSON body"))
		return
	}

	_, err := h.users.Register(c.Request.Context(), domain.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":      true,
		"message": "user created, check your email to confirm the account",
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c, apperr.Validation("invalid JSON body"))
		return
	}

	session, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *Handler) Confirm(c *gin.Context) {
	if err := h.users.Confirm(c.Request.Context(), c.Param("token")); err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "account confirmed"})
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c, apperr.Validation("invalid JSON body"))
		return
	}

	if err := h.users.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "we sent an email with the instructions"})
}

func (h *Handler) CheckResetToken(c *gin.Context) {
	if err := h.users.CheckResetToken(c.Request.Context(), c.Param("token")); err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "valid token"})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c, apperr.Validation("invalid JSON body"))
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "password updated"})
}

// Profile returns the caller's identity
func (h *Handler) Profile(c *gin.Context) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		httpapi.WriteError(c, apperr.Unauthenticated("user not authenticated"))
		return
	}
	c.JSON(http.StatusOK, identity)
}
