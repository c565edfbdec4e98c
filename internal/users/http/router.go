package http

import "github.com/gin-gonic/gin"

// Register mounts the account routes. requireUser guards the profile;
// throttle guards the credential-guessing endpoints.
func (h *Handler) Register(rg *gin.RouterGroup, requireUser, throttle gin.HandlerFunc) {
	rg.POST("", h.RegisterUser)
	rg.POST("/login", throttle, h.Login)
	rg.GET("/confirm/:token", h.Confirm)
	rg.POST("/forgot-password", throttle, h.ForgotPassword)
	rg.GET("/forgot-password/:token", h.CheckResetToken)
	rg.POST("/forgot-password/:token", h.ResetPassword)
	rg.GET("/profile", requireUser, h.Profile)
}
