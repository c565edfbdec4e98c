package http

import "github.com/GoSim-25-26J-441/taskroom-backend/internal/users/service"

type Handler struct {
	users *service.UserService
}

func New(users *service.UserService) *Handler {
	return &Handler{users: users}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type passwordRequest struct {
	Password string `json:"password"`
}
