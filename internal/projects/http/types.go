package http

import (
	"time"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/projects/service"
)

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	projects *service.ProjectService
}

func New(projects *service.ProjectService) *Handler {
	return &Handler{projects: projects}
}

type projectReq struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Client      *string    `json:"client"`
	DueDate     *time.Time `json:"due_date"`
}

func (r projectReq) fields() domain.Fields {
	return domain.Fields{
		Name:        r.Name,
		Description: r.Description,
		Client:      r.Client,
		DueDate:     r.DueDate,
	}
}

type emailReq struct {
	Email string `json:"email" binding:"required,email"`
}

type collaboratorReq struct {
	ID string `json:"id"`
}
