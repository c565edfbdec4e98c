package http

import (
	"context"
	"time"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/realtime"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/tasks/domain"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/tasks/service"
)

// Publisher fans a task event out to the project's room. It must not block.
type Publisher interface {
	Publish(ctx context.Context, origin realtime.Origin, ev realtime.Event)
}

type Handler struct {
	tasks  *service.TaskService
	events Publisher
}

func New(tasks *service.TaskService, events Publisher) *Handler {
	return &Handler{tasks: tasks, events: events}
}

type taskReq struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Priority    *domain.Priority `json:"priority"`
	DueDate     *time.Time       `json:"due_date"`
	Project     string           `json:"project"`
}

func (r taskReq) fields() domain.Fields {
	return domain.Fields{
		Name:        r.Name,
		Description: r.Description,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
	}
}
