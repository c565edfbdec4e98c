package bootstrap

import (
	"context"
	"time"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/access"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/auth"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/mailer"
	projectservice "github.com/GoSim-25-26J-441/taskroom-backend/internal/projects/service"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/realtime"
	taskservice "github.com/GoSim-25-26J-441/taskroom-backend/internal/tasks/service"
	userservice "github.com/GoSim-25-26J-441/taskroom-backend/internal/users/service"
)

type UserStore interface {
	userservice.Repository
	auth.IdentityFinder
	projectservice.Directory
}

type ProjectStore interface {
	projectservice.Repository
	taskservice.ProjectStore
}

type TaskStore interface {
	taskservice.Repository
	projectservice.TaskLister
}

type ServiceDeps struct {
	Users     UserStore
	Projects  ProjectStore
	Tasks     TaskStore
	Mailer    mailer.Mailer
	JWTSecret string
	TokenTTL  time.Duration
	Hub       *realtime.Hub
}

type Services struct {
	Resolver *auth.Resolver
	Users    *userservice.UserService
	Projects *projectservice.ProjectService
	Tasks    *taskservice.TaskService
	Hub      *realtime.Hub
}

func BuildServices(dep ServiceDeps) *Services {
	tokens := auth.NewTokenManager(dep.JWTSecret)
	hub := dep.Hub
	if hub == nil {
		hub = realtime.NewHub()
	}

	return &Services{
		Resolver: auth.NewResolver(tokens, dep.Users),
		Users:    userservice.NewUserService(dep.Users, tokens, dep.Mailer, dep.TokenTTL),
		Projects: projectservice.NewProjectService(dep.Projects, dep.Tasks, dep.Users),
		Tasks:    taskservice.NewTaskService(dep.Tasks, dep.Projects, dep.Users),
		Hub:      hub,
	}
}

// JoinAuthorizer lets a connection join a project room when its user may
// read the project.
func (s *Services) JoinAuthorizer() realtime.JoinAuthorizer {
	return realtime.JoinFunc(func(ctx context.Context, userID, projectID string) error {
		_, err := s.Projects.Authorize(ctx, userID, projectID, access.ActionRead)
		return err
	})
}
