package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/access"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/auth"
	projectdomain "github.com/GoSim-25-26J-441/taskroom-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/tasks/domain"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
}

// ProjectStore is the part of the project repository that tasks need: the
// owning project and its task reference list.
type ProjectStore interface {
	FindByID(ctx context.Context, id string) (*projectdomain.Project, error)
	AddTask(ctx context.Context, projectID, taskID string) error
	RemoveTask(ctx context.Context, projectID, taskID string) error
}

type Directory interface {
	IdentitiesByIDs(ctx context.Context, ids []string) (map[string]auth.Identity, error)
}

type TaskService struct {
	repo     Repository
	projects ProjectStore
	users    Directory
	now      func() time.Time
}

func NewTaskService(repo Repository, projects ProjectStore, users Directory) *TaskService {
	return &TaskService{repo: repo, projects: projects, users: users, now: time.Now}
}

// Create stores a task in projectID and appends it to the project's list.
func (s *TaskService) Create(ctx context.Context, actorID, projectID string, f domain.Fields) (*domain.View, error) {
	p, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeTask(actorID, true, p.Access(), access.ActionCreate); err != nil {
		return nil, err
	}

	t, err := domain.NewTask(p.ID, f, s.now())
	if err != nil {
		return nil, err
	}
	t.ID = uuid.New().String()

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	if err := s.projects.AddTask(ctx, p.ID, t.ID); err != nil {
		return nil, err
	}
	return &domain.View{Task: *t}, nil
}

func (s *TaskService) Get(ctx context.Context, actorID, taskID string) (*domain.View, error) {
	t, _, err := s.authorize(ctx, actorID, taskID, access.ActionRead)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, t)
}

// Update overwrites the provided fields; omitted fields keep their value.
func (s *TaskService) Update(ctx context.Context, actorID, taskID string, f domain.Fields) (*domain.View, error) {
	t, _, err := s.authorize(ctx, actorID, taskID, access.ActionEdit)
	if err != nil {
		return nil, err
	}
	if err := t.Apply(f); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return s.view(ctx, t)
}

// Delete removes the task from its project's list and deletes the record.
// Both steps always run; a failure in either is reported and nothing is
// rolled back.
func (s *TaskService) Delete(ctx context.Context, actorID, taskID string) (*domain.Task, error) {
	t, p, err := s.authorize(ctx, actorID, taskID, access.ActionDelete)
	if err != nil {
		return nil, err
	}

	err = errors.Join(
		s.projects.RemoveTask(ctx, p.ID, t.ID),
		s.repo.Delete(ctx, t.ID),
	)
	if err != nil {
		return nil, apperr.Internal("delete task", err)
	}
	return t, nil
}

// ToggleCompletion inverts the completion state and records actorID as the
// completer, whichever direction the toggle goes.
func (s *TaskService) ToggleCompletion(ctx context.Context, actorID, taskID string) (*domain.View, error) {
	t, _, err := s.authorize(ctx, actorID, taskID, access.ActionToggle)
	if err != nil {
		return nil, err
	}

	t.ToggleCompletion(actorID)
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return s.view(ctx, t)
}

// authorize resolves the task and its owning project, then checks action.
func (s *TaskService) authorize(ctx context.Context, actorID, taskID string, action access.Action) (*domain.Task, *projectdomain.Project, error) {
	t, err := s.repo.FindByID(ctx, taskID)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, nil, err
	}
	if t == nil {
		return nil, nil, access.AuthorizeTask(actorID, false, nil, action)
	}

	p, err := s.findProject(ctx, t.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if err := access.AuthorizeTask(actorID, true, p.Access(), action); err != nil {
		return nil, nil, err
	}
	return t, p, nil
}

// findProject returns nil without error when the project does not exist.
func (s *TaskService) findProject(ctx context.Context, id string) (*projectdomain.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}
	return p, nil
}

func (s *TaskService) view(ctx context.Context, t *domain.Task) (*domain.View, error) {
	if t.CompletedBy == nil {
		return &domain.View{Task: *t}, nil
	}
	people, err := s.users.IdentitiesByIDs(ctx, []string{*t.CompletedBy})
	if err != nil {
		return nil, err
	}
	v := domain.NewView(*t, people)
	return &v, nil
}
