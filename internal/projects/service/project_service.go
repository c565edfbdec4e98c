package service

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/access"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/auth"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/projects/domain"
	taskdomain "github.com/GoSim-25-26J-441/taskroom-backend/internal/tasks/domain"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	ListForMember(ctx context.Context, userID string) ([]domain.Project, error)
	Create(ctx context.Context, p *domain.Project) error
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
	AddCollaborator(ctx context.Context, projectID, userID string) error
	RemoveCollaborator(ctx context.Context, projectID, userID string) error
}

type TaskLister interface {
	ListByProject(ctx context.Context, projectID string) ([]taskdomain.Task, error)
}

// Directory resolves users for collaborator lookup and population.
type Directory interface {
	FindIdentityByEmail(ctx context.Context, email string) (auth.Identity, error)
	IdentitiesByIDs(ctx context.Context, ids []string) (map[string]auth.Identity, error)
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo  Repository
	tasks TaskLister
	users Directory
	now   func() time.Time
}

func NewProjectService(repo Repository, tasks TaskLister, users Directory) *ProjectService {
	return &ProjectService{repo: repo, tasks: tasks, users: users, now: time.Now}
}

// List returns the projects actorID created or collaborates on.
func (s *ProjectService) List(ctx context.Context, actorID string) ([]domain.Project, error) {
	if actorID == "" {
		return nil, apperr.Unauthenticated("user not authenticated")
	}
	return s.repo.ListForMember(ctx, actorID)
}

// Create stores a new project with actorID as its creator.
func (s *ProjectService) Create(ctx context.Context, actorID string, f domain.Fields) (*domain.Project, error) {
	if access.DecideProject(actorID, access.Project{}, access.ActionCreate) != access.Authorized {
		return nil, apperr.Forbidden("action not allowed")
	}

	p, err := domain.NewProject(actorID, f, s.now())
	if err != nil {
		return nil, err
	}
	p.ID = uuid.New().String()

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Authorize loads a project and checks that actorID may perform action on
// it. A missing project is reported before any permission check.
func (s *ProjectService) Authorize(ctx context.Context, actorID, projectID string, action access.Action) (*domain.Project, error) {
	p, err := s.repo.FindByID(ctx, projectID)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}
	if err := access.AuthorizeProject(actorID, p.Access(), action); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the project with its tasks and collaborators populated.
func (s *ProjectService) Get(ctx context.Context, actorID, projectID string) (*domain.Detail, error) {
	p, err := s.Authorize(ctx, actorID, projectID, access.ActionRead)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, p)
}

// Update overwrites the provided fields.
func (s *ProjectService) Update(ctx context.Context, actorID, projectID string, f domain.Fields) (*domain.Project, error) {
	p, err := s.Authorize(ctx, actorID, projectID, access.ActionEdit)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(f); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the project and, through the repository, its tasks.
func (s *ProjectService) Delete(ctx context.Context, actorID, projectID string) error {
	if _, err := s.Authorize(ctx, actorID, projectID, access.ActionDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, projectID)
}

// FindCollaborator looks up a collaboration candidate by email.
func (s *ProjectService) FindCollaborator(ctx context.Context, actorID, email string) (auth.Identity, error) {
	if actorID == "" {
		return auth.Identity{}, apperr.Unauthenticated("user not authenticated")
	}
	id, err := s.users.FindIdentityByEmail(ctx, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return auth.Identity{}, apperr.NotFound("user not found")
		}
		return auth.Identity{}, err
	}
	return id, nil
}

// AddCollaborator grants the user registered under email access to the
// project. The duplicate check reads before it writes; two concurrent adds
// of the same user can both pass it.
func (s *ProjectService) AddCollaborator(ctx context.Context, projectID, actorID, email string) error {
	p, err := s.Authorize(ctx, actorID, projectID, access.ActionManageCollaborators)
	if err != nil {
		return err
	}

	target, err := s.FindCollaborator(ctx, actorID, email)
	if err != nil {
		return err
	}
	if target.ID == p.CreatorID {
		return apperr.Conflict("creator cannot be a collaborator")
	}
	if slices.Contains(p.Collaborators, target.ID) {
		return apperr.Conflict("already a collaborator")
	}

	return s.repo.AddCollaborator(ctx, p.ID, target.ID)
}

// RemoveCollaborator drops targetID from the collaborator set. Removing a
// non-member succeeds.
func (s *ProjectService) RemoveCollaborator(ctx context.Context, projectID, actorID, targetID string) error {
	p, err := s.Authorize(ctx, actorID, projectID, access.ActionManageCollaborators)
	if err != nil {
		return err
	}
	if !slices.Contains(p.Collaborators, targetID) {
		return nil
	}
	return s.repo.RemoveCollaborator(ctx, p.ID, targetID)
}

func (s *ProjectService) populate(ctx context.Context, p *domain.Project) (*domain.Detail, error) {
	tasks, err := s.tasks.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	ids := append([]string{}, p.Collaborators...)
	for _, t := range tasks {
		if t.CompletedBy != nil {
			ids = append(ids, *t.CompletedBy)
		}
	}
	people, err := s.users.IdentitiesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	d := &domain.Detail{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		DueDate:       p.DueDate,
		Client:        p.Client,
		CreatorID:     p.CreatorID,
		Tasks:         make([]taskdomain.View, 0, len(tasks)),
		Collaborators: make([]auth.Identity, 0, len(p.Collaborators)),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	byID := make(map[string]taskdomain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	for _, id := range p.TaskIDs {
		if t, ok := byID[id]; ok {
			d.Tasks = append(d.Tasks, taskdomain.NewView(t, people))
		}
	}
	for _, id := range p.Collaborators {
		if who, ok := people[id]; ok {
			d.Collaborators = append(d.Collaborators, who)
		}
	}
	return d, nil
}
