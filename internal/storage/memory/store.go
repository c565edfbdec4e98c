// Package memory keeps users, projects and tasks in process. Each method
// is atomic on its own record; nothing spans records.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/auth"
	projectdomain "github.com/GoSim-25-26J-441/taskroom-backend/internal/projects/domain"
	taskdomain "github.com/GoSim-25-26J-441/taskroom-backend/internal/tasks/domain"
	userdomain "github.com/GoSim-25-26J-441/taskroom-backend/internal/users/domain"
)

type Store struct {
	mu       sync.Mutex
	users    map[string]userdomain.User
	projects map[string]projectdomain.Project
	tasks    map[string]taskdomain.Task
	now      func() time.Time
	last     time.Time
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]userdomain.User),
		projects: make(map[string]projectdomain.Project),
		tasks:    make(map[string]taskdomain.Task),
		now:      time.Now,
	}
}

// tick returns a strictly increasing timestamp so creation order is stable.
func (s *Store) tick() time.Time {
	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}

func (s *Store) Users() *Users       { return &Users{s} }
func (s *Store) Projects() *Projects { return &Projects{s} }
func (s *Store) Tasks() *Tasks       { return &Tasks{s} }

type Users struct{ s *Store }

func (r *Users) FindByID(_ context.Context, id string) (*userdomain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &u, nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*userdomain.User, error) {
	return r.findBy(func(u userdomain.User) bool { return u.Email == email })
}

func (r *Users) FindByToken(_ context.Context, token string) (*userdomain.User, error) {
	return r.findBy(func(u userdomain.User) bool { return u.Token != nil && *u.Token == token })
}

func (r *Users) findBy(match func(userdomain.User) bool) (*userdomain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (r *Users) Create(_ context.Context, u *userdomain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; ok {
		return apperr.Conflict("user already registered")
	}
	for _, other := range r.s.users {
		if other.Email == u.Email {
			return apperr.Conflict("user already registered")
		}
	}
	u.CreatedAt = r.s.tick()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = *u
	return nil
}

func (r *Users) Update(_ context.Context, u *userdomain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	u.UpdatedAt = r.s.tick()
	r.s.users[u.ID] = *u
	return nil
}

func (r *Users) ClearStaleTokens(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, u := range r.s.users {
		if u.Token != nil && u.TokenIssuedAt != nil && u.TokenIssuedAt.Before(cutoff) {
			u.ClearToken()
			r.s.users[id] = u
			n++
		}
	}
	return n, nil
}

func (r *Users) FindIdentity(ctx context.Context, id string) (auth.Identity, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return auth.Identity{}, err
	}
	return u.Identity(), nil
}

func (r *Users) FindIdentityByEmail(ctx context.Context, email string) (auth.Identity, error) {
	u, err := r.FindByEmail(ctx, userdomain.NormalizeEmail(email))
	if err != nil {
		return auth.Identity{}, err
	}
	return u.Identity(), nil
}

func (r *Users) IdentitiesByIDs(_ context.Context, ids []string) (map[string]auth.Identity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]auth.Identity, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = u.Identity()
		}
	}
	return out, nil
}

type Projects struct{ s *Store }

func (r *Projects) FindByID(_ context.Context, id string) (*projectdomain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, apperr.NotFound("project not found")
	}
	return cloneProject(p), nil
}

func (r *Projects) ListForMember(_ context.Context, userID string) ([]projectdomain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]projectdomain.Project, 0)
	for _, p := range r.s.projects {
		if p.CreatorID == userID || slices.Contains(p.Collaborators, userID) {
			out = append(out, *cloneProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Projects) Create(_ context.Context, p *projectdomain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[p.ID]; ok {
		return apperr.Conflict("record already exists")
	}
	if slices.Contains(p.Collaborators, p.CreatorID) {
		return apperr.Validation("invalid fields")
	}
	p.CreatedAt = r.s.tick()
	p.UpdatedAt = p.CreatedAt
	r.s.projects[p.ID] = *cloneProject(*p)
	return nil
}

func (r *Projects) Update(_ context.Context, p *projectdomain.Project) error {
	return r.mutate(p.ID, func(stored *projectdomain.Project) error {
		stored.Name = p.Name
		stored.Description = p.Description
		stored.DueDate = p.DueDate
		stored.Client = p.Client
		p.UpdatedAt = r.s.tick()
		stored.UpdatedAt = p.UpdatedAt
		return nil
	})
}

// Delete removes the project and the tasks that reference it.
func (r *Projects) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[id]; !ok {
		return apperr.NotFound("project not found")
	}
	delete(r.s.projects, id)
	for tid, t := range r.s.tasks {
		if t.ProjectID == id {
			delete(r.s.tasks, tid)
		}
	}
	return nil
}

func (r *Projects) AddCollaborator(_ context.Context, projectID, userID string) error {
	return r.mutate(projectID, func(p *projectdomain.Project) error {
		if p.CreatorID == userID {
			return apperr.Validation("invalid fields")
		}
		p.Collaborators = append(p.Collaborators, userID)
		return nil
	})
}

func (r *Projects) RemoveCollaborator(_ context.Context, projectID, userID string) error {
	return r.mutate(projectID, func(p *projectdomain.Project) error {
		p.Collaborators = slices.DeleteFunc(p.Collaborators, func(id string) bool { return id == userID })
		return nil
	})
}

func (r *Projects) AddTask(_ context.Context, projectID, taskID string) error {
	return r.mutate(projectID, func(p *projectdomain.Project) error {
		p.TaskIDs = append(p.TaskIDs, taskID)
		return nil
	})
}

func (r *Projects) RemoveTask(_ context.Context, projectID, taskID string) error {
	return r.mutate(projectID, func(p *projectdomain.Project) error {
		p.TaskIDs = slices.DeleteFunc(p.TaskIDs, func(id string) bool { return id == taskID })
		return nil
	})
}

func (r *Projects) mutate(id string, fn func(*projectdomain.Project) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.projects[id]
	if !ok {
		return apperr.NotFound("project not found")
	}
	p := cloneProject(stored)
	if err := fn(p); err != nil {
		return err
	}
	r.s.projects[id] = *p
	return nil
}

type Tasks struct{ s *Store }

func (r *Tasks) FindByID(_ context.Context, id string) (*taskdomain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, apperr.NotFound("task not found")
	}
	return &t, nil
}

func (r *Tasks) ListByProject(_ context.Context, projectID string) ([]taskdomain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]taskdomain.Task, 0)
	for _, t := range r.s.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *Tasks) Create(_ context.Context, t *taskdomain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[t.ProjectID]; !ok {
		return apperr.Validation("invalid fields")
	}
	if _, ok := r.s.tasks[t.ID]; ok {
		return apperr.Conflict("record already exists")
	}
	t.CreatedAt = r.s.tick()
	t.UpdatedAt = t.CreatedAt
	r.s.tasks[t.ID] = *t
	return nil
}

func (r *Tasks) Update(_ context.Context, t *taskdomain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tasks[t.ID]
	if !ok {
		return apperr.NotFound("task not found")
	}
	t.ProjectID = stored.ProjectID
	t.UpdatedAt = r.s.tick()
	r.s.tasks[t.ID] = *t
	return nil
}

func (r *Tasks) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return apperr.NotFound("task not found")
	}
	delete(r.s.tasks, id)
	return nil
}

func cloneProject(p projectdomain.Project) *projectdomain.Project {
	p.TaskIDs = append([]string{}, p.TaskIDs...)
	p.Collaborators = append([]string{}, p.Collaborators...)
	return &p
}
