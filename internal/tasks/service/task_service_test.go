package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	projectdomain "github.com/GoSim-25-26J-441/taskroom-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/storage/memory"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/tasks/domain"
	userdomain "github.com/GoSim-25-26J-441/taskroom-backend/internal/users/domain"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	store   *memory.Store
	svc     *TaskService
	project string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	for _, u := range []userdomain.User{
		{ID: "C", Name: "Cora", Email: "cora@example.com"},
		{ID: "U", Name: "Uli", Email: "uli@example.com"},
		{ID: "X", Name: "Xan", Email: "xan@example.com"},
	} {
		require.NoError(t, store.Users().Create(ctx, &u))
	}
	require.NoError(t, store.Projects().Create(ctx, &projectdomain.Project{
		ID: "P", Name: "Launch", Description: "d", Client: "Acme", CreatorID: "C",
		TaskIDs: []string{}, Collaborators: []string{"U"},
	}))

	return &fixture{
		store:   store,
		svc:     NewTaskService(store.Tasks(), store.Projects(), store.Users()),
		project: "P",
	}
}

func (f *fixture) create(t *testing.T) *domain.View {
	t.Helper()
	v, err := f.svc.Create(context.Background(), "C", f.project, domain.Fields{
		Name:        ptr("Draft copy"),
		Description: ptr("homepage"),
		Priority:    ptr(domain.PriorityMedium),
	})
	require.NoError(t, err)
	return v
}

func TestCreate_AppendsToProject(t *testing.T) {
	f := newFixture(t)
	v := f.create(t)

	assert.Equal(t, "P", v.ProjectID)
	assert.False(t, v.Completed)

	p, err := f.store.Projects().FindByID(context.Background(), "P")
	require.NoError(t, err)
	assert.Equal(t, []string{v.ID}, p.TaskIDs)
}

func TestCreate_Rights(t *testing.T) {
	f := newFixture(t)
	fields := domain.Fields{Name: ptr("a"), Description: ptr("b"), Priority: ptr(domain.PriorityLow)}

	_, err := f.svc.Create(context.Background(), "U", "P", fields)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, "not allowed to add tasks to this project", apperr.Message(err))

	_, err = f.svc.Create(context.Background(), "C", "missing", fields)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCollaboratorMayOnlyToggle(t *testing.T) {
	f := newFixture(t)
	v := f.create(t)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, "U", v.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.svc.Update(ctx, "U", v.ID, domain.Fields{Name: ptr("hijack")})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.svc.Delete(ctx, "U", v.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.svc.ToggleCompletion(ctx, "U", v.ID)
	assert.NoError(t, err)

	_, err = f.svc.ToggleCompletion(ctx, "X", v.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestToggle_LastToucherScenario(t *testing.T) {
	f := newFixture(t)
	v := f.create(t)
	ctx := context.Background()

	afterU, err := f.svc.ToggleCompletion(ctx, "U", v.ID)
	require.NoError(t, err)
	assert.True(t, afterU.Completed)
	require.NotNil(t, afterU.CompletedBy)
	assert.Equal(t, "U", afterU.CompletedBy.ID)
	assert.Equal(t, "Uli", afterU.CompletedBy.Name)

	afterC, err := f.svc.ToggleCompletion(ctx, "C", v.ID)
	require.NoError(t, err)
	assert.False(t, afterC.Completed)
	require.NotNil(t, afterC.CompletedBy)
	assert.Equal(t, "C", afterC.CompletedBy.ID)

	stored, err := f.store.Tasks().FindByID(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, stored.Completed)
	assert.Equal(t, "C", *stored.CompletedBy)
}

func TestUpdate_Partial(t *testing.T) {
	f := newFixture(t)
	v := f.create(t)

	got, err := f.svc.Update(context.Background(), "C", v.ID, domain.Fields{Priority: ptr(domain.PriorityHigh)})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	assert.Equal(t, "Draft copy", got.Name)
	assert.Equal(t, "homepage", got.Description)

	_, err = f.svc.Update(context.Background(), "C", "missing", domain.Fields{})
	assert.Equal(t, "task not found", apperr.Message(err))
}

func TestDelete_RemovesReference(t *testing.T) {
	f := newFixture(t)
	v := f.create(t)
	ctx := context.Background()

	deleted, err := f.svc.Delete(ctx, "C", v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, deleted.ID)

	p, err := f.store.Projects().FindByID(ctx, "P")
	require.NoError(t, err)
	assert.NotContains(t, p.TaskIDs, v.ID)

	_, err = f.svc.Get(ctx, "C", v.ID)
	assert.True(t, apperr.IsNotFound(err))
}

type failingTasks struct {
	Repository
	err error
}

func (f failingTasks) Delete(context.Context, string) error { return f.err }

func TestDelete_ReportsPartialFailure(t *testing.T) {
	f := newFixture(t)
	v := f.create(t)
	ctx := context.Background()

	boom := errors.New("disk full")
	svc := NewTaskService(failingTasks{Repository: f.store.Tasks(), err: boom}, f.store.Projects(), f.store.Users())

	_, err := svc.Delete(ctx, "C", v.ID)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.ErrorIs(t, err, boom)

	// The reference removal ran and is not rolled back.
	p, err := f.store.Projects().FindByID(ctx, "P")
	require.NoError(t, err)
	assert.NotContains(t, p.TaskIDs, v.ID)
}
