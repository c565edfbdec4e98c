package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/storage/postgres"
)

const (
	projectColumns = `id, name, description, due_date, client, creator_id, task_ids, collaborator_ids, created_at, updated_at`
	notFound       = "project not found"
)

// ProjectRepository stores projects with their task and collaborator
// reference lists as text arrays. Each method is a single-row statement.
type ProjectRepository struct {
	db postgres.Querier
}

func NewProjectRepository(db postgres.Querier) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	q := `select ` + projectColumns + ` from projects where id = $1`
	p, err := scanProject(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, postgres.Classify("load project", notFound, err)
	}
	return p, nil
}

// ListForMember returns the projects userID created or collaborates on.
func (r *ProjectRepository) ListForMember(ctx context.Context, userID string) ([]domain.Project, error) {
	q := `
select ` + projectColumns + `
from projects
where creator_id = $1 or $1 = any (collaborator_ids)
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, postgres.Classify("list projects", notFound, err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, postgres.Classify("scan project", notFound, err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.Classify("list projects", notFound, err)
	}
	return out, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	const q = `
insert into projects (id, name, description, due_date, client, creator_id, task_ids, collaborator_ids)
values ($1, $2, $3, $4, $5, $6, $7, $8)
returning created_at, updated_at;
`
	err := r.db.QueryRow(ctx, q,
		p.ID, p.Name, p.Description, p.DueDate, p.Client, p.CreatorID, nonNil(p.TaskIDs), nonNil(p.Collaborators),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return postgres.Classify("create project", notFound, err)
}

// Update writes the editable fields. Reference lists are changed only
// through the dedicated array operations.
func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	const q = `
update projects
set name = $2, description = $3, due_date = $4, client = $5, updated_at = now()
where id = $1
returning updated_at;
`
	err := r.db.QueryRow(ctx, q, p.ID, p.Name, p.Description, p.DueDate, p.Client).Scan(&p.UpdatedAt)
	return postgres.Classify("update project", notFound, err)
}

// Delete removes the project; its tasks go with it through the foreign key.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `delete from projects where id = $1`, id)
	if err != nil {
		return postgres.Classify("delete project", notFound, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}

func (r *ProjectRepository) AddCollaborator(ctx context.Context, projectID, userID string) error {
	return r.arrayOp(ctx, "add collaborator",
		`update projects set collaborator_ids = array_append(collaborator_ids, $2), updated_at = now() where id = $1`,
		projectID, userID)
}

func (r *ProjectRepository) RemoveCollaborator(ctx context.Context, projectID, userID string) error {
	return r.arrayOp(ctx, "remove collaborator",
		`update projects set collaborator_ids = array_remove(collaborator_ids, $2), updated_at = now() where id = $1`,
		projectID, userID)
}

func (r *ProjectRepository) AddTask(ctx context.Context, projectID, taskID string) error {
	return r.arrayOp(ctx, "add task reference",
		`update projects set task_ids = array_append(task_ids, $2), updated_at = now() where id = $1`,
		projectID, taskID)
}

func (r *ProjectRepository) RemoveTask(ctx context.Context, projectID, taskID string) error {
	return r.arrayOp(ctx, "remove task reference",
		`update projects set task_ids = array_remove(task_ids, $2), updated_at = now() where id = $1`,
		projectID, taskID)
}

func (r *ProjectRepository) arrayOp(ctx context.Context, op, q, projectID, value string) error {
	ct, err := r.db.Exec(ctx, q, projectID, value)
	if err != nil {
		return postgres.Classify(op, notFound, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.DueDate,
		&p.Client,
		&p.CreatorID,
		&p.TaskIDs,
		&p.Collaborators,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.TaskIDs = nonNil(p.TaskIDs)
	p.Collaborators = nonNil(p.Collaborators)
	return &p, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
