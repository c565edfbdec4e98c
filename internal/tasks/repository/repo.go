package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/storage/postgres"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/tasks/domain"
)

const (
	taskColumns = `id, name, description, priority, due_date, completed, project_id, completed_by, created_at, updated_at`
	notFound    = "task not found"
)

type TaskRepository struct {
	db postgres.Querier
}

func NewTaskRepository(db postgres.Querier) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	q := `select ` + taskColumns + ` from tasks where id = $1`
	t, err := scanTask(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, postgres.Classify("load task", notFound, err)
	}
	return t, nil
}

// ListByProject returns the tasks of a project in creation order.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	q := `select ` + taskColumns + ` from tasks where project_id = $1 order by created_at asc`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, postgres.Classify("list tasks", notFound, err)
	}
	defer rows.Close()

	out := make([]domain.Task, 0, 16)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, postgres.Classify("scan task", notFound, err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.Classify("list tasks", notFound, err)
	}
	return out, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	const q = `
insert into tasks (id, name, description, priority, due_date, completed, project_id, completed_by)
values ($1, $2, $3, $4, $5, $6, $7, $8)
returning created_at, updated_at;
`
	err := r.db.QueryRow(ctx, q,
		t.ID, t.Name, t.Description, string(t.Priority), t.DueDate, t.Completed, t.ProjectID, t.CompletedBy,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	return postgres.Classify("create task", notFound, err)
}

// Update writes every mutable field. project_id never changes.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	const q = `
update tasks
set name = $2, description = $3, priority = $4, due_date = $5, completed = $6, completed_by = $7, updated_at = now()
where id = $1
returning updated_at;
`
	err := r.db.QueryRow(ctx, q,
		t.ID, t.Name, t.Description, string(t.Priority), t.DueDate, t.Completed, t.CompletedBy,
	).Scan(&t.UpdatedAt)
	return postgres.Classify("update task", notFound, err)
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `delete from tasks where id = $1`, id)
	if err != nil {
		return postgres.Classify("delete task", notFound, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t        domain.Task
		priority string
	)
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&priority,
		&t.DueDate,
		&t.Completed,
		&t.ProjectID,
		&t.CompletedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Priority = domain.Priority(priority)
	return &t, nil
}
