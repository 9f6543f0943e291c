package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/taskpad/internal/model"
)

const taskColumns = `id, owner_id, title, description, status, priority, created_at, updated_at`

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, owner_id, title, description, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+taskColumns,
		t.ID, t.OwnerID, t.Title, t.Description, string(t.Status), string(t.Priority), t.CreatedAt, t.UpdatedAt,
	)
	created, err := scanTask(row)
	return created, mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, ownerID, id string) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	t, err := scanTask(row)
	return t, mapError(err)
}

func (r *TaskRepo) List(ctx context.Context, ownerID string, order model.Order) ([]model.Task, error) {
	orderBy, err := orderClause(order)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_id = $1
		`+orderBy, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update applies only the fields set in p. updated_at never moves backwards.
func (r *TaskRepo) Update(ctx context.Context, ownerID, id string, p model.TaskPatch) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    status = COALESCE($5, status),
		    priority = COALESCE($6, priority),
		    updated_at = GREATEST(updated_at, $7)
		WHERE id = $1 AND owner_id = $2
		RETURNING `+taskColumns,
		id, ownerID, p.Title, p.Description, stringPtr(p.Status), stringPtr(p.Priority), p.UpdatedAt,
	)
	t, err := scanTask(row)
	return t, mapError(err)
}

func (r *TaskRepo) Delete(ctx context.Context, ownerID, id string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		t                model.Task
		status, priority string
	)
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &status, &priority, &t.CreatedAt, &t.UpdatedAt)
	t.Status = model.Status(status)
	t.Priority = model.Priority(priority)
	return t, err
}
