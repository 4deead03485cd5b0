package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glatasks/backend/domain"
	"github.com/glatasks/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	const query = `
	SELECT id, list_id, status_id, text, created, updated, completed
	FROM tasks
	WHERE id = $1
	`
	return scanTask(db(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *taskRepository) ListByList(ctx context.Context, listID int64) ([]domain.Task, error) {
	const query = `
	SELECT id, list_id, status_id, text, created, updated, completed
	FROM tasks
	WHERE list_id = $1
	ORDER BY updated DESC
	`
	rows, err := db(ctx, r.pool).Query(ctx, query, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (list_id, status_id, text, created, updated, completed)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id
	`
	return db(ctx, r.pool).QueryRow(ctx, query,
		task.ListID,
		int(task.Status),
		task.Text,
		task.Created,
		task.Updated,
		task.Completed,
	).Scan(&task.ID)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET list_id = $2,
		status_id = $3,
		text = $4,
		updated = $5,
		completed = $6
	WHERE id = $1
	`
	tag, err := db(ctx, r.pool).Exec(ctx, query,
		task.ID,
		task.ListID,
		int(task.Status),
		task.Text,
		task.Updated,
		task.Completed,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) HideCompleted(ctx context.Context, listID int64) (int64, error) {
	const query = `UPDATE tasks SET status_id = $3 WHERE list_id = $1 AND status_id = $2`
	tag, err := db(ctx, r.pool).Exec(ctx, query, listID, int(domain.StatusCompleted), int(domain.StatusHidden))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *taskRepository) DeleteByList(ctx context.Context, listID int64) error {
	const query = `DELETE FROM tasks WHERE list_id = $1`
	_, err := db(ctx, r.pool).Exec(ctx, query, listID)
	return err
}

func (r *taskRepository) PurgeDeleted(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM tasks WHERE status_id = $1 AND updated < $2`
	tag, err := db(ctx, r.pool).Exec(ctx, query, int(domain.StatusDeleted), before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		task      domain.Task
		statusID  int
		completed *time.Time
	)
	if err := row.Scan(
		&task.ID,
		&task.ListID,
		&statusID,
		&task.Text,
		&task.Created,
		&task.Updated,
		&completed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	task.Status = domain.TaskStatus(statusID)
	task.Completed = completed
	return &task, nil
}
