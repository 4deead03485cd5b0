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

type listRepository struct {
	pool *pgxpool.Pool
}

// NewListRepository returns a Postgres-backed implementation of ListRepository.
func NewListRepository(pool *pgxpool.Pool) repository.ListRepository {
	return &listRepository{pool: pool}
}

func (r *listRepository) GetByID(ctx context.Context, id int64) (*domain.List, error) {
	const query = `
		SELECT id, user_id, status, title, last_updated
		FROM lists
		WHERE id = $1
	`
	return scanList(db(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *listRepository) ListByUser(ctx context.Context, userID int64) ([]domain.List, error) {
	const query = `
		SELECT id, user_id, status, title, last_updated
		FROM lists
		WHERE user_id = $1
		ORDER BY title
	`
	rows, err := db(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []domain.List
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, *list)
	}
	return lists, rows.Err()
}

func (r *listRepository) Create(ctx context.Context, list *domain.List) error {
	if list == nil {
		return domain.ErrInvalidPayload
	}
	if list.Status == "" {
		list.Status = domain.ListStatusActive
	}

	const query = `
		INSERT INTO lists (user_id, status, title, last_updated)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return db(ctx, r.pool).QueryRow(ctx, query,
		list.UserID,
		list.Status,
		list.Title,
		list.LastUpdated,
	).Scan(&list.ID)
}

func (r *listRepository) Rename(ctx context.Context, id int64, title string, at time.Time) error {
	const query = `UPDATE lists SET title = $2, last_updated = $3 WHERE id = $1`
	return r.exec(ctx, query, id, title, at)
}

func (r *listRepository) SetStatus(ctx context.Context, id int64, status string, at time.Time) error {
	const query = `UPDATE lists SET status = $2, last_updated = $3 WHERE id = $1`
	return r.exec(ctx, query, id, status, at)
}

func (r *listRepository) Touch(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE lists SET last_updated = $2 WHERE id = $1`
	return r.exec(ctx, query, id, at)
}

func (r *listRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM lists WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *listRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := db(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListNotFound
	}
	return nil
}

func scanList(row pgx.Row) (*domain.List, error) {
	var list domain.List
	if err := row.Scan(&list.ID, &list.UserID, &list.Status, &list.Title, &list.LastUpdated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListNotFound
		}
		return nil, err
	}
	return &list, nil
}
