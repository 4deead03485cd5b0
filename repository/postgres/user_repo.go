package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glatasks/backend/domain"
	"github.com/glatasks/backend/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
		SELECT id, handle, pass_hash, joined, last_login
		FROM users
		WHERE id = $1
	`
	return scanUser(db(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *userRepository) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	const query = `
		SELECT id, handle, pass_hash, joined, last_login
		FROM users
		WHERE handle = $1
	`
	return scanUser(db(ctx, r.pool).QueryRow(ctx, query, handle))
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
		INSERT INTO users (handle, pass_hash, joined)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := db(ctx, r.pool).QueryRow(ctx, query,
		user.Handle,
		user.PassHash,
		user.Joined,
	).Scan(&user.ID); err != nil {
		// Concurrent registrations can slip past the use case's existence
		// check; the unique index on handle is the authority.
		if isUniqueViolation(err) {
			return domain.NewError(domain.ErrCodeInvalid, "user id is already taken")
		}
		return err
	}
	return nil
}

// isUniqueViolation reports a Postgres unique-index violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE users SET last_login = $2 WHERE id = $1`
	tag, err := db(ctx, r.pool).Exec(ctx, query, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(&user.ID, &user.Handle, &user.PassHash, &user.Joined, &user.LastLogin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
