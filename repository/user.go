package repository

import (
	"context"
	"time"

	"github.com/glatasks/backend/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByHandle(ctx context.Context, handle string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}
