package repository

import (
	"context"
	"time"

	"github.com/glatasks/backend/domain"
)

type ListRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.List, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.List, error)
	Create(ctx context.Context, list *domain.List) error
	Rename(ctx context.Context, id int64, title string, at time.Time) error
	SetStatus(ctx context.Context, id int64, status string, at time.Time) error
	// Touch bumps last_updated only.
	Touch(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
}
