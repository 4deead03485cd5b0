package repository

import (
	"context"
	"time"

	"github.com/glatasks/backend/domain"
)

type TaskRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	// ListByList returns the list's tasks ordered most-recently-updated first.
	ListByList(ctx context.Context, listID int64) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	// HideCompleted flips every completed task in the list to hidden and
	// returns how many rows changed.
	HideCompleted(ctx context.Context, listID int64) (int64, error)
	DeleteByList(ctx context.Context, listID int64) error
	// PurgeDeleted hard-removes tasks that have carried status=deleted since
	// before the cutoff.
	PurgeDeleted(ctx context.Context, before time.Time) (int64, error)
}
