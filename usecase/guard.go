package usecase

import (
	"context"

	"github.com/glatasks/backend/domain"
	"github.com/glatasks/backend/repository"
)

// OwnedList loads a list and verifies it belongs to the user. Missing lists
// map to NOT_FOUND, foreign lists to FORBIDDEN. Every mutation path goes
// through this guard, including the target of a move.
func OwnedList(ctx context.Context, lists repository.ListRepository, listID, userID int64) (*domain.List, error) {
	list, err := lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !list.OwnedBy(userID) {
		return nil, domain.ErrNotOwner
	}
	return list, nil
}

// OwnedTask resolves a task through its owning list: the list must belong to
// the user and the task must belong to the list.
func OwnedTask(ctx context.Context, lists repository.ListRepository, tasks repository.TaskRepository, listID, taskID, userID int64) (*domain.List, *domain.Task, error) {
	list, err := OwnedList(ctx, lists, listID, userID)
	if err != nil {
		return nil, nil, err
	}
	task, err := tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if task.ListID != list.ID {
		return nil, nil, domain.ErrNotOwner
	}
	return list, task, nil
}
