package lists

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/glatasks/backend/domain"
	"github.com/glatasks/backend/pkg/freshness"
	"github.com/glatasks/backend/pkg/timeutil"
	"github.com/glatasks/backend/repository"
	"github.com/glatasks/backend/usecase"
)

// Show types accepted by the list and task read endpoints.
const (
	ShowList   = "list"
	ShowHidden = "hidden"
	ShowAll    = "all"
)

// Info is the wire shape of a list summary.
type Info struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	LastUpdated string `json:"last_updated"`
}

// TaskInfo is the wire shape of a task within a list.
type TaskInfo struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Notes  string `json:"notes"`
	Status string `json:"status"`
}

// OverviewResult carries list summaries plus the newest last_updated for the
// Last-Modified response header.
type OverviewResult struct {
	NotModified  bool
	Lists        []Info
	LastModified string
}

// TasksResult mirrors OverviewResult for a single list's tasks.
type TasksResult struct {
	NotModified  bool
	Tasks        []TaskInfo
	LastModified string
}

type UseCase struct {
	lists  repository.ListRepository
	tasks  repository.TaskRepository
	loc    *time.Location
	logger *zap.Logger
}

func New(lists repository.ListRepository, tasks repository.TaskRepository, loc *time.Location, logger *zap.Logger) *UseCase {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		lists:  lists,
		tasks:  tasks,
		loc:    loc,
		logger: logger,
	}
}

func validShowType(showType string) error {
	switch showType {
	case ShowList, ShowHidden, ShowAll:
		return nil
	default:
		return domain.NewError(domain.ErrCodeInvalid, "unknown show type: "+showType)
	}
}

// Overview returns the user's list summaries without tasks. show_type "list"
// excludes hidden lists; "hidden" and "all" include everything (a visible
// list may still hold hidden tasks). Honors If-Modified-Since against the
// newest returned list.
func (uc *UseCase) Overview(ctx context.Context, userID int64, showType, ifModifiedSince string) (OverviewResult, error) {
	if err := validShowType(showType); err != nil {
		return OverviewResult{}, err
	}

	all, err := uc.lists.ListByUser(ctx, userID)
	if err != nil {
		return OverviewResult{}, err
	}

	var (
		result OverviewResult
		latest time.Time
	)
	for _, list := range all {
		if showType == ShowList && list.Status == domain.ListStatusHidden {
			continue
		}
		result.Lists = append(result.Lists, Info{
			ID:          list.ID,
			Title:       list.Title,
			LastUpdated: timeutil.ToWire(list.LastUpdated, uc.loc),
		})
		if list.LastUpdated.After(latest) {
			latest = list.LastUpdated
		}
	}
	if !latest.IsZero() {
		result.LastModified = timeutil.ToWire(latest, uc.loc)
		if uc.notModified(ifModifiedSince, latest) {
			return OverviewResult{NotModified: true}, nil
		}
	}
	return result, nil
}

// Tasks returns one list's tasks filtered by show_type, honoring
// If-Modified-Since against the list's last_updated.
func (uc *UseCase) Tasks(ctx context.Context, userID, listID int64, showType, ifModifiedSince string) (TasksResult, error) {
	if err := validShowType(showType); err != nil {
		return TasksResult{}, err
	}

	list, err := usecase.OwnedList(ctx, uc.lists, listID, userID)
	if err != nil {
		return TasksResult{}, err
	}

	if uc.notModified(ifModifiedSince, list.LastUpdated) {
		return TasksResult{NotModified: true}, nil
	}

	all, err := uc.tasks.ListByList(ctx, list.ID)
	if err != nil {
		return TasksResult{}, err
	}

	result := TasksResult{LastModified: timeutil.ToWire(list.LastUpdated, uc.loc)}
	for i := range all {
		task := &all[i]
		switch showType {
		case ShowList:
			if task.Status == domain.StatusHidden {
				continue
			}
		case ShowHidden:
			if task.Status != domain.StatusHidden {
				continue
			}
		}
		result.Tasks = append(result.Tasks, TaskInfo{
			ID:     task.ID,
			Title:  task.Title(),
			Notes:  task.Notes(),
			Status: task.Status.String(),
		})
	}
	return result, nil
}

// Create adds a list for the user. Empty titles are rejected.
func (uc *UseCase) Create(ctx context.Context, userID int64, title string) (*domain.List, error) {
	if err := domain.ValidateListTitle(title); err != nil {
		return nil, err
	}
	list := &domain.List{
		UserID:      userID,
		Status:      domain.ListStatusActive,
		Title:       title,
		LastUpdated: timeutil.Now(uc.loc),
	}
	if err := uc.lists.Create(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Rename changes the title of an owned list and bumps last_updated.
func (uc *UseCase) Rename(ctx context.Context, userID, listID int64, title string) error {
	if err := domain.ValidateListTitle(title); err != nil {
		return err
	}
	list, err := usecase.OwnedList(ctx, uc.lists, listID, userID)
	if err != nil {
		return err
	}
	return uc.lists.Rename(ctx, list.ID, title, timeutil.Now(uc.loc))
}

// Hide marks an owned list hidden. The timestamp is bumped so clients with a
// cached copy refetch and notice the change.
func (uc *UseCase) Hide(ctx context.Context, userID, listID int64) error {
	return uc.setStatus(ctx, userID, listID, domain.ListStatusHidden)
}

// Show marks an owned list visible again.
func (uc *UseCase) Show(ctx context.Context, userID, listID int64) error {
	return uc.setStatus(ctx, userID, listID, domain.ListStatusActive)
}

func (uc *UseCase) setStatus(ctx context.Context, userID, listID int64, status string) error {
	list, err := usecase.OwnedList(ctx, uc.lists, listID, userID)
	if err != nil {
		return err
	}
	return uc.lists.SetStatus(ctx, list.ID, status, timeutil.Now(uc.loc))
}

// Clear flips every completed task in an owned list to hidden.
func (uc *UseCase) Clear(ctx context.Context, userID, listID int64) error {
	list, err := usecase.OwnedList(ctx, uc.lists, listID, userID)
	if err != nil {
		return err
	}
	hidden, err := uc.tasks.HideCompleted(ctx, list.ID)
	if err != nil {
		return err
	}
	uc.logger.Debug("completed tasks hidden", zap.Int64("list_id", list.ID), zap.Int64("count", hidden))
	return uc.lists.Touch(ctx, list.ID, timeutil.Now(uc.loc))
}

// Delete removes an owned list and all of its tasks. This is the one hard
// delete in the model; task deletion elsewhere is a status transition.
func (uc *UseCase) Delete(ctx context.Context, userID, listID int64) error {
	list, err := usecase.OwnedList(ctx, uc.lists, listID, userID)
	if err != nil {
		return err
	}
	if err := uc.tasks.DeleteByList(ctx, list.ID); err != nil {
		return err
	}
	return uc.lists.Delete(ctx, list.ID)
}

func (uc *UseCase) notModified(header string, serverLastUpdated time.Time) bool {
	if header == "" {
		return false
	}
	notModified, err := freshness.Evaluate(header, serverLastUpdated, uc.loc)
	if err != nil {
		// A malformed client timestamp degrades to a full response.
		uc.logger.Warn("invalid If-Modified-Since header", zap.String("value", header), zap.Error(err))
		return false
	}
	return notModified
}
