package tasks

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/glatasks/backend/domain"
	"github.com/glatasks/backend/pkg/timeutil"
	"github.com/glatasks/backend/repository"
	"github.com/glatasks/backend/usecase"
)

// Patch is the tagged optional-fields form of a partial task update: only
// non-nil slots are applied. Completed is tri-state (absent, explicit null,
// explicit value), so it carries its own presence flag.
type Patch struct {
	Text      *string
	KeepOrder bool
	Status    *string
	// HasCompleted marks an explicit completed override; Completed nil with
	// HasCompleted set clears the stamp.
	HasCompleted bool
	Completed    *time.Time
	MoveTo       *int64
}

// PatchResult is the wire response of a patch.
type PatchResult struct {
	Status    string  `json:"status"`
	Completed *string `json:"completed"`
	ListID    int64   `json:"list_id"`
	Title     string  `json:"title"`
	Notes     string  `json:"notes"`
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

// Add inserts a task into an owned list and bumps the list timestamp. The
// text keeps interior whitespace but loses leading blank lines and trailing
// whitespace.
func (uc *UseCase) Add(ctx context.Context, userID, listID int64, text string) (*domain.Task, error) {
	list, err := usecase.OwnedList(ctx, uc.lists, listID, userID)
	if err != nil {
		return nil, err
	}

	now := timeutil.Now(uc.loc)
	task := &domain.Task{
		ListID:  list.ID,
		Status:  domain.StatusNeedsAction,
		Text:    domain.CleanTaskText(text),
		Created: now,
		Updated: now,
	}
	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	if err := uc.lists.Touch(ctx, list.ID, now); err != nil {
		return nil, err
	}
	return task, nil
}

// ApplyPatch merges the present fields of a patch into an owned task.
// Status entering completed from needsAction stamps the completion time;
// an explicit completed null clears it. A move re-parents the task after
// re-running the ownership guard on the target list and bumps both list
// timestamps. The source list timestamp is always bumped.
func (uc *UseCase) ApplyPatch(ctx context.Context, userID, listID, taskID int64, patch Patch) (PatchResult, error) {
	list, task, err := usecase.OwnedTask(ctx, uc.lists, uc.tasks, listID, taskID, userID)
	if err != nil {
		return PatchResult{}, err
	}

	now := timeutil.Now(uc.loc)

	if patch.Text != nil {
		task.Text = *patch.Text
		if !patch.KeepOrder {
			task.Updated = now
		}
	}

	if patch.Status != nil {
		status, err := domain.ParseTaskStatus(*patch.Status)
		if err != nil {
			return PatchResult{}, err
		}
		if task.Status == domain.StatusNeedsAction && status == domain.StatusCompleted {
			task.Completed = &now
		}
		task.Status = status
	}

	if patch.HasCompleted {
		if patch.Completed == nil {
			task.Completed = nil
		} else {
			civil := timeutil.Civil(*patch.Completed, uc.loc)
			task.Completed = &civil
		}
	}

	if patch.MoveTo != nil && *patch.MoveTo != list.ID {
		target, err := usecase.OwnedList(ctx, uc.lists, *patch.MoveTo, userID)
		if err != nil {
			return PatchResult{}, err
		}
		task.ListID = target.ID
		if err := uc.lists.Touch(ctx, target.ID, now); err != nil {
			return PatchResult{}, err
		}
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		return PatchResult{}, err
	}
	if err := uc.lists.Touch(ctx, list.ID, now); err != nil {
		return PatchResult{}, err
	}

	result := PatchResult{
		Status: task.Status.String(),
		ListID: task.ListID,
		Title:  task.Title(),
		Notes:  task.Notes(),
	}
	if task.Completed != nil {
		wire := timeutil.ToWire(*task.Completed, uc.loc)
		result.Completed = &wire
	}
	return result, nil
}

// ComposeShareText builds a task body from a share intent: title, text
// (skipped when it duplicates the title) and URL, one per line.
func ComposeShareText(title, text, url string) string {
	var parts []string
	if title != "" {
		parts = append(parts, title)
	}
	if text != "" && text != title {
		parts = append(parts, text)
	}
	if url != "" {
		parts = append(parts, url)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
