package tasks_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glatasks/backend/domain"
	"github.com/glatasks/backend/pkg/timeutil"
	"github.com/glatasks/backend/usecase/tasks"
)

type fakeListRepo struct {
	seq  int64
	rows map[int64]domain.List
}

func newFakeListRepo() *fakeListRepo {
	return &fakeListRepo{rows: make(map[int64]domain.List)}
}

func (r *fakeListRepo) GetByID(_ context.Context, id int64) (*domain.List, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrListNotFound
	}
	return &row, nil
}

func (r *fakeListRepo) ListByUser(_ context.Context, userID int64) ([]domain.List, error) {
	var out []domain.List
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *fakeListRepo) Create(_ context.Context, list *domain.List) error {
	r.seq++
	list.ID = r.seq
	r.rows[list.ID] = *list
	return nil
}

func (r *fakeListRepo) Rename(_ context.Context, id int64, title string, at time.Time) error {
	row, ok := r.rows[id]
	if !ok {
		return domain.ErrListNotFound
	}
	row.Title = title
	row.LastUpdated = at
	r.rows[id] = row
	return nil
}

func (r *fakeListRepo) SetStatus(_ context.Context, id int64, status string, at time.Time) error {
	row, ok := r.rows[id]
	if !ok {
		return domain.ErrListNotFound
	}
	row.Status = status
	row.LastUpdated = at
	r.rows[id] = row
	return nil
}

func (r *fakeListRepo) Touch(_ context.Context, id int64, at time.Time) error {
	row, ok := r.rows[id]
	if !ok {
		return domain.ErrListNotFound
	}
	row.LastUpdated = at
	r.rows[id] = row
	return nil
}

func (r *fakeListRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.rows[id]; !ok {
		return domain.ErrListNotFound
	}
	delete(r.rows, id)
	return nil
}

type fakeTaskRepo struct {
	seq  int64
	rows map[int64]domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{rows: make(map[int64]domain.Task)}
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &row, nil
}

func (r *fakeTaskRepo) ListByList(_ context.Context, listID int64) ([]domain.Task, error) {
	var out []domain.Task
	for _, row := range r.rows {
		if row.ListID == listID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Updated.After(out[j].Updated) })
	return out, nil
}

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.seq++
	task.ID = r.seq
	r.rows[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *domain.Task) error {
	if _, ok := r.rows[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	r.rows[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) HideCompleted(_ context.Context, listID int64) (int64, error) {
	var n int64
	for id, row := range r.rows {
		if row.ListID == listID && row.Status == domain.StatusCompleted {
			row.Status = domain.StatusHidden
			r.rows[id] = row
			n++
		}
	}
	return n, nil
}

func (r *fakeTaskRepo) DeleteByList(_ context.Context, listID int64) error {
	for id, row := range r.rows {
		if row.ListID == listID {
			delete(r.rows, id)
		}
	}
	return nil
}

func (r *fakeTaskRepo) PurgeDeleted(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for id, row := range r.rows {
		if row.Status == domain.StatusDeleted && row.Updated.Before(before) {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func fixture(t *testing.T) (*tasks.UseCase, *fakeListRepo, *fakeTaskRepo) {
	t.Helper()
	listRepo := newFakeListRepo()
	taskRepo := newFakeTaskRepo()
	return tasks.New(listRepo, taskRepo, time.UTC, nil), listRepo, taskRepo
}

func seedList(t *testing.T, repo *fakeListRepo, userID int64, updated time.Time) int64 {
	t.Helper()
	list := &domain.List{UserID: userID, Status: domain.ListStatusActive, Title: "errands", LastUpdated: updated}
	require.NoError(t, repo.Create(context.Background(), list))
	return list.ID
}

func seedTask(t *testing.T, repo *fakeTaskRepo, listID int64, status domain.TaskStatus, text string, at time.Time) int64 {
	t.Helper()
	task := &domain.Task{ListID: listID, Status: status, Text: text, Created: at, Updated: at}
	require.NoError(t, repo.Create(context.Background(), task))
	return task.ID
}

func TestAdd(t *testing.T) {
	uc, listRepo, taskRepo := fixture(t)
	stale := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	listID := seedList(t, listRepo, 1, stale)

	task, err := uc.Add(context.Background(), 1, listID, "\r\nbuy milk\nnotes  \n")
	require.NoError(t, err)
	assert.Equal(t, "buy milk\nnotes", task.Text)
	assert.Equal(t, domain.StatusNeedsAction, task.Status)
	assert.NotZero(t, task.ID)

	row, err := taskRepo.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Text, row.Text)

	listRow, err := listRepo.GetByID(context.Background(), listID)
	require.NoError(t, err)
	assert.True(t, listRow.LastUpdated.After(stale))
}

func TestAdd_ForeignList(t *testing.T) {
	uc, listRepo, _ := fixture(t)
	listID := seedList(t, listRepo, 2, timeutil.Now(time.UTC))

	_, err := uc.Add(context.Background(), 1, listID, "not mine")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
}

func TestApplyPatch_TextBumpsUpdated(t *testing.T) {
	uc, listRepo, taskRepo := fixture(t)
	stale := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	listID := seedList(t, listRepo, 1, stale)
	taskID := seedTask(t, taskRepo, listID, domain.StatusNeedsAction, "old text", stale)

	text := "new text"
	result, err := uc.ApplyPatch(context.Background(), 1, listID, taskID, tasks.Patch{Text: &text})
	require.NoError(t, err)
	assert.Equal(t, "new text", result.Title)

	row, err := taskRepo.GetByID(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, "new text", row.Text)
	assert.True(t, row.Updated.After(stale))
}

func TestApplyPatch_KeepOrder(t *testing.T) {
	uc, listRepo, taskRepo := fixture(t)
	stale := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	listID := seedList(t, listRepo, 1, stale)
	taskID := seedTask(t, taskRepo, listID, domain.StatusNeedsAction, "old text", stale)

	text := "edited quietly"
	_, err := uc.ApplyPatch(context.Background(), 1, listID, taskID, tasks.Patch{Text: &text, KeepOrder: true})
	require.NoError(t, err)

	row, err := taskRepo.GetByID(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, "edited quietly", row.Text)
	assert.True(t, row.Updated.Equal(stale))

	// The list timestamp still moves so conditional reads notice the edit.
	listRow, err := listRepo.GetByID(context.Background(), listID)
	require.NoError(t, err)
	assert.True(t, listRow.LastUpdated.After(stale))
}

func TestApplyPatch_CompleteStampsTime(t *testing.T) {
	uc, listRepo, taskRepo := fixture(t)
	now := timeutil.Now(time.UTC)
	listID := seedList(t, listRepo, 1, now)
	taskID := seedTask(t, taskRepo, listID, domain.StatusNeedsAction, "task", now)

	status := "completed"
	result, err := uc.ApplyPatch(context.Background(), 1, listID, taskID, tasks.Patch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "completed", result.Status)
	require.NotNil(t, result.Completed)

	row, err := taskRepo.GetByID(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, row.Status)
	assert.NotNil(t, row.Completed)
}

func TestApplyPatch_HiddenToCompletedKeepsStamp(t *testing.T) {
	uc, listRepo, taskRepo := fixture(t)
	now := timeutil.Now(time.UTC)
	listID := seedList(t, listRepo, 1, now)
	taskID := seedTask(t, taskRepo, listID, domain.StatusHidden, "task", now)

	// Only the needsAction to completed transition stamps the time.
	status := "completed"
	result, err := uc.ApplyPatch(context.Background(), 1, listID, taskID, tasks.Patch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "completed", result.Status)
	assert.Nil(t, result.Completed)
}

func TestApplyPatch_UnknownStatus(t *testing.T) {
	uc, listRepo, taskRepo := fixture(t)
	now := timeutil.Now(time.UTC)
	listID := seedList(t, listRepo, 1, now)
	taskID := seedTask(t, taskRepo, listID, domain.StatusNeedsAction, "task", now)

	status := "done"
	_, err := uc.ApplyPatch(context.Background(), 1, listID, taskID, tasks.Patch{Status: &status})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestApplyPatch_ExplicitCompletedNullClears(t *testing.T) {
	uc, listRepo, taskRepo := fixture(t)
	now := timeutil.Now(time.UTC)
	listID := seedList(t, listRepo, 1, now)
	task := &domain.Task{ListID: listID, Status: domain.StatusCompleted, Text: "task", Created: now, Updated: now, Completed: &now}
	require.NoError(t, taskRepo.Create(context.Background(), task))

	result, err := uc.ApplyPatch(context.Background(), 1, listID, task.ID, tasks.Patch{HasCompleted: true})
	require.NoError(t, err)
	assert.Nil(t, result.Completed)

	row, err := taskRepo.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Nil(t, row.Completed)
}

func TestApplyPatch_ExplicitCompletedValue(t *testing.T) {
	uc, listRepo, taskRepo := fixture(t)
	now := timeutil.Now(time.UTC)
	listID := seedList(t, listRepo, 1, now)
	taskID := seedTask(t, taskRepo, listID, domain.StatusCompleted, "task", now)

	instant := time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC)
	result, err := uc.ApplyPatch(context.Background(), 1, listID, taskID, tasks.Patch{HasCompleted: true, Completed: &instant})
	require.NoError(t, err)
	require.NotNil(t, result.Completed)
	assert.Equal(t, "2026-08-30T03:00:00Z", *result.Completed)
}

func TestApplyPatch_MoveBumpsBothLists(t *testing.T) {
	uc, listRepo, taskRepo := fixture(t)
	stale := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	sourceID := seedList(t, listRepo, 1, stale)
	targetID := seedList(t, listRepo, 1, stale)
	taskID := seedTask(t, taskRepo, sourceID, domain.StatusNeedsAction, "task", stale)

	result, err := uc.ApplyPatch(context.Background(), 1, sourceID, taskID, tasks.Patch{MoveTo: &targetID})
	require.NoError(t, err)
	assert.Equal(t, targetID, result.ListID)

	row, err := taskRepo.GetByID(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, targetID, row.ListID)

	source, err := listRepo.GetByID(context.Background(), sourceID)
	require.NoError(t, err)
	assert.True(t, source.LastUpdated.After(stale))

	target, err := listRepo.GetByID(context.Background(), targetID)
	require.NoError(t, err)
	assert.True(t, target.LastUpdated.After(stale))
}

func TestApplyPatch_MoveToForeignList(t *testing.T) {
	uc, listRepo, taskRepo := fixture(t)
	now := timeutil.Now(time.UTC)
	sourceID := seedList(t, listRepo, 1, now)
	foreignID := seedList(t, listRepo, 2, now)
	taskID := seedTask(t, taskRepo, sourceID, domain.StatusNeedsAction, "task", now)

	_, err := uc.ApplyPatch(context.Background(), 1, sourceID, taskID, tasks.Patch{MoveTo: &foreignID})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	row, getErr := taskRepo.GetByID(context.Background(), taskID)
	require.NoError(t, getErr)
	assert.Equal(t, sourceID, row.ListID)
}

func TestApplyPatch_TaskInDifferentList(t *testing.T) {
	uc, listRepo, taskRepo := fixture(t)
	now := timeutil.Now(time.UTC)
	listID := seedList(t, listRepo, 1, now)
	otherID := seedList(t, listRepo, 1, now)
	taskID := seedTask(t, taskRepo, otherID, domain.StatusNeedsAction, "task", now)

	_, err := uc.ApplyPatch(context.Background(), 1, listID, taskID, tasks.Patch{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
}

func TestComposeShareText(t *testing.T) {
	assert.Equal(t, "Title\nbody\nhttps://example.com",
		tasks.ComposeShareText("Title", "body", "https://example.com"))

	// Text duplicating the title collapses to one line.
	assert.Equal(t, "Title\nhttps://example.com",
		tasks.ComposeShareText("Title", "Title", "https://example.com"))

	assert.Equal(t, "https://example.com", tasks.ComposeShareText("", "", "https://example.com"))
	assert.Equal(t, "", tasks.ComposeShareText("", "", ""))
}
