package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/apperrors"
	"task-tracker/internal/models"
	"task-tracker/internal/repositories"
	"task-tracker/internal/services"
	"task-tracker/testutil"
)

type fixture struct {
	ctx     context.Context
	service *services.TaskService
	alice   *models.CurrentUser
	bob     *models.CurrentUser
}

func setupTaskService(t *testing.T) *fixture {
	db := testutil.NewTestDB(t)
	userRepo := repositories.NewUserRepository(db)
	alice := testutil.CreateTestUser(t, userRepo, "alice", "password123")
	bob := testutil.CreateTestUser(t, userRepo, "bob", "password123")

	return &fixture{
		ctx:     context.Background(),
		service: services.NewTaskService(repositories.NewTaskRepository(db)),
		alice:   &models.CurrentUser{ID: alice.ID, Username: alice.Username},
		bob:     &models.CurrentUser{ID: bob.ID, Username: bob.Username},
	}
}

func (f *fixture) create(t *testing.T, user *models.CurrentUser, title string, complete bool) *models.Task {
	t.Helper()
	task, err := f.service.CreateTask(f.ctx, user, models.TaskCreateRequest{Title: title, Complete: complete})
	require.NoError(t, err)
	return task
}

func titles(tasks []*models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}

func TestListTasks_OwnerIsolation(t *testing.T) {
	f := setupTaskService(t)
	aliceTask := f.create(t, f.alice, "Alice private", false)
	f.create(t, f.bob, "Bob private", false)

	list, err := f.service.ListTasks(f.ctx, f.bob, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob private"}, titles(list.Tasks))

	// 他人のタスクのタイトルで検索しても出てこない
	list, err = f.service.ListTasks(f.ctx, f.bob, "alice")
	require.NoError(t, err)
	assert.Empty(t, list.Tasks)

	_, err = f.service.GetTask(f.ctx, f.bob, aliceTask.ID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
}

func TestListTasks_IncompleteCountIgnoresSearch(t *testing.T) {
	f := setupTaskService(t)
	f.create(t, f.alice, "Buy milk", false)
	f.create(t, f.alice, "clean house", false)
	f.create(t, f.alice, "Pay rent", true)
	f.create(t, f.bob, "Bob task", false)

	for _, search := range []string{"", "BUY", "rent", "nothing matches"} {
		list, err := f.service.ListTasks(f.ctx, f.alice, search)
		require.NoError(t, err)
		assert.Equal(t, 2, list.Count, "search %q", search)
		assert.Equal(t, search, list.SearchInput)
	}
}

func TestListTasks_CaseInsensitiveSearch(t *testing.T) {
	f := setupTaskService(t)
	f.create(t, f.alice, "Buy milk", false)
	f.create(t, f.alice, "clean house", false)

	list, err := f.service.ListTasks(f.ctx, f.alice, "BUY")
	require.NoError(t, err)
	assert.Equal(t, []string{"Buy milk"}, titles(list.Tasks))

	list, err = f.service.ListTasks(f.ctx, f.alice, "HoUsE")
	require.NoError(t, err)
	assert.Equal(t, []string{"clean house"}, titles(list.Tasks))
}

func TestListTasks_CaseInsensitiveSearchNonASCII(t *testing.T) {
	f := setupTaskService(t)
	f.create(t, f.alice, "Über Aufgabe", false)
	f.create(t, f.alice, "Écrire rapport", false)
	f.create(t, f.alice, "plain ascii", false)

	tests := []struct {
		search string
		want   []string
	}{
		{"Über", []string{"Über Aufgabe"}},
		{"über", []string{"Über Aufgabe"}},
		{"ÜBER AUF", []string{"Über Aufgabe"}},
		{"Écrire", []string{"Écrire rapport"}},
		{"écrire", []string{"Écrire rapport"}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			list, err := f.service.ListTasks(f.ctx, f.alice, tt.search)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(list.Tasks))
			assert.Equal(t, 3, list.Count)
		})
	}
}

func TestListTasks_SearchTreatsWildcardsLiterally(t *testing.T) {
	f := setupTaskService(t)
	f.create(t, f.alice, "100% done", false)
	f.create(t, f.alice, "1000 things", false)
	f.create(t, f.alice, "snake_case", false)
	f.create(t, f.alice, "snakeXcase", false)

	list, err := f.service.ListTasks(f.ctx, f.alice, "0%")
	require.NoError(t, err)
	assert.Equal(t, []string{"100% done"}, titles(list.Tasks))

	list, err = f.service.ListTasks(f.ctx, f.alice, "e_c")
	require.NoError(t, err)
	assert.Equal(t, []string{"snake_case"}, titles(list.Tasks))
}

func TestListTasks_EmptySearchMatchesAll(t *testing.T) {
	f := setupTaskService(t)
	f.create(t, f.alice, "one", false)
	f.create(t, f.alice, "two", true)

	list, err := f.service.ListTasks(f.ctx, f.alice, "")
	require.NoError(t, err)
	assert.Len(t, list.Tasks, 2)
	assert.Equal(t, "", list.SearchInput)
}

func TestListTasks_Ordering(t *testing.T) {
	f := setupTaskService(t)
	f.create(t, f.alice, "first done", true)
	f.create(t, f.alice, "second open", false)
	f.create(t, f.alice, "third open", false)

	list, err := f.service.ListTasks(f.ctx, f.alice, "")
	require.NoError(t, err)
	// 未完了が先、その中では作成順
	assert.Equal(t, []string{"second open", "third open", "first done"}, titles(list.Tasks))
}

func TestListTasks_EmptyListIsNotNil(t *testing.T) {
	f := setupTaskService(t)

	list, err := f.service.ListTasks(f.ctx, f.alice, "")
	require.NoError(t, err)
	assert.NotNil(t, list.Tasks)
	assert.Empty(t, list.Tasks)
	assert.Zero(t, list.Count)
}

func TestOperations_RequireCurrentUser(t *testing.T) {
	f := setupTaskService(t)
	task := f.create(t, f.alice, "mine", false)
	done := true

	_, err := f.service.ListTasks(f.ctx, nil, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	_, err = f.service.GetTask(f.ctx, nil, task.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	_, err = f.service.CreateTask(f.ctx, nil, models.TaskCreateRequest{Title: "x"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	_, err = f.service.UpdateTask(f.ctx, nil, task.ID, models.TaskUpdateRequest{Complete: &done})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	assert.ErrorIs(t, f.service.DeleteTask(f.ctx, nil, task.ID), apperrors.ErrUnauthenticated)
}

func TestCreateTask_RoundTrip(t *testing.T) {
	f := setupTaskService(t)

	created, err := f.service.CreateTask(f.ctx, f.alice, models.TaskCreateRequest{Title: "x", Description: "y", Complete: false})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.NotZero(t, created.CreatedAt)

	got, err := f.service.GetTask(f.ctx, f.alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Title)
	assert.Equal(t, "y", got.Description)
	assert.False(t, got.Complete)
	assert.Equal(t, f.alice.ID, got.UserID)
}

func TestCreateTask_TwiceCreatesTwoTasks(t *testing.T) {
	f := setupTaskService(t)
	first := f.create(t, f.alice, "same", false)
	second := f.create(t, f.alice, "same", false)

	assert.NotEqual(t, first.ID, second.ID)
	list, err := f.service.ListTasks(f.ctx, f.alice, "")
	require.NoError(t, err)
	assert.Len(t, list.Tasks, 2)
}

func TestCreateTask_Validation(t *testing.T) {
	f := setupTaskService(t)

	tests := []struct {
		name  string
		title string
	}{
		{"empty", ""},
		{"whitespace only", "   \t"},
		{"too long", strings.Repeat("あ", models.TitleMaxLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateTask(f.ctx, f.alice, models.TaskCreateRequest{Title: tt.title})
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}

	created, err := f.service.CreateTask(f.ctx, f.alice, models.TaskCreateRequest{Title: strings.Repeat("あ", models.TitleMaxLength)})
	require.NoError(t, err)
	assert.Equal(t, models.TitleMaxLength, len([]rune(created.Title)))
}

func TestUpdateTask_PartialUpdate(t *testing.T) {
	f := setupTaskService(t)
	created, err := f.service.CreateTask(f.ctx, f.alice, models.TaskCreateRequest{Title: "title", Description: "desc"})
	require.NoError(t, err)

	done := true
	_, err = f.service.UpdateTask(f.ctx, f.alice, created.ID, models.TaskUpdateRequest{Complete: &done})
	require.NoError(t, err)

	got, err := f.service.GetTask(f.ctx, f.alice, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Complete)
	assert.Equal(t, "title", got.Title)
	assert.Equal(t, "desc", got.Description)
	assert.Equal(t, f.alice.ID, got.UserID)

	// 完了 → 未完了にも戻せる
	notDone := false
	newTitle := "  renamed  "
	updated, err := f.service.UpdateTask(f.ctx, f.alice, created.ID, models.TaskUpdateRequest{Title: &newTitle, Complete: &notDone})
	require.NoError(t, err)
	assert.False(t, updated.Complete)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "desc", updated.Description)
}

func TestUpdateTask_UnchangedValuesSucceed(t *testing.T) {
	f := setupTaskService(t)
	created := f.create(t, f.alice, "same", false)

	notDone := false
	updated, err := f.service.UpdateTask(f.ctx, f.alice, created.ID, models.TaskUpdateRequest{Complete: &notDone})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
}

func TestUpdateTask_InvalidTitleLeavesTaskUntouched(t *testing.T) {
	f := setupTaskService(t)
	created := f.create(t, f.alice, "keep me", false)

	blank := " "
	_, err := f.service.UpdateTask(f.ctx, f.alice, created.ID, models.TaskUpdateRequest{Title: &blank})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	got, err := f.service.GetTask(f.ctx, f.alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", got.Title)
}

func TestDeleteTask(t *testing.T) {
	f := setupTaskService(t)
	created := f.create(t, f.alice, "to delete", false)

	require.NoError(t, f.service.DeleteTask(f.ctx, f.alice, created.ID))

	_, err := f.service.GetTask(f.ctx, f.alice, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	// 二度目の削除は失敗する
	assert.ErrorIs(t, f.service.DeleteTask(f.ctx, f.alice, created.ID), apperrors.ErrTaskNotFound)
}

func TestForeignTaskIsNotFoundForEveryOperation(t *testing.T) {
	f := setupTaskService(t)
	aliceTask := f.create(t, f.alice, "alice only", false)
	done := true
	title := "hijacked"

	_, err := f.service.GetTask(f.ctx, f.bob, aliceTask.ID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	_, err = f.service.UpdateTask(f.ctx, f.bob, aliceTask.ID, models.TaskUpdateRequest{Title: &title, Complete: &done})
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	assert.ErrorIs(t, f.service.DeleteTask(f.ctx, f.bob, aliceTask.ID), apperrors.ErrTaskNotFound)

	// 存在しないIDと同じエラーになる
	_, err = f.service.GetTask(f.ctx, f.bob, 9999)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	got, err := f.service.GetTask(f.ctx, f.alice, aliceTask.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice only", got.Title)
	assert.False(t, got.Complete)
}
