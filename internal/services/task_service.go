package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"task-tracker/internal/apperrors"
	"task-tracker/internal/models"
	"task-tracker/internal/repositories"
)

// TaskStore はTaskServiceが使う永続化の操作です。読み書きはすべて所有者の範囲で行います。
type TaskStore interface {
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	FindByOwner(ctx context.Context, filter repositories.TaskFilter) ([]*models.Task, error)
	CountIncomplete(ctx context.Context, ownerID int) (int, error)
	FindByIDForOwner(ctx context.Context, id, ownerID int) (*models.Task, error)
	Update(ctx context.Context, t *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id, ownerID int) error
}

// TaskService はタスク関連のビジネスロジックを扱います。
type TaskService struct {
	store TaskStore
}

// NewTaskService は新しいTaskServiceを作成します。
func NewTaskService(store TaskStore) *TaskService {
	return &TaskService{store: store}
}

// ListTasks はユーザーのタスク一覧を返します。
// 未完了数は検索語で絞り込む前に数えるため、検索中でも残りの仕事量を表します。
func (s *TaskService) ListTasks(ctx context.Context, user *models.CurrentUser, search string) (*models.TaskList, error) {
	if user == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	count, err := s.store.CountIncomplete(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.store.FindByOwner(ctx, repositories.TaskFilter{OwnerID: user.ID, Search: search})
	if err != nil {
		return nil, err
	}

	return &models.TaskList{
		Tasks:       tasks,
		Count:       count,
		SearchInput: search,
	}, nil
}

// GetTask は指定IDのタスクを取得します。他人のタスクは ErrTaskNotFound です。
func (s *TaskService) GetTask(ctx context.Context, user *models.CurrentUser, id int) (*models.Task, error) {
	if user == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return s.store.FindByIDForOwner(ctx, id, user.ID)
}

// CreateTask は新しいタスクを作成します。所有者は常に現在のユーザーです。
func (s *TaskService) CreateTask(ctx context.Context, user *models.CurrentUser, req models.TaskCreateRequest) (*models.Task, error) {
	if user == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	title, err := normalizeTitle(req.Title)
	if err != nil {
		return nil, err
	}

	return s.store.Create(ctx, &models.Task{
		UserID:      user.ID,
		Title:       title,
		Description: req.Description,
		Complete:    req.Complete,
	})
}

// UpdateTask はタスクのタイトル・説明・完了状態のうち、指定されたものだけを更新します。
func (s *TaskService) UpdateTask(ctx context.Context, user *models.CurrentUser, id int, req models.TaskUpdateRequest) (*models.Task, error) {
	if user == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	existing, err := s.store.FindByIDForOwner(ctx, id, user.ID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title, err := normalizeTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		existing.Title = title
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Complete != nil {
		existing.Complete = *req.Complete
	}

	return s.store.Update(ctx, existing)
}

// DeleteTask はタスクを削除します。存在しない・他人のタスクは ErrTaskNotFound です。
func (s *TaskService) DeleteTask(ctx context.Context, user *models.CurrentUser, id int) error {
	if user == nil {
		return apperrors.ErrUnauthenticated
	}
	return s.store.Delete(ctx, id, user.ID)
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", apperrors.ErrValidationFailed)
	}
	if utf8.RuneCountInString(title) > models.TitleMaxLength {
		return "", fmt.Errorf("%w: title must be at most %d characters", apperrors.ErrValidationFailed, models.TitleMaxLength)
	}
	return title, nil
}
