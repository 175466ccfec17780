// Package repositories はデータベース操作を行うリポジトリを提供します。
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"task-tracker/internal/apperrors"
	"task-tracker/internal/models"
)

// ErrTaskNotFound はタスクが見つからない場合のエラーです。所有者違いも同じ扱いです。
var ErrTaskNotFound = apperrors.ErrTaskNotFound

const taskColumns = "id, user_id, title, description, complete, created_at, updated_at"

// TaskRepository はタスクのデータベース操作を行うための構造体です。
// 読み書きはすべて所有者 (user_id) で絞り込みます。
type TaskRepository struct {
	DB *sql.DB
}

// NewTaskRepository は新しいTaskRepositoryインスタンスを作成します。
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

// TaskFilter は一覧取得の条件です。Search が空なら絞り込みません。
// Search はタイトルの部分一致で、大文字小文字を区別しません。
type TaskFilter struct {
	OwnerID int
	Search  string
}

// Create は新しいタスクをデータベースに挿入します。
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	query := "INSERT INTO tasks (user_id, title, description, complete, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"

	result, err := r.DB.ExecContext(ctx, query, t.UserID, t.Title, t.Description, t.Complete, now, now)
	if err != nil {
		log.Printf("Failed to insert task: %v", err)
		return nil, fmt.Errorf("could not insert task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}

	t.ID = int(id)
	t.CreatedAt = now
	t.UpdatedAt = now
	return t, nil
}

// FindByOwner は所有者のタスクを、未完了 → 作成日時 → ID の順で返します。
func (r *TaskRepository) FindByOwner(ctx context.Context, filter TaskFilter) ([]*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE user_id = ? ORDER BY complete ASC, created_at ASC, id ASC"

	rows, err := r.DB.QueryContext(ctx, query, filter.OwnerID)
	if err != nil {
		log.Printf("Failed to query tasks: %v", err)
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			log.Printf("Failed to scan task: %v", err)
			return nil, fmt.Errorf("could not scan task: %w", err)
		}
		if titleContains(t.Title, filter.Search) {
			tasks = append(tasks, t)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// CountIncomplete は所有者の未完了タスク数を返します。
func (r *TaskRepository) CountIncomplete(ctx context.Context, ownerID int) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks WHERE user_id = ? AND complete = ?", ownerID, false).Scan(&count)
	if err != nil {
		log.Printf("Failed to count incomplete tasks: %v", err)
		return 0, fmt.Errorf("could not count tasks: %w", err)
	}
	return count, nil
}

// FindByIDForOwner は指定IDのタスクを所有者の範囲で取得します。
func (r *TaskRepository) FindByIDForOwner(ctx context.Context, id, ownerID int) (*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE id = ? AND user_id = ?"

	t, err := scanTask(r.DB.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		log.Printf("Failed to query task by ID: %v", err)
		return nil, fmt.Errorf("could not query task: %w", err)
	}
	return t, nil
}

// Update はタイトル・説明・完了状態を更新します。所有者とIDは変更しません。
func (r *TaskRepository) Update(ctx context.Context, t *models.Task) (*models.Task, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	query := "UPDATE tasks SET title = ?, description = ?, complete = ?, updated_at = ? WHERE id = ? AND user_id = ?"

	result, err := r.DB.ExecContext(ctx, query, t.Title, t.Description, t.Complete, now, t.ID, t.UserID)
	if err != nil {
		log.Printf("Failed to update task: %v", err)
		return nil, fmt.Errorf("could not update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrTaskNotFound
	}

	// 更新されたタスクを取得して返す
	return r.FindByIDForOwner(ctx, t.ID, t.UserID)
}

// Delete は指定IDのタスクを削除します。存在しない・他人のタスクはエラーです。
func (r *TaskRepository) Delete(ctx context.Context, id, ownerID int) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		log.Printf("Failed to delete task: %v", err)
		return fmt.Errorf("could not delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Complete, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// titleContains はタイトルに検索語が含まれるかを大文字小文字を区別せずに判定します。
// SQLiteの LOWER はASCIIしか変換しないため、比較はGo側で行います。
func titleContains(title, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(term))
}
