// Package models はTaskとUserを定義します。
package models

import (
	"time"
)

// TitleMaxLength はタスクのタイトルの最大文字数です。
const TitleMaxLength = 200

// Task はタスクのデータベース構造体を表します。
type Task struct {
	ID          int       `json:"id,omitempty"` // 主キー
	UserID      int       `json:"user_id"`      // 所有者 (作成時にサーバー側で設定)
	Title       string    `json:"title"`        // タイトル（必須）
	Description string    `json:"description"`  // 説明（任意）
	Complete    bool      `json:"complete"`     // 完了状態
	CreatedAt   time.Time `json:"created_at"`   // 作成日時
	UpdatedAt   time.Time `json:"updated_at"`   // 更新日時
}

// TaskCreateRequest はタスク作成リクエストです。
// user_id や id を送ってきても、この構造体には存在しないため無視されます。
type TaskCreateRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Complete    bool   `json:"complete"`
}

// TaskUpdateRequest はタスク更新リクエストです。nil のフィールドは変更しません。
type TaskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Complete    *bool   `json:"complete"`
}

// TaskList は一覧取得の結果です。
// Count は検索語で絞り込む前の未完了タスク数です。
type TaskList struct {
	Tasks       []*Task `json:"tasks"`
	Count       int     `json:"count"`
	SearchInput string  `json:"search_input"`
}
