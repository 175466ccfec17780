package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"task-tracker/internal/config"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(150) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL,
		complete BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_tasks_user_complete (user_id, complete),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS revoked_tokens (
		token_id VARCHAR(64) PRIMARY KEY,
		expires_at DATETIME(6) NOT NULL
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		complete BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_complete ON tasks (user_id, complete)`,
	`CREATE TABLE IF NOT EXISTS revoked_tokens (
		token_id TEXT PRIMARY KEY,
		expires_at DATETIME NOT NULL
	)`,
}

// Migrate はテーブルが存在しなければ作成します。
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var stmts []string
	switch driver {
	case config.DriverMySQL:
		stmts = mysqlSchema
	case config.DriverSQLite:
		stmts = sqliteSchema
	default:
		return fmt.Errorf("unsupported driver %q", driver)
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("could not apply schema: %w", err)
		}
	}
	log.Printf("Schema is up to date (%s)", driver)
	return nil
}
