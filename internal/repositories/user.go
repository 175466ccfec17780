package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt" // パスワードのハッシュ化用

	"task-tracker/internal/apperrors"
	"task-tracker/internal/models"
)

var (
	ErrDuplicateUser = apperrors.ErrDuplicateUser
	ErrUserNotFound  = apperrors.ErrUserNotFound
)

// UserRepository はユーザーのデータベース操作を行うための構造体です。
type UserRepository struct {
	DB *sql.DB
}

// NewUserRepository は新しいUserRepositoryインスタンスを作成します。
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// HashPassword は与えられたパスワードをbcryptでハッシュ化します。
func HashPassword(password string, cost int) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedPassword), nil
}

// VerifyPassword はハッシュ化されたパスワードと平文のパスワードを比較します。
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// Create は新しいユーザーをデータベースに挿入します。
func (r *UserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	query := "INSERT INTO users (username, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"

	result, err := r.DB.ExecContext(ctx, query, u.Username, u.Email, u.PasswordHash, now, now)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, ErrDuplicateUser
		}
		log.Printf("Failed to insert user: %v", err)
		return nil, fmt.Errorf("could not insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}
	u.ID = int(id)
	u.CreatedAt = now
	u.UpdatedAt = now
	return u, nil
}

// FindByUsername はユーザー名でユーザーを検索します。
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// FindByID はIDでユーザーを検索します。
func (r *UserRepository) FindByID(ctx context.Context, id int) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := "SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE " + where
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		log.Printf("Failed to query user: %v", err)
		return nil, fmt.Errorf("could not query user: %w", err)
	}
	return &u, nil
}

// isDuplicateEntry は一意制約違反かどうかを判定します (MySQL: 1062, SQLite: UNIQUE / PRIMARY KEY constraint)。
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return true
	}
	return false
}
