package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"task-tracker/internal/config"
	"task-tracker/internal/database"
	"task-tracker/internal/models"
	"task-tracker/internal/repositories"
	"task-tracker/internal/revocation"
	"task-tracker/internal/routes"
)

// テストで最初から存在するユーザー
const (
	NormalUsername = "normal_user"
	NormalPassword = "password123"
	OtherUsername  = "other_user"
	OtherPassword  = "password456"

	TestJWTSecret = "test-secret"
)

// NewTestDB はテストごとに独立したインメモリSQLiteを作成し、スキーマを適用します。
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	db, err := sql.Open(config.DriverSQLite, dsn)
	require.NoError(t, err, "Failed to open database connection")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Ping(), "Failed to ping database")
	require.NoError(t, database.Migrate(context.Background(), db, config.DriverSQLite))
	return db
}

// SetupTestDB はテスト用のデータベースとルーターを用意し、normal_user (ID 1) と other_user (ID 2) を投入します。
func SetupTestDB(t *testing.T) (*sql.DB, *gin.Engine, *repositories.TaskRepository, *repositories.UserRepository) {
	t.Helper()

	db := NewTestDB(t)
	userRepo := repositories.NewUserRepository(db)
	CreateTestUser(t, userRepo, NormalUsername, NormalPassword)
	CreateTestUser(t, userRepo, OtherUsername, OtherPassword)

	router := SetupTestRouter(t, db)
	return db, router, repositories.NewTaskRepository(db), userRepo
}

// SetupTestRouter は本番と同じルーティングを、テスト用の設定とインメモリの失効リストで組み立てます。
func SetupTestRouter(t *testing.T, db *sql.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Auth.JWTSecret = TestJWTSecret
	cfg.Auth.BcryptCost = bcrypt.MinCost

	return routes.SetupRouter(db, cfg, revocation.NewMemoryDenylist())
}

func CreateTestUser(t *testing.T, userRepo *repositories.UserRepository, username, password string) *models.User {
	t.Helper()

	hashedPassword, err := repositories.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)

	createdUser, err := userRepo.Create(context.Background(), &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
	})
	require.NoError(t, err)
	require.NotZero(t, createdUser.ID)
	return createdUser
}

// PerformRequest はJSONボディとトークン (空なら付けない) 付きでルーターにリクエストを送ります。
func PerformRequest(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// CreateTestTask はAPI経由でタスクを作成します。
func CreateTestTask(t *testing.T, router *gin.Engine, token, title string, complete bool) *models.Task {
	t.Helper()

	resp := PerformRequest(router, http.MethodPost, "/api/tasks", token, map[string]any{
		"title":    title,
		"complete": complete,
	})
	require.Equal(t, http.StatusCreated, resp.Code, "タスク作成に失敗しました: %s", resp.Body.String())

	var created models.Task
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	return &created
}

func LoginAndGetToken(t *testing.T, router *gin.Engine, username, password string) (string, error) {
	t.Helper()

	resp := PerformRequest(router, http.MethodPost, "/api/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if resp.Code != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d: %s", resp.Code, resp.Body.String())
	}

	var loginRes map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &loginRes); err != nil {
		return "", fmt.Errorf("failed to unmarshal login response: %w", err)
	}
	token, ok := loginRes["token"].(string)
	if !ok {
		return "", errors.New("token not found or not a string in login response")
	}
	return token, nil
}
