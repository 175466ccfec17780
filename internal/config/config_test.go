package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/config"
)

// clearEnv はテスト中に外部の環境変数が混ざらないよう、関連する変数を空にします。
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"APP_ADDR", "CORS_ALLOW_ORIGINS", "DB_DRIVER", "DB_DSN", "DB_HOST", "DB_PORT", "DB_USER",
		"DB_PASS", "DB_NAME", "DB_MAX_OPEN_CONNS", "JWT_SECRET", "JWT_TTL_HOURS", "BCRYPT_COST",
		"REDIS_ADDR", "REDIS_KEY_PREFIX", "SHUTDOWN_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowOrigins)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	clearEnv(t)

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_MySQLFromTeacherStyleEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASS", "pass")
	t.Setenv("DB_NAME", "tasks")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.DriverMySQL, cfg.Database.Driver)
	assert.Empty(t, cfg.Database.DSN)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "3306", cfg.Database.Port)
}

func TestLoad_YAMLThenEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlBody := `
server:
  addr: ":9090"
  allow_origins: ["https://tasks.example.com"]
database:
  driver: sqlite3
  dsn: "file:from-yaml.db"
auth:
  jwt_secret: from-yaml
  token_ttl: 2h
redis:
  addr: "redis:6379"
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))
	t.Setenv("APP_ADDR", ":7070")
	t.Setenv("BCRYPT_COST", "4")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, []string{"https://tasks.example.com"}, cfg.Server.AllowOrigins)
	assert.Equal(t, "file:from-yaml.db", cfg.Database.DSN)
	assert.Equal(t, "from-yaml", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 4, cfg.Auth.BcryptCost)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("non numeric integer", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("BCRYPT_COST", "ten")

		_, err := config.Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "BCRYPT_COST")
	})

	t.Run("unknown driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("DB_DRIVER", "postgres")

		_, err := config.Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
	})

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}
