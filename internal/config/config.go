// Package config はアプリケーション設定の読み込みを行います。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	AllowOrigins    []string      `yaml:"allow_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig はDB接続設定です。DSN が空の場合は各項目から組み立てます。
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

// RedisConfig はログアウト済みトークンの保存先です。Addr が空ならプロセス内に保持します。
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	KeyPrefix string `yaml:"key_prefix"`
}

// Default はデフォルト設定を返します。
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			AllowOrigins:    []string{"http://localhost:3000"},
			ShutdownTimeout: 20 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			DSN:             "file:tasks.db?_foreign_keys=on",
			Port:            "3306",
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Auth: AuthConfig{
			TokenTTL:   24 * time.Hour,
			BcryptCost: 10,
		},
		Redis: RedisConfig{
			KeyPrefix: "task-tracker:revoked:",
		},
	}
}

// Load はデフォルト値、YAMLファイル(path が空でなければ)、環境変数の順に設定を読み込み、検証します。
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Server.Addr = getEnv("APP_ADDR", cfg.Server.Addr)
	if origins := os.Getenv("CORS_ALLOW_ORIGINS"); origins != "" {
		cfg.Server.AllowOrigins = splitList(origins)
	}

	// DB_HOST などが指定されていればMySQLとみなす (既存の .env との互換)
	if os.Getenv("DB_HOST") != "" && os.Getenv("DB_DRIVER") == "" {
		cfg.Database.Driver = DriverMySQL
		cfg.Database.DSN = ""
	}
	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = getEnv("DB_DSN", cfg.Database.DSN)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASS", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.KeyPrefix = getEnv("REDIS_KEY_PREFIX", cfg.Redis.KeyPrefix)

	var err error
	if cfg.Database.MaxOpenConns, err = getEnvAsInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns); err != nil {
		return err
	}
	if cfg.Auth.BcryptCost, err = getEnvAsInt("BCRYPT_COST", cfg.Auth.BcryptCost); err != nil {
		return err
	}

	ttlHours, err := getEnvAsInt("JWT_TTL_HOURS", 0)
	if err != nil {
		return err
	}
	if ttlHours > 0 {
		cfg.Auth.TokenTTL = time.Duration(ttlHours) * time.Hour
	}

	shutdownSeconds, err := getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 0)
	if err != nil {
		return err
	}
	if shutdownSeconds > 0 {
		cfg.Server.ShutdownTimeout = time.Duration(shutdownSeconds) * time.Second
	}
	return nil
}

// Validate は設定値を検証します。
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server address must not be empty (e.g. :8080)"))
	}
	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.DSN == "" && (c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "") {
			errs = append(errs, errors.New("DB_HOST, DB_USER and DB_NAME are required for mysql"))
		}
	case DriverSQLite:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("DB_DSN must not be empty for sqlite3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q (mysql or sqlite3)", c.Database.Driver))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable not set"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be greater than 0"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, errors.New("BCRYPT_COST must be between 4 and 31"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, v)
	}
	return i, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
