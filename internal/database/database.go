package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"task-tracker/internal/config"
)

// GetDSN は設定から接続文字列 (DSN) を構築します。
// MySQLでは parseTime と clientFoundRows を必ず有効にします。
// clientFoundRows がないと、値が変わらないUPDATEで RowsAffected が0になるためです。
func GetDSN(cfg config.DatabaseConfig) string {
	if cfg.Driver != config.DriverMySQL {
		return cfg.DSN
	}
	if cfg.DSN != "" {
		parsed, err := mysql.ParseDSN(cfg.DSN)
		if err != nil {
			return cfg.DSN
		}
		parsed.ParseTime = true
		parsed.ClientFoundRows = true
		return parsed.FormatDSN()
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.ClientFoundRows = true
	mc.Loc = time.UTC
	return mc.FormatDSN()
}

// InitDB はデータベース接続を初期化し、疎通を確認します。
func InitDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, GetDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLiteは書き込みが1本なので接続も1本にする
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Successfully connected to %s database!", cfg.Driver)
	return db, nil
}
