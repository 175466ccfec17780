package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"task-tracker/internal/config"
	"task-tracker/internal/database"
	"task-tracker/internal/repositories"
	"task-tracker/internal/revocation"
	"task-tracker/internal/routes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, cfg.Database.Driver); err != nil {
		return err
	}

	denylist, closeDenylist, err := newDenylist(ctx, cfg.Redis, db)
	if err != nil {
		return err
	}
	defer closeDenylist()

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: routes.SetupRouter(db, cfg, denylist),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s...", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Println("Server shut down gracefully")
	return nil
}

// newDenylist はRedisのアドレスが設定されていればRedis、なければデータベースの失効リストを返します。
func newDenylist(ctx context.Context, cfg config.RedisConfig, db *sql.DB) (revocation.Denylist, func(), error) {
	if cfg.Addr == "" {
		revoked := repositories.NewRevokedTokenRepository(db)
		if n, err := revoked.CleanupExpired(ctx); err != nil {
			log.Printf("Failed to clean up revoked tokens: %v", err)
		} else if n > 0 {
			log.Printf("Removed %d expired revoked tokens", n)
		}
		return revoked, func() {}, nil
	}

	client, err := revocation.NewRedisClient(cfg.Addr)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Using redis at %s for revoked tokens", cfg.Addr)
	return revocation.NewRedisDenylist(client, cfg.KeyPrefix), client.Close, nil
}
