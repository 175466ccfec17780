package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"
)

// RevokedTokenRepository はログアウト済みトークンのID (jti) をデータベースに保存します。
// Redisを使わない構成での失効リストです。
type RevokedTokenRepository struct {
	DB *sql.DB
}

// NewRevokedTokenRepository は新しいRevokedTokenRepositoryインスタンスを作成します。
func NewRevokedTokenRepository(db *sql.DB) *RevokedTokenRepository {
	return &RevokedTokenRepository{DB: db}
}

// Revoke はトークンIDを有効期限付きで登録します。ttl が0以下なら何もしません。
func (r *RevokedTokenRepository) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	expiresAt := time.Now().Add(ttl).UTC().Truncate(time.Microsecond)

	_, err := r.DB.ExecContext(ctx, "INSERT INTO revoked_tokens (token_id, expires_at) VALUES (?, ?)", tokenID, expiresAt)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil
		}
		log.Printf("Failed to revoke token: %v", err)
		return fmt.Errorf("could not revoke token: %w", err)
	}
	return nil
}

// IsRevoked はトークンIDが失効済みかどうかを返します。期限切れの登録は無視します。
func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var expiresAt time.Time
	err := r.DB.QueryRowContext(ctx, "SELECT expires_at FROM revoked_tokens WHERE token_id = ?", tokenID).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		log.Printf("Failed to query revoked token: %v", err)
		return false, fmt.Errorf("could not query revoked token: %w", err)
	}
	return time.Now().Before(expiresAt), nil
}

// CleanupExpired は有効期限を過ぎた登録を削除し、削除件数を返します。
func (r *RevokedTokenRepository) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM revoked_tokens WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		log.Printf("Failed to clean up revoked tokens: %v", err)
		return 0, fmt.Errorf("could not clean up revoked tokens: %w", err)
	}
	return result.RowsAffected()
}
