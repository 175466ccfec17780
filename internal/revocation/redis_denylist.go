package revocation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/rueidis"
)

// NewRedisClient はRedisクライアントを作成します。
func NewRedisClient(addr string) (rueidis.Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return client, nil
}

// RedisDenylist は失効トークンをRedisのキーとして保持します。キーはトークンの残り有効期間で消えます。
type RedisDenylist struct {
	client rueidis.Client
	prefix string
}

func NewRedisDenylist(client rueidis.Client, keyPrefix string) *RedisDenylist {
	return &RedisDenylist{
		client: client,
		prefix: keyPrefix,
	}
}

func (r *RedisDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	seconds := int64(math.Ceil(ttl.Seconds()))

	cmd := r.client.B().Set().Key(r.prefix + tokenID).Value("1").ExSeconds(seconds).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	cmd := r.client.B().Exists().Key(r.prefix + tokenID).Build()
	n, err := r.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return n > 0, nil
}
