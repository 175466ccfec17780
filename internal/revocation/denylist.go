// Package revocation はログアウト済みトークンの保存を扱います。
package revocation

import (
	"context"
	"sync"
	"time"
)

// Denylist は失効させたトークンID (jti) を有効期限まで保持します。
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryDenylist はプロセス内に保持する Denylist です。テストで使います。
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *MemoryDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, expiresAt := range m.entries {
		if !now.Before(expiresAt) {
			delete(m.entries, id)
		}
	}
	m.entries[tokenID] = now.Add(ttl)
	return nil
}

func (m *MemoryDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt, ok := m.entries[tokenID]
	if !ok {
		return false, nil
	}
	if !m.now().Before(expiresAt) {
		delete(m.entries, tokenID)
		return false, nil
	}
	return true, nil
}
