package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "go-live-auction/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store 核心對外部帳號系統唯一的依賴：用 session token 換使用者身分
// session 的發行與登入流程不在本服務範圍內
type Store interface {
	Lookup(ctx context.Context, token string) (uuid.UUID, error)
}

type RedisStoreImpl struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStoreImpl {
	return &RedisStoreImpl{client: client}
}

func (s *RedisStoreImpl) getKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func (s *RedisStoreImpl) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, s.getKey(token)).Result()
	if err == redis.Nil {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	if err != nil {
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, apperrors.ErrUnauthorized
	}

	return userID, nil
}

// Put 寫入 session，登入流程在別的服務，這裡主要給測試與本機環境用
func (s *RedisStoreImpl) Put(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return s.client.Set(ctx, s.getKey(token), userID.String(), ttl).Err()
}

// MemoryStoreImpl 記憶體版 session 查詢，單機與測試用
type MemoryStoreImpl struct {
	mu       sync.RWMutex
	sessions map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStoreImpl {
	return &MemoryStoreImpl{
		sessions: make(map[string]uuid.UUID),
	}
}

func (s *MemoryStoreImpl) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.sessions[token]
	if !ok {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	return userID, nil
}

func (s *MemoryStoreImpl) Put(token string, userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = userID
}

// Compile-time interface checks.
var (
	_ Store = (*RedisStoreImpl)(nil)
	_ Store = (*MemoryStoreImpl)(nil)
)
