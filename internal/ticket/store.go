package ticket

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	apperrors "go-live-auction/pkg/app_errors"
)

// Store 一次性 websocket 連線票券
// Issue 發出的 token 只能被成功 Redeem 一次；併發兌換同一張票時恰好一人成功
type Store interface {
	Issue(ctx context.Context, identity string, ttl time.Duration) (string, error)
	Redeem(ctx context.Context, token string) (string, error)
}

// NewToken 產生不可猜測的票券值
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

type memoryTicket struct {
	identity  string
	expiresAt time.Time
	consumed  bool
}

// MemoryStoreImpl 單機記憶體版票券存放，與 Redis 版語意相同
type MemoryStoreImpl struct {
	mu      sync.Mutex
	tickets map[string]*memoryTicket
}

func NewMemoryStore() *MemoryStoreImpl {
	return &MemoryStoreImpl{
		tickets: make(map[string]*memoryTicket),
	}
}

func (s *MemoryStoreImpl) Issue(ctx context.Context, identity string, ttl time.Duration) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickets[token] = &memoryTicket{
		identity:  identity,
		expiresAt: time.Now().Add(ttl),
	}

	// 順手清掉早已過期的票，避免 map 無上限成長
	for k, t := range s.tickets {
		if time.Since(t.expiresAt) > time.Minute {
			delete(s.tickets, k)
		}
	}

	return token, nil
}

func (s *MemoryStoreImpl) Redeem(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[token]
	if !ok {
		return "", apperrors.ErrTicketInvalid
	}
	if time.Now().After(t.expiresAt) {
		return "", apperrors.ErrTicketExpired
	}
	if t.consumed {
		return "", apperrors.ErrTicketConsumed
	}

	t.consumed = true
	return t.identity, nil
}
