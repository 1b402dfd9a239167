package service

import (
	"context"
	"time"

	"go-live-auction/internal/ticket"

	"github.com/google/uuid"
)

// WSTicketService 發行與兌換 websocket 連線票券
type WSTicketService interface {
	Issue(ctx context.Context, userID uuid.UUID) (string, error)
	// Redeem 回傳票券綁定的身分；同一張票併發兌換時恰好一個呼叫成功
	Redeem(ctx context.Context, token string) (string, error)
}

type WSTicketServiceImpl struct {
	store ticket.Store
	ttl   time.Duration
}

func NewWSTicketService(store ticket.Store, ttl time.Duration) WSTicketService {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &WSTicketServiceImpl{
		store: store,
		ttl:   ttl,
	}
}

func (s *WSTicketServiceImpl) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	identity := ""
	if userID != uuid.Nil {
		identity = userID.String()
	}
	return s.store.Issue(ctx, identity, s.ttl)
}

func (s *WSTicketServiceImpl) Redeem(ctx context.Context, token string) (string, error) {
	return s.store.Redeem(ctx, token)
}
