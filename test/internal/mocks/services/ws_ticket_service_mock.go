package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type WSTicketServiceMock struct {
	mock.Mock
}

func NewWSTicketServiceMock() *WSTicketServiceMock {
	return &WSTicketServiceMock{}
}

func (m *WSTicketServiceMock) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *WSTicketServiceMock) Redeem(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}
