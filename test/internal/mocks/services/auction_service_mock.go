package services

import (
	"context"

	"go-live-auction/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type AuctionServiceMock struct {
	mock.Mock
}

func NewAuctionServiceMock() *AuctionServiceMock {
	return &AuctionServiceMock{}
}

func (m *AuctionServiceMock) PlaceBid(ctx context.Context, auctionID uuid.UUID, bidderID uuid.UUID, amount float64) (*model.Bid, *model.Auction, error) {
	args := m.Called(ctx, auctionID, bidderID, amount)
	var bid *model.Bid
	var auction *model.Auction
	if args.Get(0) != nil {
		bid = args.Get(0).(*model.Bid)
	}
	if args.Get(1) != nil {
		auction = args.Get(1).(*model.Auction)
	}
	return bid, auction, args.Error(2)
}

func (m *AuctionServiceMock) BuyNow(ctx context.Context, auctionID uuid.UUID, bidderID uuid.UUID) (*model.Auction, error) {
	args := m.Called(ctx, auctionID, bidderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Auction), args.Error(1)
}

func (m *AuctionServiceMock) GetAuction(ctx context.Context, auctionID uuid.UUID) (*model.Auction, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Auction), args.Error(1)
}

func (m *AuctionServiceMock) GetSnapshot(ctx context.Context, auctionID uuid.UUID) (*model.AuctionSnapshot, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuctionSnapshot), args.Error(1)
}

func (m *AuctionServiceMock) ListAuctions(ctx context.Context, status *model.AuctionStatus, limit, offset int) ([]*model.Auction, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Auction), args.Error(1)
}

func (m *AuctionServiceMock) BidHistory(ctx context.Context, auctionID uuid.UUID) ([]*model.Bid, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Bid), args.Error(1)
}

func (m *AuctionServiceMock) UserBids(ctx context.Context, bidderID uuid.UUID) ([]*model.Bid, error) {
	args := m.Called(ctx, bidderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Bid), args.Error(1)
}

func (m *AuctionServiceMock) OpenDueAuctions(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *AuctionServiceMock) CloseExpiredAuctions(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
