package repository

import (
	"context"
	"fmt"
	"go-live-auction/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BidRepository 出價總帳：只允許追加與讀取，沒有更新或刪除
type BidRepository interface {
	ListByAuctionID(ctx context.Context, auctionID int) ([]*model.Bid, error)
	ListByBidderID(ctx context.Context, bidderID uuid.UUID) ([]*model.Bid, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, bid *model.Bid) (*model.Bid, error)
}

type BidRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewBidRepository(pool *pgxpool.Pool) BidRepository {
	return &BidRepositoryImpl{
		pool: pool,
	}
}

func (r *BidRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, bid *model.Bid) (*model.Bid, error) {
	query := `
		INSERT INTO bids (bid_id, auction_id, bidder_id, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, bid_id, auction_id, bidder_id, amount, created_at
	`

	err := tx.QueryRow(ctx, query,
		bid.BidID, bid.AuctionID, bid.BidderID, bid.Amount,
	).Scan(
		&bid.ID,
		&bid.BidID,
		&bid.AuctionID,
		&bid.BidderID,
		&bid.Amount,
		&bid.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create bid: %w", err)
	}

	return bid, nil
}

// ListByAuctionID 依接受順序回傳，最舊在前
func (r *BidRepositoryImpl) ListByAuctionID(ctx context.Context, auctionID int) ([]*model.Bid, error) {
	query := `
		SELECT id, bid_id, auction_id, bidder_id, amount, created_at
		FROM bids
		WHERE auction_id = $1
		ORDER BY id ASC
	`

	return r.queryBids(ctx, query, auctionID)
}

func (r *BidRepositoryImpl) ListByBidderID(ctx context.Context, bidderID uuid.UUID) ([]*model.Bid, error) {
	query := `
		SELECT id, bid_id, auction_id, bidder_id, amount, created_at
		FROM bids
		WHERE bidder_id = $1
		ORDER BY created_at DESC
	`

	return r.queryBids(ctx, query, bidderID)
}

func (r *BidRepositoryImpl) queryBids(ctx context.Context, query string, arg interface{}) ([]*model.Bid, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := make([]*model.Bid, 0)

	for rows.Next() {
		var bid model.Bid
		err := rows.Scan(
			&bid.ID,
			&bid.BidID,
			&bid.AuctionID,
			&bid.BidderID,
			&bid.Amount,
			&bid.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		bids = append(bids, &bid)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bids, nil
}
