package repository

import (
	"context"
	"go-live-auction/internal/model"
	apperrors "go-live-auction/pkg/app_errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuctionRepository interface {
	Create(ctx context.Context, auction *model.Auction) (*model.Auction, error)
	List(ctx context.Context, status *model.AuctionStatus, limit, offset int) ([]*model.Auction, error)
	FindByAuctionID(ctx context.Context, auctionID uuid.UUID) (*model.Auction, error)
	// FindDueForOpen / FindDueForClose 給 sweeper 撈出需要轉換狀態的拍賣
	FindDueForOpen(ctx context.Context, now time.Time) ([]*model.Auction, error)
	FindDueForClose(ctx context.Context, now time.Time) ([]*model.Auction, error)
	UpdateStatus(ctx context.Context, id int, from, to model.AuctionStatus) (*model.Auction, error)

	// Transaction methods
	FindByAuctionIDWithLock(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*model.Auction, error)
	CommitBid(ctx context.Context, tx pgx.Tx, id int, seenBid float64, newBid float64, bidderID uuid.UUID) error
	UpdateStatusWithLock(ctx context.Context, tx pgx.Tx, id int, to model.AuctionStatus) (*model.Auction, error)
}

type AuctionRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewAuctionRepository(pool *pgxpool.Pool) AuctionRepository {
	return &AuctionRepositoryImpl{
		pool: pool,
	}
}

const auctionColumns = `
	id, auction_id, product_id, room_id, start_price, min_increment,
	reserve_price, current_bid, current_bidder_id, buy_now, buy_now_price,
	start_time, end_time, status, created_at, updated_at
`

func scanAuction(row pgx.Row) (*model.Auction, error) {
	var auction model.Auction
	err := row.Scan(
		&auction.ID,
		&auction.AuctionID,
		&auction.ProductID,
		&auction.RoomID,
		&auction.StartPrice,
		&auction.MinIncrement,
		&auction.ReservePrice,
		&auction.CurrentBid,
		&auction.CurrentBidderID,
		&auction.BuyNow,
		&auction.BuyNowPrice,
		&auction.StartTime,
		&auction.EndTime,
		&auction.Status,
		&auction.CreatedAt,
		&auction.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &auction, nil
}

func (r *AuctionRepositoryImpl) Create(ctx context.Context, auction *model.Auction) (*model.Auction, error) {
	query := `
		INSERT INTO auctions (
			auction_id, product_id, room_id, start_price, min_increment,
			reserve_price, buy_now, buy_now_price, start_time, end_time, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + auctionColumns

	created, err := scanAuction(r.pool.QueryRow(ctx, query,
		auction.AuctionID, auction.ProductID, auction.RoomID,
		auction.StartPrice, auction.MinIncrement, auction.ReservePrice,
		auction.BuyNow, auction.BuyNowPrice,
		auction.StartTime, auction.EndTime, auction.Status,
	))
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *AuctionRepositoryImpl) List(ctx context.Context, status *model.AuctionStatus, limit, offset int) ([]*model.Auction, error) {
	query := `
		SELECT ` + auctionColumns + `
		FROM auctions
		WHERE ($1::text IS NULL OR status = $1::text)
		ORDER BY start_time DESC
		LIMIT $2 OFFSET $3
	`

	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}

	rows, err := r.pool.Query(ctx, query, statusArg, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	auctions := make([]*model.Auction, 0)

	for rows.Next() {
		auction, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, auction)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return auctions, nil
}

func (r *AuctionRepositoryImpl) FindByAuctionID(ctx context.Context, auctionID uuid.UUID) (*model.Auction, error) {
	query := `
		SELECT ` + auctionColumns + `
		FROM auctions
		WHERE auction_id = $1
	`

	auction, err := scanAuction(r.pool.QueryRow(ctx, query, auctionID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrAuctionNotFound
		}
		return nil, err
	}

	return auction, nil
}

// FindByAuctionIDWithLock 以 FOR UPDATE 鎖住單一拍賣列
// 同一拍賣的出價評估在這個鎖內序列化，不同拍賣互不阻塞
func (r *AuctionRepositoryImpl) FindByAuctionIDWithLock(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (*model.Auction, error) {
	query := `
		SELECT ` + auctionColumns + `
		FROM auctions
		WHERE auction_id = $1
		FOR UPDATE
	`

	auction, err := scanAuction(tx.QueryRow(ctx, query, auctionID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrAuctionNotFound
		}
		return nil, err
	}

	return auction, nil
}

// CommitBid 在交易內更新目前最高價
// WHERE current_bid = seenBid 是行鎖之外的第二道防線：
// 若讀取後狀態已被其他交易改動，這裡會改到 0 列並回報 ErrStaleBid
func (r *AuctionRepositoryImpl) CommitBid(ctx context.Context, tx pgx.Tx, id int, seenBid float64, newBid float64, bidderID uuid.UUID) error {
	query := `
		UPDATE auctions
		SET current_bid = $1, current_bidder_id = $2, updated_at = $3
		WHERE id = $4 AND current_bid = $5
	`

	result, err := tx.Exec(ctx, query, newBid, bidderID, time.Now().UTC(), id, seenBid)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrStaleBid
	}

	return nil
}

func (r *AuctionRepositoryImpl) UpdateStatus(ctx context.Context, id int, from, to model.AuctionStatus) (*model.Auction, error) {
	query := `
		UPDATE auctions
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + auctionColumns

	auction, err := scanAuction(r.pool.QueryRow(ctx, query, to, time.Now().UTC(), id, from))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrAuctionNotFound
		}
		return nil, err
	}

	return auction, nil
}

func (r *AuctionRepositoryImpl) UpdateStatusWithLock(ctx context.Context, tx pgx.Tx, id int, to model.AuctionStatus) (*model.Auction, error) {
	query := `
		UPDATE auctions
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + auctionColumns

	auction, err := scanAuction(tx.QueryRow(ctx, query, to, time.Now().UTC(), id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrAuctionNotFound
		}
		return nil, err
	}

	return auction, nil
}

func (r *AuctionRepositoryImpl) FindDueForOpen(ctx context.Context, now time.Time) ([]*model.Auction, error) {
	return r.findByStatusAndTime(ctx, `status = 'scheduled' AND start_time <= $1`, now)
}

func (r *AuctionRepositoryImpl) FindDueForClose(ctx context.Context, now time.Time) ([]*model.Auction, error) {
	return r.findByStatusAndTime(ctx, `status = 'live' AND end_time <= $1`, now)
}

func (r *AuctionRepositoryImpl) findByStatusAndTime(ctx context.Context, cond string, now time.Time) ([]*model.Auction, error) {
	query := `
		SELECT ` + auctionColumns + `
		FROM auctions
		WHERE ` + cond + `
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	auctions := make([]*model.Auction, 0)

	for rows.Next() {
		auction, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, auction)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return auctions, nil
}
