package service

import (
	"context"
	"time"

	"go-live-auction/internal/bus"
	"go-live-auction/internal/cache"
	"go-live-auction/internal/model"
	"go-live-auction/internal/repository"
	apperrors "go-live-auction/pkg/app_errors"
	"go-live-auction/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type AuctionService interface {
	// PlaceBid 出價唯一入口；回傳接受的出價與更新後的拍賣
	PlaceBid(ctx context.Context, auctionID uuid.UUID, bidderID uuid.UUID, amount float64) (*model.Bid, *model.Auction, error)
	// BuyNow 直購：以 buy_now_price 成交並立即結束拍賣
	BuyNow(ctx context.Context, auctionID uuid.UUID, bidderID uuid.UUID) (*model.Auction, error)
	GetAuction(ctx context.Context, auctionID uuid.UUID) (*model.Auction, error)
	// GetSnapshot 走快取的快照讀取，未命中時回源並回填
	GetSnapshot(ctx context.Context, auctionID uuid.UUID) (*model.AuctionSnapshot, error)
	ListAuctions(ctx context.Context, status *model.AuctionStatus, limit, offset int) ([]*model.Auction, error)
	// BidHistory 依接受順序回傳出價紀錄，最新在後
	BidHistory(ctx context.Context, auctionID uuid.UUID) ([]*model.Bid, error)
	UserBids(ctx context.Context, bidderID uuid.UUID) ([]*model.Bid, error)

	// Sweeper 呼叫的狀態轉換
	OpenDueAuctions(ctx context.Context) (int, error)
	CloseExpiredAuctions(ctx context.Context) (int, error)
}

type AuctionServiceImpl struct {
	pool          *pgxpool.Pool
	auctionRepo   repository.AuctionRepository
	bidRepo       repository.BidRepository
	snapshotCache cache.AuctionSnapshotCache
	eventBus      bus.Bus
}

func NewAuctionService(
	pool *pgxpool.Pool,
	auctionRepo repository.AuctionRepository,
	bidRepo repository.BidRepository,
	snapshotCache cache.AuctionSnapshotCache,
	eventBus bus.Bus,
) AuctionService {
	return &AuctionServiceImpl{
		pool:          pool,
		auctionRepo:   auctionRepo,
		bidRepo:       bidRepo,
		snapshotCache: snapshotCache,
		eventBus:      eventBus,
	}
}

// checkBiddable 拍賣狀態與時間窗檢查，必須在行鎖內呼叫
func checkBiddable(auction *model.Auction, now time.Time) error {
	if auction.Status == model.AuctionStatusEnded || auction.Status == model.AuctionStatusCancelled {
		return apperrors.ErrAuctionEnded
	}
	if !now.Before(auction.EndTime) {
		// sweeper 還沒掃到，但時間窗已過：一樣拒收
		return apperrors.ErrAuctionEnded
	}
	if !auction.IsLiveAt(now) {
		return apperrors.ErrAuctionNotLive
	}
	return nil
}

func (s *AuctionServiceImpl) PlaceBid(ctx context.Context, auctionID uuid.UUID, bidderID uuid.UUID, amount float64) (*model.Bid, *model.Auction, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	// FOR UPDATE：同一拍賣的評估與提交在此序列化，不同拍賣完全平行
	auction, err := s.auctionRepo.FindByAuctionIDWithLock(ctx, tx, auctionID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	if err := checkBiddable(auction, now); err != nil {
		return nil, nil, err
	}

	// 金額檢查：已被追過的金額回報 stale，其他不足回報 below minimum
	if auction.CurrentBid > 0 && amount <= auction.CurrentBid {
		return nil, nil, apperrors.ErrStaleBid
	}
	if amount < auction.MinNextBid() {
		return nil, nil, apperrors.ErrBidBelowMinimum
	}

	// 政策：不允許自我加價，最高出價者必須等人出價後才能再出
	if auction.CurrentBidderID != nil && *auction.CurrentBidderID == bidderID {
		return nil, nil, apperrors.ErrAlreadyHighestBidder
	}

	bid := &model.Bid{
		BidID:     uuid.New(),
		AuctionID: auction.ID,
		BidderID:  bidderID,
		Amount:    amount,
	}

	if _, err := s.bidRepo.Create(ctx, tx, bid); err != nil {
		return nil, nil, err
	}

	if err := s.auctionRepo.CommitBid(ctx, tx, auction.ID, auction.CurrentBid, amount, bidderID); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	auction.CurrentBid = amount
	auction.CurrentBidderID = &bidderID

	// commit 之後才做 fan-out，廣播再慢也擋不到下一筆出價
	s.afterCommit(auction, model.NewEnvelope(model.MessageTypeBidPlaced, model.BidPlacedPayload{
		BidderID: bidderID,
		Amount:   amount,
	}))

	return bid, auction, nil
}

func (s *AuctionServiceImpl) BuyNow(ctx context.Context, auctionID uuid.UUID, bidderID uuid.UUID) (*model.Auction, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	auction, err := s.auctionRepo.FindByAuctionIDWithLock(ctx, tx, auctionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := checkBiddable(auction, now); err != nil {
		return nil, err
	}
	if !auction.BuyNow || auction.BuyNowPrice <= 0 {
		return nil, apperrors.ErrBuyNowUnavailable
	}
	if auction.CurrentBid >= auction.BuyNowPrice {
		// 競價已經追過直購價，直購通道關閉
		return nil, apperrors.ErrBuyNowUnavailable
	}

	bid := &model.Bid{
		BidID:     uuid.New(),
		AuctionID: auction.ID,
		BidderID:  bidderID,
		Amount:    auction.BuyNowPrice,
	}

	if _, err := s.bidRepo.Create(ctx, tx, bid); err != nil {
		return nil, err
	}

	if err := s.auctionRepo.CommitBid(ctx, tx, auction.ID, auction.CurrentBid, auction.BuyNowPrice, bidderID); err != nil {
		return nil, err
	}

	updated, err := s.auctionRepo.UpdateStatusWithLock(ctx, tx, auction.ID, model.AuctionStatusEnded)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.afterCommit(updated, model.NewEnvelope(model.MessageTypeBidPlaced, model.BidPlacedPayload{
		BidderID: bidderID,
		Amount:   auction.BuyNowPrice,
	}))
	s.afterCommit(updated, model.NewEnvelope(model.MessageTypeAuctionUpdate, updated.Snapshot()))

	return updated, nil
}

func (s *AuctionServiceImpl) GetAuction(ctx context.Context, auctionID uuid.UUID) (*model.Auction, error) {
	return s.auctionRepo.FindByAuctionID(ctx, auctionID)
}

func (s *AuctionServiceImpl) GetSnapshot(ctx context.Context, auctionID uuid.UUID) (*model.AuctionSnapshot, error) {
	cached, err := s.snapshotCache.Get(ctx, auctionID)
	if err != nil {
		logger.WithComponent("service").Warn("snapshot cache read failed", zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	auction, err := s.auctionRepo.FindByAuctionID(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	snapshot := auction.Snapshot()
	if err := s.snapshotCache.Set(ctx, &snapshot); err != nil {
		logger.WithComponent("service").Warn("snapshot cache write failed", zap.Error(err))
	}

	return &snapshot, nil
}

func (s *AuctionServiceImpl) ListAuctions(ctx context.Context, status *model.AuctionStatus, limit, offset int) ([]*model.Auction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.auctionRepo.List(ctx, status, limit, offset)
}

func (s *AuctionServiceImpl) BidHistory(ctx context.Context, auctionID uuid.UUID) ([]*model.Bid, error) {
	auction, err := s.auctionRepo.FindByAuctionID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	return s.bidRepo.ListByAuctionID(ctx, auction.ID)
}

func (s *AuctionServiceImpl) UserBids(ctx context.Context, bidderID uuid.UUID) ([]*model.Bid, error) {
	return s.bidRepo.ListByBidderID(ctx, bidderID)
}

func (s *AuctionServiceImpl) OpenDueAuctions(ctx context.Context) (int, error) {
	due, err := s.auctionRepo.FindDueForOpen(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	opened := 0
	for _, auction := range due {
		updated, err := s.auctionRepo.UpdateStatus(ctx, auction.ID, model.AuctionStatusScheduled, model.AuctionStatusLive)
		if err != nil {
			// 另一個 instance 的 sweeper 可能先轉換了，繼續處理下一筆
			continue
		}
		opened++
		s.afterCommit(updated, model.NewEnvelope(model.MessageTypeAuctionUpdate, updated.Snapshot()))
	}

	return opened, nil
}

func (s *AuctionServiceImpl) CloseExpiredAuctions(ctx context.Context) (int, error) {
	due, err := s.auctionRepo.FindDueForClose(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, auction := range due {
		updated, err := s.auctionRepo.UpdateStatus(ctx, auction.ID, model.AuctionStatusLive, model.AuctionStatusEnded)
		if err != nil {
			continue
		}
		closed++
		s.afterCommit(updated, model.NewEnvelope(model.MessageTypeAuctionUpdate, updated.Snapshot()))
		s.afterCommit(updated, model.NewEnvelope(model.MessageTypeNotification, model.NotificationPayload{
			Message:  "Auction has ended",
			Type:     "auction_ended",
			Priority: "high",
		}))
	}

	return closed, nil
}

// afterCommit 刷新快照快取並發佈房間事件
// 使用 context.Background()：請求結束不影響已提交結果的廣播
func (s *AuctionServiceImpl) afterCommit(auction *model.Auction, envelope *model.Envelope) {
	ctx := context.Background()

	snapshot := auction.Snapshot()
	if err := s.snapshotCache.Set(ctx, &snapshot); err != nil {
		logger.WithComponent("service").Warn("snapshot cache refresh failed",
			zap.String("auction_id", auction.AuctionID.String()), zap.Error(err))
	}

	if err := s.eventBus.Publish(ctx, auction.RoomID, envelope); err != nil {
		logger.WithComponent("service").Warn("event publish failed",
			zap.String("room_id", auction.RoomID),
			zap.String("type", string(envelope.Type)),
			zap.Error(err))
	}
}
