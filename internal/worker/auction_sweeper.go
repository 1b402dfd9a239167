package worker

import (
	"context"
	"time"

	"go-live-auction/internal/service"
	"go-live-auction/pkg/logger"

	"go.uber.org/zap"
)

// AuctionSweeper 定時掃描到點的拍賣並轉換狀態
// scheduled -> live（開拍）、live -> ended（截止）
type AuctionSweeper interface {
	Start(ctx context.Context) error
}

type AuctionSweeperImpl struct {
	service  service.AuctionService
	interval time.Duration
}

func NewAuctionSweeper(service service.AuctionService, interval time.Duration) AuctionSweeper {
	if interval <= 0 {
		interval = time.Second
	}
	return &AuctionSweeperImpl{
		service:  service,
		interval: interval,
	}
}

// Start 阻塞執行直到 ctx 結束；單次掃描失敗只記 log，下一個 tick 重試
func (w *AuctionSweeperImpl) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log := logger.WithComponent("sweeper")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if opened, err := w.service.OpenDueAuctions(ctx); err != nil {
				log.Error("open due auctions failed", zap.Error(err))
			} else if opened > 0 {
				log.Info("auctions opened", zap.Int("count", opened))
			}

			if closed, err := w.service.CloseExpiredAuctions(ctx); err != nil {
				log.Error("close expired auctions failed", zap.Error(err))
			} else if closed > 0 {
				log.Info("auctions closed", zap.Int("count", closed))
			}
		}
	}
}
