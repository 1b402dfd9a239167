package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-live-auction/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AuctionSnapshotCache 拍賣快照的讀取快取
// 出價成交後由 service 主動刷新，因此 TTL 只是兜底，不是一致性來源
type AuctionSnapshotCache interface {
	Get(ctx context.Context, auctionID uuid.UUID) (*model.AuctionSnapshot, error)
	Set(ctx context.Context, snapshot *model.AuctionSnapshot) error
	Invalidate(ctx context.Context, auctionID uuid.UUID) error
}

type AuctionSnapshotCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAuctionSnapshotCache(client *redis.Client, ttl time.Duration) AuctionSnapshotCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AuctionSnapshotCacheImpl{
		client: client,
		ttl:    ttl,
	}
}

func (c *AuctionSnapshotCacheImpl) getKey(auctionID uuid.UUID) string {
	return fmt.Sprintf("auction:%s:snapshot", auctionID)
}

// Get 快取未命中時回傳 (nil, nil)，由呼叫端回源資料庫
func (c *AuctionSnapshotCacheImpl) Get(ctx context.Context, auctionID uuid.UUID) (*model.AuctionSnapshot, error) {
	val, err := c.client.Get(ctx, c.getKey(auctionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snapshot model.AuctionSnapshot
	if err := json.Unmarshal([]byte(val), &snapshot); err != nil {
		// 快取內容壞掉視同未命中，讓呼叫端回源覆蓋
		return nil, nil
	}

	return &snapshot, nil
}

func (c *AuctionSnapshotCacheImpl) Set(ctx context.Context, snapshot *model.AuctionSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.getKey(snapshot.AuctionID), data, c.ttl).Err()
}

func (c *AuctionSnapshotCacheImpl) Invalidate(ctx context.Context, auctionID uuid.UUID) error {
	return c.client.Del(ctx, c.getKey(auctionID)).Err()
}
