package bus

import (
	"context"
	"encoding/json"
	"strings"

	"go-live-auction/internal/model"
	"go-live-auction/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "auction.room."

// RedisBusImpl 跨進程版事件匯流排：多台 Gateway 時每台都訂閱全部房間頻道，
// 再由各自的 hub 過濾出本機有訂閱者的房間
type RedisBusImpl struct {
	client *redis.Client
}

func NewRedisBus(client *redis.Client) *RedisBusImpl {
	return &RedisBusImpl{client: client}
}

func channelFor(roomID string) string {
	return channelPrefix + roomID
}

func roomFromChannel(channel string) string {
	return strings.TrimPrefix(channel, channelPrefix)
}

func (b *RedisBusImpl) Publish(ctx context.Context, roomID string, envelope *model.Envelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channelFor(roomID), data).Err()
}

func (b *RedisBusImpl) Run(ctx context.Context, deliver func(roomID string, envelope *model.Envelope)) error {
	pubsub := b.client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	log := logger.WithComponent("bus")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var envelope model.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				log.Warn("unmarshal envelope failed", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}

			deliver(roomFromChannel(msg.Channel), &envelope)
		}
	}
}

// Compile-time interface checks.
var (
	_ Bus = (*MemoryBusImpl)(nil)
	_ Bus = (*RedisBusImpl)(nil)
)
