package bus

import (
	"context"

	"go-live-auction/internal/model"
	"go-live-auction/pkg/logger"

	"go.uber.org/zap"
)

// Event 一筆要送進房間的訊息
type Event struct {
	RoomID   string
	Envelope *model.Envelope
}

// Bus 把出價提交與 websocket fan-out 解耦
// Publish 在交易 commit 之後呼叫，絕不能反向阻塞出價路徑
type Bus interface {
	Publish(ctx context.Context, roomID string, envelope *model.Envelope) error
	// Run 阻塞消費事件並交給 deliver，直到 ctx 結束
	Run(ctx context.Context, deliver func(roomID string, envelope *model.Envelope)) error
}

// MemoryBusImpl 單進程版：用 buffered channel 模擬 MQ
// 水平擴展 Gateway 時換成 RedisBusImpl，介面不變
type MemoryBusImpl struct {
	ch chan Event
}

func NewMemoryBus(bufferSize int) *MemoryBusImpl {
	return &MemoryBusImpl{
		ch: make(chan Event, bufferSize),
	}
}

func (b *MemoryBusImpl) Publish(ctx context.Context, roomID string, envelope *model.Envelope) error {
	select {
	case b.ch <- Event{RoomID: roomID, Envelope: envelope}:
		return nil
	default:
		// 滿了就丟掉並記錄：廣播是 best-effort，客戶端靠重抓歷史補齊
		logger.WithComponent("bus").Warn("memory bus full, dropping event",
			zap.String("room_id", roomID),
			zap.String("type", string(envelope.Type)))
		return nil
	}
}

func (b *MemoryBusImpl) Run(ctx context.Context, deliver func(roomID string, envelope *model.Envelope)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-b.ch:
			deliver(ev.RoomID, ev.Envelope)
		}
	}
}
