package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go-live-auction/internal/model"
	"go-live-auction/pkg/logger"

	"go.uber.org/zap"
)

// room 一個拍賣的觀戰群組
// emptyAt 非零表示已無訂閱者，超過 grace period 後由 janitor 回收
type room struct {
	clients map[*Client]bool
	emptyAt time.Time
}

type broadcastMsg struct {
	roomID string
	data   []byte
}

type subscription struct {
	roomID string
	client *Client
}

// Hub 房間廣播中心：room_id -> 訂閱連線集合
// 所有註冊/註銷/廣播都經過單一 Run 迴圈，房間狀態不需要額外鎖
type Hub struct {
	rooms map[string]*room

	register   chan subscription
	unregister chan subscription
	broadcast  chan broadcastMsg

	// roomGrace 房間清空後保留的時間，吸收快速斷線重連
	roomGrace time.Duration

	// counts 提供 Run 迴圈外的讀取（測試、stats endpoint）
	mu     sync.RWMutex
	counts map[string]int

	log *zap.Logger
}

func NewHub(roomGrace time.Duration) *Hub {
	if roomGrace <= 0 {
		roomGrace = 30 * time.Second
	}
	return &Hub{
		rooms:      make(map[string]*room),
		register:   make(chan subscription),
		unregister: make(chan subscription),
		broadcast:  make(chan broadcastMsg, 256),
		roomGrace:  roomGrace,
		counts:     make(map[string]int),
		log:        logger.WithComponent("hub"),
	}
}

// Run 主迴圈，應以 goroutine 啟動，ctx 結束時關閉所有連線
func (h *Hub) Run(ctx context.Context) error {
	janitor := time.NewTicker(h.roomGrace)
	defer janitor.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()

		case sub := <-h.register:
			h.subscribe(sub.roomID, sub.client)

		case sub := <-h.unregister:
			h.unsubscribe(sub.roomID, sub.client)

		case msg := <-h.broadcast:
			h.broadcastToRoom(msg.roomID, msg.data)

		case <-janitor.C:
			h.reapEmptyRooms()
		}
	}
}

// Subscribe 註冊連線到房間，重複註冊是 no-op
func (h *Hub) Subscribe(roomID string, client *Client) {
	h.register <- subscription{roomID: roomID, client: client}
}

// Unsubscribe 自房間移除連線，移除不存在的連線是 no-op
func (h *Hub) Unsubscribe(roomID string, client *Client) {
	h.unregister <- subscription{roomID: roomID, client: client}
}

// Deliver 把訊息送給房間內所有連線
// 序列化一次、所有訂閱者共用同一份 bytes
func (h *Hub) Deliver(roomID string, envelope *model.Envelope) {
	data, err := json.Marshal(envelope)
	if err != nil {
		h.log.Error("marshal envelope failed", zap.String("room_id", roomID), zap.Error(err))
		return
	}
	h.broadcast <- broadcastMsg{roomID: roomID, data: data}
}

// SubscriberCount 回傳房間目前的連線數
func (h *Hub) SubscriberCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.counts[roomID]
}

func (h *Hub) subscribe(roomID string, client *Client) {
	rm, ok := h.rooms[roomID]
	if !ok {
		rm = &room{clients: make(map[*Client]bool)}
		h.rooms[roomID] = rm
	}

	if rm.clients[client] {
		return
	}

	rm.clients[client] = true
	rm.emptyAt = time.Time{}
	h.setCount(roomID, len(rm.clients))

	h.log.Info("client subscribed",
		zap.String("room_id", roomID),
		zap.String("client_id", client.ID),
		zap.Int("subscribers", len(rm.clients)))
}

func (h *Hub) unsubscribe(roomID string, client *Client) {
	rm, ok := h.rooms[roomID]
	if !ok || !rm.clients[client] {
		return
	}

	delete(rm.clients, client)
	client.close()
	h.setCount(roomID, len(rm.clients))

	if len(rm.clients) == 0 {
		rm.emptyAt = time.Now()
	}

	h.log.Info("client unsubscribed",
		zap.String("room_id", roomID),
		zap.String("client_id", client.ID),
		zap.Int("subscribers", len(rm.clients)))
}

func (h *Hub) broadcastToRoom(roomID string, data []byte) {
	rm, ok := h.rooms[roomID]
	if !ok {
		return
	}

	for client := range rm.clients {
		select {
		case client.send <- data:
		default:
			// 送不進去表示消費太慢，直接斷線施加背壓
			// 事件不重送，客戶端重連後以 GET /auctions/:id/bids 補齊
			h.log.Warn("send queue full, dropping slow consumer",
				zap.String("room_id", roomID),
				zap.String("client_id", client.ID))
			h.unsubscribe(roomID, client)
		}
	}
}

func (h *Hub) reapEmptyRooms() {
	now := time.Now()
	for roomID, rm := range h.rooms {
		if len(rm.clients) == 0 && !rm.emptyAt.IsZero() && now.Sub(rm.emptyAt) >= h.roomGrace {
			delete(h.rooms, roomID)
			h.deleteCount(roomID)
		}
	}
}

func (h *Hub) closeAll() {
	for roomID, rm := range h.rooms {
		for client := range rm.clients {
			client.close()
		}
		delete(h.rooms, roomID)
		h.deleteCount(roomID)
	}
}

func (h *Hub) setCount(roomID string, n int) {
	h.mu.Lock()
	h.counts[roomID] = n
	h.mu.Unlock()
}

func (h *Hub) deleteCount(roomID string) {
	h.mu.Lock()
	delete(h.counts, roomID)
	h.mu.Unlock()
}
