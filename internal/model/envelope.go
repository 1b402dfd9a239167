package model

import (
	"time"

	"github.com/google/uuid"
)

// MessageType websocket 訊息類型，與前端 AuctionMessageType 對齊
type MessageType string

const (
	MessageTypeBidPlaced     MessageType = "bid_placed"
	MessageTypeAuctionUpdate MessageType = "auction_update"
	MessageTypeUserJoined    MessageType = "user_joined"
	MessageTypeNotification  MessageType = "notification"
	MessageTypeError         MessageType = "error"
)

// Envelope 房間內所有 websocket 訊息的外層格式
type Envelope struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
	SenderID  string      `json:"sender_id,omitempty"`
}

// NewEnvelope 建立帶有當下時間戳的訊息
func NewEnvelope(t MessageType, payload interface{}) *Envelope {
	return &Envelope{
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// BidPlacedPayload bid_placed 事件內容
type BidPlacedPayload struct {
	BidderID uuid.UUID `json:"bidder_id"`
	Amount   float64   `json:"amount"`
}

// UserJoinedPayload user_joined 事件內容；匿名觀戰者沒有 user_id
type UserJoinedPayload struct {
	UserID string `json:"user_id,omitempty"`
	RoomID string `json:"room_id"`
}

// NotificationPayload notification 事件內容
// priority 為 high / urgent 時前端以錯誤等級顯示
type NotificationPayload struct {
	Message  string `json:"message"`
	Type     string `json:"type"`
	Priority string `json:"priority"`
}
