package model

import (
	"time"

	"github.com/google/uuid"
)

// AuctionStatus 拍賣狀態類型
type AuctionStatus string

const (
	AuctionStatusScheduled AuctionStatus = "scheduled"
	AuctionStatusLive      AuctionStatus = "live"
	AuctionStatusEnded     AuctionStatus = "ended"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

// IsValid 驗證狀態是否有效
func (s AuctionStatus) IsValid() bool {
	switch s {
	case AuctionStatusScheduled, AuctionStatusLive, AuctionStatusEnded, AuctionStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s AuctionStatus) CanTransitionTo(target AuctionStatus) bool {
	transitions := map[AuctionStatus][]AuctionStatus{
		AuctionStatusScheduled: {AuctionStatusLive, AuctionStatusCancelled},
		AuctionStatusLive:      {AuctionStatusEnded, AuctionStatusCancelled},
		AuctionStatusEnded:     {},
		AuctionStatusCancelled: {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// Auction 拍賣模型
// CurrentBid 為 0 表示尚無任何出價；一旦有出價，永遠 >= StartPrice
// CurrentBid 與 Status 只允許 AuctionService 修改
type Auction struct {
	ID              int           `json:"id" db:"id"`
	AuctionID       uuid.UUID     `json:"auction_id" db:"auction_id"`
	ProductID       uuid.UUID     `json:"product_id" db:"product_id"`
	RoomID          string        `json:"room_id" db:"room_id"`
	StartPrice      float64       `json:"start_price" db:"start_price"`
	MinIncrement    float64       `json:"min_increment" db:"min_increment"`
	ReservePrice    *float64      `json:"reserve_price,omitempty" db:"reserve_price"`
	CurrentBid      float64       `json:"current_bid" db:"current_bid"`
	CurrentBidderID *uuid.UUID    `json:"current_bidder_id,omitempty" db:"current_bidder_id"`
	BuyNow          bool          `json:"buy_now" db:"buy_now"`
	BuyNowPrice     float64       `json:"buy_now_price" db:"buy_now_price"`
	StartTime       time.Time     `json:"start_time" db:"start_time"`
	EndTime         time.Time     `json:"end_time" db:"end_time"`
	Status          AuctionStatus `json:"status" db:"status"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// IsLiveAt 檢查拍賣在指定時間點是否接受出價
func (a *Auction) IsLiveAt(now time.Time) bool {
	return a.Status == AuctionStatusLive &&
		!now.Before(a.StartTime) &&
		now.Before(a.EndTime)
}

// MinNextBid 下一次出價的最低可接受金額
func (a *Auction) MinNextBid() float64 {
	if a.CurrentBid == 0 {
		return a.StartPrice
	}
	return a.CurrentBid + a.MinIncrement
}

// ReserveMet 檢查目前出價是否達到保留價
func (a *Auction) ReserveMet() bool {
	if a.ReservePrice == nil {
		return true
	}
	return a.CurrentBid >= *a.ReservePrice
}

// CreateAuctionRequest 創建拍賣請求
type CreateAuctionRequest struct {
	ProductID    uuid.UUID `json:"product_id" binding:"required"`
	RoomID       string    `json:"room_id"`
	StartPrice   float64   `json:"start_price" binding:"required,gt=0"`
	MinIncrement float64   `json:"min_increment" binding:"required,gt=0"`
	ReservePrice *float64  `json:"reserve_price"`
	BuyNow       bool      `json:"buy_now"`
	BuyNowPrice  float64   `json:"buy_now_price"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	EndTime      time.Time `json:"end_time" binding:"required"`
}

// PlaceBidRequest 出價請求
type PlaceBidRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// AuctionSnapshot 拍賣快照：REST 回應與 auction_update 事件共用的欄位
type AuctionSnapshot struct {
	AuctionID   uuid.UUID     `json:"auction_id"`
	RoomID      string        `json:"room_id"`
	CurrentBid  float64       `json:"current_bid"`
	MinNextBid  float64       `json:"min_next_bid"`
	Status      AuctionStatus `json:"status"`
	ReserveMet  bool          `json:"reserve_met"`
	BuyNow      bool          `json:"buy_now"`
	BuyNowPrice float64       `json:"buy_now_price"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
}

// Snapshot 取出拍賣目前的快照
func (a *Auction) Snapshot() AuctionSnapshot {
	return AuctionSnapshot{
		AuctionID:   a.AuctionID,
		RoomID:      a.RoomID,
		CurrentBid:  a.CurrentBid,
		MinNextBid:  a.MinNextBid(),
		Status:      a.Status,
		ReserveMet:  a.ReserveMet(),
		BuyNow:      a.BuyNow,
		BuyNowPrice: a.BuyNowPrice,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
	}
}
