package model

import (
	"time"

	"github.com/google/uuid"
)

// Bid 出價紀錄：一旦寫入即不可變，同一拍賣內依寫入順序全序排列
type Bid struct {
	ID        int       `json:"id" db:"id"`
	BidID     uuid.UUID `json:"bid_id" db:"bid_id"`
	AuctionID int       `json:"-" db:"auction_id"`
	BidderID  uuid.UUID `json:"bidder_id" db:"bidder_id"`
	Amount    float64   `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
