package apperrors

import "errors"

var (
	// 出價規則錯誤：屬於預期結果，回傳給呼叫端而非例外
	ErrAuctionNotFound      = errors.New("auction not found")
	ErrAuctionNotLive       = errors.New("auction not live")
	ErrAuctionEnded         = errors.New("auction ended")
	ErrBidBelowMinimum      = errors.New("bid below minimum")
	ErrStaleBid             = errors.New("stale bid amount")
	ErrAlreadyHighestBidder = errors.New("bidder already holds highest bid")
	ErrBuyNowUnavailable    = errors.New("buy now unavailable")

	// 連線票券錯誤
	ErrTicketInvalid  = errors.New("invalid ticket")
	ErrTicketExpired  = errors.New("ticket expired")
	ErrTicketConsumed = errors.New("ticket already consumed")

	ErrUnauthorized        = errors.New("unauthorized")
	ErrInternalServerError = errors.New("internal server error")
)
