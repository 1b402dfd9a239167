package handler

import (
	"errors"
	"net/http"

	"go-live-auction/internal/model"
	"go-live-auction/internal/service"
	apperrors "go-live-auction/pkg/app_errors"
	"go-live-auction/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuctionHandler struct {
	service service.AuctionService
	auth    gin.HandlerFunc
}

func NewAuctionHandler(service service.AuctionService, auth gin.HandlerFunc) *AuctionHandler {
	return &AuctionHandler{service: service, auth: auth}
}

func (h *AuctionHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("auctions", h.ListAuctions)
		router.GET("auctions/:uuid", h.GetAuction)
		router.GET("auctions/:uuid/bids", h.GetBids)
		router.POST("auctions/:uuid/bid", h.auth, h.PlaceBid)
		router.POST("auctions/:uuid/buy-now", h.auth, h.BuyNow)
		router.GET("users/me/bids", h.auth, h.GetUserBids)
	}
}

// ListAuctionsQuery 列表查詢參數
type ListAuctionsQuery struct {
	Status string `form:"status"`
	Limit  int    `form:"limit,default=20"`
	Offset int    `form:"offset,default=0"`
}

func (h *AuctionHandler) ListAuctions(c *gin.Context) {
	var query ListAuctionsQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}

	var status *model.AuctionStatus
	if query.Status != "" {
		s := model.AuctionStatus(query.Status)
		if !s.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		status = &s
	}

	auctions, err := h.service.ListAuctions(c, status, query.Limit, query.Offset)
	if err != nil {
		h.handleAuctionError(c, err, "ListAuctions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": auctions})
}

func (h *AuctionHandler) GetAuction(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auction uuid"})
		return
	}

	auction, err := h.service.GetAuction(c, auctionID)
	if err != nil {
		h.handleAuctionError(c, err, "GetAuction")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": auction})
}

// GetBids 出價歷史，最舊在前；重連後客戶端靠這條路補齊斷線期間的事件
func (h *AuctionHandler) GetBids(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auction uuid"})
		return
	}

	bids, err := h.service.BidHistory(c, auctionID)
	if err != nil {
		h.handleAuctionError(c, err, "GetBids")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": bids})
}

func (h *AuctionHandler) PlaceBid(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auction uuid"})
		return
	}

	bidderID, ok := CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req model.PlaceBidRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	_, auction, err := h.service.PlaceBid(c, auctionID, bidderID, req.Amount)
	if err != nil {
		h.handleAuctionError(c, err, "PlaceBid")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": auction.Snapshot()})
}

func (h *AuctionHandler) BuyNow(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auction uuid"})
		return
	}

	bidderID, ok := CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	auction, err := h.service.BuyNow(c, auctionID, bidderID)
	if err != nil {
		h.handleAuctionError(c, err, "BuyNow")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": auction.Snapshot()})
}

func (h *AuctionHandler) GetUserBids(c *gin.Context) {
	bidderID, ok := CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bids, err := h.service.UserBids(c, bidderID)
	if err != nil {
		h.handleAuctionError(c, err, "GetUserBids")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": bids})
}

// Helper functions

// handleAuctionError 業務規則錯誤回 reason code，前端據此顯示
func (h *AuctionHandler) handleAuctionError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrAuctionNotFound):
		log.Warn("Auction not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "auction_not_found",
		})
	case errors.Is(err, apperrors.ErrStaleBid):
		log.Warn("Stale bid amount")
		c.JSON(http.StatusConflict, gin.H{
			"error": "stale_amount",
		})
	case errors.Is(err, apperrors.ErrBidBelowMinimum):
		log.Warn("Bid below minimum")
		c.JSON(http.StatusConflict, gin.H{
			"error": "below_minimum",
		})
	case errors.Is(err, apperrors.ErrAlreadyHighestBidder):
		log.Warn("Bidder already holds highest bid")
		c.JSON(http.StatusConflict, gin.H{
			"error": "already_highest_bidder",
		})
	case errors.Is(err, apperrors.ErrBuyNowUnavailable):
		log.Warn("Buy now unavailable")
		c.JSON(http.StatusConflict, gin.H{
			"error": "buy_now_unavailable",
		})
	case errors.Is(err, apperrors.ErrAuctionNotLive):
		log.Warn("Auction not live")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "auction_not_live",
		})
	case errors.Is(err, apperrors.ErrAuctionEnded):
		log.Warn("Auction ended")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "auction_ended",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "internal_server_error",
		})
	}
}
