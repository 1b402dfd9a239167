package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-live-auction/internal/handler"
	"go-live-auction/internal/model"
	"go-live-auction/test/internal/mocks/services"

	apperrors "go-live-auction/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupAuctionTestRouter(mockService *services.AuctionServiceMock) (*gin.Engine, uuid.UUID) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	auth, userID := newTestAuth()
	auctionHandler := handler.NewAuctionHandler(mockService, auth)
	auctionHandler.RegisterRoutes(router)

	return router, userID
}

func sampleAuction(auctionID uuid.UUID, currentBid float64) *model.Auction {
	now := time.Now().UTC()
	return &model.Auction{
		ID:           1,
		AuctionID:    auctionID,
		ProductID:    uuid.New(),
		RoomID:       "room-" + auctionID.String(),
		StartPrice:   1000,
		MinIncrement: 50,
		CurrentBid:   currentBid,
		StartTime:    now.Add(-time.Minute),
		EndTime:      now.Add(time.Hour),
		Status:       model.AuctionStatusLive,
	}
}

func TestPlaceBidEndpoint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, userID := setupAuctionTestRouter(mockService)

		auctionID := uuid.New()
		auction := sampleAuction(auctionID, 1050)
		bid := &model.Bid{BidID: uuid.New(), BidderID: userID, Amount: 1050}

		mockService.On("PlaceBid", mock.Anything, auctionID, userID, 1050.0).
			Return(bid, auction, nil).Once()

		req := createAuthedJSONHTTPRequest("POST", "/api/v1/auctions/"+auctionID.String()+"/bid", model.PlaceBidRequest{Amount: 1050})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data model.AuctionSnapshot `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 1050.0, body.Data.CurrentBid)
		assert.Equal(t, 1100.0, body.Data.MinNextBid)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - StaleAmount", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		auctionID := uuid.New()
		mockService.On("PlaceBid", mock.Anything, auctionID, mock.Anything, 900.0).
			Return(nil, nil, apperrors.ErrStaleBid).Once()

		req := createAuthedJSONHTTPRequest("POST", "/api/v1/auctions/"+auctionID.String()+"/bid", model.PlaceBidRequest{Amount: 900})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"error": "stale_amount"}`, w.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - BelowMinimum", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		auctionID := uuid.New()
		mockService.On("PlaceBid", mock.Anything, auctionID, mock.Anything, 1030.0).
			Return(nil, nil, apperrors.ErrBidBelowMinimum).Once()

		req := createAuthedJSONHTTPRequest("POST", "/api/v1/auctions/"+auctionID.String()+"/bid", model.PlaceBidRequest{Amount: 1030})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"error": "below_minimum"}`, w.Body.String())
	})

	t.Run("Failed - AuctionEnded", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		auctionID := uuid.New()
		mockService.On("PlaceBid", mock.Anything, auctionID, mock.Anything, 1050.0).
			Return(nil, nil, apperrors.ErrAuctionEnded).Once()

		req := createAuthedJSONHTTPRequest("POST", "/api/v1/auctions/"+auctionID.String()+"/bid", model.PlaceBidRequest{Amount: 1050})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.JSONEq(t, `{"error": "auction_ended"}`, w.Body.String())
	})

	t.Run("Failed - InternalServerError", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		auctionID := uuid.New()
		mockService.On("PlaceBid", mock.Anything, auctionID, mock.Anything, 1050.0).
			Return(nil, nil, apperrors.ErrInternalServerError).Once()

		req := createAuthedJSONHTTPRequest("POST", "/api/v1/auctions/"+auctionID.String()+"/bid", model.PlaceBidRequest{Amount: 1050})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error": "internal_server_error"}`, w.Body.String())
	})

	t.Run("Failed - MissingSession", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		req := createJSONHTTPRequest("POST", "/api/v1/auctions/"+uuid.New().String()+"/bid", model.PlaceBidRequest{Amount: 1050})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "PlaceBid")
	})

	t.Run("Failed - BindingError", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		req := createAuthedJSONHTTPRequest("POST", "/api/v1/auctions/"+uuid.New().String()+"/bid", InvalidJSON)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "PlaceBid")
	})

	t.Run("Failed - InvalidUUID", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		req := createAuthedJSONHTTPRequest("POST", "/api/v1/auctions/not-a-uuid/bid", model.PlaceBidRequest{Amount: 1050})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "PlaceBid")
	})
}

func TestGetAuctionEndpoint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		auctionID := uuid.New()
		mockService.On("GetAuction", mock.Anything, auctionID).
			Return(sampleAuction(auctionID, 1200), nil).Once()

		req := httptest.NewRequest("GET", "/api/v1/auctions/"+auctionID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		auctionID := uuid.New()
		mockService.On("GetAuction", mock.Anything, auctionID).
			Return(nil, apperrors.ErrAuctionNotFound).Once()

		req := httptest.NewRequest("GET", "/api/v1/auctions/"+auctionID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error": "auction_not_found"}`, w.Body.String())
	})

	t.Run("InvalidUUID", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		req := httptest.NewRequest("GET", "/api/v1/auctions/invalid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "GetAuction")
	})
}

func TestListAuctionsEndpoint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		mockService.On("ListAuctions", mock.Anything, (*model.AuctionStatus)(nil), 20, 0).
			Return([]*model.Auction{sampleAuction(uuid.New(), 0)}, nil).Once()

		req := httptest.NewRequest("GET", "/api/v1/auctions", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("StatusFilter", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		live := model.AuctionStatusLive
		mockService.On("ListAuctions", mock.Anything, &live, 5, 10).
			Return([]*model.Auction{}, nil).Once()

		req := httptest.NewRequest("GET", "/api/v1/auctions?status=live&limit=5&offset=10", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		req := httptest.NewRequest("GET", "/api/v1/auctions?status=bogus", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "ListAuctions")
	})
}

func TestGetBidsEndpoint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		auctionID := uuid.New()
		mockService.On("BidHistory", mock.Anything, auctionID).
			Return([]*model.Bid{
				{BidID: uuid.New(), BidderID: uuid.New(), Amount: 1000},
				{BidID: uuid.New(), BidderID: uuid.New(), Amount: 1050},
			}, nil).Once()

		req := httptest.NewRequest("GET", "/api/v1/auctions/"+auctionID.String()+"/bids", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data []model.Bid `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Len(t, body.Data, 2)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		auctionID := uuid.New()
		mockService.On("BidHistory", mock.Anything, auctionID).
			Return(nil, apperrors.ErrAuctionNotFound).Once()

		req := httptest.NewRequest("GET", "/api/v1/auctions/"+auctionID.String()+"/bids", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBuyNowEndpoint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, userID := setupAuctionTestRouter(mockService)

		auctionID := uuid.New()
		auction := sampleAuction(auctionID, 5000)
		auction.Status = model.AuctionStatusEnded

		mockService.On("BuyNow", mock.Anything, auctionID, userID).
			Return(auction, nil).Once()

		req := createAuthedJSONHTTPRequest("POST", "/api/v1/auctions/"+auctionID.String()+"/buy-now", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - Unavailable", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		auctionID := uuid.New()
		mockService.On("BuyNow", mock.Anything, auctionID, mock.Anything).
			Return(nil, apperrors.ErrBuyNowUnavailable).Once()

		req := createAuthedJSONHTTPRequest("POST", "/api/v1/auctions/"+auctionID.String()+"/buy-now", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"error": "buy_now_unavailable"}`, w.Body.String())
	})
}

func TestGetUserBidsEndpoint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, userID := setupAuctionTestRouter(mockService)

		mockService.On("UserBids", mock.Anything, userID).
			Return([]*model.Bid{{BidID: uuid.New(), BidderID: userID, Amount: 1000}}, nil).Once()

		req := createAuthedJSONHTTPRequest("GET", "/api/v1/users/me/bids", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - MissingSession", func(t *testing.T) {
		mockService := services.NewAuctionServiceMock()
		router, _ := setupAuctionTestRouter(mockService)

		req := httptest.NewRequest("GET", "/api/v1/users/me/bids", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "UserBids")
	})
}
