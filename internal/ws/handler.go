package ws

import (
	"errors"
	"net/http"

	"go-live-auction/config"
	"go-live-auction/internal/model"
	"go-live-auction/internal/service"
	apperrors "go-live-auction/pkg/app_errors"
	"go-live-auction/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 瀏覽器端網域由部署環境決定，這裡放行全部
		return true
	},
}

// Gateway 負責連線層：票券驗證、升級、掛進房間、啟動收發 goroutine
type Gateway struct {
	hub      *Hub
	tickets  service.WSTicketService
	wsConfig config.WSConfig
}

func NewGateway(hub *Hub, tickets service.WSTicketService, wsConfig config.WSConfig) *Gateway {
	return &Gateway{
		hub:      hub,
		tickets:  tickets,
		wsConfig: wsConfig,
	}
}

func (g *Gateway) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("ws/auctions/:room_id", g.HandleConnection)
	}
}

// HandleConnection 驗票通過才升級；驗票失敗回 401，客戶端必須重新領票再連
func (g *Gateway) HandleConnection(c *gin.Context) {
	roomID := c.Param("room_id")
	token := c.Query("ticket")

	if roomID == "" || token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing room or ticket"})
		return
	}

	identity, err := g.tickets.Redeem(c, token)
	if err != nil {
		g.handleTicketError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失敗時 gorilla 已經回覆了 http 錯誤
		logger.WithComponent("ws").Warn("upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(uuid.New().String(), roomID, identity, conn, g.wsConfig.SendQueueSize, Timings{
		WriteWait:  g.wsConfig.WriteWait,
		PongWait:   g.wsConfig.PongWait,
		PingPeriod: g.wsConfig.PingPeriod,
	})

	g.hub.Subscribe(roomID, client)

	go client.writePump()
	go client.readPump(g.hub)

	// 向整個房間宣告新觀戰者加入
	joined := model.NewEnvelope(model.MessageTypeUserJoined, model.UserJoinedPayload{
		UserID: identity,
		RoomID: roomID,
	})
	joined.SenderID = identity
	g.hub.Deliver(roomID, joined)
}

func (g *Gateway) handleTicketError(c *gin.Context, err error) {
	log := logger.WithComponent("ws").With(zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrTicketInvalid):
		log.Warn("Invalid ticket")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid ticket"})
	case errors.Is(err, apperrors.ErrTicketExpired):
		log.Warn("Expired ticket")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Expired ticket"})
	case errors.Is(err, apperrors.ErrTicketConsumed):
		log.Warn("Ticket already consumed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Ticket already consumed"})
	default:
		log.Error("Ticket redemption failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
