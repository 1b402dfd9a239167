package handler

import (
	"net/http"

	"go-live-auction/internal/service"
	"go-live-auction/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WSTicketHandler struct {
	service service.WSTicketService
	auth    gin.HandlerFunc
}

func NewWSTicketHandler(service service.WSTicketService, auth gin.HandlerFunc) *WSTicketHandler {
	return &WSTicketHandler{service: service, auth: auth}
}

func (h *WSTicketHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("ws/ticket", h.auth, h.IssueTicket)
	}
}

// IssueTicket 領取一次性連線票券，客戶端每次連線（含重連）都要重新領
func (h *WSTicketHandler) IssueTicket(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	token, err := h.service.Issue(c, userID)
	if err != nil {
		logger.WithComponent("handler").Error("issue ticket failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"ticket": token}})
}
