package handler

import (
	"errors"
	"net/http"
	"strings"

	"go-live-auction/internal/session"
	apperrors "go-live-auction/pkg/app_errors"
	"go-live-auction/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const userIDKey = "user_id"

// SessionAuth 驗證 Authorization: Bearer <session token> 並把 user id 放進 context
// session 的發行屬於外部帳號系統，這裡只做查詢
func SessionAuth(sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		userID, err := sessions.Lookup(c, token)
		if err != nil {
			if errors.Is(err, apperrors.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			logger.WithComponent("handler").Error("session lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// CurrentUserID 取出 SessionAuth 放進 context 的使用者 id
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	val, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	userID, ok := val.(uuid.UUID)
	return userID, ok
}
