package ws

import (
	"sync"
	"time"

	"go-live-auction/pkg/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// maxMessageSize 觀戰連線以下行訊息為主，上行只收小型控制訊息
	maxMessageSize = 4096
)

// Timings 連線層的心跳與寫入期限
type Timings struct {
	WriteWait  time.Duration
	PongWait   time.Duration
	PingPeriod time.Duration
}

// Client 一條 websocket 連線
// Identity 為空字串表示匿名觀戰者
type Client struct {
	ID       string
	RoomID   string
	Identity string

	conn    *websocket.Conn
	send    chan []byte
	timings Timings

	closeOnce sync.Once
}

func NewClient(id, roomID, identity string, conn *websocket.Conn, sendQueueSize int, timings Timings) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = 256
	}
	return &Client{
		ID:       id,
		RoomID:   roomID,
		Identity: identity,
		conn:     conn,
		send:     make(chan []byte, sendQueueSize),
		timings:  timings,
	}
}

// Outbound 下行訊息佇列的唯讀視圖
func (c *Client) Outbound() <-chan []byte {
	return c.send
}

// close 只能由 hub 迴圈呼叫；關閉 send 讓 writePump 收尾
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// writePump 把 send queue 的訊息寫到 socket，並定期送 ping
// 每條連線一個 goroutine，是唯一允許寫 conn 的地方
func (c *Client) writePump() {
	ticker := time.NewTicker(c.timings.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.timings.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.timings.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 消化上行訊息並維護 pong deadline
// 任何讀取錯誤（斷線、閒置逾時）都走同一條退出路徑：自房間註銷
func (c *Client) readPump(hub *Hub) {
	defer hub.Unsubscribe(c.RoomID, c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.timings.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.timings.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.WithComponent("ws").Warn("read error",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			return
		}
		// 目前協定是純下行：上行內容一律忽略，只用來偵測斷線
	}
}
