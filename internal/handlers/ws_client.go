package handlers

import (
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type WSClient struct {
	UserID string
	Conn   *websocket.Conn
	SendCh chan []byte
}

func NewWSClient(userID string, conn *websocket.Conn) *WSClient {
	return &WSClient{
		UserID: userID,
		Conn:   conn,
		SendCh: make(chan []byte, 32),
	}
}

// Send never blocks; a client whose buffer is full misses the message.
func (c *WSClient) Send(payload []byte) {
	select {
	case c.SendCh <- payload:
	default:
	}
}

func (c *WSClient) WritePump() {
	for msg := range c.SendCh {
		_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
