package handlers

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/quizdash/quizdash-backend/models"
)

// Connection represents a WebSocket connection and the player id assigned
// to it. The id is minted at upgrade time and never reused across
// transports.
type Connection struct {
	ws       *websocket.Conn
	send     chan []byte
	playerID string

	// roomID is only touched from the connection's read goroutine.
	roomID string
}

func newConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ws:       ws,
		send:     make(chan []byte, 256),
		playerID: uuid.New().String(),
	}
}

// trySend queues a frame without blocking. A full buffer drops the frame;
// the periodic full-state snapshot is the designed recovery for lost
// updates, so no one waits on a slow client.
func (c *Connection) trySend(message []byte) {
	if message == nil {
		return
	}
	select {
	case c.send <- message:
	default:
		log.Printf("Send buffer full for %s, dropping message", c.playerID)
	}
}

func (c *Connection) sendMessage(msgType string, payload interface{}) {
	c.trySend(marshalMessage(msgType, payload))
}

func marshalMessage(msgType string, payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshalling %s payload: %v", msgType, err)
		return nil
	}
	message, err := json.Marshal(models.WsMessage{Type: msgType, Data: data})
	if err != nil {
		log.Printf("Error marshalling %s message: %v", msgType, err)
		return nil
	}
	return message
}
