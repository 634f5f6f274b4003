package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/quizdash/quizdash-backend/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// store is wired by NewRouter before the server starts accepting
// connections.
var store *RoomStore

func WsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	c := newConnection(conn)
	log.Printf("Connection %s established", c.playerID)

	go c.writePump()
	c.readPump()
}

func (c *Connection) readPump() {
	defer func() {
		store.HandleDisconnect(c)
		close(c.send)
		c.ws.Close()
		log.Printf("Connection %s closed", c.playerID)
	}()

	c.ws.SetReadLimit(1 << 20)

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Error reading message from %s: %v", c.playerID, err)
			}
			break
		}
		processMessage(store, c, message)
	}
}

func (c *Connection) writePump() {
	defer c.ws.Close()

	for message := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("Error writing message to %s: %v", c.playerID, err)
			break
		}
	}
}

// decodePayload unpacks an envelope's data into the expected payload type.
func decodePayload[T any](msg models.WsMessage) (T, error) {
	var out T
	if len(msg.Data) == 0 {
		return out, fmt.Errorf("empty payload for type %q", msg.Type)
	}
	err := json.Unmarshal(msg.Data, &out)
	return out, err
}

// processMessage dispatches one inbound frame. Malformed frames are logged
// and dropped; the connection stays open.
func processMessage(s *RoomStore, c *Connection, rawMessage []byte) {
	var msg models.WsMessage
	if err := json.Unmarshal(rawMessage, &msg); err != nil {
		log.Printf("Error unmarshalling message from %s: %v", c.playerID, err)
		return
	}

	switch msg.Type {
	case "join":
		if req, err := decodePayload[models.JoinRequest](msg); err != nil {
			logMalformed(c, msg.Type, err)
		} else {
			s.HandleJoin(c, req)
		}
	case "player-move":
		if req, err := decodePayload[models.MoveRequest](msg); err != nil {
			logMalformed(c, msg.Type, err)
		} else {
			s.HandleMove(c, req)
		}
	case "collect-coin":
		if req, err := decodePayload[models.CollectCoinRequest](msg); err != nil {
			logMalformed(c, msg.Type, err)
		} else {
			s.HandleCollectCoin(c, req)
		}
	case "quiz-result":
		if req, err := decodePayload[models.QuizResultRequest](msg); err != nil {
			logMalformed(c, msg.Type, err)
		} else {
			s.HandleQuizResult(c, req)
		}
	case "player-died":
		if req, err := decodePayload[models.PlayerDiedRequest](msg); err != nil {
			logMalformed(c, msg.Type, err)
		} else {
			s.HandlePlayerDied(c, req)
		}
	case "start-game":
		if req, err := decodePayload[models.StartGameRequest](msg); err != nil {
			logMalformed(c, msg.Type, err)
		} else {
			s.HandleStartGame(c, req)
		}
	case "game-ended":
		if req, err := decodePayload[models.GameEndedRequest](msg); err != nil {
			logMalformed(c, msg.Type, err)
		} else {
			s.HandleGameEnded(c, req)
		}
	case "reset-game":
		if req, err := decodePayload[models.ResetGameRequest](msg); err != nil {
			logMalformed(c, msg.Type, err)
		} else {
			s.HandleResetGame(c, req)
		}
	case "request-sync":
		if req, err := decodePayload[models.RequestSyncRequest](msg); err != nil {
			logMalformed(c, msg.Type, err)
		} else {
			s.HandleRequestSync(c, req)
		}
	case "request-scoreboard":
		s.HandleRequestScoreboard(c)
	case "save-questions":
		if req, err := decodePayload[models.SaveQuestionsRequest](msg); err != nil {
			logMalformed(c, msg.Type, err)
		} else {
			s.HandleSaveQuestions(c, req)
		}
	case "request-questions":
		if req, err := decodePayload[models.RequestQuestionsRequest](msg); err != nil {
			logMalformed(c, msg.Type, err)
		} else {
			s.HandleRequestQuestions(c, req)
		}
	case "leave":
		if req, err := decodePayload[models.LeaveRequest](msg); err != nil {
			logMalformed(c, msg.Type, err)
		} else {
			s.HandleLeave(c, req)
		}
	default:
		log.Printf("Unhandled message type %q from %s", msg.Type, c.playerID)
	}
}

func logMalformed(c *Connection, msgType string, err error) {
	log.Printf("Malformed %s message from %s: %v", msgType, c.playerID, err)
}
