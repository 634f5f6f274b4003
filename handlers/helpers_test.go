package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/quizdash/quizdash-backend/config"
	"github.com/quizdash/quizdash-backend/models"
)

func testConfig() config.Config {
	return config.Config{
		ListenAddr:         ":0",
		EmptyRoomGrace:     40 * time.Millisecond,
		SnapshotInterval:   25 * time.Millisecond,
		SnapshotMinPlayers: 10,
		ScoreboardSize:     10,
	}
}

func newTestStore() *RoomStore {
	return NewRoomStore(testConfig())
}

// newTestConn builds a connection without a transport; handlers only ever
// touch the send buffer.
func newTestConn() *Connection {
	return &Connection{
		send:     make(chan []byte, 256),
		playerID: uuid.New().String(),
	}
}

func joinRoom(t *testing.T, s *RoomStore, c *Connection, roomID, name string, isHost bool) models.PlayerAssigned {
	t.Helper()
	s.HandleJoin(c, models.JoinRequest{RoomID: roomID, Name: name, IsHost: isHost})
	msg, ok := findMessage(t, drainMessages(t, c), "player-assigned")
	require.True(t, ok, "expected player-assigned after join")
	assigned, err := decodePayload[models.PlayerAssigned](msg)
	require.NoError(t, err)
	return assigned
}

// drainMessages empties the connection's send buffer and decodes every
// pending envelope.
func drainMessages(t *testing.T, c *Connection) []models.WsMessage {
	t.Helper()
	var out []models.WsMessage
	for {
		select {
		case raw := <-c.send:
			var msg models.WsMessage
			require.NoError(t, json.Unmarshal(raw, &msg))
			out = append(out, msg)
		default:
			return out
		}
	}
}

// findMessage returns the last message of the given type.
func findMessage(t *testing.T, msgs []models.WsMessage, msgType string) (models.WsMessage, bool) {
	t.Helper()
	var found models.WsMessage
	ok := false
	for _, msg := range msgs {
		if msg.Type == msgType {
			found = msg
			ok = true
		}
	}
	return found, ok
}

func countMessages(msgs []models.WsMessage, msgType string) int {
	n := 0
	for _, msg := range msgs {
		if msg.Type == msgType {
			n++
		}
	}
	return n
}
