package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizdash/quizdash-backend/models"
)

func TestJoinAssignsPlayerAndSendsState(t *testing.T) {
	s := newTestStore()
	host := newTestConn()

	s.HandleJoin(host, models.JoinRequest{RoomID: "abcd", Name: "Alice", IsHost: true})
	msgs := drainMessages(t, host)

	msg, ok := findMessage(t, msgs, "player-assigned")
	require.True(t, ok)
	assigned, err := decodePayload[models.PlayerAssigned](msg)
	require.NoError(t, err)
	assert.Equal(t, host.playerID, assigned.PlayerID)
	assert.True(t, assigned.IsHost)
	assert.False(t, assigned.IsSpectator)

	msg, ok = findMessage(t, msgs, "game-state")
	require.True(t, ok)
	state, err := decodePayload[models.GameStatePayload](msg)
	require.NoError(t, err)
	require.Len(t, state.Players, 1)
	assert.Equal(t, "Alice", state.Players[0].Name)
	assert.Equal(t, 0, state.Players[0].Coins)
	assert.NotEmpty(t, state.Players[0].Color)
	assert.Len(t, state.Coins, len(models.DefaultCoinLayout()))
	assert.Equal(t, "ABCD", host.roomID)
}

func TestNonHostJoinToMissingRoomFails(t *testing.T) {
	s := newTestStore()
	c := newTestConn()

	s.HandleJoin(c, models.JoinRequest{RoomID: "GONE", Name: "Bob"})
	msgs := drainMessages(t, c)

	msg, ok := findMessage(t, msgs, "join-error")
	require.True(t, ok)
	joinErr, err := decodePayload[models.JoinError](msg)
	require.NoError(t, err)
	assert.Equal(t, ErrRoomNotFound.Error(), joinErr.Message)

	_, ok = findMessage(t, msgs, "player-assigned")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Count(), "a failed non-host join must not create the room")
}

func TestSecondHostJoinConflicts(t *testing.T) {
	s := newTestStore()
	host := newTestConn()
	joinRoom(t, s, host, "ROOM", "Alice", true)

	rival := newTestConn()
	s.HandleJoin(rival, models.JoinRequest{RoomID: "ROOM", Name: "Mallory", IsHost: true})
	msgs := drainMessages(t, rival)

	msg, ok := findMessage(t, msgs, "join-error")
	require.True(t, ok)
	joinErr, err := decodePayload[models.JoinError](msg)
	require.NoError(t, err)
	assert.Equal(t, ErrHostConflict.Error(), joinErr.Message)

	// the error goes to the requester only; the room is unaffected
	_, ok = findMessage(t, drainMessages(t, host), "join-error")
	assert.False(t, ok)

	gr, found := s.Get("ROOM")
	require.True(t, found)
	gr.state.Mutex.Lock()
	defer gr.state.Mutex.Unlock()
	assert.Len(t, gr.state.Players, 1)
}

func TestHostUniquenessInvariant(t *testing.T) {
	s := newTestStore()
	host := newTestConn()
	joinRoom(t, s, host, "UNIQ", "A", true)
	for i := 0; i < 3; i++ {
		c := newTestConn()
		s.HandleJoin(c, models.JoinRequest{RoomID: "UNIQ", Name: "B", IsHost: true})
	}

	gr, ok := s.Get("UNIQ")
	require.True(t, ok)
	gr.state.Mutex.Lock()
	defer gr.state.Mutex.Unlock()
	hosts := 0
	for _, p := range gr.state.Players {
		if p.IsHost {
			hosts++
		}
	}
	assert.Equal(t, 1, hosts)
}

func TestNameCollisionSuffixed(t *testing.T) {
	s := newTestStore()
	host := newTestConn()
	joinRoom(t, s, host, "NAME", "Alex", true)

	second := newTestConn()
	s.HandleJoin(second, models.JoinRequest{RoomID: "NAME", Name: "Alex"})
	msg, ok := findMessage(t, drainMessages(t, second), "game-state")
	require.True(t, ok)
	state, err := decodePayload[models.GameStatePayload](msg)
	require.NoError(t, err)

	names := make([]string, 0, len(state.Players))
	for _, p := range state.Players {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"Alex", "Alex 1"}, names)

	third := newTestConn()
	s.HandleJoin(third, models.JoinRequest{RoomID: "NAME", Name: "Alex"})
	msg, ok = findMessage(t, drainMessages(t, third), "game-state")
	require.True(t, ok)
	state, err = decodePayload[models.GameStatePayload](msg)
	require.NoError(t, err)
	assert.Len(t, state.Players, 3)
	for _, p := range state.Players {
		if p.ID == third.playerID {
			assert.Equal(t, "Alex 2", p.Name)
		}
	}
}

func TestSpectatorOnlyValidForHost(t *testing.T) {
	s := newTestStore()
	host := newTestConn()
	s.HandleJoin(host, models.JoinRequest{RoomID: "SPEC", Name: "Host", IsHost: true, IsSpectator: true})
	msg, ok := findMessage(t, drainMessages(t, host), "player-assigned")
	require.True(t, ok)
	assigned, err := decodePayload[models.PlayerAssigned](msg)
	require.NoError(t, err)
	assert.True(t, assigned.IsSpectator)

	guest := newTestConn()
	s.HandleJoin(guest, models.JoinRequest{RoomID: "SPEC", Name: "Guest", IsSpectator: true})
	msg, ok = findMessage(t, drainMessages(t, guest), "player-assigned")
	require.True(t, ok)
	assigned, err = decodePayload[models.PlayerAssigned](msg)
	require.NoError(t, err)
	assert.False(t, assigned.IsSpectator, "a non-host can never be a spectator")
}

func TestDuplicateJoinIsIdempotent(t *testing.T) {
	s := newTestStore()
	host := newTestConn()
	joinRoom(t, s, host, "DUP", "Alice", true)

	s.HandleJoin(host, models.JoinRequest{RoomID: "DUP", Name: "Alice", IsHost: true})
	msgs := drainMessages(t, host)
	_, ok := findMessage(t, msgs, "player-assigned")
	assert.True(t, ok, "duplicate join should re-send the assignment")
	_, ok = findMessage(t, msgs, "join-error")
	assert.False(t, ok)

	gr, found := s.Get("DUP")
	require.True(t, found)
	gr.state.Mutex.Lock()
	defer gr.state.Mutex.Unlock()
	assert.Len(t, gr.state.Players, 1)
	assert.Len(t, gr.state.Order, 1)
}

func TestMoveFanOutResolvesServerSideName(t *testing.T) {
	s := newTestStore()
	host := newTestConn()
	joinRoom(t, s, host, "MOVE", "Alice", true)
	guest := newTestConn()
	joinRoom(t, s, guest, "MOVE", "Bob", false)
	drainMessages(t, host)
	drainMessages(t, guest)

	s.HandleMove(guest, models.MoveRequest{
		RoomID:    "MOVE",
		Position:  models.Vector2{X: 120, Y: 300},
		Velocity:  models.Vector2{X: 4, Y: 0},
		Animation: models.AnimationRun,
		Timestamp: 1700000000000,
	})

	msg, ok := findMessage(t, drainMessages(t, host), "player-moved")
	require.True(t, ok)
	moved, err := decodePayload[models.PlayerMoved](msg)
	require.NoError(t, err)
	assert.Equal(t, guest.playerID, moved.PlayerID)
	assert.Equal(t, "Bob", moved.PlayerName)
	assert.Equal(t, 120.0, moved.Position.X)
	assert.Equal(t, models.AnimationRun, moved.Animation)
	assert.Equal(t, int64(1700000000000), moved.Timestamp)

	// the sender never receives its own relay
	_, ok = findMessage(t, drainMessages(t, guest), "player-moved")
	assert.False(t, ok)
}

func TestSpectatorMovementSuppressed(t *testing.T) {
	s := newTestStore()
	host := newTestConn()
	s.HandleJoin(host, models.JoinRequest{RoomID: "SILENT", Name: "Host", IsHost: true, IsSpectator: true})
	guest := newTestConn()
	joinRoom(t, s, guest, "SILENT", "Bob", false)
	drainMessages(t, host)
	drainMessages(t, guest)

	s.HandleMove(host, models.MoveRequest{RoomID: "SILENT", Position: models.Vector2{X: 5, Y: 5}})

	_, ok := findMessage(t, drainMessages(t, guest), "player-moved")
	assert.False(t, ok, "spectator movement must never be broadcast")
}

func TestUnknownAnimationNormalizedToIdle(t *testing.T) {
	s := newTestStore()
	host := newTestConn()
	joinRoom(t, s, host, "ANIM", "Alice", true)
	guest := newTestConn()
	joinRoom(t, s, guest, "ANIM", "Bob", false)
	drainMessages(t, host)

	s.HandleMove(guest, models.MoveRequest{RoomID: "ANIM", Animation: "backflip"})

	msg, ok := findMessage(t, drainMessages(t, host), "player-moved")
	require.True(t, ok)
	moved, err := decodePayload[models.PlayerMoved](msg)
	require.NoError(t, err)
	assert.Equal(t, models.AnimationIdle, moved.Animation)
}

func TestDisconnectNotifiesAndRetainsScore(t *testing.T) {
	s := newTestStore()
	host := newTestConn()
	joinRoom(t, s, host, "KEEP", "Alice", true)
	guest := newTestConn()
	joinRoom(t, s, guest, "KEEP", "Bob", false)

	s.HandleCollectCoin(guest, models.CollectCoinRequest{RoomID: "KEEP", CoinID: models.CoinID(250, 400)})
	drainMessages(t, host)

	s.HandleDisconnect(guest)
	msgs := drainMessages(t, host)

	msg, ok := findMessage(t, msgs, "player-left")
	require.True(t, ok)
	left, err := decodePayload[models.PlayerLeft](msg)
	require.NoError(t, err)
	assert.Equal(t, guest.playerID, left.PlayerID)

	msg, ok = findMessage(t, msgs, "scoreboard-update")
	require.True(t, ok)
	board, err := decodePayload[models.ScoreboardUpdate](msg)
	require.NoError(t, err)
	require.NotEmpty(t, board.Players)
	assert.Equal(t, "Bob", board.Players[0].Name)
	assert.Equal(t, 1, board.Players[0].Coins, "score must survive the disconnect")
}

func TestProcessMessageToleratesGarbage(t *testing.T) {
	s := newTestStore()
	c := newTestConn()

	processMessage(s, c, []byte("not json"))
	processMessage(s, c, []byte(`{"type":"join"}`))
	processMessage(s, c, []byte(`{"type":"player-move","data":{"position":"wat"}}`))
	processMessage(s, c, []byte(`{"type":"no-such-thing","data":{}}`))

	assert.Empty(t, drainMessages(t, c), "malformed traffic is dropped without a reply")
}

func TestLeaveRemovesPlayerAndNotifiesRoom(t *testing.T) {
	s := newTestStore()
	host := newTestConn()
	joinRoom(t, s, host, "BYE", "Alice", true)
	guest := newTestConn()
	joinRoom(t, s, guest, "BYE", "Bob", false)
	drainMessages(t, host)

	data, err := json.Marshal(models.LeaveRequest{RoomID: "BYE"})
	require.NoError(t, err)
	raw, err := json.Marshal(models.WsMessage{Type: "leave", Data: data})
	require.NoError(t, err)
	processMessage(s, guest, raw)

	msg, ok := findMessage(t, drainMessages(t, host), "player-left")
	require.True(t, ok)
	left, err := decodePayload[models.PlayerLeft](msg)
	require.NoError(t, err)
	assert.Equal(t, guest.playerID, left.PlayerID)
	assert.Empty(t, guest.roomID)
}

func TestProcessMessageJoinRoundTrip(t *testing.T) {
	s := newTestStore()
	c := newTestConn()

	data, err := json.Marshal(models.JoinRequest{RoomID: "WIRE", Name: "Alice", IsHost: true})
	require.NoError(t, err)
	raw, err := json.Marshal(models.WsMessage{Type: "join", Data: data})
	require.NoError(t, err)

	processMessage(s, c, raw)

	_, ok := findMessage(t, drainMessages(t, c), "player-assigned")
	assert.True(t, ok)
}
