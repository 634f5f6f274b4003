package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/quizdash/quizdash-backend/models"
)

// HandleJoin validates a join request and moves the connection from
// Joining to Active. Failures are reported to the requester only.
func (s *RoomStore) HandleJoin(c *Connection, req models.JoinRequest) {
	roomID := NormalizeRoomID(req.RoomID)
	if roomID == "" {
		log.Printf("Malformed join from %s: missing roomId", c.playerID)
		return
	}

	// Joining a different room implies leaving the current one first.
	if c.roomID != "" && c.roomID != roomID {
		s.removePlayer(c, "switched room")
	}

	for {
		gr, err := s.GetOrCreate(roomID, req.IsHost)
		if err != nil {
			c.sendMessage("join-error", models.JoinError{Message: err.Error()})
			return
		}
		if s.tryJoin(c, gr, roomID, req) {
			return
		}
		// The empty-grace timer removed the room between the table
		// lookup and the room lock; refetch.
	}
}

// tryJoin completes a join against a room fetched from the table. It
// reports false when the grace timer deleted the room in between, so the
// caller can refetch and a boundary-window rejoin never lands in an
// orphaned room.
func (s *RoomStore) tryJoin(c *Connection, gr *gameRoom, roomID string, req models.JoinRequest) bool {
	st := gr.state
	st.Mutex.Lock()
	if gr.deleted {
		st.Mutex.Unlock()
		return false
	}

	// A duplicate join on the same live connection is idempotent: the
	// existing record is reused and the current state re-sent.
	if p, ok := st.Players[c.playerID]; ok && c.roomID == roomID {
		assigned := models.PlayerAssigned{PlayerID: p.ID, IsHost: p.IsHost, IsSpectator: p.IsSpectator}
		stateMsg := marshalMessage("game-state", gameStatePayloadLocked(st))
		st.Mutex.Unlock()
		c.sendMessage("player-assigned", assigned)
		c.trySend(stateMsg)
		return true
	}

	if req.IsHost && st.ActiveHost() {
		st.Mutex.Unlock()
		c.sendMessage("join-error", models.JoinError{Message: ErrHostConflict.Error()})
		return true
	}

	now := time.Now().UnixMilli()
	name := uniqueNameLocked(st, req.Name)
	player := &models.Player{
		ID:     c.playerID,
		Name:   name,
		IsHost: req.IsHost,
		// Only the host may spectate.
		IsSpectator: req.IsHost && req.IsSpectator,
		Animation:   models.AnimationIdle,
		Color:       models.ColorForID(c.playerID),
		LastUpdate:  now,
	}

	// A connection that left this room earlier keeps its score for the
	// room's lifetime.
	if entry, ok := st.Scoreboard[c.playerID]; ok {
		player.Coins = entry.Coins
		entry.Name = name
		entry.LastActive = now
	} else {
		st.NextSeq++
		st.Scoreboard[c.playerID] = &models.ScoreEntry{Name: name, LastActive: now, Seq: st.NextSeq}
	}

	st.Players[c.playerID] = player
	st.Order = append(st.Order, c.playerID)
	gr.conns[c] = true
	s.cancelDeleteLocked(gr)

	assigned := models.PlayerAssigned{PlayerID: player.ID, IsHost: player.IsHost, IsSpectator: player.IsSpectator}
	stateMsg := marshalMessage("game-state", gameStatePayloadLocked(st))
	gr.broadcastLocked(marshalMessage("player-joined", *player), c)
	gr.broadcastLocked(marshalMessage("players-updated", models.PlayersUpdated{Players: st.PlayersSnapshot()}), nil)
	s.broadcastScoreboardLocked(gr)
	st.Mutex.Unlock()

	c.roomID = roomID
	c.sendMessage("player-assigned", assigned)
	c.trySend(stateMsg)
	log.Printf("Player %s (%s) joined room %s", name, c.playerID, roomID)
	return true
}

// uniqueNameLocked resolves display-name collisions with deterministic
// suffixes: "Name", "Name 1", "Name 2", ... Caller holds the room mutex.
func uniqueNameLocked(st *models.Room, base string) string {
	if base == "" {
		base = "Player"
	}
	name := base
	for i := 1; nameTakenLocked(st, name); i++ {
		name = fmt.Sprintf("%s %d", base, i)
	}
	return name
}

func nameTakenLocked(st *models.Room, name string) bool {
	for _, p := range st.Players {
		if p.Name == name {
			return true
		}
	}
	return false
}

// HandleLeave removes the player immediately on an explicit leave message.
func (s *RoomStore) HandleLeave(c *Connection, req models.LeaveRequest) {
	s.removePlayer(c, "leave")
}

// HandleDisconnect runs when the transport closes. The scoreboard entry is
// retained so the score survives within the room's lifetime.
func (s *RoomStore) HandleDisconnect(c *Connection) {
	s.removePlayer(c, "disconnect")
}

func (s *RoomStore) removePlayer(c *Connection, reason string) {
	if c.roomID == "" {
		return
	}
	gr, ok := s.Get(c.roomID)
	if !ok {
		c.roomID = ""
		return
	}

	st := gr.state
	st.Mutex.Lock()
	delete(gr.conns, c)

	if _, present := st.Players[c.playerID]; present {
		delete(st.Players, c.playerID)
		st.RemoveFromOrder(c.playerID)
		gr.broadcastLocked(marshalMessage("player-left", models.PlayerLeft{PlayerID: c.playerID}), nil)
		gr.broadcastLocked(marshalMessage("players-updated", models.PlayersUpdated{Players: st.PlayersSnapshot()}), nil)
		s.broadcastScoreboardLocked(gr)
		log.Printf("Player %s left room %s (%s)", c.playerID, st.ID, reason)
	}

	if len(st.Players) == 0 {
		s.armDeleteLocked(gr)
	}
	st.Mutex.Unlock()

	c.roomID = ""
}

// HandleMove applies a movement update last-write-wins and relays it to the
// rest of the room. The display name is resolved server-side so renames
// stay consistent; spectators never produce movement.
func (s *RoomStore) HandleMove(c *Connection, req models.MoveRequest) {
	gr, ok := s.Get(c.roomID)
	if !ok {
		return
	}

	st := gr.state
	st.Mutex.Lock()
	defer st.Mutex.Unlock()

	player, ok := st.Players[c.playerID]
	if !ok || !player.CanMove() {
		return
	}

	player.Position = req.Position
	player.Velocity = req.Velocity
	player.Animation = models.NormalizeAnimation(req.Animation)
	if req.Timestamp > 0 {
		player.LastUpdate = req.Timestamp
	} else {
		player.LastUpdate = time.Now().UnixMilli()
	}
	if entry, ok := st.Scoreboard[c.playerID]; ok {
		entry.LastActive = time.Now().UnixMilli()
	}

	gr.broadcastLocked(marshalMessage("player-moved", models.PlayerMoved{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Position:   player.Position,
		Velocity:   player.Velocity,
		Animation:  player.Animation,
		Timestamp:  player.LastUpdate,
	}), c)
}
