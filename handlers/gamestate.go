package handlers

import (
	"log"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/quizdash/quizdash-backend/models"
)

func gameStatePayloadLocked(st *models.Room) models.GameStatePayload {
	return models.GameStatePayload{
		Players: st.PlayersSnapshot(),
		Coins:   st.CoinsSnapshot(),
		Started: st.Started,
		Ended:   st.Ended,
	}
}

// HandleCollectCoin serializes coin claims through the room mutex so two
// concurrent claims for the same coin can never both succeed. A stale claim
// (already-claimed or unknown coin id) is an expected race and is dropped
// without any broadcast.
func (s *RoomStore) HandleCollectCoin(c *Connection, req models.CollectCoinRequest) {
	gr, ok := s.Get(c.roomID)
	if !ok {
		return
	}

	st := gr.state
	st.Mutex.Lock()
	defer st.Mutex.Unlock()

	player, ok := st.Players[c.playerID]
	if !ok || !player.CanClaimCoins() {
		return
	}
	if _, unclaimed := st.Coins[req.CoinID]; !unclaimed {
		return
	}

	delete(st.Coins, req.CoinID)
	player.Coins++
	s.upsertScoreLocked(st, player)

	gr.broadcastLocked(marshalMessage("coin-collected", models.CoinCollected{
		PlayerID:     player.ID,
		PlayerName:   player.Name,
		CoinID:       req.CoinID,
		NewCoinCount: player.Coins,
	}), nil)
	gr.broadcastLocked(marshalMessage("player-coins-updated", models.PlayerCoinsUpdated{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Coins:      player.Coins,
		Reason:     "pickup",
	}), nil)
	s.broadcastScoreboardLocked(gr)
}

// HandleQuizResult applies the signed quiz delta on top of the pickup
// grant. Both mutations are additive on the same counter; the count is
// clamped at zero. The server holds no quiz-in-progress state, so this is
// accepted whenever the room and player exist.
func (s *RoomStore) HandleQuizResult(c *Connection, req models.QuizResultRequest) {
	gr, ok := s.Get(c.roomID)
	if !ok {
		return
	}

	st := gr.state
	st.Mutex.Lock()
	defer st.Mutex.Unlock()

	player, ok := st.Players[c.playerID]
	if !ok || !player.CanClaimCoins() {
		return
	}

	if req.IsCorrect {
		player.Coins++
	} else if player.Coins > 0 {
		player.Coins--
	}
	s.upsertScoreLocked(st, player)

	gr.broadcastLocked(marshalMessage("player-coins-updated", models.PlayerCoinsUpdated{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Coins:      player.Coins,
		Reason:     "quiz",
	}), nil)
	s.broadcastScoreboardLocked(gr)
}

// HandlePlayerDied zeroes the player's authoritative coin count. This is
// the only place the server unilaterally resets a score, and it is
// idempotent: a duplicate death for an already-zero player is a no-op.
func (s *RoomStore) HandlePlayerDied(c *Connection, req models.PlayerDiedRequest) {
	gr, ok := s.Get(c.roomID)
	if !ok {
		return
	}

	st := gr.state
	st.Mutex.Lock()
	defer st.Mutex.Unlock()

	player, ok := st.Players[c.playerID]
	if !ok {
		return
	}

	entry := st.Scoreboard[c.playerID]
	if player.Coins == 0 && (entry == nil || entry.Coins == 0) {
		return
	}

	player.Coins = 0
	s.upsertScoreLocked(st, player)
	log.Printf("Player %s died in room %s, coins reset", player.Name, st.ID)

	gr.broadcastLocked(marshalMessage("player-coins-updated", models.PlayerCoinsUpdated{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Coins:      0,
		Reason:     "death",
	}), nil)
	s.broadcastScoreboardLocked(gr)
}

// HandleStartGame marks the room started. Host only; the host may flip to
// spectator at the same time.
func (s *RoomStore) HandleStartGame(c *Connection, req models.StartGameRequest) {
	gr, ok := s.Get(c.roomID)
	if !ok {
		return
	}

	st := gr.state
	st.Mutex.Lock()
	defer st.Mutex.Unlock()

	player, ok := st.Players[c.playerID]
	if !ok || !player.IsHost {
		return
	}
	if st.Started {
		return
	}

	st.Started = true
	if req.HostIsSpectator {
		player.IsSpectator = true
	}
	log.Printf("Game started in room %s", st.ID)

	gr.broadcastLocked(marshalMessage("game-state", gameStatePayloadLocked(st)), nil)
	gr.broadcastLocked(marshalMessage("players-updated", models.PlayersUpdated{Players: st.PlayersSnapshot()}), nil)
}

// HandleGameEnded snapshots the final scores. The snapshot is immutable
// once set; only the first end message takes effect.
func (s *RoomStore) HandleGameEnded(c *Connection, req models.GameEndedRequest) {
	gr, ok := s.Get(c.roomID)
	if !ok {
		return
	}

	st := gr.state
	st.Mutex.Lock()
	defer st.Mutex.Unlock()

	if _, ok := st.Players[c.playerID]; !ok {
		return
	}
	if st.Ended {
		return
	}

	st.Ended = true
	st.FinalScores = scoreboardRows(st)
	log.Printf("Game ended in room %s", st.ID)

	gr.broadcastLocked(marshalMessage("game-ended", struct{}{}), nil)
}

// HandleResetGame returns the room to its pre-start state: coins restored,
// every score zeroed, lifecycle flags cleared.
func (s *RoomStore) HandleResetGame(c *Connection, req models.ResetGameRequest) {
	gr, ok := s.Get(c.roomID)
	if !ok {
		return
	}

	st := gr.state
	st.Mutex.Lock()
	defer st.Mutex.Unlock()

	if _, ok := st.Players[c.playerID]; !ok {
		return
	}

	st.Started = false
	st.Ended = false
	st.FinalScores = nil
	st.ResetCoins()
	for _, p := range st.Players {
		p.Coins = 0
	}
	for _, entry := range st.Scoreboard {
		entry.Coins = 0
	}
	log.Printf("Room %s reset", st.ID)

	gr.broadcastLocked(marshalMessage("game-state", gameStatePayloadLocked(st)), nil)
	gr.broadcastLocked(marshalMessage("players-updated", models.PlayersUpdated{Players: st.PlayersSnapshot()}), nil)
	s.broadcastScoreboardLocked(gr)
}

// HandleRequestSync re-sends the full game state to the requester only.
func (s *RoomStore) HandleRequestSync(c *Connection, req models.RequestSyncRequest) {
	gr, ok := s.Get(c.roomID)
	if !ok {
		return
	}

	st := gr.state
	st.Mutex.Lock()
	stateMsg := marshalMessage("game-state", gameStatePayloadLocked(st))
	st.Mutex.Unlock()
	c.trySend(stateMsg)
}

// HandleRequestScoreboard sends the current scoreboard to the requester
// only.
func (s *RoomStore) HandleRequestScoreboard(c *Connection) {
	gr, ok := s.Get(c.roomID)
	if !ok {
		return
	}

	st := gr.state
	st.Mutex.Lock()
	board := marshalMessage("scoreboard-update", models.ScoreboardUpdate{Players: s.recomputeScoreboardLocked(st)})
	st.Mutex.Unlock()
	c.trySend(board)
}

// upsertScoreLocked re-syncs a player's scoreboard entry from the live
// record, so the broadcast scoreboard can never show a stale name or
// count. Caller holds the room mutex.
func (s *RoomStore) upsertScoreLocked(st *models.Room, player *models.Player) {
	now := time.Now().UnixMilli()
	if entry, ok := st.Scoreboard[player.ID]; ok {
		entry.Name = player.Name
		entry.Coins = player.Coins
		entry.LastActive = now
		return
	}
	st.NextSeq++
	st.Scoreboard[player.ID] = &models.ScoreEntry{
		Name:       player.Name,
		Coins:      player.Coins,
		LastActive: now,
		Seq:        st.NextSeq,
	}
}

// scoreboardRows derives the full sorted scoreboard from the room's score
// entries: entries without a name are dropped, order is coins descending
// with join-order tie stability. Pure with respect to the room state.
func scoreboardRows(st *models.Room) []models.ScoreboardRow {
	type scored struct {
		id    string
		entry *models.ScoreEntry
	}

	entries := make([]scored, 0, len(st.Scoreboard))
	for id, entry := range st.Scoreboard {
		if entry.Name == "" {
			continue
		}
		entries = append(entries, scored{id: id, entry: entry})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].entry.Coins != entries[j].entry.Coins {
			return entries[i].entry.Coins > entries[j].entry.Coins
		}
		return entries[i].entry.Seq < entries[j].entry.Seq
	})

	return lo.Map(entries, func(e scored, _ int) models.ScoreboardRow {
		return models.ScoreboardRow{PlayerID: e.id, Name: e.entry.Name, Coins: e.entry.Coins}
	})
}

// recomputeScoreboardLocked is the only producer of the scoreboard
// broadcast payload: full derivation truncated to the configured size.
func (s *RoomStore) recomputeScoreboardLocked(st *models.Room) []models.ScoreboardRow {
	rows := scoreboardRows(st)
	if len(rows) > s.cfg.ScoreboardSize {
		rows = rows[:s.cfg.ScoreboardSize]
	}
	return rows
}

func (s *RoomStore) broadcastScoreboardLocked(gr *gameRoom) {
	payload := models.ScoreboardUpdate{Players: s.recomputeScoreboardLocked(gr.state)}
	gr.broadcastLocked(marshalMessage("scoreboard-update", payload), nil)
}
