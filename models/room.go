package models

import (
	"encoding/json"
	"sync"
	"time"
)

// ScoreEntry is the per-player scoreboard record. It outlives the player's
// presence in Room.Players so a score survives a transport drop for the
// lifetime of the room.
type ScoreEntry struct {
	Name       string `json:"name"`
	Coins      int    `json:"coins"`
	LastActive int64  `json:"lastActiveTime"`
	Seq        int    `json:"-"`
}

// ScoreboardRow is one line of the broadcast scoreboard payload.
type ScoreboardRow struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Coins    int    `json:"coins"`
}

type Room struct {
	ID         string
	Players    map[string]*Player
	Order      []string // join order of the active players
	Scoreboard map[string]*ScoreEntry
	Coins      map[string]Coin // unclaimed only; a claimed coin is gone

	// Quiz questions are opaque to the server: it stores and relays
	// whatever the host uploaded.
	Questions []json.RawMessage

	Started     bool
	Ended       bool
	FinalScores []ScoreboardRow
	CreatedAt   time.Time
	NextSeq     int

	Mutex sync.Mutex
}

func NewRoom(id string) *Room {
	r := &Room{
		ID:         id,
		Players:    make(map[string]*Player),
		Scoreboard: make(map[string]*ScoreEntry),
		Coins:      make(map[string]Coin),
		CreatedAt:  time.Now(),
	}
	r.ResetCoins()
	return r
}

// ResetCoins restores the room's default coin layout. Callers hold the room
// mutex (or own the room exclusively, as NewRoom does).
func (r *Room) ResetCoins() {
	r.Coins = make(map[string]Coin, len(defaultCoinLayout))
	for _, c := range defaultCoinLayout {
		r.Coins[c.ID] = c
	}
}

// ActiveHost reports whether any current player holds the host role.
func (r *Room) ActiveHost() bool {
	for _, p := range r.Players {
		if p.IsHost {
			return true
		}
	}
	return false
}

// PlayersSnapshot copies the active roster in join order. Broadcast
// payloads are built from these value copies, never from live records.
func (r *Room) PlayersSnapshot() []Player {
	out := make([]Player, 0, len(r.Order))
	for _, id := range r.Order {
		if p, ok := r.Players[id]; ok {
			out = append(out, *p)
		}
	}
	return out
}

// CoinsSnapshot copies the unclaimed coin set in a stable order.
func (r *Room) CoinsSnapshot() []Coin {
	out := make([]Coin, 0, len(r.Coins))
	for _, c := range defaultCoinLayout {
		if coin, ok := r.Coins[c.ID]; ok {
			out = append(out, coin)
		}
	}
	return out
}

// RoomSummary is the read-only view served over HTTP.
type RoomSummary struct {
	ID          string    `json:"id"`
	Started     bool      `json:"started"`
	Ended       bool      `json:"ended"`
	PlayerCount int       `json:"playerCount"`
	Players     []Player  `json:"players"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RemoveFromOrder drops a player id from the join-order slice.
func (r *Room) RemoveFromOrder(id string) {
	for i, existing := range r.Order {
		if existing == id {
			r.Order = append(r.Order[:i], r.Order[i+1:]...)
			return
		}
	}
}
