package models

import "encoding/json"

// WsMessage is the envelope for every websocket frame in both directions.
type WsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client -> server payloads.

type JoinRequest struct {
	RoomID      string `json:"roomId"`
	Name        string `json:"name"`
	IsHost      bool   `json:"isHost"`
	IsSpectator bool   `json:"isSpectator,omitempty"`
}

type MoveRequest struct {
	RoomID    string  `json:"roomId"`
	PlayerID  string  `json:"playerId"`
	Position  Vector2 `json:"position"`
	Velocity  Vector2 `json:"velocity"`
	Animation string  `json:"animation"`
	Timestamp int64   `json:"timestamp"`
}

type CollectCoinRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	CoinID   string `json:"coinId"`
}

type QuizResultRequest struct {
	RoomID    string `json:"roomId"`
	PlayerID  string `json:"playerId"`
	IsCorrect bool   `json:"isCorrect"`
}

type PlayerDiedRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type StartGameRequest struct {
	RoomID          string `json:"roomId"`
	HostIsSpectator bool   `json:"hostIsSpectator,omitempty"`
}

type LeaveRequest struct {
	RoomID string `json:"roomId"`
}

type SaveQuestionsRequest struct {
	RoomID    string            `json:"roomId"`
	Questions []json.RawMessage `json:"questions"`
}

type RequestQuestionsRequest struct {
	RoomID string `json:"roomId"`
}

type RequestSyncRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type GameEndedRequest struct {
	RoomID string `json:"roomId"`
}

type ResetGameRequest struct {
	RoomID string `json:"roomId"`
}

// Server -> client payloads.

type PlayerAssigned struct {
	PlayerID    string `json:"playerId"`
	IsHost      bool   `json:"isHost"`
	IsSpectator bool   `json:"isSpectator"`
}

type GameStatePayload struct {
	Players []Player `json:"players"`
	Coins   []Coin   `json:"coins"`
	Started bool     `json:"started"`
	Ended   bool     `json:"ended"`
}

type PlayersUpdated struct {
	Players []Player `json:"players"`
}

type PlayerLeft struct {
	PlayerID string `json:"playerId"`
}

type PlayerMoved struct {
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Position   Vector2 `json:"position"`
	Velocity   Vector2 `json:"velocity"`
	Animation  string  `json:"animation"`
	Timestamp  int64   `json:"timestamp"`
}

type CoinCollected struct {
	PlayerID     string `json:"playerId"`
	PlayerName   string `json:"playerName"`
	CoinID       string `json:"coinId"`
	NewCoinCount int    `json:"newCoinCount"`
}

type PlayerCoinsUpdated struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Coins      int    `json:"coins"`
	Reason     string `json:"reason,omitempty"`
}

type ScoreboardUpdate struct {
	Players []ScoreboardRow `json:"players"`
}

// SyncPlayer is the compact per-player record of the periodic full-state
// snapshot sent to large rooms.
type SyncPlayer struct {
	ID        string  `json:"id"`
	Position  Vector2 `json:"position"`
	Velocity  Vector2 `json:"velocity"`
	Animation string  `json:"animation"`
}

type GameStateSync struct {
	Players []SyncPlayer `json:"players"`
}

type QuestionsUpdated struct {
	RoomID    string            `json:"roomId"`
	Questions []json.RawMessage `json:"questions"`
	Count     int               `json:"count"`
}

type QuestionsReceived struct {
	RoomID string `json:"roomId"`
	Count  int    `json:"count"`
}

type JoinError struct {
	Message string `json:"message"`
}
