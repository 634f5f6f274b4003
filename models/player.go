package models

import (
	"hash/fnv"
)

const (
	AnimationIdle = "idle"
	AnimationRun  = "run"
	AnimationJump = "jump"
)

type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Player struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	IsHost      bool    `json:"isHost"`
	IsSpectator bool    `json:"isSpectator"`
	Ready       bool    `json:"ready"`
	Coins       int     `json:"coins"`
	Position    Vector2 `json:"position"`
	Velocity    Vector2 `json:"velocity"`
	Animation   string  `json:"animation"`
	Color       string  `json:"color"`
	LastUpdate  int64   `json:"lastUpdate"`
}

// A spectator is a host variant that watches the game without taking part
// in movement or the coin economy.
func (p *Player) CanMove() bool {
	return !p.IsSpectator
}

func (p *Player) CanClaimCoins() bool {
	return !p.IsSpectator
}

var playerColors = []string{
	"#e74c3c", "#3498db", "#2ecc71", "#f1c40f",
	"#9b59b6", "#e67e22", "#1abc9c", "#fd79a8",
	"#34495e", "#16a085", "#d35400", "#8e44ad",
}

// ColorForID picks a display color deterministically from the connection id,
// so a player keeps the same color on every client without coordination.
func ColorForID(id string) string {
	h := fnv.New32a()
	h.Write([]byte(id))
	return playerColors[h.Sum32()%uint32(len(playerColors))]
}

// NormalizeAnimation maps unknown client values to idle rather than
// rejecting the message.
func NormalizeAnimation(a string) string {
	switch a {
	case AnimationIdle, AnimationRun, AnimationJump:
		return a
	default:
		return AnimationIdle
	}
}
