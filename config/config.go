package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ListenAddr         string        `envconfig:"LISTEN_ADDR" default:":8000"`
	EmptyRoomGrace     time.Duration `envconfig:"EMPTY_ROOM_GRACE" default:"5s"`
	SnapshotInterval   time.Duration `envconfig:"SNAPSHOT_INTERVAL" default:"2s"`
	SnapshotMinPlayers int           `envconfig:"SNAPSHOT_MIN_PLAYERS" default:"10"`
	ScoreboardSize     int           `envconfig:"SCOREBOARD_SIZE" default:"10"`
}

func LoadConfig() Config {
	var cfg Config
	if err := envconfig.Process("quizdash", &cfg); err != nil {
		log.Fatal("Error loading configuration:", err)
	}
	return cfg
}
