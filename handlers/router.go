package handlers

import (
	"github.com/gorilla/mux"

	"github.com/quizdash/quizdash-backend/config"
)

func NewRouter(cfg config.Config) *mux.Router {
	store = NewRoomStore(cfg)

	r := mux.NewRouter()
	r.HandleFunc("/health", HealthHandler).Methods("GET")
	r.HandleFunc("/room/{id}", RoomInfoHandler).Methods("GET")
	r.HandleFunc("/api/room/{id}/final-scores", FinalScoresHandler).Methods("GET")
	r.HandleFunc("/ws", WsHandler)
	return r
}
