package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/quizdash/quizdash-backend/config"
	"github.com/quizdash/quizdash-backend/handlers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	cfg := config.LoadConfig()
	r := handlers.NewRouter(cfg)

	log.Printf("Server running on %s", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, r))
}
