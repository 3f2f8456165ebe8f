package main

import (
	"log"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/quizdash/quizdash/internal/config"
	"github.com/quizdash/quizdash/internal/game"
	"github.com/quizdash/quizdash/internal/middleware"
	"github.com/quizdash/quizdash/internal/quizbank"
	"github.com/quizdash/quizdash/internal/server"
)

func main() {
	cfg := config.FromEnv()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	bank, err := quizbank.Load(cfg.QuestionsFile)
	if err != nil {
		// Degrade to an empty bank: rooms still work, games cannot start.
		logger.Errorf("question bank unavailable, games cannot start: %v", err)
	} else {
		logger.Infof("loaded %d questions", len(bank))
	}

	registry := game.NewRegistry(nil)
	hub := server.NewHub(registry, logger)
	srv := server.New(registry, bank, clockwork.NewRealClock(), hub, logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.LogMiddleware(logger)(server.WSHandler(srv, hub, logger)))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(mux)

	logger.Infof("running on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
