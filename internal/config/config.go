// Package config reads process configuration from the environment.
package config

import (
	"os"
	"strings"
)

// Config holds everything the process needs at startup.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// QuestionsFile is the path of the JSON question bank.
	QuestionsFile string
	// CORSOrigins lists the allowed origins for HTTP requests.
	CORSOrigins []string
}

// FromEnv builds a Config from environment variables, falling back to
// development defaults. godotenv's autoload (imported in main) has already
// merged any .env file into the environment by the time this runs.
func FromEnv() Config {
	cfg := Config{
		Addr:          ":8080",
		QuestionsFile: "data/questions.json",
		CORSOrigins:   []string{"*"},
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	if path := os.Getenv("QUESTIONS_FILE"); path != "" {
		cfg.QuestionsFile = path
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	}
	return cfg
}
