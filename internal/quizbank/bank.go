// Package quizbank loads the immutable question bank consumed at startup.
package quizbank

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/quizdash/quizdash/internal/game"
)

type bankFile struct {
	Questions []game.Question `json:"questions"`
}

// Load reads the question bank from a JSON file of the form
// {"questions": [...]}. A missing or malformed file is a fatal-to-feature
// condition, not fatal-to-process: callers log the error and run with an
// empty bank, which makes every start-game attempt fail cleanly.
func Load(path string) ([]game.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	var parsed bankFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	return parsed.Questions, nil
}
