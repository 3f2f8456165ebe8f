package game

import "math/rand"

// Question is a full bank record, including the index of the correct option.
// It lives in the question bank and in each room's secret answer map only;
// clients are always handed a QuestionView instead.
type Question struct {
	ID            string   `json:"id"`
	Category      string   `json:"category"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	TimeLimitSec  int      `json:"timeLimit"`
	CorrectOption int      `json:"correctAnswer"`
}

// QuestionView is the client-safe projection of a Question. It is built
// field-by-field so the correct option index structurally cannot leak.
type QuestionView struct {
	ID           string   `json:"id"`
	Category     string   `json:"category"`
	Prompt       string   `json:"question"`
	Options      []string `json:"options"`
	TimeLimitSec int      `json:"timeLimit"`
}

// View returns the client-safe projection of q.
func (q Question) View() QuestionView {
	return QuestionView{
		ID:           q.ID,
		Category:     q.Category,
		Prompt:       q.Prompt,
		Options:      q.Options,
		TimeLimitSec: q.TimeLimitSec,
	}
}

// SampleQuestions picks up to count questions uniformly at random without
// replacement. The bank slice itself is never reordered.
func SampleQuestions(bank []Question, count int) []Question {
	idx := rand.Perm(len(bank))
	if count > len(bank) {
		count = len(bank)
	}
	picked := make([]Question, 0, count)
	for _, i := range idx[:count] {
		picked = append(picked, bank[i])
	}
	return picked
}
