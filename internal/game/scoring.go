package game

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

const (
	// BasePoints is awarded for any correct answer.
	BasePoints = 100
	// MaxSpeedBonus is the ceiling of the linear speed bonus.
	MaxSpeedBonus = 50
)

// PlayerResult is one player's outcome for a single question.
type PlayerResult struct {
	Correct    bool `json:"correct"`
	Points     int  `json:"points"`
	TotalScore int  `json:"totalScore"`
}

// ScoreReport is the outcome of closing one question's answer window. The
// correct option index is revealed here, after the window is closed, and
// nowhere else.
type ScoreReport struct {
	CorrectAnswer int
	Results       map[uuid.UUID]PlayerResult
	Scores        map[uuid.UUID]int
}

// CloseQuestion ends the answer window for questionID and scores every
// seated player against it. startMillis is the authoritative server-recorded
// question start time. A correct answer earns BasePoints plus a speed bonus
// linear in the fraction of the time limit left; elapsed time is clamped to
// [0, timeLimit] so a forged client timestamp cannot exceed the bonus range.
// After this call further submissions for the question are rejected.
func (r *Room) CloseQuestion(questionID string, startMillis int64, timeLimitSec int) *ScoreReport {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	r.windowClosed = true

	correct, known := r.correctAnswers[questionID]
	if !known {
		return nil
	}
	records := r.answers[questionID]

	report := &ScoreReport{
		CorrectAnswer: correct,
		Results:       make(map[uuid.UUID]PlayerResult, len(r.Players)),
		Scores:        make(map[uuid.UUID]int, len(r.scores)),
	}

	for _, p := range r.Players {
		rec := records[p.ID]
		if rec == nil || rec.Option != correct {
			report.Results[p.ID] = PlayerResult{Points: 0, TotalScore: r.scores[p.ID]}
			continue
		}

		elapsed := float64(rec.Timestamp-startMillis) / 1000
		if elapsed < 0 {
			elapsed = 0
		}
		remaining := float64(timeLimitSec) - elapsed
		if remaining < 0 {
			remaining = 0
		}
		bonus := int(math.Floor(remaining / float64(timeLimitSec) * MaxSpeedBonus))
		points := BasePoints + bonus

		r.scores[p.ID] += points
		p.Score = r.scores[p.ID]
		p.CorrectAnswers++

		report.Results[p.ID] = PlayerResult{
			Correct:    true,
			Points:     points,
			TotalScore: r.scores[p.ID],
		}
	}

	for id, s := range r.scores {
		report.Scores[id] = s
	}
	return report
}

// LeaderboardEntry is one row of the final ranking.
type LeaderboardEntry struct {
	DisplayName    string `json:"displayName"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correctAnswers"`
}

// Leaderboard ranks the seated players by score, descending. Ties keep join
// order: the player list is maintained in join order and the sort is stable,
// so repeated calls produce the same ranking.
func (r *Room) Leaderboard() []LeaderboardEntry {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	board := make([]LeaderboardEntry, 0, len(r.Players))
	for _, p := range r.Players {
		board = append(board, LeaderboardEntry{
			DisplayName:    p.DisplayName,
			Score:          r.scores[p.ID],
			CorrectAnswers: p.CorrectAnswers,
		})
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Score > board[j].Score
	})
	return board
}
