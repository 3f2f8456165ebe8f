package server

import (
	"github.com/google/uuid"

	"github.com/quizdash/quizdash/internal/game"
)

// Outbound event names. Each is sent either to the requesting player or
// broadcast to the whole room.
const (
	EventRoomCreated     = "room-created"
	EventRoomJoined      = "room-joined"
	EventPlayerJoined    = "player-joined"
	EventPlayerLeft      = "player-left"
	EventGameStarting    = "game-starting"
	EventGameStarted     = "game-started"
	EventQuestionNew     = "question-new"
	EventAnswerSubmitted = "answer-submitted"
	EventScoresUpdated   = "scores-updated"
	EventGameEnded       = "game-ended"
	EventError           = "error"
)

// Inbound event names.
const (
	ActionCreateRoom   = "create-room"
	ActionJoinRoom     = "join-room"
	ActionStartGame    = "start-game"
	ActionSubmitAnswer = "submit-answer"
	ActionLeaveRoom    = "leave-room"
)

type roomCreatedPayload struct {
	RoomID string        `json:"roomId"`
	Code   string        `json:"code"`
	Room   game.RoomView `json:"room"`
}

type roomJoinedPayload struct {
	RoomID string        `json:"roomId"`
	Room   game.RoomView `json:"room"`
}

type playerJoinedPayload struct {
	Player game.PlayerView `json:"player"`
	Room   game.RoomView   `json:"room"`
}

type playerLeftPayload struct {
	PlayerID string        `json:"playerId"`
	Room     game.RoomView `json:"room"`
}

type gameStartingPayload struct {
	CountdownSeconds int `json:"countdownSeconds"`
}

type questionNewPayload struct {
	Question       game.QuestionView `json:"question"`
	QuestionNumber int               `json:"questionNumber"`
	TotalQuestions int               `json:"totalQuestions"`
	StartTime      int64             `json:"startTime"`
}

type answerSubmittedPayload struct {
	Success bool `json:"success"`
}

type scoresUpdatedPayload struct {
	CorrectAnswer int                          `json:"correctAnswer"`
	Results       map[string]game.PlayerResult `json:"results"`
	Scores        map[string]int               `json:"scores"`
}

type gameEndedPayload struct {
	Leaderboard []game.LeaderboardEntry `json:"leaderboard"`
	Room        game.RoomView           `json:"room"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func stringKeyed[V any](in map[uuid.UUID]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k.String()] = v
	}
	return out
}
