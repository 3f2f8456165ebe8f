package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RoomState is the lifecycle state of a room.
type RoomState string

const (
	StateWaiting   RoomState = "waiting"
	StateStarting  RoomState = "starting"
	StateActive    RoomState = "active"
	StateCompleted RoomState = "completed"
)

const (
	// MaxPlayers bounds the player list while the room is waiting.
	MaxPlayers = 10
	// QuestionsPerGame is how many questions are sampled per run, bank permitting.
	QuestionsPerGame = 10
	// MinPlayers is the minimum room size to start a game.
	MinPlayers = 2
)

// Player is one seated participant. ID is the ephemeral connection identity.
type Player struct {
	ID             uuid.UUID
	DisplayName    string
	Score          int
	Connected      bool
	CorrectAnswers int
}

// AnswerRecord stores a player's single submission for one question.
// Timestamp is the client-reported submission time in Unix milliseconds.
type AnswerRecord struct {
	Option    int
	Timestamp int64
}

// Room holds the full authoritative state of one game session. All fields
// are guarded by Mu; the secret correctAnswers map is unexported and only
// ever read by the scoring pass, which reveals a single index per question.
type Room struct {
	ID        uuid.UUID
	Code      string
	CreatorID uuid.UUID
	Players   []*Player
	State     RoomState
	CreatedAt time.Time

	CurrentQuestionIndex int
	Questions            []QuestionView

	answers        map[string]map[uuid.UUID]*AnswerRecord
	correctAnswers map[string]int
	scores         map[uuid.UUID]int
	windowClosed   bool

	Mu sync.Mutex
}

func newRoom(id uuid.UUID, code string, creatorID uuid.UUID, now time.Time) *Room {
	return &Room{
		ID:                   id,
		Code:                 code,
		CreatorID:            creatorID,
		State:                StateWaiting,
		CreatedAt:            now,
		CurrentQuestionIndex: -1,
		answers:              make(map[string]map[uuid.UUID]*AnswerRecord),
		correctAnswers:       make(map[string]int),
		scores:               make(map[uuid.UUID]int),
	}
}

// addPlayerUnsafe appends a player after validating capacity, state and
// display-name uniqueness. Assumes the room lock is held.
func (r *Room) addPlayerUnsafe(playerID uuid.UUID, name string) error {
	if len(r.Players) >= MaxPlayers {
		return ErrRoomFull
	}
	if r.State != StateWaiting {
		return ErrGameAlreadyStarted
	}
	for _, p := range r.Players {
		if p.DisplayName == name {
			return ErrNameTaken
		}
	}
	r.Players = append(r.Players, &Player{
		ID:          playerID,
		DisplayName: name,
		Connected:   true,
	})
	r.scores[playerID] = 0
	return nil
}

// removePlayerUnsafe drops a player from the seat list. Assumes the room
// lock is held. Returns false if the player was not seated.
func (r *Room) removePlayerUnsafe(playerID uuid.UUID) bool {
	for i, p := range r.Players {
		if p.ID == playerID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}

// Start validates the waiting-state and player-count guards, then seeds the
// room with the sampled question set: client-safe views on the room itself,
// correct option indices in the secret map. Calling Start twice is rejected
// by the state guard rather than re-randomizing the question set.
func (r *Room) Start(sample []Question) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.State != StateWaiting {
		return ErrGameAlreadyStarted
	}
	if len(r.Players) < MinPlayers {
		return ErrTooFewPlayers
	}
	if len(sample) == 0 {
		return ErrNoQuestions
	}

	r.Questions = make([]QuestionView, 0, len(sample))
	for _, q := range sample {
		r.Questions = append(r.Questions, q.View())
		r.correctAnswers[q.ID] = q.CorrectOption
	}
	r.State = StateStarting
	r.CurrentQuestionIndex = -1
	return nil
}

// AdvanceResult reports the outcome of advancing the question cursor.
type AdvanceResult struct {
	Completed      bool
	Question       QuestionView
	QuestionNumber int
	TotalQuestions int
}

// Advance moves the room to the next question, or to the completed state
// once the question list is exhausted.
func (r *Room) Advance() AdvanceResult {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	r.CurrentQuestionIndex++
	if r.CurrentQuestionIndex >= len(r.Questions) {
		r.State = StateCompleted
		return AdvanceResult{Completed: true}
	}

	r.State = StateActive
	r.windowClosed = false
	q := r.Questions[r.CurrentQuestionIndex]
	r.answers[q.ID] = make(map[uuid.UUID]*AnswerRecord)
	return AdvanceResult{
		Question:       q,
		QuestionNumber: r.CurrentQuestionIndex + 1,
		TotalQuestions: len(r.Questions),
	}
}

// Submit records a player's answer for the current question. The first
// submission wins; repeats are rejected with ErrAlreadyAnswered. Returns
// whether every seated player has now answered, which the caller uses to
// close the window early.
func (r *Room) Submit(playerID uuid.UUID, questionID string, option int, timestamp int64) (allAnswered bool, err error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.State != StateActive || r.windowClosed {
		return false, ErrNotActive
	}
	current := r.Questions[r.CurrentQuestionIndex]
	if current.ID != questionID {
		return false, ErrWrongQuestion
	}

	records := r.answers[questionID]
	if records == nil {
		records = make(map[uuid.UUID]*AnswerRecord)
		r.answers[questionID] = records
	}
	if _, dup := records[playerID]; dup {
		return false, ErrAlreadyAnswered
	}
	records[playerID] = &AnswerRecord{Option: option, Timestamp: timestamp}

	return len(records) >= len(r.Players), nil
}

// CurrentQuestion returns the question whose window is currently open.
func (r *Room) CurrentQuestion() (QuestionView, bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.State != StateActive || r.CurrentQuestionIndex < 0 || r.CurrentQuestionIndex >= len(r.Questions) {
		return QuestionView{}, false
	}
	return r.Questions[r.CurrentQuestionIndex], true
}

// Question returns the view of a question in this run by id.
func (r *Room) Question(id string) (QuestionView, bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	for _, q := range r.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return QuestionView{}, false
}

// PlayerIDs snapshots the ids of the currently seated players.
func (r *Room) PlayerIDs() []uuid.UUID {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	ids := make([]uuid.UUID, 0, len(r.Players))
	for _, p := range r.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// PlayerCount reports how many players are seated.
func (r *Room) PlayerCount() int {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return len(r.Players)
}

// AllAnswered reports whether every seated player has answered the current
// question while its window is still open. Used after a departure shrinks
// the denominator mid-question.
func (r *Room) AllAnswered() bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.State != StateActive || r.windowClosed || len(r.Players) == 0 {
		return false
	}
	q := r.Questions[r.CurrentQuestionIndex]
	return len(r.answers[q.ID]) >= len(r.Players)
}

// Player returns the seated player with the given id.
func (r *Room) Player(id uuid.UUID) (PlayerView, bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	for _, p := range r.Players {
		if p.ID == id {
			return PlayerView{
				ID:             p.ID.String(),
				DisplayName:    p.DisplayName,
				Score:          p.Score,
				Connected:      p.Connected,
				CorrectAnswers: p.CorrectAnswers,
			}, true
		}
	}
	return PlayerView{}, false
}

// PlayerView is the client-safe projection of a Player.
type PlayerView struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	Score          int    `json:"score"`
	Connected      bool   `json:"connected"`
	CorrectAnswers int    `json:"correctAnswers"`
}

// RoomView is the client-safe projection of a Room. It is assembled
// field-by-field; the secret correct-answer map has no counterpart here.
type RoomView struct {
	ID                   string         `json:"id"`
	Code                 string         `json:"code"`
	CreatorID            string         `json:"creatorId"`
	Players              []PlayerView   `json:"players"`
	MaxPlayers           int            `json:"maxPlayers"`
	State                RoomState      `json:"state"`
	CurrentQuestionIndex int            `json:"currentQuestionIndex"`
	Questions            []QuestionView `json:"questions"`
	Scores               map[string]int `json:"scores"`
	CreatedAt            int64          `json:"createdAt"`
}

// View builds the sanitized projection broadcast to clients.
func (r *Room) View() RoomView {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.viewUnsafe()
}

func (r *Room) viewUnsafe() RoomView {
	players := make([]PlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, PlayerView{
			ID:             p.ID.String(),
			DisplayName:    p.DisplayName,
			Score:          p.Score,
			Connected:      p.Connected,
			CorrectAnswers: p.CorrectAnswers,
		})
	}
	scores := make(map[string]int, len(r.scores))
	for id, s := range r.scores {
		scores[id.String()] = s
	}
	return RoomView{
		ID:                   r.ID.String(),
		Code:                 r.Code,
		CreatorID:            r.CreatorID.String(),
		Players:              players,
		MaxPlayers:           MaxPlayers,
		State:                r.State,
		CurrentQuestionIndex: r.CurrentQuestionIndex,
		Questions:            r.Questions,
		Scores:               scores,
		CreatedAt:            r.CreatedAt.UnixMilli(),
	}
}
