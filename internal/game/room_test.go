package game

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuestions(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{
			ID:            fmt.Sprintf("q%d", i+1),
			Category:      "General",
			Prompt:        fmt.Sprintf("question %d", i+1),
			Options:       []string{"a", "b", "c", "d"},
			TimeLimitSec:  20,
			CorrectOption: i % 4,
		}
	}
	return qs
}

// setupRoom seats count players via a registry and returns the room plus
// player ids in join order.
func setupRoom(t *testing.T, count int) (*Registry, *Room, []uuid.UUID) {
	t.Helper()
	reg := NewRegistry(nil)

	ids := make([]uuid.UUID, count)
	ids[0] = uuid.New()
	room, err := reg.CreateRoom(ids[0], "player1")
	require.NoError(t, err)

	for i := 1; i < count; i++ {
		ids[i] = uuid.New()
		_, err := reg.AddPlayer(room.ID, ids[i], fmt.Sprintf("player%d", i+1))
		require.NoError(t, err)
	}
	return reg, room, ids
}

// startedRoom runs Start and advances onto the first question.
func startedRoom(t *testing.T, count, questions int) (*Registry, *Room, []uuid.UUID) {
	t.Helper()
	reg, room, ids := setupRoom(t, count)
	require.NoError(t, room.Start(testQuestions(questions)))
	res := room.Advance()
	require.False(t, res.Completed)
	return reg, room, ids
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	_, room, _ := setupRoom(t, 1)
	assert.ErrorIs(t, room.Start(testQuestions(3)), ErrTooFewPlayers)
}

func TestStartRequiresQuestions(t *testing.T) {
	_, room, _ := setupRoom(t, 2)
	assert.ErrorIs(t, room.Start(nil), ErrNoQuestions)
}

func TestStartTwiceRejected(t *testing.T) {
	_, room, _ := setupRoom(t, 2)
	require.NoError(t, room.Start(testQuestions(3)))
	firstRun := append([]QuestionView(nil), room.Questions...)

	assert.ErrorIs(t, room.Start(testQuestions(3)), ErrGameAlreadyStarted)
	assert.Equal(t, firstRun, room.Questions, "second start must not re-randomize the question set")
	assert.Equal(t, StateStarting, room.State)
}

func TestStartSelectsAtMostBankSize(t *testing.T) {
	_, room, _ := setupRoom(t, 2)
	require.NoError(t, room.Start(SampleQuestions(testQuestions(4), QuestionsPerGame)))
	assert.Len(t, room.Questions, 4)
}

func TestAdvanceWalksQuestionsThenCompletes(t *testing.T) {
	_, room, _ := setupRoom(t, 2)
	require.NoError(t, room.Start(testQuestions(3)))

	for i := 1; i <= 3; i++ {
		res := room.Advance()
		require.False(t, res.Completed)
		assert.Equal(t, i, res.QuestionNumber)
		assert.Equal(t, 3, res.TotalQuestions)
		assert.Equal(t, StateActive, room.State)
	}

	res := room.Advance()
	assert.True(t, res.Completed)
	assert.Equal(t, StateCompleted, room.State)
}

func TestSubmitBeforeStartRejected(t *testing.T) {
	_, room, ids := setupRoom(t, 2)
	_, err := room.Submit(ids[0], "q1", 0, 1000)
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestSubmitWrongQuestionRejected(t *testing.T) {
	_, room, ids := startedRoom(t, 2, 3)
	_, err := room.Submit(ids[0], "q999", 0, 1000)
	assert.ErrorIs(t, err, ErrWrongQuestion)
}

func TestSubmitDuplicateKeepsFirst(t *testing.T) {
	_, room, ids := startedRoom(t, 2, 3)
	q, ok := room.CurrentQuestion()
	require.True(t, ok)

	_, err := room.Submit(ids[0], q.ID, 1, 5000)
	require.NoError(t, err)

	_, err = room.Submit(ids[0], q.ID, 2, 6000)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	room.Mu.Lock()
	rec := room.answers[q.ID][ids[0]]
	room.Mu.Unlock()
	assert.Equal(t, 1, rec.Option, "first submission wins")
	assert.Equal(t, int64(5000), rec.Timestamp)
}

func TestSubmitReportsAllAnswered(t *testing.T) {
	_, room, ids := startedRoom(t, 2, 3)
	q, _ := room.CurrentQuestion()

	all, err := room.Submit(ids[0], q.ID, 0, 1000)
	require.NoError(t, err)
	assert.False(t, all)

	all, err = room.Submit(ids[1], q.ID, 0, 1000)
	require.NoError(t, err)
	assert.True(t, all)
}

func TestSubmitAfterWindowClosedRejected(t *testing.T) {
	_, room, ids := startedRoom(t, 2, 3)
	q, _ := room.CurrentQuestion()

	room.CloseQuestion(q.ID, 0, q.TimeLimitSec)

	_, err := room.Submit(ids[0], q.ID, 0, 1000)
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestAllAnsweredShrinksWithDepartures(t *testing.T) {
	reg, room, ids := startedRoom(t, 3, 3)
	q, _ := room.CurrentQuestion()

	_, err := room.Submit(ids[0], q.ID, 0, 1000)
	require.NoError(t, err)
	_, err = room.Submit(ids[1], q.ID, 0, 1000)
	require.NoError(t, err)
	assert.False(t, room.AllAnswered())

	reg.RemovePlayer(ids[2])
	assert.True(t, room.AllAnswered())
}

func TestRoomViewOmitsCorrectAnswers(t *testing.T) {
	_, room, _ := startedRoom(t, 2, 3)

	data, err := json.Marshal(room.View())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "correctAnswer")

	view := room.View()
	assert.Len(t, view.Players, 2)
	assert.Len(t, view.Questions, 3)
	assert.Equal(t, StateActive, view.State)
}

func TestQuestionViewStripsCorrectOption(t *testing.T) {
	q := testQuestions(1)[0]
	data, err := json.Marshal(q.View())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "correctAnswer")
}

func TestSampleQuestionsWithoutReplacement(t *testing.T) {
	bank := testQuestions(10)
	sample := SampleQuestions(bank, 10)
	require.Len(t, sample, 10)

	seen := make(map[string]bool)
	for _, q := range sample {
		assert.False(t, seen[q.ID], "question %s sampled twice", q.ID)
		seen[q.ID] = true
	}
}
