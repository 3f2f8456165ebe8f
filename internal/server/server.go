// Package server orchestrates the quiz game loop: it reacts to inbound
// player events, drives the question schedule, and broadcasts state changes
// through an Emitter.
package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/quizdash/quizdash/internal/game"
	"github.com/quizdash/quizdash/internal/scheduler"
)

const (
	// countdownSeconds is the pre-game countdown broadcast before the first
	// question.
	countdownSeconds = 3
	// questionInterval is how long results stay on screen before the next
	// question goes out.
	questionInterval = 3 * time.Second
	// deadlineBuffer absorbs delivery jitter for a last-moment answer. It is
	// not a correctness mechanism; single execution comes from the
	// scheduler's take-and-clear.
	deadlineBuffer = 500 * time.Millisecond
)

// Server owns the registry and scheduler and implements the game loop.
type Server struct {
	registry *game.Registry
	sched    *scheduler.Scheduler
	clock    clockwork.Clock
	emit     Emitter
	log      *logrus.Logger
	bank     []game.Question
}

// New wires up the orchestrator. The bank may be empty, in which case every
// start-game attempt fails with a reported error and nothing else is
// affected.
func New(registry *game.Registry, bank []game.Question, clock clockwork.Clock, emit Emitter, log *logrus.Logger) *Server {
	return &Server{
		registry: registry,
		sched:    scheduler.New(clock, log),
		clock:    clock,
		emit:     emit,
		log:      log,
		bank:     bank,
	}
}

// Registry exposes the room registry, mainly for the transport layer.
func (s *Server) Registry() *game.Registry {
	return s.registry
}

func (s *Server) sendError(playerID uuid.UUID, msg string) {
	s.emit.ToPlayer(playerID, EventError, errorPayload{Message: msg})
}

// HandleCreateRoom creates a room with the requester as creator and first
// player. A player already seated somewhere is moved out of that room
// first, so the one-room-per-player invariant holds.
func (s *Server) HandleCreateRoom(playerID uuid.UUID, displayName string) {
	if _, seated := s.registry.RoomOf(playerID); seated {
		s.HandleLeaveRoom(playerID)
	}

	room, err := s.registry.CreateRoom(playerID, displayName)
	if err != nil {
		s.sendError(playerID, err.Error())
		return
	}

	s.emit.ToPlayer(playerID, EventRoomCreated, roomCreatedPayload{
		RoomID: room.ID.String(),
		Code:   room.Code,
		Room:   room.View(),
	})
	s.log.WithFields(logrus.Fields{
		"room":   room.ID,
		"code":   room.Code,
		"player": playerID,
	}).Info("room created")
}

// HandleJoinRoom seats the requester in the room matching code and notifies
// the whole room.
func (s *Server) HandleJoinRoom(playerID uuid.UUID, code, displayName string) {
	room, ok := s.registry.FindByCode(code)
	if !ok {
		s.sendError(playerID, game.ErrRoomNotFound.Error())
		return
	}
	if _, seated := s.registry.RoomOf(playerID); seated {
		s.HandleLeaveRoom(playerID)
	}

	room, err := s.registry.AddPlayer(room.ID, playerID, displayName)
	if err != nil {
		s.sendError(playerID, err.Error())
		return
	}

	view := room.View()
	player, _ := room.Player(playerID)
	s.emit.ToRoom(room.ID, EventPlayerJoined, playerJoinedPayload{Player: player, Room: view})
	s.emit.ToPlayer(playerID, EventRoomJoined, roomJoinedPayload{RoomID: room.ID.String(), Room: view})
	s.log.WithFields(logrus.Fields{
		"room":   room.ID,
		"code":   code,
		"player": playerID,
	}).Info("player joined")
}

// HandleStartGame begins the game loop for a waiting room. Only the room's
// creator may start; the first question goes out once the countdown
// elapses.
func (s *Server) HandleStartGame(playerID, roomID uuid.UUID) {
	room, ok := s.registry.Room(roomID)
	if !ok {
		s.sendError(playerID, game.ErrRoomNotFound.Error())
		return
	}
	room.Mu.Lock()
	creatorID := room.CreatorID
	room.Mu.Unlock()
	if creatorID != playerID {
		s.sendError(playerID, "only the room creator can start the game")
		return
	}

	sample := game.SampleQuestions(s.bank, game.QuestionsPerGame)
	if err := room.Start(sample); err != nil {
		s.sendError(playerID, err.Error())
		return
	}

	s.emit.ToRoom(roomID, EventGameStarting, gameStartingPayload{CountdownSeconds: countdownSeconds})
	s.log.WithField("room", roomID).Info("game starting")

	s.after(countdownSeconds*time.Second, func() {
		if _, ok := s.registry.Room(roomID); !ok {
			return
		}
		s.emit.ToRoom(roomID, EventGameStarted, struct{}{})
		s.startNextQuestion(roomID)
	})
}

// HandleSubmitAnswer records an answer for the current question and closes
// the window early when the last seated player has answered.
func (s *Server) HandleSubmitAnswer(playerID, roomID uuid.UUID, questionID string, optionIndex int, clientTimestamp int64) {
	room, ok := s.registry.Room(roomID)
	if !ok {
		s.sendError(playerID, game.ErrRoomNotFound.Error())
		return
	}

	allAnswered, err := room.Submit(playerID, questionID, optionIndex, clientTimestamp)
	if err != nil {
		s.sendError(playerID, err.Error())
		return
	}
	s.emit.ToPlayer(playerID, EventAnswerSubmitted, answerSubmittedPayload{Success: true})

	if allAnswered {
		s.closeEarly(room, roomID, questionID)
	}
}

// HandleLeaveRoom removes the requester from its room, covering both an
// explicit leave and a transport disconnect. An empty room is torn down
// along with its pending timers; otherwise the departure may complete the
// current question's answer set.
func (s *Server) HandleLeaveRoom(playerID uuid.UUID) {
	result := s.registry.RemovePlayer(playerID)
	if !result.Removed {
		return
	}
	if result.RoomClosed {
		s.sched.CancelRoom(result.RoomID)
		s.log.WithField("room", result.RoomID).Info("room closed, no players remaining")
		return
	}

	s.emit.ToRoom(result.RoomID, EventPlayerLeft, playerLeftPayload{
		PlayerID: playerID.String(),
		Room:     result.Room.View(),
	})

	if result.Room.AllAnswered() {
		if q, ok := result.Room.CurrentQuestion(); ok {
			s.closeEarly(result.Room, result.RoomID, q.ID)
		}
	}
}

// closeEarly races the armed deadline: whichever path takes the scheduler
// entry first runs the close, the other finds nothing to act on.
func (s *Server) closeEarly(room *game.Room, roomID uuid.UUID, questionID string) {
	startedAt, ok := s.sched.Take(scheduler.Key{RoomID: roomID, QuestionID: questionID})
	if !ok {
		return
	}
	q, ok := room.Question(questionID)
	if !ok {
		return
	}
	s.closeWindow(roomID, questionID, startedAt, q.TimeLimitSec)
}

// startNextQuestion advances the room's question cursor: either broadcasts
// the next question and arms its deadline, or ends the game with the final
// leaderboard. A torn-down room abandons the sequence silently.
func (s *Server) startNextQuestion(roomID uuid.UUID) {
	room, ok := s.registry.Room(roomID)
	if !ok {
		return
	}

	res := room.Advance()
	if res.Completed {
		s.emit.ToRoom(roomID, EventGameEnded, gameEndedPayload{
			Leaderboard: room.Leaderboard(),
			Room:        room.View(),
		})
		s.log.WithField("room", roomID).Info("game completed")
		return
	}

	key := scheduler.Key{RoomID: roomID, QuestionID: res.Question.ID}
	deadline := time.Duration(res.Question.TimeLimitSec)*time.Second + deadlineBuffer
	limit := res.Question.TimeLimitSec
	startedAt := s.sched.Arm(key, deadline, func(startedAt time.Time) {
		s.closeWindow(roomID, res.Question.ID, startedAt, limit)
	})

	s.emit.ToRoom(roomID, EventQuestionNew, questionNewPayload{
		Question:       res.Question,
		QuestionNumber: res.QuestionNumber,
		TotalQuestions: res.TotalQuestions,
		StartTime:      startedAt.UnixMilli(),
	})
	s.log.WithFields(logrus.Fields{
		"room":     roomID,
		"question": res.QuestionNumber,
		"total":    res.TotalQuestions,
	}).Info("question sent")
}

// closeWindow scores the question, reveals the correct option, and lines up
// the next question after the results interval. Callers must have consumed
// the scheduler entry already; this runs at most once per question.
func (s *Server) closeWindow(roomID uuid.UUID, questionID string, startedAt time.Time, timeLimitSec int) {
	room, ok := s.registry.Room(roomID)
	if !ok {
		return
	}

	report := room.CloseQuestion(questionID, startedAt.UnixMilli(), timeLimitSec)
	if report == nil {
		return
	}

	s.emit.ToRoom(roomID, EventScoresUpdated, scoresUpdatedPayload{
		CorrectAnswer: report.CorrectAnswer,
		Results:       stringKeyed(report.Results),
		Scores:        stringKeyed(report.Scores),
	})

	s.after(questionInterval, func() {
		s.startNextQuestion(roomID)
	})
}

// after runs fn once d has elapsed on the injected clock. One-shot timers
// that outlive their room are harmless: every callback re-resolves the room
// and no-ops when it is gone.
func (s *Server) after(d time.Duration, fn func()) {
	t := s.clock.NewTimer(d)
	go func() {
		<-t.Chan()
		fn()
	}()
}
