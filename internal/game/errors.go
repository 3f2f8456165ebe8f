package game

import "errors"

// Validation errors returned by registry and room operations. These are
// expected conditions reported back to the requesting player as data; they
// never affect other players in the room.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrNameTaken          = errors.New("username already taken in this room")
	ErrTooFewPlayers      = errors.New("need at least 2 players")
	ErrNoQuestions        = errors.New("no questions available")
	ErrNotActive          = errors.New("game not active")
	ErrWrongQuestion      = errors.New("invalid question")
	ErrAlreadyAnswered    = errors.New("already answered")
	ErrCodesExhausted     = errors.New("room code space exhausted")
)
