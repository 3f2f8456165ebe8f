package game

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength      = 6
	codeRetryLength = 8
	codeMaxAttempts = 10
)

// indexEntry is the reverse lookup from player to room. A player belongs to
// at most one room at a time.
type indexEntry struct {
	roomID uuid.UUID
	name   string
}

// Registry owns every live room and the reverse player index. All mutation
// goes through its methods so the invariants (unique codes, single-room
// membership, creator re-election) are enforced in one place.
//
// Lock order is registry before room, never the reverse.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[uuid.UUID]*Room
	players map[uuid.UUID]indexEntry

	now func() time.Time
}

// NewRegistry returns an empty registry. now supplies room creation
// timestamps; pass nil for the wall clock.
func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		rooms:   make(map[uuid.UUID]*Room),
		players: make(map[uuid.UUID]indexEntry),
		now:     now,
	}
}

// CreateRoom allocates a room with a fresh id and unique shareable code and
// seats the creator as its first player.
func (reg *Registry) CreateRoom(creatorID uuid.UUID, name string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, err := reg.generateCodeUnsafe()
	if err != nil {
		return nil, err
	}

	room := newRoom(uuid.New(), code, creatorID, reg.now())
	if err := room.addPlayerUnsafe(creatorID, name); err != nil {
		// A fresh empty waiting room accepts its creator unconditionally.
		return nil, err
	}
	reg.rooms[room.ID] = room
	reg.players[creatorID] = indexEntry{roomID: room.ID, name: name}
	return room, nil
}

// generateCodeUnsafe draws random codes until one misses every live room,
// falling back to a longer code before giving up. Assumes the registry
// lock is held.
func (reg *Registry) generateCodeUnsafe() (string, error) {
	for _, length := range []int{codeLength, codeRetryLength} {
		for attempt := 0; attempt < codeMaxAttempts; attempt++ {
			code := randomCode(length)
			if !reg.codeInUseUnsafe(code) {
				return code, nil
			}
		}
	}
	return "", ErrCodesExhausted
}

func (reg *Registry) codeInUseUnsafe(code string) bool {
	for _, room := range reg.rooms {
		if room.Code == code {
			return true
		}
	}
	return false
}

func randomCode(length int) string {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken.
			panic(err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf)
}

// Room looks up a live room by id.
func (reg *Registry) Room(roomID uuid.UUID) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[roomID]
	return room, ok
}

// FindByCode scans live rooms for an exact, case-sensitive code match.
func (reg *Registry) FindByCode(code string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	for _, room := range reg.rooms {
		if room.Code == code {
			return room, true
		}
	}
	return nil, false
}

// AddPlayer seats a player in a waiting room and records the reverse index
// entry.
func (reg *Registry) AddPlayer(roomID, playerID uuid.UUID, name string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	room.Mu.Lock()
	err := room.addPlayerUnsafe(playerID, name)
	room.Mu.Unlock()
	if err != nil {
		return nil, err
	}
	reg.players[playerID] = indexEntry{roomID: roomID, name: name}
	return room, nil
}

// RemoveResult reports what happened to the room a player departed from.
type RemoveResult struct {
	// Removed is false when the player was not in any room.
	Removed bool
	// RoomClosed is true when the departing player was the last one and the
	// room was torn down. Room is nil in that case.
	RoomClosed bool
	RoomID     uuid.UUID
	Room       *Room
}

// RemovePlayer drops a player from its room, re-electing the creator in a
// waiting room and tearing the room down when its last player departs. The
// torn-down room's code becomes immediately reusable.
func (reg *Registry) RemovePlayer(playerID uuid.UUID) RemoveResult {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	entry, ok := reg.players[playerID]
	if !ok {
		return RemoveResult{}
	}
	delete(reg.players, playerID)

	room, ok := reg.rooms[entry.roomID]
	if !ok {
		return RemoveResult{}
	}

	room.Mu.Lock()
	room.removePlayerUnsafe(playerID)
	empty := len(room.Players) == 0
	if room.CreatorID == playerID && room.State == StateWaiting && !empty {
		room.CreatorID = room.Players[0].ID
	}
	room.Mu.Unlock()

	if empty {
		delete(reg.rooms, entry.roomID)
		return RemoveResult{Removed: true, RoomClosed: true, RoomID: entry.roomID}
	}
	return RemoveResult{Removed: true, RoomID: entry.roomID, Room: room}
}

// Teardown removes a room and every index entry pointing at it, regardless
// of state. Used after a completed game is abandoned.
func (reg *Registry) Teardown(roomID uuid.UUID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[roomID]
	if !ok {
		return
	}
	room.Mu.Lock()
	for _, p := range room.Players {
		delete(reg.players, p.ID)
	}
	room.Mu.Unlock()
	delete(reg.rooms, roomID)
}

// RoomOf resolves the reverse index entry for a player.
func (reg *Registry) RoomOf(playerID uuid.UUID) (uuid.UUID, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	entry, ok := reg.players[playerID]
	return entry.roomID, ok
}

// RoomCount reports the number of live rooms.
func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
