package game

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoomSeatsCreator(t *testing.T) {
	reg := NewRegistry(nil)
	creator := uuid.New()

	room, err := reg.CreateRoom(creator, "alice")
	require.NoError(t, err)

	assert.Len(t, room.Code, 6)
	for _, c := range room.Code {
		assert.Contains(t, codeAlphabet, string(c))
	}
	assert.Equal(t, creator, room.CreatorID)
	assert.Equal(t, StateWaiting, room.State)
	assert.Equal(t, -1, room.CurrentQuestionIndex)
	require.Len(t, room.Players, 1)
	assert.Equal(t, "alice", room.Players[0].DisplayName)
	assert.Equal(t, 0, room.Players[0].Score)

	roomID, ok := reg.RoomOf(creator)
	require.True(t, ok)
	assert.Equal(t, room.ID, roomID)
	assert.Equal(t, 1, reg.RoomCount())
}

func TestAddPlayerUnknownRoom(t *testing.T) {
	reg := NewRegistry(nil)
	_, err := reg.AddPlayer(uuid.New(), uuid.New(), "bob")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestAddPlayerNameTaken(t *testing.T) {
	reg := NewRegistry(nil)
	room, err := reg.CreateRoom(uuid.New(), "alice")
	require.NoError(t, err)

	_, err = reg.AddPlayer(room.ID, uuid.New(), "alice")
	assert.ErrorIs(t, err, ErrNameTaken)

	// Case-sensitive match: a different casing is a different name.
	_, err = reg.AddPlayer(room.ID, uuid.New(), "Alice")
	assert.NoError(t, err)
}

func TestAddPlayerRoomFull(t *testing.T) {
	reg := NewRegistry(nil)
	room, err := reg.CreateRoom(uuid.New(), "player0")
	require.NoError(t, err)

	for i := 1; i < MaxPlayers; i++ {
		_, err := reg.AddPlayer(room.ID, uuid.New(), fmt.Sprintf("player%d", i))
		require.NoError(t, err)
	}

	_, err = reg.AddPlayer(room.ID, uuid.New(), "straggler")
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, MaxPlayers, room.PlayerCount())
}

func TestAddPlayerAfterStartRejected(t *testing.T) {
	reg, room, _ := setupRoom(t, 2)
	require.NoError(t, room.Start(testQuestions(3)))

	_, err := reg.AddPlayer(room.ID, uuid.New(), "latecomer")
	assert.ErrorIs(t, err, ErrGameAlreadyStarted)
}

func TestFindByCodeExactMatch(t *testing.T) {
	reg := NewRegistry(nil)
	room, err := reg.CreateRoom(uuid.New(), "alice")
	require.NoError(t, err)

	found, ok := reg.FindByCode(room.Code)
	require.True(t, ok)
	assert.Equal(t, room.ID, found.ID)

	_, ok = reg.FindByCode(strings.ToLower(room.Code))
	assert.False(t, ok, "code matching is case-sensitive")
}

func TestCodesUniqueAcrossLiveRooms(t *testing.T) {
	reg := NewRegistry(nil)
	codes := make(map[string]bool)
	for i := 0; i < 50; i++ {
		room, err := reg.CreateRoom(uuid.New(), fmt.Sprintf("p%d", i))
		require.NoError(t, err)
		assert.False(t, codes[room.Code], "code %s issued twice", room.Code)
		codes[room.Code] = true
	}
}

func TestRemoveCreatorReelectsNextInJoinOrder(t *testing.T) {
	reg, room, ids := setupRoom(t, 3)

	result := reg.RemovePlayer(ids[0])
	require.True(t, result.Removed)
	assert.False(t, result.RoomClosed)
	assert.Equal(t, ids[1], room.CreatorID)
	assert.Equal(t, 2, room.PlayerCount())

	_, ok := reg.RoomOf(ids[0])
	assert.False(t, ok, "reverse index entry must be gone")
}

func TestRemoveLastPlayerClosesRoom(t *testing.T) {
	reg := NewRegistry(nil)
	creator := uuid.New()
	room, err := reg.CreateRoom(creator, "alice")
	require.NoError(t, err)
	code := room.Code

	result := reg.RemovePlayer(creator)
	require.True(t, result.Removed)
	assert.True(t, result.RoomClosed)
	assert.Equal(t, room.ID, result.RoomID)
	assert.Equal(t, 0, reg.RoomCount())

	_, ok := reg.FindByCode(code)
	assert.False(t, ok, "closed room's code is immediately reusable")
}

func TestRemoveCreatorMidGameKeepsOwnership(t *testing.T) {
	reg, room, ids := startedRoom(t, 3, 3)

	result := reg.RemovePlayer(ids[0])
	require.True(t, result.Removed)
	assert.False(t, result.RoomClosed)
	// No re-election outside the waiting state.
	assert.Equal(t, ids[0], room.CreatorID)
}

func TestRemoveLastPlayerMidGameClosesRoom(t *testing.T) {
	reg, _, ids := startedRoom(t, 2, 3)

	reg.RemovePlayer(ids[0])
	result := reg.RemovePlayer(ids[1])
	require.True(t, result.Removed)
	assert.True(t, result.RoomClosed)
	assert.Equal(t, 0, reg.RoomCount())
}

func TestRemoveUnknownPlayerIsNoop(t *testing.T) {
	reg := NewRegistry(nil)
	result := reg.RemovePlayer(uuid.New())
	assert.False(t, result.Removed)
}

func TestTeardownClearsReverseIndex(t *testing.T) {
	reg, room, ids := setupRoom(t, 3)

	reg.Teardown(room.ID)
	assert.Equal(t, 0, reg.RoomCount())
	for _, id := range ids {
		_, ok := reg.RoomOf(id)
		assert.False(t, ok)
	}
}
