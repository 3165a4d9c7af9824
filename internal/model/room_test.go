package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestParseRoomCode(t *testing.T) {
	tests := []struct {
		raw     string
		want    RoomCode
		wantErr bool
	}{
		{raw: "ABCD", want: "ABCD"},
		{raw: " abcd ", want: "ABCD"},
		{raw: "AB", wantErr: true},
		{raw: "ABCDE", wantErr: true},
		{raw: "AB1D", wantErr: true},
		{raw: "ÑAAA", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseRoomCode(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRoomCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestRoom(ids ...ConnID) *Room {
	room := NewRoom("TEST", testNow)
	for _, id := range ids {
		room.AddPlayer(NewPlayer(id, string(id), room.Settings.StartingLives, testNow))
	}
	if len(ids) > 0 {
		room.SetHost(ids[0])
	}
	return room
}

func TestRoomMembership(t *testing.T) {
	room := newTestRoom("a", "b", "c")

	assert.True(t, room.HasPlayer("b"))
	assert.False(t, room.IsFull())
	assert.False(t, room.IsEmpty())

	removed := room.RemovePlayer("b")
	require.NotNil(t, removed)
	assert.Equal(t, ConnID("b"), removed.ID)
	assert.Nil(t, room.RemovePlayer("b"))

	ids := make([]ConnID, 0, len(room.Players))
	for _, p := range room.Players {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []ConnID{"a", "c"}, ids)

	room.Settings.MaxPlayers = 2
	assert.True(t, room.IsFull())
}

func TestSetHostKeepsFlagsInStep(t *testing.T) {
	room := newTestRoom("a", "b")
	assert.True(t, room.GetPlayer("a").IsHost)

	room.SetHost("b")
	assert.Equal(t, ConnID("b"), room.HostID)
	assert.False(t, room.GetPlayer("a").IsHost)
	assert.True(t, room.GetPlayer("b").IsHost)
}

func TestActivePlayerAndAlivePlayers(t *testing.T) {
	room := newTestRoom("a", "b", "c")
	assert.Equal(t, ConnID(""), room.ActivePlayerID())

	room.State = RoomStatePlaying
	room.TurnOrder = []ConnID{"a", "b", "c"}
	room.ActiveIndex = 1
	assert.Equal(t, ConnID("b"), room.ActivePlayerID())

	room.GetPlayer("a").Eliminate()
	room.RemovePlayer("c")
	alive := room.AlivePlayers()
	require.Len(t, alive, 1)
	assert.Equal(t, ConnID("b"), alive[0].ID)
}

func TestLoseLife(t *testing.T) {
	p := NewPlayer("a", "Ana", 2, testNow)
	assert.True(t, p.IsAlive)

	p.LoseLife()
	assert.Equal(t, 1, p.Lives)
	assert.True(t, p.IsAlive)

	p.LoseLife()
	p.LoseLife()
	assert.Equal(t, 0, p.Lives)
	assert.False(t, p.IsAlive)
}

func TestSnapshotIsDetached(t *testing.T) {
	room := newTestRoom("a")
	room.MarkUsed("CASA")

	snap := room.Snapshot()
	room.MarkUsed("MESA")
	room.GetPlayer("a").Lives = 0

	assert.Equal(t, []string{"CASA"}, snap.UsedWords)
	assert.Equal(t, DefaultSettings().StartingLives, snap.GetPlayer("a").Lives)
	assert.Nil(t, snap.GetPlayer("zz"))
}

func TestResetTurnState(t *testing.T) {
	room := newTestRoom("a", "b")
	room.TurnOrder = []ConnID{"a", "b"}
	room.ActiveIndex = 1
	room.Constraint = "AR"
	room.Turns = 4
	room.MarkUsed("ARBOL")

	room.ResetTurnState()

	assert.Empty(t, room.TurnOrder)
	assert.Zero(t, room.ActiveIndex)
	assert.Empty(t, room.Constraint)
	assert.False(t, room.IsUsed("ARBOL"))
	assert.Empty(t, room.WordLog)
	assert.Zero(t, room.Turns)
}
