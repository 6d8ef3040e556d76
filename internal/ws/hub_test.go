package ws

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktz03/tab-game/internal/game"
)

func newTestHub() *Hub {
	return NewHub(NewBroadcaster(16), game.NewSeededSource(1))
}

func TestJoinPairs(t *testing.T) {
	h := newTestHub()

	first, err := h.Join(1, 7, "alice")
	require.NoError(t, err)
	assert.True(t, first.Created)

	again, err := h.Join(1, 7, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, again.SessionID, "rejoin must be idempotent")
	assert.False(t, again.Created)

	second, err := h.Join(1, 7, "bob")
	require.NoError(t, err)
	assert.True(t, second.Paired)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Empty(t, h.Waiting)

	room, err := h.Room(first.SessionID)
	require.NoError(t, err)
	room.View(func(s *game.Session) {
		assert.Equal(t, game.StatePlaying, s.State)
		assert.Len(t, s.Players, 2)
		assert.Equal(t, game.SideBlue, s.Players[s.Turn])
	})
}

func TestJoinKeysAreIndependent(t *testing.T) {
	h := newTestHub()

	a, err := h.Join(1, 7, "alice")
	require.NoError(t, err)
	b, err := h.Join(1, 9, "bob")
	require.NoError(t, err)
	c, err := h.Join(2, 7, "carol")
	require.NoError(t, err)

	assert.NotEqual(t, a.SessionID, b.SessionID)
	assert.NotEqual(t, a.SessionID, c.SessionID)
	assert.Len(t, h.Waiting, 3)
}

func TestJoinInvalidSize(t *testing.T) {
	h := newTestHub()
	_, err := h.Join(1, 8, "alice")
	assert.ErrorIs(t, err, game.ErrInvalidSize)
	assert.Equal(t, 0, h.Len())
}

func TestConcurrentJoins(t *testing.T) {
	h := newTestHub()

	const players = 40
	var wg sync.WaitGroup
	results := make([]JoinResult, players)
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := h.Join(5, 11, fmt.Sprintf("p%d", i))
			if err == nil {
				results[i] = res
			}
		}(i)
	}
	wg.Wait()

	perSession := map[string]int{}
	for _, r := range results {
		require.NotEmpty(t, r.SessionID)
		perSession[r.SessionID]++
	}
	assert.Len(t, perSession, players/2)
	for id, n := range perSession {
		assert.Equal(t, 2, n, "session %s", id)
	}
	assert.Empty(t, h.Waiting)
}

func TestJoinPublishesSnapshot(t *testing.T) {
	h := newTestHub()

	res, err := h.Join(1, 7, "alice")
	require.NoError(t, err)
	room, err := h.Room(res.SessionID)
	require.NoError(t, err)

	sub, err := room.Subscribe("alice")
	require.NoError(t, err)
	assert.Empty(t, drain(sub), "no snapshot while waiting")

	_, err = room.Subscribe("bob")
	assert.ErrorIs(t, err, game.ErrNotPlayer)

	_, err = h.Join(1, 7, "bob")
	require.NoError(t, err)

	got := drain(sub)
	require.Len(t, got, 1)
	for _, k := range []string{game.KeyPieces, game.KeyPlayers, game.KeyTurn, game.KeyInitial, game.KeyStep} {
		assert.Contains(t, got[0], k)
	}

	late, err := room.Subscribe("bob")
	require.NoError(t, err)
	snap := drain(late)
	require.Len(t, snap, 1)
	assert.Contains(t, snap[0], game.KeyPieces)
}

func TestLeaveWaitingCancels(t *testing.T) {
	h := newTestHub()

	res, err := h.Join(1, 7, "alice")
	require.NoError(t, err)

	_, err = h.Leave(res.SessionID, "bob")
	assert.ErrorIs(t, err, game.ErrNotPlayer)

	result, err := h.Leave(res.SessionID, "alice")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, h.Waiting)

	_, err = h.Room(res.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	next, err := h.Join(1, 7, "bob")
	require.NoError(t, err)
	assert.True(t, next.Created)
}

func TestLeavePlayingForfeits(t *testing.T) {
	h := newTestHub()

	res, _ := h.Join(1, 7, "alice")
	_, err := h.Join(1, 7, "bob")
	require.NoError(t, err)

	room, _ := h.Room(res.SessionID)
	sub, err := room.Subscribe("alice")
	require.NoError(t, err)
	drain(sub)

	result, err := h.Leave(res.SessionID, "bob")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "alice", result.Winner)
	assert.Equal(t, "bob", result.Loser)

	d, ok := <-sub.Updates()
	require.True(t, ok)
	assert.Equal(t, "alice", d[game.KeyWinner])
	_, ok = <-sub.Updates()
	assert.False(t, ok, "stream ends with the session")

	_, err = h.Leave(res.SessionID, "alice")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCleanupStale(t *testing.T) {
	h := newTestHub()
	h.WaitTimeout = time.Minute

	res, err := h.Join(1, 7, "alice")
	require.NoError(t, err)
	room, _ := h.Room(res.SessionID)
	sub, _ := room.Subscribe("alice")

	assert.Equal(t, 0, h.CleanupStale(time.Now()))
	assert.Equal(t, 1, h.CleanupStale(time.Now().Add(2*time.Minute)))

	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Waiting)
	_, ok := <-sub.Updates()
	assert.False(t, ok)
}

func TestCreatePaired(t *testing.T) {
	h := newTestHub()

	id, err := h.CreatePaired(1, 9, "alice", "bot:easy")
	require.NoError(t, err)
	assert.Empty(t, h.Waiting)

	room, err := h.Room(id)
	require.NoError(t, err)
	assert.Equal(t, game.StatePlaying, room.State())
}
