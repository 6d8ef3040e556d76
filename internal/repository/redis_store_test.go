package repository

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktz03/tab-game/internal/db"
	"github.com/ktz03/tab-game/internal/domain"
)

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisStoreIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	ctx := context.Background()
	rdb, err := db.ConnectRedis(ctx, addr, os.Getenv("REDIS_PASSWORD"), redisDB)
	require.NoError(t, err)
	s := NewRedisStore(rdb)
	defer s.Close()

	nick := "redis-test-" + strconv.FormatInt(int64(os.Getpid()), 10)
	t.Cleanup(func() {
		rdb.HDel(ctx, redisUsersKey, nick)
		rdb.Del(ctx, redisRankingPrefix+"999-7", redisHistoryPrefix+nick, redisHistoryPrefix+"other")
	})

	require.NoError(t, s.SaveUser(ctx, domain.User{Nick: nick, PasswordHash: "hash"}))
	users, err := s.LoadUsers(ctx)
	require.NoError(t, err)
	found := false
	for _, u := range users {
		if u.Nick == nick {
			found = true
			assert.Equal(t, "hash", u.PasswordHash)
		}
	}
	assert.True(t, found)

	key := domain.RankingKey{Group: 999, Size: 7}
	entries := []domain.RankingEntry{{Nick: nick, Games: 1, Victories: 1}}
	require.NoError(t, s.SaveRanking(ctx, key, entries))
	rankings, err := s.LoadRankings(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, rankings[key])

	require.NoError(t, s.SaveGame(ctx, &domain.GameRecord{SessionID: "g1", Winner: nick, Loser: "other"}))
	games, err := s.GamesByNick(ctx, nick, 10)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "g1", games[0].SessionID)
}
