package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktz03/tab-game/internal/db"
	"github.com/ktz03/tab-game/internal/domain"
	"github.com/ktz03/tab-game/internal/repository"
)

func applyMigrations(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "migrations")
	files, err := os.ReadDir(migDir)
	require.NoError(t, err, "read migrations")

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(migDir, name))
		require.NoError(t, err)
		_, err = pool.Exec(context.Background(), string(b))
		require.NoError(t, err, "apply migration %s", name)
	}
}

func openPostgres(t *testing.T) *repository.PostgresStore {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := db.Connect(context.Background(), dsn)
	require.NoError(t, err, "connect db")
	applyMigrations(t, pool)

	store := repository.NewPostgresStore(pool)
	t.Cleanup(store.Close)
	return store
}

func TestPostgresStore_Users(t *testing.T) {
	store := openPostgres(t)
	ctx := context.Background()
	nick := fmt.Sprintf("it-user-%d", time.Now().UnixNano())

	require.NoError(t, store.SaveUser(ctx, domain.User{Nick: nick, PasswordHash: "h1", CreatedAt: time.Now().UTC()}))
	require.NoError(t, store.SaveUser(ctx, domain.User{Nick: nick, PasswordHash: "h2", CreatedAt: time.Now().UTC()}))

	u, err := store.GetByNick(ctx, nick)
	require.NoError(t, err)
	assert.Equal(t, "h2", u.PasswordHash)

	_, err = store.GetByNick(ctx, nick+"-missing")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	users, err := store.LoadUsers(ctx)
	require.NoError(t, err)
	found := false
	for _, u := range users {
		found = found || u.Nick == nick
	}
	assert.True(t, found)
}

func TestPostgresStore_Rankings(t *testing.T) {
	store := openPostgres(t)
	ctx := context.Background()
	// unique group per run
	key := domain.RankingKey{Group: int(time.Now().UnixNano() % 1_000_000), Size: 9}

	entries := []domain.RankingEntry{
		{Nick: "alice", Games: 3, Victories: 2},
		{Nick: "bob", Games: 3, Victories: 1},
	}
	require.NoError(t, store.SaveRanking(ctx, key, entries))

	entries[1].Victories = 2
	entries[1].Games = 4
	require.NoError(t, store.SaveRanking(ctx, key, entries))

	all, err := store.LoadRankings(ctx)
	require.NoError(t, err)
	got := all[key]
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Nick)
	assert.Equal(t, domain.RankingEntry{Nick: "bob", Games: 4, Victories: 2}, got[1])
}

func TestPostgresStore_History(t *testing.T) {
	store := openPostgres(t)
	ctx := context.Background()
	winner := fmt.Sprintf("it-w-%d", time.Now().UnixNano())

	for i := 0; i < 3; i++ {
		rec := &domain.GameRecord{
			SessionID:  fmt.Sprintf("s-%d", i),
			Group:      1,
			Size:       7,
			Winner:     winner,
			Loser:      "someone",
			Reason:     "capture",
			FinishedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.SaveGame(ctx, rec))
		assert.NotZero(t, rec.ID)
	}

	games, err := store.GamesByNick(ctx, winner, 2)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "s-2", games[0].SessionID)
}
