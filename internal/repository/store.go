package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ktz03/tab-game/internal/db"
	"github.com/ktz03/tab-game/internal/domain"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Store is everything the server persists.
type Store interface {
	LoadUsers(ctx context.Context) ([]domain.User, error)
	SaveUser(ctx context.Context, u domain.User) error
	LoadRankings(ctx context.Context) (map[domain.RankingKey][]domain.RankingEntry, error)
	SaveRanking(ctx context.Context, key domain.RankingKey, entries []domain.RankingEntry) error
	SaveGame(ctx context.Context, g *domain.GameRecord) error
	GamesByNick(ctx context.Context, nick string, limit int) ([]domain.GameRecord, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore groups the pgx repositories behind one pool.
type PostgresStore struct {
	*UserRepository
	*RankingRepository
	*GameHistoryRepository

	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		UserRepository:        NewUserRepository(pool),
		RankingRepository:     NewRankingRepository(pool),
		GameHistoryRepository: NewGameHistoryRepository(pool),
		pool:                  pool,
	}
}

func (s *PostgresStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PostgresStore) Close() { s.pool.Close() }

type Options struct {
	Backend       string
	DataDir       string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open connects the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		fs, err := NewFileStore(opts.DataDir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case BackendPostgres:
		pool, err := db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(pool), nil
	case BackendRedis:
		rdb, err := db.ConnectRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(rdb), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
}
