package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/ktz03/tab-game/internal/domain"
)

const (
	redisUsersKey      = "tab:users"
	redisRankingPrefix = "tab:ranking:"
	redisHistoryPrefix = "tab:games:"
	redisHistoryCap    = 100
)

// RedisStore keeps users in one hash, each ranking table as a JSON string
// and per-nick capped history lists.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) LoadUsers(ctx context.Context) ([]domain.User, error) {
	raw, err := s.rdb.HGetAll(ctx, redisUsersKey).Result()
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(raw))
	for nick, v := range raw {
		var u domain.User
		if err := json.Unmarshal([]byte(v), &u); err != nil {
			return nil, fmt.Errorf("decode user %q: %w", nick, err)
		}
		u.Nick = nick
		users = append(users, u)
	}
	return users, nil
}

func (s *RedisStore) SaveUser(ctx context.Context, u domain.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.rdb.HSet(ctx, redisUsersKey, u.Nick, b).Err()
}

func (s *RedisStore) LoadRankings(ctx context.Context) (map[domain.RankingKey][]domain.RankingEntry, error) {
	out := make(map[domain.RankingKey][]domain.RankingEntry)

	iter := s.rdb.Scan(ctx, 0, redisRankingPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		k, err := domain.ParseRankingKey(strings.TrimPrefix(key, redisRankingPrefix))
		if err != nil {
			return nil, err
		}
		v, err := s.rdb.Get(ctx, key).Bytes()
		if err != nil {
			return nil, err
		}
		var entries []domain.RankingEntry
		if err := json.Unmarshal(v, &entries); err != nil {
			return nil, fmt.Errorf("decode ranking %s: %w", key, err)
		}
		out[k] = entries
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisStore) SaveRanking(ctx context.Context, key domain.RankingKey, entries []domain.RankingEntry) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, redisRankingPrefix+key.String(), b, 0).Err()
}

// SaveGame pushes the record onto both players' history lists.
func (s *RedisStore) SaveGame(ctx context.Context, g *domain.GameRecord) error {
	b, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, nick := range []string{g.Winner, g.Loser} {
			key := redisHistoryPrefix + nick
			p.LPush(ctx, key, b)
			p.LTrim(ctx, key, 0, redisHistoryCap-1)
		}
		return nil
	})
	return err
}

func (s *RedisStore) GamesByNick(ctx context.Context, nick string, limit int) ([]domain.GameRecord, error) {
	if limit <= 0 || limit > redisHistoryCap {
		limit = redisHistoryCap
	}
	raw, err := s.rdb.LRange(ctx, redisHistoryPrefix+nick, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	games := make([]domain.GameRecord, 0, len(raw))
	for _, v := range raw {
		var g domain.GameRecord
		if err := json.Unmarshal([]byte(v), &g); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		games = append(games, g)
	}
	return games, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() {
	_ = s.rdb.Close()
}
