package repository

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ktz03/tab-game/internal/domain"
)

const (
	usersFile    = "users.json"
	rankingsFile = "rankings.json"
	historyFile  = "games.jsonl"
)

// FileStore keeps JSON snapshots in a directory. Snapshots are replaced
// through a temp file and rename.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) LoadUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var byNick map[string]domain.User
	if err := s.readJSON(usersFile, &byNick); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(byNick))
	for nick, u := range byNick {
		u.Nick = nick
		users = append(users, u)
	}
	return users, nil
}

func (s *FileStore) SaveUser(ctx context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byNick := map[string]domain.User{}
	if err := s.readJSON(usersFile, &byNick); err != nil {
		return err
	}
	if byNick == nil {
		byNick = map[string]domain.User{}
	}
	byNick[u.Nick] = u
	return s.writeJSON(usersFile, byNick)
}

func (s *FileStore) LoadRankings(ctx context.Context) (map[domain.RankingKey][]domain.RankingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw map[string][]domain.RankingEntry
	if err := s.readJSON(rankingsFile, &raw); err != nil {
		return nil, err
	}
	out := make(map[domain.RankingKey][]domain.RankingEntry, len(raw))
	for ks, entries := range raw {
		k, err := domain.ParseRankingKey(ks)
		if err != nil {
			return nil, err
		}
		out[k] = entries
	}
	return out, nil
}

func (s *FileStore) SaveRanking(ctx context.Context, key domain.RankingKey, entries []domain.RankingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := map[string][]domain.RankingEntry{}
	if err := s.readJSON(rankingsFile, &raw); err != nil {
		return err
	}
	if raw == nil {
		raw = map[string][]domain.RankingEntry{}
	}
	raw[key.String()] = entries
	return s.writeJSON(rankingsFile, raw)
}

// SaveGame appends one line to the history log.
func (s *FileStore) SaveGame(ctx context.Context, g *domain.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(s.dir, historyFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = f.Write(append(b, '\n'))
	return err
}

func (s *FileStore) GamesByNick(ctx context.Context, nick string, limit int) ([]domain.GameRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(filepath.Join(s.dir, historyFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var games []domain.GameRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var g domain.GameRecord
		if err := json.Unmarshal(sc.Bytes(), &g); err != nil {
			return nil, fmt.Errorf("decode history line: %w", err)
		}
		if g.Winner == nick || g.Loser == nick {
			games = append(games, g)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	// newest first
	for i, j := 0, len(games)-1; i < j; i, j = i+1, j-1 {
		games[i], games[j] = games[j], games[i]
	}
	if len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}

func (s *FileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

func (s *FileStore) Close() {}

func (s *FileStore) readJSON(name string, v any) error {
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) writeJSON(name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, name))
}
