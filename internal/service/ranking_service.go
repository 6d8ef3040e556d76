package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/ktz03/tab-game/internal/domain"
	"github.com/ktz03/tab-game/internal/logger"
)

type RankingStore interface {
	LoadRankings(ctx context.Context) (map[domain.RankingKey][]domain.RankingEntry, error)
	SaveRanking(ctx context.Context, key domain.RankingKey, entries []domain.RankingEntry) error
}

// RankingLedger keeps per (group, size) standings in memory and snapshots a
// table to the store after every change. The last write wins.
type RankingLedger struct {
	mu     sync.Mutex
	tables map[domain.RankingKey][]domain.RankingEntry
	store  RankingStore
	log    *slog.Logger
}

func NewRankingLedger(store RankingStore) *RankingLedger {
	return &RankingLedger{
		tables: make(map[domain.RankingKey][]domain.RankingEntry),
		store:  store,
		log:    logger.With("component", "ranking"),
	}
}

func (l *RankingLedger) Load(ctx context.Context) error {
	tables, err := l.store.LoadRankings(ctx)
	if err != nil {
		return fmt.Errorf("load rankings: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.tables = make(map[domain.RankingKey][]domain.RankingEntry, len(tables))
	for k, entries := range tables {
		entries = slices.Clone(entries)
		domain.SortRanking(entries)
		l.tables[k] = entries
	}
	l.log.Info("rankings loaded", "tables", len(tables))
	return nil
}

// RecordResult counts a game for both players and a victory for winner. A
// failing store is logged and otherwise ignored.
func (l *RankingLedger) RecordResult(ctx context.Context, group, size int, winner, loser string) {
	k := domain.RankingKey{Group: group, Size: size}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.tables[k]
	entries = bump(entries, winner, true)
	entries = bump(entries, loser, false)
	domain.SortRanking(entries)
	l.tables[k] = entries

	// saved under the lock so snapshots reach the store in order
	if err := l.store.SaveRanking(ctx, k, slices.Clone(entries)); err != nil {
		l.log.Error("save ranking failed", "group", group, "size", size, "error", err)
	}
}

func bump(entries []domain.RankingEntry, nick string, won bool) []domain.RankingEntry {
	i := slices.IndexFunc(entries, func(e domain.RankingEntry) bool { return e.Nick == nick })
	if i < 0 {
		entries = append(entries, domain.RankingEntry{Nick: nick})
		i = len(entries) - 1
	}
	entries[i].Games++
	if won {
		entries[i].Victories++
	}
	return entries
}

// Standings returns a copy of the sorted table, empty when unknown.
func (l *RankingLedger) Standings(group, size int) []domain.RankingEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := slices.Clone(l.tables[domain.RankingKey{Group: group, Size: size}])
	if out == nil {
		out = []domain.RankingEntry{}
	}
	return out
}
